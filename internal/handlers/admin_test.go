package handlers

import (
	"net/http"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/middleware"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutes_RequireCredentials(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil, middleware.HeaderAdminKey, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil, "Authorization", "Bearer not-a-session")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil, middleware.HeaderAdminKey, testAdminKey)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestResetPersonas_Public(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/personas", map[string]interface{}{
		"name":   "Tempest",
		"traits": []map[string]interface{}{{"name": "openness", "value": 0.5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/reset-personas", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reset ResetPersonasResponse
	decode(t, rec, &reset)
	assert.True(t, reset.Success)
	require.NotNil(t, reset.Luna)
	assert.Equal(t, "Luna", reset.Luna.Name)

	rec = doJSON(t, h, http.MethodGet, "/api/personas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Tempest")
}

func TestAdminLoginLogout(t *testing.T) {
	// login is limited to a burst of two per client, so the empty body is
	// checked from a separate router address
	rec := doJSON(t, newTestRouter(t), http.MethodPost, "/api/admin/login", AdminLoginRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h := newTestRouter(t)
	rec = doJSON(t, h, http.MethodPost, "/api/admin/login", AdminLoginRequest{Key: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/login", AdminLoginRequest{Key: testAdminKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login AdminLoginResponse
	decode(t, rec, &login)
	require.NotEmpty(t, login.Token)
	bearer := "Bearer " + login.Token

	// fill the summary cache so the flush has something to remove
	rec = doJSON(t, h, http.MethodPost, "/api/summarize", map[string]string{"text": "하나. 둘. 셋."})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var flushed struct {
		Success bool           `json:"success"`
		Flushed map[string]int `json:"flushed"`
		Total   int            `json:"total"`
	}
	decode(t, rec, &flushed)
	assert.True(t, flushed.Success)
	assert.Equal(t, 1, flushed.Flushed["summary"])
	assert.Equal(t, 1, flushed.Total)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/feedbacks", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	var fb GetFeedbacksResponse
	decode(t, rec, &fb)
	assert.True(t, fb.Success)
	assert.Empty(t, fb.Feedbacks)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/logout", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/cache", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminResetDatabase(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/database", CreateResponseRequest{Question: "q", Answer: "a", Model: "m"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/admin/database", nil, middleware.HeaderAdminKey, testAdminKey)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/database?query=q", nil)
	var found []models.Response
	decode(t, rec, &found)
	for _, r := range found {
		assert.NotEqual(t, "q", r.Question)
	}
}

func TestAdminLogin_DisabledWithoutHash(t *testing.T) {
	h := newTestRouter(t)
	appConfig.AdminKeyHash = ""

	rec := doJSON(t, h, http.MethodPost, "/api/admin/login", AdminLoginRequest{Key: testAdminKey})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadFile_NotConfigured(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var eb errorBody
	decode(t, rec, &eb)
	assert.Equal(t, "Cloudinary is not configured", eb.Error)
}
