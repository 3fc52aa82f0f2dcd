package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "correct-horse-battery-staple"

// RegisterRoutes is set by the external test package to the production route
// table, which cannot be imported here without a cycle.
var RegisterRoutes func(r chi.Router, cfg *config.Config)

var routerSeq uint32

var (
	adminHashOnce sync.Once
	adminHash     string
)

func testAdminHash(t *testing.T) string {
	t.Helper()
	adminHashOnce.Do(func() {
		h, err := utils.HashSecret(testAdminKey)
		require.NoError(t, err)
		adminHash = h
	})
	return adminHash
}

// newTestRouter wires fresh services with no delays and no external backends.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Environment:  "test",
		StoreDriver:  "memory",
		ModelsDir:    t.TempDir(),
		AdminKeyHash: testAdminHash(t),
	}
	InitServices(cfg, services.NewMemoryResponseStore())
	cloudinaryService = nil

	r := chi.NewRouter()
	require.NotNil(t, RegisterRoutes, "route table not registered")
	RegisterRoutes(r, cfg)

	// each router gets its own client address so the per-IP limiters on the
	// real route table do not leak between tests
	addr := fmt.Sprintf("192.0.2.%d:1234", atomic.AddUint32(&routerSeq, 1)%250+1)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func TestDatabaseHandlers_CRUD(t *testing.T) {
	h := newTestRouter(t)
	seeds := len(services.SeedResponses())

	rec := doJSON(t, h, http.MethodGet, "/api/database", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.Response
	decode(t, rec, &all)
	assert.Len(t, all, seeds)

	rec = doJSON(t, h, http.MethodPost, "/api/database", map[string]string{"question": "q only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var eb errorBody
	decode(t, rec, &eb)
	assert.Equal(t, "질문, 응답, 모델은 필수 항목입니다.", eb.Error)

	rec = doJSON(t, h, http.MethodPost, "/api/database", CreateResponseRequest{Question: "Go란?", Answer: "언어", Model: "gpt-4o"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Response
	decode(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultCategory, created.Category)
	assert.Equal(t, models.DefaultFeedback, created.Feedback)

	rec = doJSON(t, h, http.MethodPut, "/api/database", map[string]string{"answer": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/database", map[string]string{"id": "missing", "answer": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	decode(t, rec, &eb)
	assert.Equal(t, "해당 ID의 응답을 찾을 수 없습니다.", eb.Error)

	rec = doJSON(t, h, http.MethodPut, "/api/database", map[string]string{"id": created.ID, "category": "프로그래밍"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Response
	decode(t, rec, &updated)
	assert.Equal(t, "프로그래밍", updated.Category)
	assert.Equal(t, "언어", updated.Answer)

	rec = doJSON(t, h, http.MethodGet, "/api/database?category="+url.QueryEscape("프로그래밍"), nil)
	decode(t, rec, &all)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)

	rec = doJSON(t, h, http.MethodGet, "/api/database/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/database?id="+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodDelete, "/api/database?id="+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, "/api/database", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatabaseHandlers_SaveStatsFeedback(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/save-response", CreateResponseRequest{Question: "q", Answer: "a", Model: "luna", Category: "테스트"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved models.Response
	decode(t, rec, &saved)

	rec = doJSON(t, h, http.MethodPost, "/api/database/"+saved.ID+"/feedback", map[string]interface{}{"feedback": "좋음", "rating": 0.9})
	require.Equal(t, http.StatusOK, rec.Code)
	var withFeedback models.Response
	decode(t, rec, &withFeedback)
	assert.Equal(t, "좋음", withFeedback.Feedback)

	rec = doJSON(t, h, http.MethodPost, "/api/database/"+saved.ID+"/feedback", map[string]interface{}{"feedback": "좋음", "rating": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/database/nope/feedback", map[string]string{"feedback": "좋음"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/database/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.ResponseStats
	decode(t, rec, &stats)
	assert.Equal(t, len(services.SeedResponses())+1, stats.TotalResponses)
	assert.Equal(t, 1, stats.ByCategory["테스트"])
	assert.GreaterOrEqual(t, stats.FeedbackDistribution["좋음"], 1)
}

func TestSearchHandlers(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var eb errorBody
	decode(t, rec, &eb)
	assert.Equal(t, 4002, eb.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/search?query=golang&mock=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.SearchResponse
	decode(t, rec, &res)
	assert.True(t, res.UsingMockResults)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, "3", res.SearchInformation.TotalResults)

	rec = doJSON(t, h, http.MethodPost, "/api/oracle-search", OracleSearchRequest{Query: "golang"})
	require.Equal(t, http.StatusOK, rec.Code)
	var oracle OracleSearchResponse
	decode(t, rec, &oracle)
	assert.Equal(t, "golang", oracle.Query)
	assert.Len(t, oracle.Results, 3)
	assert.Len(t, oracle.ExtractedInfo, 3)
	assert.NotEmpty(t, oracle.Summary)
	assert.Len(t, oracle.Highlights, 3)

	rec = doJSON(t, h, http.MethodGet, "/api/search/debug", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var diag struct {
		Status      string                 `json:"status"`
		Diagnostics map[string]interface{} `json:"diagnostics"`
	}
	decode(t, rec, &diag)
	assert.Equal(t, "success", diag.Status)
	assert.Equal(t, false, diag.Diagnostics["apiKeySet"])
	assert.Equal(t, false, diag.Diagnostics["idSet"])
	assert.Equal(t, float64(0), diag.Diagnostics["apiKeyLength"])
	assert.NotContains(t, diag.Diagnostics, "apiKeyPreview")
	assert.Equal(t, "closed", diag.Diagnostics["breakerState"])
	assert.Equal(t, "memory", diag.Diagnostics["cacheBackend"])
}

func TestStatusHandlers(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, "OK", rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/ai-status", nil)
	var status struct {
		Systems       []models.AISystem `json:"systems"`
		OverallStatus string            `json:"overallStatus"`
	}
	decode(t, rec, &status)
	assert.Len(t, status.Systems, 13)
	assert.Equal(t, "operational", status.OverallStatus)

	rec = doJSON(t, h, http.MethodGet, "/api/ai-hub", nil)
	var hub map[string]interface{}
	decode(t, rec, &hub)
	assert.Equal(t, float64(8), hub["totalCount"])

	rec = doJSON(t, h, http.MethodGet, "/api/status", nil)
	var online StatusResponse
	decode(t, rec, &online)
	assert.Equal(t, "online", online.Status)
	assert.False(t, online.Services["search"])
	assert.True(t, online.Services["database"])
	assert.False(t, online.Services["uploads"])
	assert.Equal(t, "memory", online.Backends["store"])

	rec = doJSON(t, h, http.MethodGet, "/api/check-env", nil)
	var env CheckEnvResponse
	decode(t, rec, &env)
	assert.False(t, env.IsConfigured)
	assert.Equal(t, []string{"GOOGLE_API_KEY", "GOOGLE_ID"}, env.MissingVariables)

	dir := filepath.Join(appConfig.ModelsDir, "gpt2")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range []string{"config.json", "pytorch_model.bin"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("{}"), 0o644))
	}
	rec = doJSON(t, h, http.MethodGet, "/api/check-models", nil)
	var checked CheckModelsResponse
	decode(t, rec, &checked)
	assert.True(t, checked.Models["gpt2"])
	assert.False(t, checked.Models["gpt2-xl"])
	assert.Equal(t, []string{"gpt2"}, checked.AvailableModels)

	rec = doJSON(t, h, http.MethodGet, "/api/download-model", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Model parameter is required"}`, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/download-model?model=gpt2-medium", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Started download for model: gpt2-medium","model":"gpt2-medium"}`, rec.Body.String())
}
