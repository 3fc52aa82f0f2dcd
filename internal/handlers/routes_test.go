package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/handlers"
	"github.com/AnshRaj112/luna-backend/internal/routes"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func init() {
	handlers.RegisterRoutes = routes.SetupRoutes
}

func TestSetupRoutes_PublicAndGuarded(t *testing.T) {
	cfg := &config.Config{Environment: "test", StoreDriver: "memory", ModelsDir: t.TempDir()}
	handlers.InitServices(cfg, services.NewMemoryResponseStore())
	r := chi.NewRouter()
	routes.SetupRoutes(r, cfg)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/search/debug", http.StatusOK},
		{http.MethodPost, "/api/reset-personas", http.StatusOK},
		{http.MethodDelete, "/api/admin/cache", http.StatusForbidden},
		{http.MethodGet, "/api/admin/feedbacks", http.StatusForbidden},
		{http.MethodGet, "/api/does-not-exist", http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
}
