package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENV", "ALLOWED_ORIGINS", "FRONTEND_URL", "FRONTEND_URL_2", "STORE_DRIVER", "GOOGLE_API_KEY", "GOOGLE_ID", "GOOGLE_CX", "RESPONSE_DELAY_MS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, time.Second, cfg.ResponseDelay)
	assert.False(t, cfg.SearchConfigured())
	assert.Equal(t, []string{"GOOGLE_API_KEY", "GOOGLE_ID"}, cfg.MissingSearchVariables())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", " Production ")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("GOOGLE_ID", "")
	t.Setenv("GOOGLE_CX", "cx")
	t.Setenv("STREAM_WORD_DELAY_MS", "0")
	t.Setenv("MOCK_SEARCH_DELAY_MS", "-5")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.True(t, cfg.SearchConfigured())
	assert.Empty(t, cfg.MissingSearchVariables())
	assert.Zero(t, cfg.WordStreamDelay)
	assert.Equal(t, 800*time.Millisecond, cfg.MockSearchDelay)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_FrontendOriginsDeduplicated(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "https://luna.example")
	t.Setenv("FRONTEND_URL_2", "HTTPS://LUNA.EXAMPLE")

	assert.Equal(t, []string{"https://luna.example"}, Load().AllowedOrigins)
}
