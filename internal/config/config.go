package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	AllowedHost    string   // production Host check; empty disables it
	TrustProxy     bool     // take the client IP from X-Forwarded-For

	// Q&A record store: memory (default), postgres or sqlite
	StoreDriver string
	PostgresURI string
	SQLitePath  string

	// Optional backends; empty means the in-process fallback is used
	RedisURI string
	MongoURI string

	GoogleAPIKey    string
	GoogleSearchID  string
	GoogleSearchURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AdminKeyHash string // argon2id hash; admin routes are disabled when empty
	ModelsDir    string

	ResponseDelay   time.Duration
	MockSearchDelay time.Duration
	WordStreamDelay time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		AllowedOrigins:      allowedOrigins,
		AllowedHost:         getEnv("ALLOWED_HOST", ""),
		TrustProxy:          getEnvBool("TRUST_PROXY", false),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		SQLitePath:          getEnv("SQLITE_PATH", "luna.db"),
		RedisURI:            getEnv("REDIS_URI", ""),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		GoogleAPIKey:        getEnv("GOOGLE_API_KEY", ""),
		GoogleSearchID:      getEnv("GOOGLE_ID", getEnv("GOOGLE_CX", "")),
		GoogleSearchURL:     getEnv("GOOGLE_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		AdminKeyHash:        getEnv("ADMIN_KEY_HASH", ""),
		ModelsDir:           getEnv("MODELS_DIR", "models"),
		ResponseDelay:       getEnvMillis("RESPONSE_DELAY_MS", 1000),
		MockSearchDelay:     getEnvMillis("MOCK_SEARCH_DELAY_MS", 800),
		WordStreamDelay:     getEnvMillis("STREAM_WORD_DELAY_MS", 100),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// SearchConfigured reports whether Google Custom Search credentials are present.
func (c *Config) SearchConfigured() bool {
	return c.GoogleAPIKey != "" && c.GoogleSearchID != ""
}

func (c *Config) OpenAIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// MissingSearchVariables lists the search env keys that are not set.
func (c *Config) MissingSearchVariables() []string {
	missing := []string{}
	if c.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if c.GoogleSearchID == "" {
		missing = append(missing, "GOOGLE_ID")
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	ms := defaultMillis
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			ms = parsed
		}
	}
	return time.Duration(ms) * time.Millisecond
}
