package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	TrustProxy(false)
	assert.Equal(t, "10.0.0.7", RealClientIP(r))

	TrustProxy(true)
	defer TrustProxy(false)
	assert.Equal(t, "203.0.113.9", RealClientIP(r))

	r.Header.Set("X-Forwarded-For", "garbage")
	r.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", RealClientIP(r))

	r.Header.Del("X-Real-IP")
	assert.Equal(t, "10.0.0.7", RealClientIP(r))

	r.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", RealClientIP(r))
}
