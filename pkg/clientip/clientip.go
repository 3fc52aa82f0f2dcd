// Package clientip resolves the address used for rate limiting and content flags.
package clientip

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

var trustProxy atomic.Bool

// TrustProxy makes RealClientIP honour X-Forwarded-For and X-Real-IP. Enable
// only when the app sits behind a proxy that overwrites those headers.
func TrustProxy(enabled bool) {
	trustProxy.Store(enabled)
}

// RealClientIP returns the client IP from the request.
func RealClientIP(r *http.Request) string {
	if trustProxy.Load() {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// forwardedIP takes the left-most valid X-Forwarded-For entry, then X-Real-IP.
func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}
	return ""
}
