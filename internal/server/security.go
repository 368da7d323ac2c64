package server

import (
	"net/http"
	"slices"
	"strings"
)

// Default input limits.
const (
	// DefaultMaxResults caps the number of values a single request may
	// produce, whether from a range or a list.
	DefaultMaxResults = 100_000
	// DefaultMaxTokens caps the tokens query parameter. Each token costs one
	// word service round-trip while the request is held open.
	DefaultMaxTokens = 10
	// DefaultMaxConnections caps simultaneously accepted connections.
	DefaultMaxConnections = 256
)

// SecurityConfig holds the security settings of the HTTP API.
type SecurityConfig struct {
	// EnableCORS enables Cross-Origin Resource Sharing headers.
	EnableCORS bool
	// AllowedOrigins lists the origins allowed for CORS. "*" allows any.
	AllowedOrigins []string
	// AllowedMethods lists the methods announced in CORS responses.
	AllowedMethods []string
	// MaxResults is the largest range size or list length accepted.
	MaxResults uint64
	// MaxTokens is the largest tokens value accepted.
	MaxTokens int
	// MaxConnections limits concurrent connections; 0 means unlimited.
	MaxConnections int
}

// DefaultSecurityConfig returns the default security configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxResults:     DefaultMaxResults,
		MaxTokens:      DefaultMaxTokens,
		MaxConnections: DefaultMaxConnections,
	}
}

// SecurityMiddleware sets standard security headers and handles CORS.
// OPTIONS preflight requests are answered with 204 and never reach next.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "86400")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the value of Access-Control-Allow-Origin for origin,
// if any.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	if slices.Contains(allowed, "*") {
		return "*", true
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin, true
	}
	return "", false
}
