package security

import (
	"net/http"
	"strconv"
)

// Headers sets browser hardening headers on every response.
type Headers struct {
	// HSTSMaxAge enables Strict-Transport-Security on TLS requests when positive.
	HSTSMaxAge int
	// NoStore marks responses as uncacheable. Used on admin and payment routes.
	NoStore bool
}

// Middleware applies the configured headers before calling next.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("X-Content-Type-Options", "nosniff")
		hdr.Set("X-Frame-Options", "DENY")
		hdr.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if h.HSTSMaxAge > 0 && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
			hdr.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(h.HSTSMaxAge)+"; includeSubDomains")
		}
		if h.NoStore {
			hdr.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}
