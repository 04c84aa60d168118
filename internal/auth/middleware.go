package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-tour/internal/common"
)

// Middleware wires the authorization context into HTTP handlers.
type Middleware struct {
	Service      *Service
	AccessCookie string
}

// RequireAuth rejects requests without a valid access token and attaches the
// principal to the context otherwise.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Service == nil {
			common.JSONError(w, http.StatusInternalServerError, common.MsgInternal)
			return
		}
		p, err := m.Service.ParseAccessToken(m.extractToken(r))
		if err != nil {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				common.JSONError(w, appErr.HTTPStatus, appErr.Message)
				return
			}
			common.JSONError(w, http.StatusUnauthorized, common.MsgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithPrincipal(r.Context(), p)))
	})
}

// Authenticate attaches the principal when a valid token is present and
// otherwise lets the request through anonymously.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if m.Service == nil || token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if p, err := m.Service.ParseAccessToken(token); err == nil {
			r = r.WithContext(common.WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission answers 403 unless the principal holds permission.
// It must run after RequireAuth.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := common.PrincipalFrom(r.Context())
			if !ok {
				common.JSONError(w, http.StatusUnauthorized, common.MsgUnauthorized)
				return
			}
			if !p.Can(permission) {
				common.JSONError(w, http.StatusForbidden, common.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if m.AccessCookie != "" {
		if cookie, err := r.Cookie(m.AccessCookie); err == nil {
			return strings.TrimSpace(cookie.Value)
		}
	}
	return ""
}
