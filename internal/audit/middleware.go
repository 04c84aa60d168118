package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

// Recorder writes an audit entry for every mutating request it wraps.
// It must run after authentication so the principal is on the context.
type Recorder struct {
	Service *Service
	Logger  zerolog.Logger
}

// Middleware records requests against resource. idParam names the chi URL
// parameter that identifies the touched record, if any.
func (rec Recorder) Middleware(resource, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			action := actionOf(r.Method)
			if rec.Service == nil || action == "" {
				next.ServeHTTP(w, r)
				return
			}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := domain.AuditEntry{
				Action:    action,
				Resource:  resource,
				Route:     r.Method + " " + routeOf(r),
				Status:    status,
				IP:        common.ClientIP(r),
				RequestID: middleware.GetReqID(r.Context()),
			}
			if idParam != "" {
				entry.ResourceID = chi.URLParam(r, idParam)
			}
			if p, ok := common.PrincipalFrom(r.Context()); ok {
				entry.ActorID = p.UserID
				entry.ActorRole = p.Role
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 3*time.Second)
			defer cancel()
			if err := rec.Service.Record(ctx, entry); err != nil {
				rec.Logger.Error().Err(err).Str("resource", resource).Str("action", action).Msg("record audit entry")
			}
		})
	}
}

func actionOf(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
