package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/analytics"
	"github.com/noah-isme/backend-tour/internal/audit"
	"github.com/noah-isme/backend-tour/internal/auth"
	"github.com/noah-isme/backend-tour/internal/catalog"
	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/config"
	"github.com/noah-isme/backend-tour/internal/health"
	"github.com/noah-isme/backend-tour/internal/obs"
	"github.com/noah-isme/backend-tour/internal/order"
	"github.com/noah-isme/backend-tour/internal/payment"
	"github.com/noah-isme/backend-tour/internal/ratelimit"
	"github.com/noah-isme/backend-tour/internal/security"
	"github.com/noah-isme/backend-tour/internal/user"
	"github.com/noah-isme/backend-tour/internal/voucher"
)

type routerDeps struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *obs.HTTPMetrics
	health  health.Handler

	authMW       auth.Middleware
	auth         *auth.Handler
	catalog      *catalog.Handler
	vouchers     *voucher.Handler
	voucherLimit ratelimit.Handler
	orders       *order.Handler
	ordersAdmin  *order.AdminHandler
	payments     *payment.Handler
	stats        *analytics.Handler
	users        *user.Handler
	audit        audit.Recorder
	auditLogs    *audit.Handler
}

func newRouter(d routerDeps) http.Handler {
	reqLog := obs.RequestLogger{Logger: d.logger}
	hsts := 0
	if d.cfg.IsProduction() {
		hsts = 31536000
	}
	perm := auth.RequirePermission
	track := d.audit.Middleware

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqLog.Recoverer)
	if d.cfg.Obs.Tracing {
		r.Use(obs.Tracing)
	}
	r.Use(obs.HTTPObs{Metrics: d.metrics}.Middleware)
	r.Use(reqLog.Middleware)
	r.Use(security.Headers{HSTSMaxAge: hsts}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(d.cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, "Không tìm thấy tài nguyên")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusMethodNotAllowed, "Phương thức không được hỗ trợ")
	})

	if d.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if d.cfg.Obs.Pprof {
		r.Mount("/debug", protectPprof(middleware.Profiler(), d.cfg.Obs.PprofUser, d.cfg.Obs.PprofPass))
	}
	r.Get("/health/live", d.health.Live)
	r.Get("/health/ready", d.health.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: d.cfg.BodyLimitBytes}.Middleware)

		v.Get("/tours", d.catalog.Tours)
		v.Get("/tours/{slug}", d.catalog.Tour)
		v.Get("/hotels", d.catalog.Hotels)
		v.Get("/hotels/{slug}", d.catalog.Hotel)

		v.With(d.voucherLimit.Middleware).Get("/vouchers/{code}/check", d.vouchers.Check)

		v.With(d.authMW.Authenticate).Post("/orders", d.orders.Create)
		v.Get("/orders/{orderCode}", d.orders.Get)

		v.Route("/payments/vnpay", func(p chi.Router) {
			p.Use(security.Headers{NoStore: true}.Middleware)
			p.Post("/", d.payments.Create)
			p.Get("/return", d.payments.Return)
			p.Get("/ipn", d.payments.IPN)
		})

		v.Route("/auth", func(a chi.Router) {
			a.Post("/login", d.auth.Login)
			a.Post("/logout", d.auth.Logout)
			a.With(d.authMW.RequireAuth).Get("/me", d.auth.Me)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(d.authMW.RequireAuth)
			admin.Use(security.Headers{NoStore: true}.Middleware)

			admin.With(perm(auth.PermOrdersView)).Get("/orders", d.ordersAdmin.List)
			admin.With(perm(auth.PermOrdersExport)).Get("/orders/export", d.ordersAdmin.Export)
			admin.With(perm(auth.PermOrdersView)).Get("/orders/{orderCode}", d.ordersAdmin.Get)
			admin.With(perm(auth.PermOrdersEdit), track("order", "orderCode")).Patch("/orders/{orderCode}/status", d.ordersAdmin.PatchStatus)
			admin.With(perm(auth.PermOrdersDelete), track("order", "orderCode")).Delete("/orders/{orderCode}", d.ordersAdmin.Delete)

			admin.With(perm(auth.PermToursEdit), track("tour", "")).Post("/tours", d.catalog.CreateTour)
			admin.With(perm(auth.PermToursEdit), track("tour", "id")).Put("/tours/{id}", d.catalog.UpdateTour)
			admin.With(perm(auth.PermToursEdit), track("tour", "id")).Delete("/tours/{id}", d.catalog.DeleteTour)
			admin.With(perm(auth.PermHotelsEdit), track("hotel", "")).Post("/hotels", d.catalog.CreateHotel)
			admin.With(perm(auth.PermHotelsEdit), track("hotel", "id")).Put("/hotels/{id}", d.catalog.UpdateHotel)
			admin.With(perm(auth.PermHotelsEdit), track("hotel", "id")).Delete("/hotels/{id}", d.catalog.DeleteHotel)

			admin.With(perm(auth.PermVouchersView)).Get("/vouchers", d.vouchers.List)
			admin.With(perm(auth.PermVouchersEdit), track("voucher", "")).Post("/vouchers", d.vouchers.Create)
			admin.With(perm(auth.PermVouchersEdit), track("voucher", "code")).Put("/vouchers/{code}", d.vouchers.Update)
			admin.With(perm(auth.PermVouchersEdit), track("voucher", "code")).Delete("/vouchers/{code}", d.vouchers.Delete)

			admin.With(perm(auth.PermUsersView)).Get("/users", d.users.List)
			admin.With(perm(auth.PermUsersView)).Get("/users/{id}", d.users.Get)
			admin.With(perm(auth.PermUsersEdit), track("user", "")).Post("/users", d.users.Create)
			admin.With(perm(auth.PermUsersEdit), track("user", "id")).Put("/users/{id}", d.users.Update)
			admin.With(perm(auth.PermUsersEdit), track("user", "id")).Delete("/users/{id}", d.users.Delete)

			admin.With(perm(auth.PermStatisticsView)).Get("/statistics", d.stats.Statistics)
			admin.With(perm(auth.PermAuditView)).Get("/audit-logs", d.auditLogs.List)
		})
	})
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
			common.JSONError(w, http.StatusUnauthorized, "Chưa xác thực")
			return
		}
		handler.ServeHTTP(w, r)
	})
}
