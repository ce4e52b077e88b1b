package handlers

import (
	"net/http"

	"github.com/boostmysites25/zippty-backend/internal/api"
	"github.com/boostmysites25/zippty-backend/internal/auth"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterOptions carries the shared infrastructure the router wires into
// middleware. Redis, Metrics, Gatherer and Validator are optional.
type RouterOptions struct {
	Authenticator  *auth.Authenticator
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Validator      *api.Validator
	TrustProxy     bool
	AllowedOrigins []string
}

// NewRouter mounts every admin route under /api.
func NewRouter(h API, opt RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{TrustProxy: opt.TrustProxy}))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(opt.Metrics))
	r.Use(middleware.CORS(opt.AllowedOrigins))
	r.Use(middleware.AccessControl(opt.Redis, middleware.AccessControlOptions{TrustProxy: opt.TrustProxy}))
	r.Use(middleware.RateLimit(opt.Redis, middleware.RateLimitOptions{TrustProxy: opt.TrustProxy}))

	if opt.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opt.Gatherer, promhttp.HandlerOpts{}))
	}

	validate := middleware.RequestValidation(opt.Validator)
	required := middleware.AdminAuth(opt.Authenticator, middleware.RequireAdmin, opt.Metrics)
	optional := middleware.AdminAuth(opt.Authenticator, middleware.OptionalAdmin, opt.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.With(optional).Get("/health", h.GetHealth)

		r.Route("/admin", func(r chi.Router) {
			r.With(validate).Post("/login", h.PostAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(required, validate)

				r.Get("/dashboard/stats", h.GetDashboardStats)
				r.Get("/dashboard/recent-orders", h.GetRecentOrders)
				r.Get("/dashboard/sales-analytics", h.GetSalesAnalytics)

				r.Get("/profile", h.GetAdminProfile)
				r.Put("/profile", h.PutAdminProfile)
				r.Put("/change-password", h.PutAdminPassword)

				r.Get("/users/stats", h.GetUserStats)
				r.Get("/users/{userId}", h.GetUser)
				r.Patch("/users/{userId}/status", h.PatchUserStatus)
				r.Delete("/users/{userId}", h.DeleteUser)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}
