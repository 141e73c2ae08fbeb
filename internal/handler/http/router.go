package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pmaxcam/review-website/internal/auth"
	"github.com/pmaxcam/review-website/internal/service"
	"github.com/pmaxcam/review-website/pkg/health"
	"github.com/pmaxcam/review-website/pkg/middleware"
)

// RouterDeps holds everything the router wires into handlers. Metrics,
// MetricsHandler and AuthRateLimit are optional.
type RouterDeps struct {
	Products *service.ProductService
	Reviews  *service.ReviewService
	Accounts *service.AccountService
	Tools    *service.ToolService

	Sessions SessionResolver
	Cookie   auth.CookieConfig

	Health         *health.Handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler

	CORS          middleware.CORSConfig
	CacheMaxAge   int
	AuthRateLimit func(http.Handler) http.Handler

	Logger *slog.Logger
}

// NewRouter creates a chi router with all review site routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	logger := deps.Logger

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.CORS(deps.CORS))
	r.Use(OptionalSession(deps.Sessions, deps.Cookie, logger))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	accountHandler := NewAccountHandler(deps.Accounts, deps.Cookie, logger)
	productHandler := NewProductHandler(deps.Products, logger)
	reviewHandler := NewReviewHandler(deps.Reviews, logger)
	toolHandler := NewToolHandler(deps.Tools, logger)
	cacheable := middleware.CacheControl(deps.CacheMaxAge)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/user", accountHandler.CurrentUser)
			r.Post("/logout", accountHandler.Logout)
			r.Post("/update-password", accountHandler.UpdatePassword)

			r.Group(func(r chi.Router) {
				if deps.AuthRateLimit != nil {
					r.Use(deps.AuthRateLimit)
				}
				r.Post("/login", accountHandler.Login)
				r.Post("/signup", accountHandler.SignUp)
				r.Post("/reset-password", accountHandler.RequestPasswordReset)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(cacheable)
				r.Get("/", productHandler.ListProducts)
				r.Get("/search", productHandler.SearchProducts)
				r.Get("/{id}", productHandler.GetProduct)
				r.Get("/{id}/reviews", reviewHandler.ListProductReviews)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireSession)
				r.Post("/", productHandler.CreateProduct)
				r.Post("/{id}/reviews", reviewHandler.CreateReview)
			})
		})

		r.Route("/reviews/{id}", func(r chi.Router) {
			r.With(cacheable).Get("/", reviewHandler.GetReview)
			r.With(RequireSession).Put("/", reviewHandler.UpdateReview)
			r.With(RequireSession).Delete("/", reviewHandler.DeleteReview)
		})

		r.With(RequireSession).Get("/users/me/reviews", reviewHandler.ListMyReviews)

		r.Route("/tools", func(r chi.Router) {
			r.Use(cacheable)
			r.Get("/", toolHandler.ListTools)
			r.Get("/{id}", toolHandler.GetTool)
		})
	})

	return r
}
