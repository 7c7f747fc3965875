package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/auth-api/internal/api/handlers"
	"github.com/isdelr/auth-api/internal/auth"
	"github.com/isdelr/auth-api/internal/metrics"
	"github.com/isdelr/auth-api/internal/services"
)

// Deps bundles what the router wires into handlers.
type Deps struct {
	AuthService    services.AuthServiceProvider
	Tokens         *auth.TokenService
	Store          handlers.Pinger
	Metrics        *metrics.Metrics
	Mailer         handlers.RecoveryMailer // nil disables recovery emails
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization", auth.TokenHeader},
		ExposedHeaders: []string{auth.TokenHeader},
		MaxAge:         300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.AuthService, deps.Metrics, deps.Mailer)
	dashboardHandler := handlers.NewDashboardHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	r.Get("/", healthHandler.Root)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/reset-password", userHandler.ResetPassword)
			r.Post("/update-password", userHandler.UpdatePassword)
		})

		// Everything under /dashboard requires a valid token.
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(deps.Tokens.Middleware())
			r.Get("/", dashboardHandler.Index)
			r.Get("/me", dashboardHandler.GetMe)
		})
	})

	return r
}
