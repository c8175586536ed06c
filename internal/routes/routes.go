package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/handlers"
	"QROLY_BACK-END/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	GoogleAuth *handlers.GoogleAuthHandler // nil when Google OAuth is not configured
	Health     *handlers.HealthHandler
	Redirects  *handlers.RedirectsHandler
	Public     *handlers.PublicHandler
	QR         *handlers.QRHandler
}

// NewRouter configures all application routes
func NewRouter(cfg *config.Config, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	// Health check routes
	r.Get("/healthz", h.Health.HealthCheck)
	r.Get("/livez", h.Health.LivenessCheck)
	r.Get("/readyz", h.Health.ReadinessCheck)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Public personal links
	r.Route("/r/{username}", func(r chi.Router) {
		r.Get("/", h.Public.Redirect)
		r.Get("/qr.png", h.Public.QRCode)
	})

	auth := func(next middleware.AuthedHandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(&cfg.JWT, next)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", auth(h.Auth.Me))

			if h.GoogleAuth != nil {
				r.Get("/google/login", h.GoogleAuth.GoogleLogin)
				r.Get("/google/callback", h.GoogleAuth.GoogleCallback)
			}
		})

		r.Get("/redirects", auth(h.Redirects.Get))
		r.Post("/redirects", auth(h.Redirects.Save))

		r.Get("/qr", auth(h.QR.Personal))
		r.Get("/qr/payment/{app}", auth(h.QR.Payment))
		r.Get("/upi-links", auth(h.QR.UPILinks))
	})

	r.Get("/", rootHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	return c.Handler(r)
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Qroly backend is running."))
}
