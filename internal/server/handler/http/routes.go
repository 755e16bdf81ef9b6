package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkravets/secretdrop/internal/middleware"
	"github.com/mkravets/secretdrop/internal/ratelimit"
)

// NewRouter constructs the HTTP handler serving the secret API.
//
// Routes:
//
//	POST   /api/secrets              → create (anonymous allowed)
//	POST   /api/secrets/{id}/reveal  → reveal (throttled per source address)
//	GET    /api/secrets              → list own secrets (requires session)
//	DELETE /api/secrets/{id}         → delete own secret (requires session)
//	POST   /api/cron/cleanup         → expiry sweep (cron token)
//
// Middleware chain: RealIP resolution, request logging, optional session
// authentication. JSON content type is enforced on bodies; the reveal
// endpoint additionally runs through the rate limiter.
func NewRouter(
	secretHandler *SecretHandler,
	limiter *ratelimit.Limiter,
	logger *zap.Logger,
	sessionKey []byte,
) http.Handler {
	r := chi.NewRouter()

	// Trust X-Forwarded-For / X-Real-IP so throttling keys on the client,
	// not the proxy.
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.SessionAuth(sessionKey))

	r.Route("/api", func(r chi.Router) {
		r.Route("/secrets", func(r chi.Router) {
			r.Post("/", secretHandler.Create)
			r.Get("/", secretHandler.List)
			r.Delete("/{id}", secretHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.WithRateLimit(limiter))
				r.Post("/{id}/reveal", secretHandler.Reveal)
			})
		})

		r.Post("/cron/cleanup", secretHandler.Cleanup)
	})

	return r
}
