// Package httptransport assembles the chi router: the shared middleware
// stack, the auth middleware and the route guards. Handlers live with their
// domain packages.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/admin"
	authhandler "inkwell/internal/auth/handler"
	"inkwell/internal/platform/health"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/middleware/auth"
	"inkwell/pkg/platform/middleware/metadata"
	"inkwell/pkg/platform/middleware/request"
	"inkwell/pkg/platform/middleware/requesttime"
)

// maxBodyBytes caps JSON request bodies on /api routes.
const maxBodyBytes = 1 << 20

// Config carries the already-built collaborators the router mounts.
type Config struct {
	Logger     *slog.Logger
	Validator  auth.TokenValidator
	CookieName string
	Metadata   *metadata.Middleware
	Metrics    *request.Metrics

	Auth   *authhandler.Handler
	Admin  *admin.Handler
	Health *health.Handler

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	md := cfg.Metadata
	if md == nil {
		md = metadata.NewMiddleware(metadata.Config{})
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(request.SecurityHeaders)
	r.Use(requesttime.Middleware)
	r.Use(md.Handler)
	r.Use(request.LatencyMiddleware(cfg.Metrics, routePattern))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(maxBodyBytes))
		r.Use(auth.Authenticate(cfg.Validator, cfg.CookieName, logger))

		cfg.Auth.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(logger))
			cfg.Auth.RegisterAuthenticated(r)
		})

		if cfg.Admin != nil {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(id.RoleAdmin, logger))
				cfg.Admin.Register(r)
			})
		}
	})

	return r
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
