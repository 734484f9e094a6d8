package http

import (
	"context"
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"pintapoa/internal/delivery/http/controllers"
	h "pintapoa/internal/delivery/http/helpers"
	"pintapoa/internal/delivery/http/middleware"
	"pintapoa/internal/domain"
)

// RouterDeps holds everything NewRouter wires together.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.SessionVerifier
	Metrics        *middleware.Metrics
	AllowedOrigins []string
	// HealthCheck reports whether the backing store is reachable. Optional.
	HealthCheck func(ctx context.Context) error

	Locations *controllers.LocationController
	Status    *controllers.StatusController
	Auth      *controllers.AuthController
	Pages     *controllers.PagesController
}

// NewRouter initializes the HTTP router with all application routes and wraps
// it with the logging, CORS, route guard and metrics middleware.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(d.Verifier, d.Logger)

	// Public API
	mux.HandleFunc("GET /api/status", d.Status.GetStatus)
	mux.HandleFunc("GET /api/locations", d.Locations.ListLocations)
	mux.HandleFunc("GET /api/locations/latest", d.Locations.GetLatestLocation)
	mux.HandleFunc("GET /api/locations/past", d.Locations.GetPastLocations)
	mux.HandleFunc("GET /api/locations/active", d.Locations.GetActiveLocation)

	// Auth
	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)
	mux.HandleFunc("POST /api/auth/logout", d.Auth.Logout)
	mux.HandleFunc("GET /api/auth/session", requireAuth(d.Auth.Session))
	mux.HandleFunc("GET /api/auth/events", d.Auth.Events)

	// Admin API
	mux.HandleFunc("POST /api/admin/locations", requireAuth(d.Locations.CreateLocation))
	mux.HandleFunc("PUT /api/admin/locations/{id}", requireAuth(d.Locations.UpdateLocation))
	mux.HandleFunc("DELETE /api/admin/locations/{id}", requireAuth(d.Locations.DeleteLocation))
	mux.HandleFunc("PUT /api/admin/status", requireAuth(d.Status.UpdateStatus))

	// Pages; everything under /admin is behind the route guard
	mux.HandleFunc("GET /login", d.Pages.LoginPage)
	mux.HandleFunc("POST /login", d.Pages.LoginSubmit)
	mux.HandleFunc("POST /logout", d.Pages.Logout)
	mux.HandleFunc("GET /admin", d.Pages.AdminPage)
	mux.HandleFunc("POST /admin/status", d.Pages.AdminSetStatus)
	mux.HandleFunc("POST /admin/locations", d.Pages.AdminCreateLocation)
	mux.HandleFunc("POST /admin/locations/{id}", d.Pages.AdminUpdateLocation)
	mux.HandleFunc("POST /admin/locations/{id}/delete", d.Pages.AdminDeleteLocation)

	// Ops
	mux.HandleFunc("GET /healthz", healthz(d.HealthCheck, d.Logger))
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = d.Metrics.Instrument(mux)
	handler = middleware.RouteGuard(d.Verifier, d.Logger, handler)
	handler = middleware.CORS(d.AllowedOrigins, handler)
	return middleware.LoggingMiddleware(d.Logger, handler)
}

func healthz(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "err", err)
				h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeUnavailable, "store unreachable")
				return
			}
		}
		h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
