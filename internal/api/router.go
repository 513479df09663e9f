package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/Togather-Foundation/eventreg/internal/api/handlers"
	"github.com/Togather-Foundation/eventreg/internal/api/middleware"
	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/config"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// UserService is the account flow plus bearer token resolution.
type UserService interface {
	handlers.AuthService
	Authenticate(ctx context.Context, token string) (users.User, error)
}

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Config    config.Config
	Logger    zerolog.Logger
	Users     UserService
	Events    handlers.EventService
	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the HTTP handler for the whole API, middleware included.
func NewRouter(deps Dependencies) http.Handler {
	env := deps.Config.Environment

	authHandler := handlers.NewAuthHandler(deps.Users, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)

	authenticated := middleware.Authenticate(deps.Users, env)
	organizer := func(h http.HandlerFunc) http.Handler {
		return authenticated(middleware.RequireRole(env, auth.RoleOrganizer)(h))
	}
	signedIn := func(h http.HandlerFunc) http.Handler {
		return authenticated(h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", handlers.Healthz())
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /api/register", http.HandlerFunc(authHandler.Register))
	mux.Handle("POST /api/login", http.HandlerFunc(authHandler.Login))
	mux.Handle("GET /api/profile", signedIn(authHandler.Profile))

	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: organizer(eventsHandler.Create),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    organizer(eventsHandler.Update),
		http.MethodDelete: organizer(eventsHandler.Delete),
	}))
	mux.Handle("POST /api/events/{id}/register", signedIn(eventsHandler.Register))
	mux.Handle("GET /api/user/events", signedIn(eventsHandler.ListRegistered))

	var handler http.Handler = metrics.HTTPMiddleware(mux)
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.Recover(env)(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.CORS(deps.Config.CORS, deps.Logger)(handler)
	return handler
}

// methodMux dispatches one path to per-method handlers and answers 405 otherwise.
// GET also serves HEAD.
func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		if handler, ok := handlers[http.MethodGet]; ok && r.Method == http.MethodHead {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
