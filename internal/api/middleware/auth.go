package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventreg/internal/api/problem"
	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
)

// Authenticator resolves a bearer token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (users.User, error)
}

type contextKeyAuth string

// statusClientClosedRequest records requests abandoned by the client.
const statusClientClosedRequest = 499

const userKey contextKeyAuth = "authUser"

// Authenticate requires a valid bearer token whose subject still exists.
// Every failure is a 401; only the title differs.
func Authenticate(authenticator Authenticator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				writeUnauthorized(w, r, "Authentication required", auth.ErrMissingToken, env)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				writeUnauthorized(w, r, "Authentication required", err, env)
				return
			}

			user, err := authenticator.Authenticate(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, users.ErrUserNotFound):
				writeUnauthorized(w, r, "User not found", err, env)
				return
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrMissingToken):
				writeUnauthorized(w, r, "Invalid or expired token", err, env)
				return
			case errors.Is(err, context.Canceled):
				LoggerFromContext(r.Context()).Debug().Err(err).Msg("client went away during authentication")
				w.WriteHeader(statusClientClosedRequest)
				return
			default:
				problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, env)
				return
			}

			reqLogger := LoggerFromContext(r.Context()).With().Str("user_id", user.ID).Logger()
			ctx := reqLogger.WithContext(ContextWithUser(r.Context(), user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users whose stored role is not allowed.
// It must run after Authenticate.
func RequireRole(env string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, r, "Authentication required", auth.ErrMissingToken, env)
				return
			}
			if !auth.HasRole(string(user.Role), roles...) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", errors.New("role not permitted"), env,
					problem.WithDetail(roleDetail(roles)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by Authenticate.
func UserFromContext(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userKey).(users.User)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, title string, err error, env string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="eventreg"`)
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, title, err, env, problem.WithDetail(title))
}

func roleDetail(roles []auth.Role) string {
	if len(roles) == 1 && roles[0] == auth.RoleOrganizer {
		return "Access denied. Organizer role required"
	}
	return "Access denied. Insufficient role"
}
