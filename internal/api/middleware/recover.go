package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Togather-Foundation/eventreg/internal/api/problem"
)

// Recover turns a panic in a handler into a 500 problem response and logs the stack.
func Recover(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				LoggerFromContext(r.Context()).Error().
					Str("panic", fmt.Sprint(rec)).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", nil, env)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
