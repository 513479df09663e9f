package handlers

import (
	"errors"
	"net/http"

	"github.com/Togather-Foundation/eventreg/internal/api/problem"
	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/validation"
)

// messages holds the client-facing wording for one operation's failures.
type messages struct {
	validation string
	forbidden  string
}

// writeDomainError maps a service error onto a problem response.
// Unrecognized errors become a generic 500 and are only logged.
func writeDomainError(w http.ResponseWriter, r *http.Request, env string, err error, msg messages) {
	var verr *validation.Error
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		detail := verr.Error()
		if msg.validation != "" && onlyMissing(verr) {
			detail = msg.validation
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Validation failed", err, env,
			problem.WithDetail(detail), problem.WithErrors(verr.FieldMap()))
	case errors.As(err, &maxErr):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge, "Payload too large", err, env,
			problem.WithDetail("Request body is too large"))
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Conflict", err, env,
			problem.WithDetail("User with this email already exists"))
	case errors.Is(err, events.ErrAlreadyRegistered):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeConflict, "Conflict", err, env,
			problem.WithDetail("You are already registered for this event"))
	case errors.Is(err, users.ErrInvalidCredentials):
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
			problem.WithDetail("Invalid credentials"))
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, env,
			problem.WithDetail(msg.forbidden))
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env,
			problem.WithDetail("Event not found"))
	case errors.Is(err, users.ErrUserNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env,
			problem.WithDetail("User not found"))
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Internal server error", err, env)
	}
}

// writeBodyError reports an unreadable request body.
func writeBodyError(w http.ResponseWriter, r *http.Request, env string, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeDomainError(w, r, env, err, messages{})
		return
	}
	problem.Write(w, r, http.StatusBadRequest, problem.TypeBadRequest, "Invalid request body", err, env,
		problem.WithDetail("Request body must be a JSON object"))
}

func onlyMissing(verr *validation.Error) bool {
	for _, f := range verr.Fields {
		if f.Message != "is required" {
			return false
		}
	}
	return len(verr.Fields) > 0
}
