package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/eventreg/internal/api/middleware"
	"github.com/Togather-Foundation/eventreg/internal/api/problem"
	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/domain/ids"
)

// EventService is the event flow used by EventsHandler.
type EventService interface {
	Create(ctx context.Context, actor events.Actor, in events.CreateInput) (events.Event, error)
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id string) (events.Event, error)
	Update(ctx context.Context, actor events.Actor, id string, patch events.Patch) (events.Event, error)
	Delete(ctx context.Context, actor events.Actor, id string) error
	Register(ctx context.Context, actor events.Actor, id string) error
	ListRegistered(ctx context.Context, actor events.Actor) ([]events.Event, error)
}

type EventsHandler struct {
	Service EventService
	Env     string
}

func NewEventsHandler(service EventService, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

type eventResponse struct {
	Message string        `json:"message,omitempty"`
	Event   *events.Event `json:"event,omitempty"`
}

type eventListResponse struct {
	Events []events.Event `json:"events"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{})
		return
	}
	writeJSON(w, http.StatusOK, eventListResponse{Events: list})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), eventID(r))
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{})
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Event: &event})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var input events.CreateInput
	if err := decodeJSON(r, &input, false); err != nil {
		writeBodyError(w, r, h.Env, err)
		return
	}

	event, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{validation: "Title, description, date, and time are required"})
		return
	}
	writeJSON(w, http.StatusCreated, eventResponse{Message: "Event created successfully", Event: &event})
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var patch events.Patch
	if err := decodeJSON(r, &patch, true); err != nil {
		writeBodyError(w, r, h.Env, err)
		return
	}

	event, err := h.Service.Update(r.Context(), actor, eventID(r), patch)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{forbidden: "You are not authorized to update this event"})
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Message: "Event updated successfully", Event: &event})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), actor, eventID(r)); err != nil {
		writeDomainError(w, r, h.Env, err, messages{forbidden: "You are not authorized to delete this event"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.Service.Register(r.Context(), actor, eventID(r)); err != nil {
		writeDomainError(w, r, h.Env, err, messages{})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully registered for the event"})
}

func (h *EventsHandler) ListRegistered(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	list, err := h.Service.ListRegistered(r.Context(), actor)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{})
		return
	}
	writeJSON(w, http.StatusOK, eventListResponse{Events: list})
}

func (h *EventsHandler) actor(w http.ResponseWriter, r *http.Request) (events.Actor, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env,
			problem.WithDetail("Authentication required"))
		return events.Actor{}, false
	}
	return events.Actor{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, true
}

// eventID accepts ULIDs in any case; other values pass through and simply do not match.
func eventID(r *http.Request) string {
	id := pathParam(r, "id")
	if ids.IsULID(id) {
		return ids.Normalize(id)
	}
	return id
}
