package events

import (
	"context"
	"errors"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/auth"
)

var (
	ErrNotFound          = errors.New("event not found")
	ErrForbidden         = errors.New("not authorized to modify this event")
	ErrAlreadyRegistered = errors.New("already registered for this event")
)

// Event is a scheduled gathering owned by the organizer who created it.
// Date and Time are stored as supplied by the client.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	OrganizerID  string    `json:"organizerId"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateInput is the payload for a new event.
type CreateInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
}

// Patch carries a partial update. Empty fields keep the existing value.
type Patch struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	UpdatedAt   time.Time `json:"-"`
}

// Apply merges the non-empty fields of p over e.
func (p Patch) Apply(e Event) Event {
	if p.Title != "" {
		e.Title = p.Title
	}
	if p.Description != "" {
		e.Description = p.Description
	}
	if p.Date != "" {
		e.Date = p.Date
	}
	if p.Time != "" {
		e.Time = p.Time
	}
	if !p.UpdatedAt.IsZero() {
		e.UpdatedAt = p.UpdatedAt
	}
	return e
}

// Fields lists the names of the fields p would change.
func (p Patch) Fields() []string {
	var fields []string
	if p.Title != "" {
		fields = append(fields, "title")
	}
	if p.Description != "" {
		fields = append(fields, "description")
	}
	if p.Date != "" {
		fields = append(fields, "date")
	}
	if p.Time != "" {
		fields = append(fields, "time")
	}
	return fields
}

// Actor is the authenticated caller of an event operation.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  auth.Role
}

// Repository stores events and the registration relation between users and events.
type Repository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, id string, patch Patch) (Event, error)
	DeleteEvent(ctx context.Context, id string) (Event, error)
	// Register atomically adds the pair, failing with ErrNotFound or ErrAlreadyRegistered.
	Register(ctx context.Context, eventID, userID string) (Event, error)
	// EventsForUser resolves the user's registrations in order, skipping deleted events.
	EventsForUser(ctx context.Context, userID string) ([]Event, error)
}
