package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/audit"
	"github.com/Togather-Foundation/eventreg/internal/domain/ids"
	"github.com/Togather-Foundation/eventreg/internal/email"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
	"github.com/Togather-Foundation/eventreg/internal/telemetry"
	"github.com/Togather-Foundation/eventreg/internal/validation"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Service orchestrates the event catalog and participant registration.
type Service struct {
	repo        Repository
	notifier    email.Sender
	auditLogger *audit.Logger
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a new event service. notifier and auditLogger may be nil.
func NewService(repo Repository, notifier email.Sender, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		notifier:    notifier,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "events").Logger(),
		now:         time.Now,
	}
}

// Create stores a new event owned by the caller. Role gating happens before this runs.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (event Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "events.create", attribute.String("user.id", actor.ID))
	defer func() {
		telemetry.EndSpan(span, err)
		record("create", err)
	}()

	if err := validation.Struct(in); err != nil {
		return Event{}, err
	}
	id, err := ids.NewULID()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	now := s.now().UTC()
	event, err = s.repo.CreateEvent(ctx, Event{
		ID:           id,
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Time:         in.Time,
		OrganizerID:  actor.ID,
		Participants: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	span.SetAttributes(attribute.String("event.id", event.ID))

	s.auditLogger.LogSuccess("event.created", actor.ID, "event", event.ID, nil)
	s.logger.Info().Str("event_id", event.ID).Str("organizer_id", actor.ID).Msg("event created")
	return event, nil
}

// List returns every event in creation order.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	list, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return list, nil
}

// Get returns one event or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

// Update applies patch to an event the caller owns.
func (s *Service) Update(ctx context.Context, actor Actor, id string, patch Patch) (event Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "events.update", attribute.String("event.id", id), attribute.String("user.id", actor.ID))
	defer func() {
		telemetry.EndSpan(span, err)
		record("update", err)
	}()

	if err := s.authorizeOwner(ctx, actor, id, "event.updated"); err != nil {
		return Event{}, err
	}

	patch.UpdatedAt = s.now().UTC()
	event, err = s.repo.UpdateEvent(ctx, id, patch)
	if err != nil {
		return Event{}, err
	}

	s.auditLogger.LogSuccess("event.updated", actor.ID, "event", id, map[string]string{"fields": strings.Join(patch.Fields(), ",")})
	return event, nil
}

// Delete removes an event the caller owns.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "events.delete", attribute.String("event.id", id), attribute.String("user.id", actor.ID))
	defer func() {
		telemetry.EndSpan(span, err)
		record("delete", err)
	}()

	if err := s.authorizeOwner(ctx, actor, id, "event.deleted"); err != nil {
		return err
	}
	if _, err := s.repo.DeleteEvent(ctx, id); err != nil {
		return err
	}

	s.auditLogger.LogSuccess("event.deleted", actor.ID, "event", id, nil)
	s.logger.Info().Str("event_id", id).Str("organizer_id", actor.ID).Msg("event deleted")
	return nil
}

// Register signs the caller up for an event and sends a confirmation.
// Notification failure never undoes the registration.
func (s *Service) Register(ctx context.Context, actor Actor, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "events.register", attribute.String("event.id", id), attribute.String("user.id", actor.ID))
	defer func() {
		telemetry.EndSpan(span, err)
		record("register", err)
	}()

	event, err := s.repo.Register(ctx, id, actor.ID)
	if err != nil {
		return err
	}

	s.auditLogger.LogSuccess("event.registration", actor.ID, "event", event.ID, nil)

	if s.notifier != nil {
		ok := s.notifier.Send(ctx, email.KindEventRegistration,
			email.Recipient{Name: actor.Name, Email: actor.Email},
			email.Payload{Event: &email.EventSummary{ID: event.ID, Title: event.Title, Date: event.Date, Time: event.Time}})
		if !ok {
			s.logger.Warn().Str("event_id", event.ID).Str("user_id", actor.ID).Msg("registration confirmation not delivered")
		}
	}
	return nil
}

// ListRegistered returns the events the caller registered for that still exist.
func (s *Service) ListRegistered(ctx context.Context, actor Actor) ([]Event, error) {
	list, err := s.repo.EventsForUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	return list, nil
}

func (s *Service) authorizeOwner(ctx context.Context, actor Actor, id, action string) error {
	current, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if current.OrganizerID != actor.ID {
		s.auditLogger.LogFailure(action, actor.ID, "event", id, map[string]string{"reason": "not owner"})
		return ErrForbidden
	}
	return nil
}

func record(operation string, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case errors.Is(err, ErrForbidden):
		result = "forbidden"
	case errors.Is(err, ErrAlreadyRegistered):
		result = "conflict"
	default:
		var verr *validation.Error
		if errors.As(err, &verr) {
			result = "invalid"
		} else {
			result = "error"
		}
	}
	metrics.EventOperationsTotal.WithLabelValues(operation, result).Inc()
}
