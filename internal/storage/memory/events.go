package memory

import (
	"context"
	"slices"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
)

func (s *Store) CreateEvent(ctx context.Context, event events.Event) (_ events.Event, err error) {
	defer func(start time.Time) { metrics.RecordOperation("create_event", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event.Participants = nil
	s.events[event.ID] = event
	s.eventOrder = append(s.eventOrder, event.ID)
	return s.viewLocked(event), nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (events.Event, error) {
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return s.viewLocked(event), nil
}

func (s *Store) ListEvents(ctx context.Context) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]events.Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		out = append(out, s.viewLocked(s.events[id]))
	}
	return out, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, patch events.Patch) (_ events.Event, err error) {
	defer func(start time.Time) { metrics.RecordOperation("update_event", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	event = patch.Apply(event)
	s.events[id] = event
	return s.viewLocked(event), nil
}

// DeleteEvent removes the event and returns it. Registration rows are kept.
func (s *Store) DeleteEvent(ctx context.Context, id string) (_ events.Event, err error) {
	defer func(start time.Time) { metrics.RecordOperation("delete_event", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	removed := s.viewLocked(event)
	delete(s.events, id)
	if i := slices.Index(s.eventOrder, id); i >= 0 {
		s.eventOrder = slices.Delete(s.eventOrder, i, i+1)
	}
	return removed, nil
}

// viewLocked attaches the derived participant list. Callers hold s.mu.
func (s *Store) viewLocked(event events.Event) events.Event {
	participants := make([]string, len(s.participants[event.ID]))
	copy(participants, s.participants[event.ID])
	event.Participants = participants
	return event
}
