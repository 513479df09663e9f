package memory

import (
	"context"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
)

// Register adds the (user, event) pair in one critical section.
func (s *Store) Register(ctx context.Context, eventID, userID string) (_ events.Event, err error) {
	defer func(start time.Time) { metrics.RecordOperation("register", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	key := registration{UserID: userID, EventID: eventID}
	if _, exists := s.registered[key]; exists {
		return events.Event{}, events.ErrAlreadyRegistered
	}
	s.insertLocked(key)
	return s.viewLocked(event), nil
}

// AddParticipant is the idempotent form of Register: an existing pair is not an error.
func (s *Store) AddParticipant(ctx context.Context, eventID, userID string) (events.Event, error) {
	if err := ctx.Err(); err != nil {
		return events.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	key := registration{UserID: userID, EventID: eventID}
	if _, exists := s.registered[key]; !exists {
		s.insertLocked(key)
	}
	return s.viewLocked(event), nil
}

func (s *Store) EventsForUser(ctx context.Context, userID string) ([]events.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []events.Event{}
	for _, r := range s.registration {
		if r.UserID != userID {
			continue
		}
		if event, ok := s.events[r.EventID]; ok {
			out = append(out, s.viewLocked(event))
		}
	}
	return out, nil
}

func (s *Store) insertLocked(key registration) {
	s.registration = append(s.registration, key)
	s.registered[key] = struct{}{}
	s.participants[key.EventID] = append(s.participants[key.EventID], key.UserID)
}
