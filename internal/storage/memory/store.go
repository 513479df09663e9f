// Package memory holds users, events and registrations for the lifetime of the process.
package memory

import (
	"sync"

	"github.com/Togather-Foundation/eventreg/internal/domain/events"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
)

// Store implements users.Repository and events.Repository behind one lock.
// Every method returns copies; callers never alias the store's slices.
type Store struct {
	mu sync.RWMutex

	users        []users.User
	userByID     map[string]int
	userByEmail  map[string]int
	events       map[string]events.Event
	eventOrder   []string
	registration []registration
	registered   map[registration]struct{}
	// participants indexes registration by event, in registration order.
	participants map[string][]string
}

// registration is one (user, event) pair. Participants and registered event
// lists are both derived from the ordered slice of these.
type registration struct {
	UserID  string
	EventID string
}

var (
	_ users.Repository     = (*Store)(nil)
	_ events.Repository    = (*Store)(nil)
	_ metrics.CountsSource = (*Store)(nil)
)

func New() *Store {
	return &Store{
		userByID:     make(map[string]int),
		userByEmail:  make(map[string]int),
		events:       make(map[string]events.Event),
		registered:   make(map[registration]struct{}),
		participants: make(map[string][]string),
	}
}

// Counts reports current sizes for the metrics collector.
func (s *Store) Counts() metrics.StoreCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.StoreCounts{
		Users:         len(s.users),
		Events:        len(s.events),
		Registrations: len(s.registration),
	}
}
