package memory

import (
	"context"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
)

func (s *Store) CreateUser(ctx context.Context, user users.User) (_ users.User, err error) {
	defer func(start time.Time) { metrics.RecordOperation("create_user", start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userByEmail[user.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	s.users = append(s.users, user)
	idx := len(s.users) - 1
	s.userByID[user.ID] = idx
	s.userByEmail[user.Email] = idx
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.userByID[id]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return s.users[idx], nil
}

// GetUserByEmail matches the address exactly; case differences are distinct users.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (users.User, error) {
	if err := ctx.Err(); err != nil {
		return users.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.userByEmail[email]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return s.users[idx], nil
}

// RegisteredEventIDs lists every event the user registered for, including deleted ones.
func (s *Store) RegisteredEventIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.userByID[userID]; !ok {
		return nil, users.ErrUserNotFound
	}
	out := []string{}
	for _, r := range s.registration {
		if r.UserID == userID {
			out = append(out, r.EventID)
		}
	}
	return out, nil
}
