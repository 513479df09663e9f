package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/audit"
	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/domain/ids"
	"github.com/Togather-Foundation/eventreg/internal/email"
	"github.com/Togather-Foundation/eventreg/internal/metrics"
	"github.com/Togather-Foundation/eventreg/internal/telemetry"
	"github.com/Togather-Foundation/eventreg/internal/validation"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Service handles signup, login and token resolution.
type Service struct {
	repo        Repository
	tokens      TokenIssuer
	notifier    email.Sender
	auditLogger *audit.Logger
	logger      zerolog.Logger
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new user service instance. notifier and auditLogger may be nil.
func NewService(
	repo Repository,
	tokens TokenIssuer,
	notifier email.Sender,
	auditLogger *audit.Logger,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		notifier:    notifier,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "users").Logger(),
		now:         time.Now,
	}
}

// Register creates an account, sends the welcome notification and issues a token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (result AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "users.register")
	defer func() {
		telemetry.EndSpan(span, err)
		metrics.AuthAttemptsTotal.WithLabelValues("register", outcome(err)).Inc()
	}()

	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return AuthResult{}, &validation.Error{Fields: []validation.FieldError{{Field: "role", Message: "must be one of: organizer, attendee"}}}
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := ids.NewULID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate user id: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, User{
		ID:           id,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return AuthResult{}, err
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID), attribute.String("user.role", string(user.Role)))

	s.auditLogger.LogSuccess("user.register", user.ID, "user", user.ID, map[string]string{"role": string(user.Role)})

	if s.notifier != nil {
		if ok := s.notifier.Send(ctx, email.KindRegistration, email.Recipient{Name: user.Name, Email: user.Email}, email.Payload{}); !ok {
			s.logger.Warn().Str("user_id", user.ID).Msg("registration email not delivered")
		}
	}

	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return AuthResult{Token: token, User: user.Public()}, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, in LoginInput) (result AuthResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "users.login")
	defer func() {
		telemetry.EndSpan(span, err)
		metrics.AuthAttemptsTotal.WithLabelValues("login", outcome(err)).Inc()
	}()

	if err := validation.Struct(in); err != nil {
		return AuthResult{}, err
	}

	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, fmt.Errorf("lookup user: %w", err)
		}
		// Equalize timing with the wrong-password path.
		auth.VerifyPassword(in.Password, s.timingHash())
		return AuthResult{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(in.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Debug().Str("user_id", user.ID).Msg("user logged in")
	return AuthResult{Token: token, User: user.Public()}, nil
}

// GetProfile returns the user's public view with registered event ids.
func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	registered, err := s.repo.RegisteredEventIDs(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("load registrations: %w", err)
	}
	return Profile{PublicUser: user.Public(), RegisteredEvents: registered}, nil
}

// Authenticate resolves a bearer token to an existing user.
// Token errors are returned from the auth package; a vanished subject yields ErrUserNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.GetUserByID(ctx, claims.UserID())
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("timing-equalization-placeholder")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
