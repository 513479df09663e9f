package users

import (
	"context"
	"errors"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/auth"
)

// Error types for user domain operations
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a registered account. PasswordHash never leaves the service boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         auth.Role
	CreatedAt    time.Time
}

// PublicUser is the outward view of a user.
type PublicUser struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// Profile is the authenticated user's own view, including registrations.
type Profile struct {
	PublicUser
	RegisteredEvents []string `json:"registeredEvents"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Repository persists users. Email uniqueness is enforced by CreateUser.
type Repository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	RegisteredEventIDs(ctx context.Context, userID string) ([]string, error)
}

// TokenIssuer mints and verifies bearer tokens.
type TokenIssuer interface {
	Generate(subject, role string) (string, error)
	Validate(token string) (*auth.Claims, error)
}

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=organizer attendee"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
