package handlers

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/eventreg/internal/api/middleware"
	"github.com/Togather-Foundation/eventreg/internal/api/problem"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
)

// AuthService is the account flow used by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in users.RegisterInput) (users.AuthResult, error)
	Login(ctx context.Context, in users.LoginInput) (users.AuthResult, error)
	GetProfile(ctx context.Context, userID string) (users.Profile, error)
}

type AuthHandler struct {
	Service AuthService
	Env     string
}

func NewAuthHandler(service AuthService, env string) *AuthHandler {
	return &AuthHandler{Service: service, Env: env}
}

type authResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    users.PublicUser `json:"user"`
}

type profileResponse struct {
	User users.Profile `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input users.RegisterInput
	if err := decodeJSON(r, &input, false); err != nil {
		writeBodyError(w, r, h.Env, err)
		return
	}

	result, err := h.Service.Register(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{validation: "Name, email, and password are required"})
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input users.LoginInput
	if err := decodeJSON(r, &input, false); err != nil {
		writeBodyError(w, r, h.Env, err)
		return
	}

	result, err := h.Service.Login(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{validation: "Email and password are required"})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.Env,
			problem.WithDetail("Authentication required"))
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, r, h.Env, err, messages{})
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{User: profile})
}
