package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Togather-Foundation/eventreg/internal/api/middleware"
	"github.com/Togather-Foundation/eventreg/internal/api/problem"
	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/domain/users"
	"github.com/Togather-Foundation/eventreg/internal/validation"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	registerFn func(in users.RegisterInput) (users.AuthResult, error)
	loginFn    func(in users.LoginInput) (users.AuthResult, error)
	profileFn  func(userID string) (users.Profile, error)
}

func (s stubAuthService) Register(_ context.Context, in users.RegisterInput) (users.AuthResult, error) {
	return s.registerFn(in)
}

func (s stubAuthService) Login(_ context.Context, in users.LoginInput) (users.AuthResult, error) {
	return s.loginFn(in)
}

func (s stubAuthService) GetProfile(_ context.Context, userID string) (users.Profile, error) {
	return s.profileFn(userID)
}

func decodeProblem(t *testing.T, res *httptest.ResponseRecorder) problem.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	var body problem.ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestAuthHandlerRegisterSuccess(t *testing.T) {
	var got users.RegisterInput
	svc := stubAuthService{registerFn: func(in users.RegisterInput) (users.AuthResult, error) {
		got = in
		return users.AuthResult{Token: "tok", User: users.PublicUser{ID: "u1", Name: in.Name, Email: in.Email, Role: auth.RoleOrganizer}}, nil
	}}
	h := NewAuthHandler(svc, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"name":"O","email":"o@x.com","password":"pw123456","role":"organizer"}`))
	res := httptest.NewRecorder()
	h.Register(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Equal(t, "organizer", got.Role)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "User registered successfully", body["message"])
	require.Equal(t, "tok", body["token"])
	user := body["user"].(map[string]any)
	require.Equal(t, "u1", user["id"])
	require.NotContains(t, user, "passwordHash")
}

func TestAuthHandlerRegisterErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		detail string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, "Request body must be a JSON object"},
		{"empty body", ``, nil, http.StatusBadRequest, "Request body must be a JSON object"},
		{"missing fields", `{}`, validation.Required("name", "email", "password"), http.StatusBadRequest, "Name, email, and password are required"},
		{"bad role", `{}`, &validation.Error{Fields: []validation.FieldError{{Field: "role", Message: "must be one of: organizer, attendee"}}}, http.StatusBadRequest, "role must be one of: organizer, attendee"},
		{"duplicate email", `{}`, users.ErrEmailTaken, http.StatusBadRequest, "User with this email already exists"},
		{"unexpected", `{}`, errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := stubAuthService{registerFn: func(users.RegisterInput) (users.AuthResult, error) {
				return users.AuthResult{}, tt.err
			}}
			h := NewAuthHandler(svc, "test")
			res := httptest.NewRecorder()
			h.Register(res, httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(tt.body)))

			require.Equal(t, tt.status, res.Code)
			require.Equal(t, tt.detail, decodeProblem(t, res).Detail)
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := stubAuthService{loginFn: func(in users.LoginInput) (users.AuthResult, error) {
		if in.Password != "right" {
			return users.AuthResult{}, users.ErrInvalidCredentials
		}
		return users.AuthResult{Token: "tok", User: users.PublicUser{ID: "u1"}}, nil
	}}
	h := NewAuthHandler(svc, "test")

	res := httptest.NewRecorder()
	h.Login(res, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"right"}`)))
	require.Equal(t, http.StatusOK, res.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "Login successful", body["message"])

	res = httptest.NewRecorder()
	h.Login(res, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"a@x.com","password":"wrong"}`)))
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "Invalid credentials", decodeProblem(t, res).Detail)
}

func TestAuthHandlerProfile(t *testing.T) {
	svc := stubAuthService{profileFn: func(userID string) (users.Profile, error) {
		return users.Profile{PublicUser: users.PublicUser{ID: userID, Name: "A"}, RegisteredEvents: []string{"e1"}}, nil
	}}
	h := NewAuthHandler(svc, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), users.User{ID: "u1"}))
	res := httptest.NewRecorder()
	h.Profile(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "u1", body.User["id"])
	require.Equal(t, []any{"e1"}, body.User["registeredEvents"])

	res = httptest.NewRecorder()
	h.Profile(res, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
