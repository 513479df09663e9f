package users

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Togather-Foundation/eventreg/internal/auth"
	"github.com/Togather-Foundation/eventreg/internal/email"
	"github.com/Togather-Foundation/eventreg/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	byID       map[string]User
	byEmail    map[string]string
	registered map[string][]string
	createErr  error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: map[string]User{}, byEmail: map[string]string{}, registered: map[string][]string{}}
}

func (r *stubRepo) CreateUser(_ context.Context, user User) (User, error) {
	if r.createErr != nil {
		return User{}, r.createErr
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return User{}, ErrEmailTaken
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *stubRepo) GetUserByID(_ context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *stubRepo) GetUserByEmail(_ context.Context, email string) (User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *stubRepo) RegisteredEventIDs(_ context.Context, userID string) ([]string, error) {
	if _, ok := r.byID[userID]; !ok {
		return nil, ErrUserNotFound
	}
	return append([]string{}, r.registered[userID]...), nil
}

type sentMail struct {
	kind email.Kind
	to   email.Recipient
}

type recordingSender struct {
	sent   []sentMail
	result bool
}

func (s *recordingSender) Send(_ context.Context, kind email.Kind, to email.Recipient, _ email.Payload) bool {
	s.sent = append(s.sent, sentMail{kind: kind, to: to})
	return s.result
}

func newTestService(t *testing.T) (*Service, *stubRepo, *recordingSender) {
	t.Helper()
	repo := newStubRepo()
	sender := &recordingSender{result: true}
	tokens := auth.NewJWTManager("test-secret", time.Hour, "eventreg-test")
	return NewService(repo, tokens, sender, nil, zerolog.New(io.Discard)), repo, sender
}

func TestRegister_Success(t *testing.T) {
	svc, repo, sender := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterInput{Name: "O", Email: "o@x.com", Password: "pw123456", Role: "organizer"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "O", res.User.Name)
	require.Equal(t, auth.RoleOrganizer, res.User.Role)

	stored := repo.byID[res.User.ID]
	require.NotEqual(t, "pw123456", stored.PasswordHash)
	require.True(t, auth.VerifyPassword("pw123456", stored.PasswordHash))

	require.Len(t, sender.sent, 1)
	require.Equal(t, email.KindRegistration, sender.sent[0].kind)
	require.Equal(t, "o@x.com", sender.sent[0].to.Email)

	user, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, user.ID)
}

func TestRegister_DefaultRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	res, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, auth.RoleAttendee, res.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	svc, repo, _ := newTestService(t)

	tests := []struct {
		name   string
		input  RegisterInput
		fields []string
	}{
		{"missing name", RegisterInput{Email: "a@x.com", Password: "pw"}, []string{"name"}},
		{"missing all", RegisterInput{}, []string{"name", "email", "password"}},
		{"bad role", RegisterInput{Name: "A", Email: "a@x.com", Password: "pw", Role: "admin"}, []string{"role"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			require.Equal(t, tt.fields, got)
		})
	}
	require.Empty(t, repo.byID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "B", Email: "a@x.com", Password: "other"})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Len(t, repo.byID, 1)

	// Case-sensitive: a different casing is a different account.
	_, err = svc.Register(context.Background(), RegisterInput{Name: "C", Email: "A@x.com", Password: "pw"})
	require.NoError(t, err)
}

func TestRegister_NotificationFailureIsNonFatal(t *testing.T) {
	svc, _, sender := newTestService(t)
	sender.result = false

	res, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Len(t, sender.sent, 1)
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.createErr = errors.New("disk on fire")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)
	require.Equal(t, reg.User, res.User)
	require.NotEmpty(t, res.Token)

	_, wrongPassword := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "nope"})
	_, unknownEmail := svc.Login(context.Background(), LoginInput{Email: "b@x.com", Password: "pw123456"})
	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	_, err = svc.Login(context.Background(), LoginInput{Email: "a@x.com"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
}

func TestGetProfile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	reg, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, reg.User, profile.PublicUser)
	require.Empty(t, profile.RegisteredEvents)

	repo.registered[reg.User.ID] = []string{"e1", "e2"}
	profile, err = svc.GetProfile(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"e1", "e2"}, profile.RegisteredEvents)

	_, err = svc.GetProfile(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	// Valid signature, but the subject never registered.
	token, err := auth.NewJWTManager("test-secret", time.Hour, "eventreg-test").Generate("01HZZZZZZZZZZZZZZZZZZZZZZZ", "attendee")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrUserNotFound)
}
