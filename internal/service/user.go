package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mywallet/mywallet/internal/auth"
	"github.com/mywallet/mywallet/internal/metrics"
	"github.com/mywallet/mywallet/internal/model"
	"github.com/mywallet/mywallet/internal/repository"
)

const (
	maxNameLength     = 100
	maxEmailLength    = 254
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

// UserStore persists user identity records. CreateUser must reject a
// duplicate email with repository.ErrEmailExists.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// UserService handles registration and sign-in.
type UserService struct {
	users    UserStore
	sessions *SessionManager
	hasher   auth.Hasher
	metrics  metrics.Recorder
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, sessions *SessionManager, hasher auth.Hasher, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if hasher == nil {
		hasher = auth.Argon2Hasher{}
	}
	return &UserService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		metrics:  recorder,
		now:      time.Now,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
	// Mistyped names fields whose request value was not a string.
	Mistyped []string
}

// Register validates the input, checks email uniqueness, hashes the password
// and stores the new user. Nothing is written unless every check passes.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := normalizeEmail(input.Email)

	v := &validator{}
	if v.text("name", input.Name, input.Mistyped) {
		v.maxLen("name", strings.TrimSpace(input.Name), maxNameLength)
	}
	if v.text("email", email, input.Mistyped) {
		if len(email) > maxEmailLength {
			v.add("email", fmt.Sprintf("%q length must be less than or equal to %d characters long", "email", maxEmailLength))
		} else if !validEmail(email) {
			v.add("email", `"email" must be a valid email`)
		}
	}
	if v.text("password", input.Password, input.Mistyped) {
		v.maxLen("password", input.Password, maxPasswordLength)
	}
	v.text("passwordConfirm", input.PasswordConfirm, input.Mistyped)
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if input.Password != input.PasswordConfirm {
		return nil, &ValidationError{
			Fields: []FieldError{{Field: "passwordConfirm", Message: `"passwordConfirm" must match "password"`}},
			cause:  ErrPasswordMismatch,
		}
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// Authenticate returns the user whose email and password match.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing work as a real check
			_, _ = s.hasher.Verify(password, s.dummy())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// SignInInput defines input for signing in.
type SignInInput struct {
	Email    string
	Password string
	Mistyped []string
}

// SignInResult is returned on successful sign-in.
type SignInResult struct {
	User  *model.User
	Token string
}

// SignIn validates the input, authenticates the user and issues a session
// token that supersedes any earlier one.
func (s *UserService) SignIn(ctx context.Context, input SignInInput) (*SignInResult, error) {
	v := &validator{}
	v.text("email", input.Email, input.Mistyped)
	v.text("password", input.Password, input.Mistyped)
	if err := v.err(); err != nil {
		return nil, err
	}

	user, err := s.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.IncSignIn(metrics.StatusFailed)
		}
		return nil, err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncSignIn(metrics.StatusSuccess)
	return &SignInResult{User: user, Token: token}, nil
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// dummy returns a hash of a random-looking value, computed once, used to
// equalize timing for unknown emails.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(ulid.Make().String())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
