package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/internal/apperr"
	"github.com/pageza/recipebox/internal/hashing"
	"github.com/pageza/recipebox/internal/metrics"
	"github.com/pageza/recipebox/internal/models"
	"github.com/pageza/recipebox/internal/repository"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string `validate:"required,max=100" label:"Username"`
	Email    string `validate:"required,max=255" label:"Email"`
	Password string `validate:"required,maxbytes=72" label:"Password"`
}

// AuthOptions tune registration.
type AuthOptions struct {
	// RejectDuplicateEmails turns a second registration with the same email
	// into a validation failure. When false the account is created and a
	// warning logged; login then resolves to the earliest account.
	RejectDuplicateEmails bool
}

type AuthService struct {
	store   *repository.Store
	hasher  hashing.Hasher
	opts    AuthOptions
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewAuthService(store *repository.Store, hasher hashing.Hasher, opts AuthOptions, log *zap.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		store:   store,
		hasher:  hasher,
		opts:    opts,
		log:     log.Named("auth"),
		metrics: m,
	}
}

// Register creates an account. The password is stored only as a hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		s.metrics.AuthEvent("register", "invalid")
		return nil, err
	}

	existing, err := s.store.Users.Count(ctx, "email", in.Email)
	if err != nil {
		return nil, apperr.Database("check email", err)
	}
	if existing > 0 {
		if s.opts.RejectDuplicateEmails {
			s.metrics.AuthEvent("register", "duplicate")
			return nil, apperr.Validation("Email already registered.")
		}
		s.log.Warn("registering duplicate email", zap.String("email", in.Email), zap.Int64("existing", existing))
	}

	hash, err := s.hasher.Make(in.Password)
	if err != nil {
		return nil, apperr.From(err)
	}

	user := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash}
	if err := s.store.Users.Create(ctx, user); err != nil {
		s.log.Error("failed to create user", zap.Error(err))
		return nil, apperr.Database("create user", err)
	}

	s.metrics.AuthEvent("register", "success")
	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate returns the earliest account registered with email if
// password matches it. Every failure is the same InvalidCredentials error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.metrics.AuthEvent("login", "failure")
		return nil, apperr.InvalidCredentials()
	}

	user, err := s.store.Users.FirstWhere(ctx, "email", email)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.AuthEvent("login", "failure")
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, apperr.Database("find user", err)
	}

	ok, err := s.hasher.Check(password, user.PasswordHash)
	if err != nil {
		s.log.Error("stored password hash is unreadable", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	if !ok {
		s.metrics.AuthEvent("login", "failure")
		return nil, apperr.InvalidCredentials()
	}

	s.metrics.AuthEvent("login", "success")
	return user, nil
}

// GetUser returns NotFound when id no longer resolves.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, apperr.Database("get user", err)
	}
	return user, nil
}
