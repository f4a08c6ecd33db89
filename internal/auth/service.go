package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ayush/auth-server/internal/models"
)

// UserStore defines the interface for user persistence. Implementations
// must enforce email uniqueness on Insert and report a violation as
// models.ErrDuplicateEmail.
type UserStore interface {
	// FindByEmail returns (nil, nil) when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Insert persists u and returns it with the store-assigned ID.
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	// DeleteByEmail returns the number of users removed.
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

// Service implements the credential lifecycle. It keeps no per-call state
// and is safe for concurrent use.
type Service struct {
	users     UserStore
	hashes    *HashPool
	validator *Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(users UserStore, hashes *HashPool, validator *Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:     users,
		hashes:    hashes,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register validates req, hashes the password and inserts a new user.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.SanitizedUser, error) {
	reg, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, reg.Email)
	if err != nil {
		return nil, storeError("find", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	// Past this point a disconnecting caller must not abort the hash or
	// the insert half way.
	ctx = context.WithoutCancel(ctx)

	hash, err := s.hashes.Hash(ctx, reg.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err := s.users.Insert(ctx, &models.User{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PasswordHash: hash,
		UserType:     reg.UserType,
		Tags:         reg.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, storeError("insert", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "user_type", user.UserType)
	return user.Sanitize(), nil
}

// Login verifies the password of the user identified by req.Username.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.SanitizedUser, error) {
	user, err := s.users.FindByEmail(ctx, req.Username)
	if err != nil {
		return nil, storeError("find", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	ok, err := s.hashes.Verify(ctx, req.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPasswordMismatch
	}
	return user.Sanitize(), nil
}

// Find returns the user with the given email.
func (s *Service) Find(ctx context.Context, email string) (*models.SanitizedUser, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError("find", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user.Sanitize(), nil
}

// Delete removes the user with the given email.
func (s *Service) Delete(ctx context.Context, email string) error {
	n, err := s.users.DeleteByEmail(context.WithoutCancel(ctx), email)
	if err != nil {
		return storeError("delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "user deleted")
	return nil
}

// Tags lists the tags accepted at registration.
func (s *Service) Tags() []models.Tag {
	return s.validator.tags.List()
}
