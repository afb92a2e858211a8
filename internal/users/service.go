// Package users implements account management: uniqueness, credential
// validation, relation loading and profile attachment on top of the storage
// ports.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/all-in-users/internal/auth"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
)

// Service orchestrates the user and profile repositories.
type Service struct {
	users     storage.UserRepository
	profiles  storage.ProfileRepository
	passwords auth.PasswordScheme
	tx        storage.Transactor
}

// Option customizes a Service.
type Option func(*Service)

// WithTransactor makes multi-step writes atomic.
func WithTransactor(tx storage.Transactor) Option {
	return func(s *Service) { s.tx = tx }
}

// NewService constructs the service. A nil scheme falls back to plain comparison.
func NewService(users storage.UserRepository, profiles storage.ProfileRepository, passwords auth.PasswordScheme, opts ...Option) *Service {
	if passwords == nil {
		passwords = auth.PlainScheme{}
	}
	s := &Service{users: users, profiles: profiles, passwords: passwords}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns every user with posts and profile loaded.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	list, err := s.users.List(ctx, storage.AllRelations)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if list == nil {
		list = []models.User{}
	}
	return list, nil
}

// GetUser returns the user with posts and profile loaded.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id, storage.AllRelations)
	if err != nil {
		return nil, s.lookupErr(err, "find user")
	}
	return user, nil
}

// CreateUser inserts a user unless the username is already taken.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.usernameExists(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}

	password, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(in.Username, password, in.Roles, in.AuthStrategy)
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, conflict(ErrUserExists, err)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return saved, nil
}

// EnsureUser creates the account unless the username is already held and
// reports whether a new user was inserted.
func (s *Service) EnsureUser(ctx context.Context, in CreateUserInput) (bool, error) {
	_, err := s.CreateUser(ctx, in)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserExists):
		return false, nil
	}
	return false, err
}

// UpdateUser applies the present fields of in to the user.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id, storage.Relations{})
	if err != nil {
		return nil, s.lookupErr(err, "find user")
	}

	if in.Username != nil && *in.Username != user.Username {
		holder, err := s.users.FindByUsername(ctx, *in.Username)
		switch {
		case err == nil && holder.ID != user.ID:
			return nil, ErrUsernameTaken
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("find user by username: %w", err)
		}
		user.Username = *in.Username
	}
	if in.Password != nil {
		password, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = password
	}

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, conflict(ErrUsernameTaken, err)
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return saved, nil
}

// DeleteUser removes the user and reports the affected row count.
func (s *Service) DeleteUser(ctx context.Context, id int64) (storage.DeleteResult, error) {
	res, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return storage.DeleteResult{}, fmt.Errorf("delete user: %w", err)
	}
	if res.Affected == 0 {
		return storage.DeleteResult{}, ErrNotFound
	}
	return res, nil
}

// ValidateCredentials returns the user when the password matches. Unknown
// users and wrong passwords produce the same error.
func (s *Service) ValidateCredentials(ctx context.Context, c Credentials) (*models.User, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	if !s.passwords.Verify(c.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateProfile persists a profile and attaches it to the user. A user that
// already has a profile is rejected.
func (s *Service) CreateProfile(ctx context.Context, userID int64, in CreateProfileInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out *models.User
	err := s.withinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID, storage.Relations{Profile: true})
		if err != nil {
			return s.lookupErr(err, "find user")
		}
		if user.HasProfile() {
			return ErrProfileExists
		}

		profile, err := s.profiles.Save(ctx, models.NewProfile(in.Firstname, in.Lastname, in.Age))
		if err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		user.AttachProfile(profile)

		saved, err := s.users.Save(ctx, user)
		if err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		out = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) usernameExists(ctx context.Context, username string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("find user by username: %w", err)
	}
}

func (s *Service) lookupErr(err error, op string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTx(ctx, fn)
}
