package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/all-in-users/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Relations selects which user relations a query loads.
type Relations struct {
	Posts   bool
	Profile bool
}

// AllRelations loads posts and profile.
var AllRelations = Relations{Posts: true, Profile: true}

// DeleteResult reports how many rows a delete removed.
type DeleteResult struct {
	Affected int64 `json:"affected"`
}

// UserRepository captures user persistence needed by the user service.
type UserRepository interface {
	FindByID(ctx context.Context, id int64, rel Relations) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, rel Relations) ([]models.User, error)
	// Save inserts users with a zero ID and updates the rest.
	Save(ctx context.Context, user *models.User) (*models.User, error)
	// DeleteByID removes the user and the profile it owns.
	DeleteByID(ctx context.Context, id int64) (DeleteResult, error)
}

// ProfileRepository captures profile persistence.
type ProfileRepository interface {
	Save(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// Transactor runs fn so that every repository call made with the derived
// context joins one transaction. Nested calls reuse the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
