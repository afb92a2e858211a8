package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hongminglow/all-in-users/internal/dbx"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
)

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository persists profiles in SQLite.
type ProfileRepository struct {
	db *sql.DB
}

// Save inserts a new profile or updates an existing one.
func (r *ProfileRepository) Save(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	conn := dbx.Conn(ctx, r.db)

	if profile.ID == 0 {
		const query = `INSERT INTO user_profile (firstname, lastname, age) VALUES (?, ?, ?) RETURNING id`
		if err := conn.QueryRowContext(ctx, query, profile.Firstname, profile.Lastname, profile.Age).Scan(&profile.ID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return profile, nil
	}

	const query = `UPDATE user_profile SET firstname = ?, lastname = ?, age = ? WHERE id = ?`
	res, err := conn.ExecContext(ctx, query, profile.Firstname, profile.Lastname, profile.Age, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, storage.ErrNotFound
	}
	return profile, nil
}
