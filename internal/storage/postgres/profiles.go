package postgres

import (
	"context"

	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository persists profiles in Postgres.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// Save inserts a new profile or updates an existing one.
func (r *ProfileRepository) Save(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	q := conn(ctx, r.pool)

	if profile.ID == 0 {
		const query = `INSERT INTO user_profile (firstname, lastname, age) VALUES ($1, $2, $3) RETURNING id`
		if err := q.QueryRow(ctx, query, profile.Firstname, profile.Lastname, profile.Age).Scan(&profile.ID); err != nil {
			return nil, err
		}
		return profile, nil
	}

	const query = `UPDATE user_profile SET firstname = $1, lastname = $2, age = $3 WHERE id = $4`
	tag, err := q.Exec(ctx, query, profile.Firstname, profile.Lastname, profile.Age, profile.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return profile, nil
}
