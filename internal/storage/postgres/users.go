package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ storage.UserRepository = (*UserRepository)(nil)

const selectUsers = `
	SELECT u.id, u.username, u.password, u.roles, u.created_at, u.auth_strategy, u.profile_id,
	       p.id, p.firstname, p.lastname, p.age
	FROM users u
	LEFT JOIN user_profile p ON p.id = u.profile_id`

// UserRepository persists users in Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
}

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64, rel storage.Relations) (*models.User, error) {
	q := conn(ctx, r.pool)
	user, err := scanUser(q.QueryRow(ctx, selectUsers+` WHERE u.id = $1`, id), rel)
	if err != nil {
		return nil, err
	}
	if rel.Posts {
		if err := loadPosts(ctx, q, []*models.User{user}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// FindByUsername fetches a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	q := conn(ctx, r.pool)
	return scanUser(q.QueryRow(ctx, selectUsers+` WHERE u.username = $1`, username), storage.Relations{})
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context, rel storage.Relations) ([]models.User, error) {
	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, selectUsers+` ORDER BY u.id`)
	if err != nil {
		return nil, err
	}

	var list []*models.User
	for rows.Next() {
		user, err := scanUser(rows, rel)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if rel.Posts {
		if err := loadPosts(ctx, q, list); err != nil {
			return nil, err
		}
	}

	out := make([]models.User, 0, len(list))
	for _, user := range list {
		out = append(out, *user)
	}
	return out, nil
}

// Save inserts a new user or updates an existing one.
func (r *UserRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	q := conn(ctx, r.pool)
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	authStrategy := nullableString(user.AuthStrategy)
	profileID := profileRef(user)

	var err error
	if user.ID == 0 {
		const query = `
			INSERT INTO users (username, password, roles, auth_strategy, profile_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`
		err = q.QueryRow(ctx, query, user.Username, user.Password, roles, authStrategy, profileID).
			Scan(&user.ID, &user.CreatedAt)
	} else {
		const query = `
			UPDATE users
			SET username = $1, password = $2, roles = $3, auth_strategy = $4, profile_id = $5
			WHERE id = $6
			RETURNING created_at`
		err = q.QueryRow(ctx, query, user.Username, user.Password, roles, authStrategy, profileID, user.ID).
			Scan(&user.CreatedAt)
	}
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, storage.ErrNotFound
		case isUniqueViolation(err):
			return nil, storage.ErrAlreadyExists
		}
		return nil, err
	}

	user.Roles = roles
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// DeleteByID removes the user and its profile in one transaction.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) (storage.DeleteResult, error) {
	var res storage.DeleteResult
	err := withinTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)

		var profileID *int64
		if err := q.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING profile_id`, id).Scan(&profileID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		res.Affected = 1

		if profileID != nil {
			if _, err := q.Exec(ctx, `DELETE FROM user_profile WHERE id = $1`, *profileID); err != nil {
				return fmt.Errorf("delete profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return storage.DeleteResult{}, err
	}
	return res, nil
}

func scanUser(row pgx.Row, rel storage.Relations) (*models.User, error) {
	var (
		user         models.User
		authStrategy *string
		pID          *int64
		pFirstname   *string
		pLastname    *string
		pAge         *int32
	)
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.Roles, &user.CreatedAt, &authStrategy, &user.ProfileID,
		&pID, &pFirstname, &pLastname, &pAge)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	if user.Roles == nil {
		user.Roles = []string{}
	}
	user.CreatedAt = user.CreatedAt.UTC()
	if authStrategy != nil {
		user.AuthStrategy = *authStrategy
	}
	if rel.Profile && pID != nil {
		user.Profile = &models.Profile{ID: *pID}
		if pFirstname != nil {
			user.Profile.Firstname = *pFirstname
		}
		if pLastname != nil {
			user.Profile.Lastname = *pLastname
		}
		if pAge != nil {
			user.Profile.Age = int(*pAge)
		}
	}
	return &user, nil
}

func loadPosts(ctx context.Context, q querier, list []*models.User) error {
	if len(list) == 0 {
		return nil
	}

	byAuthor := make(map[int64]*models.User, len(list))
	ids := make([]int64, 0, len(list))
	for _, user := range list {
		user.Posts = []models.Post{}
		byAuthor[user.ID] = user
		ids = append(ids, user.ID)
	}

	const query = `SELECT id, title, content, author_id, created_at FROM posts WHERE author_id = ANY($1) ORDER BY id`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.CreatedAt); err != nil {
			return err
		}
		post.CreatedAt = post.CreatedAt.UTC()
		author := byAuthor[post.AuthorID]
		author.Posts = append(author.Posts, post)
	}
	return rows.Err()
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func profileRef(user *models.User) *int64 {
	if user.Profile != nil {
		id := user.Profile.ID
		return &id
	}
	return user.ProfileID
}
