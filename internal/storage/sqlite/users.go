package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/all-in-users/internal/dbx"
	"github.com/hongminglow/all-in-users/internal/models"
	"github.com/hongminglow/all-in-users/internal/storage"
)

var _ storage.UserRepository = (*UserRepository)(nil)

const selectUsers = `
	SELECT u.id, u.username, u.password, u.roles, u.created_at, u.auth_strategy, u.profile_id,
	       p.id, p.firstname, p.lastname, p.age
	FROM users u
	LEFT JOIN user_profile p ON p.id = u.profile_id`

// UserRepository persists users in SQLite.
type UserRepository struct {
	db *sql.DB
}

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64, rel storage.Relations) (*models.User, error) {
	conn := dbx.Conn(ctx, r.db)
	user, err := scanUser(conn.QueryRowContext(ctx, selectUsers+` WHERE u.id = ?`, id), rel)
	if err != nil {
		return nil, err
	}
	if rel.Posts {
		if err := loadPosts(ctx, conn, []*models.User{user}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// FindByUsername fetches a user by exact username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	conn := dbx.Conn(ctx, r.db)
	return scanUser(conn.QueryRowContext(ctx, selectUsers+` WHERE u.username = ?`, username), storage.Relations{})
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context, rel storage.Relations) ([]models.User, error) {
	conn := dbx.Conn(ctx, r.db)
	rows, err := conn.QueryContext(ctx, selectUsers+` ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var list []*models.User
	for rows.Next() {
		user, err := scanUser(rows, rel)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if rel.Posts {
		if err := loadPosts(ctx, conn, list); err != nil {
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
	conn := dbx.Conn(ctx, r.db)
	roles := strings.Join(user.Roles, ",")
	authStrategy := sql.NullString{String: user.AuthStrategy, Valid: user.AuthStrategy != ""}
	profileID := nullableProfileID(user)

	var err error
	if user.ID == 0 {
		const query = `
			INSERT INTO users (username, password, roles, auth_strategy, profile_id)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, created_at`
		var createdAt int64
		err = conn.QueryRowContext(ctx, query, user.Username, user.Password, roles, authStrategy, profileID).
			Scan(&user.ID, &createdAt)
		if err == nil {
			user.CreatedAt = fromMillis(createdAt)
		}
	} else {
		const query = `
			UPDATE users
			SET username = ?, password = ?, roles = ?, auth_strategy = ?, profile_id = ?
			WHERE id = ?
			RETURNING created_at`
		var createdAt int64
		err = conn.QueryRowContext(ctx, query, user.Username, user.Password, roles, authStrategy, profileID, user.ID).
			Scan(&createdAt)
		if err == nil {
			user.CreatedAt = fromMillis(createdAt)
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, storage.ErrNotFound
		case isUniqueViolation(err):
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if user.Roles == nil {
		user.Roles = []string{}
	}
	return user, nil
}

// DeleteByID removes the user and its profile in one transaction.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) (storage.DeleteResult, error) {
	var res storage.DeleteResult
	err := dbx.WithinTx(ctx, r.db, func(ctx context.Context) error {
		conn := dbx.Conn(ctx, r.db)

		var profileID sql.NullInt64
		err := conn.QueryRowContext(ctx, `DELETE FROM users WHERE id = ? RETURNING profile_id`, id).Scan(&profileID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("db error: %w", err)
		}
		res.Affected = 1

		if profileID.Valid {
			if _, err := conn.ExecContext(ctx, `DELETE FROM user_profile WHERE id = ?`, profileID.Int64); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return storage.DeleteResult{}, err
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, rel storage.Relations) (*models.User, error) {
	var (
		user         models.User
		roles        string
		createdAt    int64
		authStrategy sql.NullString
		profileID    sql.NullInt64
		pID          sql.NullInt64
		pFirstname   sql.NullString
		pLastname    sql.NullString
		pAge         sql.NullInt64
	)
	err := row.Scan(&user.ID, &user.Username, &user.Password, &roles, &createdAt, &authStrategy, &profileID,
		&pID, &pFirstname, &pLastname, &pAge)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Roles = splitRoles(roles)
	user.CreatedAt = fromMillis(createdAt)
	user.AuthStrategy = authStrategy.String
	if profileID.Valid {
		id := profileID.Int64
		user.ProfileID = &id
	}
	if rel.Profile && pID.Valid {
		user.Profile = &models.Profile{
			ID:        pID.Int64,
			Firstname: pFirstname.String,
			Lastname:  pLastname.String,
			Age:       int(pAge.Int64),
		}
	}
	return &user, nil
}

func loadPosts(ctx context.Context, conn dbx.DBTX, list []*models.User) error {
	if len(list) == 0 {
		return nil
	}

	byAuthor := make(map[int64]*models.User, len(list))
	args := make([]any, 0, len(list))
	for _, user := range list {
		user.Posts = []models.Post{}
		byAuthor[user.ID] = user
		args = append(args, user.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(args)), ",")
	query := `SELECT id, title, content, author_id, created_at FROM posts WHERE author_id IN (` + placeholders + `) ORDER BY id`
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var post models.Post
		var createdAt int64
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &createdAt); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		post.CreatedAt = fromMillis(createdAt)
		author := byAuthor[post.AuthorID]
		author.Posts = append(author.Posts, post)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func splitRoles(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

func nullableProfileID(user *models.User) sql.NullInt64 {
	switch {
	case user.Profile != nil:
		return sql.NullInt64{Int64: user.Profile.ID, Valid: true}
	case user.ProfileID != nil:
		return sql.NullInt64{Int64: *user.ProfileID, Valid: true}
	default:
		return sql.NullInt64{}
	}
}
