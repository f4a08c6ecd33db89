package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayush/auth-server/internal/models"
)

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserStore handles user CRUD against PostgreSQL.
type PostgresUserStore struct {
	pool pgxPool
}

func NewPostgresUserStore(pool pgxPool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresUserStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			first_name TEXT         NOT NULL,
			last_name  TEXT         NOT NULL,
			email      VARCHAR(255) NOT NULL,
			password   TEXT         NOT NULL,
			user_type  TEXT         NOT NULL,
			user_tags  TEXT[]       NOT NULL DEFAULT '{}',
			bio        TEXT         NOT NULL DEFAULT '',
			image      TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL,
			updated_at TIMESTAMPTZ  NOT NULL,
			CONSTRAINT users_email_unique UNIQUE (email)
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var (
		u        models.User
		userType string
		tags     []string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, first_name, last_name, email, password, user_type, user_tags, bio, image, created_at, updated_at
		 FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &userType, &tags, &u.Bio, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.UserType = models.UserType(userType)
	u.Tags = toTags(tags)
	return &u, nil
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	out := *u
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password, user_type, user_tags, bio, image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id::text`,
		u.FirstName, u.LastName, u.Email, u.PasswordHash, string(u.UserType), fromTags(u.Tags),
		u.Bio, u.Image, u.CreatedAt, u.UpdatedAt,
	).Scan(&out.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, models.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

func (s *PostgresUserStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}
	return tag.RowsAffected(), nil
}
