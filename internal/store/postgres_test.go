package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/auth-server/internal/models"
	"github.com/ayush/auth-server/internal/store"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "password", "user_type",
	"user_tags", "bio", "image", "created_at", "updated_at",
}

func TestPostgresUserStore_FindByEmail(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT id::text, first_name`)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantNil   bool
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(userColumns).AddRow(
					"6f1c2a8e-0000-4000-8000-000000000001", "naruto", "uzumaki", "naruto@leaf.io",
					"$argon2id$hash", "Worker", []string{"MachineLearning"}, "", "", now, now,
				)
				mock.ExpectQuery(query).WithArgs("naruto@leaf.io").WillReturnRows(rows)
			},
		},
		{
			name: "absent",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(query).WithArgs("naruto@leaf.io").WillReturnError(pgx.ErrNoRows)
			},
			wantNil: true,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(query).WithArgs("naruto@leaf.io").WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			s := store.NewPostgresUserStore(mock)
			u, err := s.FindByEmail(context.Background(), "naruto@leaf.io")

			switch {
			case tt.wantErr:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
			case tt.wantNil:
				require.NoError(t, err)
				assert.Nil(t, u)
			default:
				require.NoError(t, err)
				require.NotNil(t, u)
				assert.Equal(t, "6f1c2a8e-0000-4000-8000-000000000001", u.ID)
				assert.Equal(t, models.Worker, u.UserType)
				assert.Equal(t, []models.Tag{"MachineLearning"}, u.Tags)
				assert.Equal(t, "$argon2id$hash", u.PasswordHash)
				assert.Equal(t, now, u.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserStore_Insert(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	user := &models.User{
		FirstName:    "naruto",
		LastName:     "uzumaki",
		Email:        "naruto@leaf.io",
		PasswordHash: "$argon2id$hash",
		UserType:     models.Customer,
		Tags:         []models.Tag{"WebDevelopment"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	insert := regexp.QuoteMeta(`INSERT INTO users`)
	args := []any{
		"naruto", "uzumaki", "naruto@leaf.io", "$argon2id$hash", "Customer",
		[]string{"WebDevelopment"}, "", "", now, now,
	}

	t.Run("returns the assigned id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(insert).WithArgs(args...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("6f1c2a8e-0000-4000-8000-000000000002"))

		got, err := store.NewPostgresUserStore(mock).Insert(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, "6f1c2a8e-0000-4000-8000-000000000002", got.ID)
		assert.Empty(t, user.ID, "input must not be mutated")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicateEmail", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(insert).WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_unique"})

		_, err = store.NewPostgresUserStore(mock).Insert(context.Background(), user)
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(insert).WithArgs(args...).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})

		_, err = store.NewPostgresUserStore(mock).Insert(context.Background(), user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrDuplicateEmail)
		assert.Contains(t, err.Error(), "create user")
	})
}

func TestPostgresUserStore_DeleteByEmail(t *testing.T) {
	del := regexp.QuoteMeta(`DELETE FROM users WHERE email = $1`)

	t.Run("reports rows affected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(del).WithArgs("naruto@leaf.io").WillReturnResult(pgxmock.NewResult("DELETE", 1))

		n, err := store.NewPostgresUserStore(mock).DeleteByEmail(context.Background(), "naruto@leaf.io")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(del).WithArgs("naruto@leaf.io").WillReturnError(errors.New("connection refused"))

		_, err = store.NewPostgresUserStore(mock).DeleteByEmail(context.Background(), "naruto@leaf.io")
		assert.Error(t, err)
	})
}

func TestPostgresUserStore_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS users`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.NewPostgresUserStore(mock).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
