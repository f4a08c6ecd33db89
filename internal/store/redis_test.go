package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/auth-server/internal/models"
	"github.com/ayush/auth-server/internal/store"
)

func newRedisStore(t *testing.T) (*store.RedisUserStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb, err := store.NewRedisClient(context.Background(), srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return store.NewRedisUserStore(rdb), srv
}

func TestRedisUserStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, srv := newRedisStore(t)
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	u, err := s.Insert(ctx, &models.User{
		FirstName:    "naruto",
		LastName:     "uzumaki",
		Email:        "naruto@leaf.io",
		PasswordHash: "$argon2id$hash",
		UserType:     models.Customer,
		Tags:         []models.Tag{"WebDevelopment"},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(u.ID)
	require.NoError(t, err, "id should be a uuid")
	assert.True(t, srv.Exists("user:naruto@leaf.io"))

	got, err := s.FindByEmail(ctx, "naruto@leaf.io")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$argon2id$hash", got.PasswordHash)
	assert.Equal(t, []models.Tag{"WebDevelopment"}, got.Tags)
	assert.True(t, now.Equal(got.CreatedAt))

	_, err = s.Insert(ctx, &models.User{Email: "naruto@leaf.io"})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	n, err := s.DeleteByEmail(ctx, "naruto@leaf.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err = s.FindByEmail(ctx, "naruto@leaf.io")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err = s.DeleteByEmail(ctx, "naruto@leaf.io")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisUserStore_CorruptValue(t *testing.T) {
	s, srv := newRedisStore(t)
	require.NoError(t, srv.Set("user:bad@leaf.io", "{not json"))

	_, err := s.FindByEmail(context.Background(), "bad@leaf.io")
	assert.Error(t, err)
}

func TestRedisUserStore_ServerDown(t *testing.T) {
	s, srv := newRedisStore(t)
	srv.Close()

	_, err := s.FindByEmail(context.Background(), "naruto@leaf.io")
	assert.Error(t, err)
	_, err = s.Insert(context.Background(), &models.User{Email: "naruto@leaf.io"})
	assert.Error(t, err)
	_, err = s.DeleteByEmail(context.Background(), "naruto@leaf.io")
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := store.NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
