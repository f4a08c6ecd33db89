package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/auth-server/internal/models"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// redisUser is the JSON value stored under user:<email>.
type redisUser struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email_id"`
	PasswordHash string    `json:"password"`
	UserType     string    `json:"user_type"`
	Tags         []string  `json:"user_tags"`
	Bio          string    `json:"bio,omitempty"`
	Image        string    `json:"image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RedisUserStore keeps one key per user, keyed by email. SETNX on that key
// is the uniqueness guard.
type RedisUserStore struct {
	rdb *redis.Client
}

func NewRedisUserStore(rdb *redis.Client) *RedisUserStore {
	return &RedisUserStore{rdb: rdb}
}

func userKey(email string) string { return "user:" + email }

func (s *RedisUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	val, err := s.rdb.Get(ctx, userKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ru redisUser
	if err := json.Unmarshal(val, &ru); err != nil {
		return nil, fmt.Errorf("redis decode user: %w", err)
	}
	return &models.User{
		ID:           ru.ID,
		FirstName:    ru.FirstName,
		LastName:     ru.LastName,
		Email:        ru.Email,
		PasswordHash: ru.PasswordHash,
		UserType:     models.UserType(ru.UserType),
		Tags:         toTags(ru.Tags),
		Bio:          ru.Bio,
		Image:        ru.Image,
		CreatedAt:    ru.CreatedAt,
		UpdatedAt:    ru.UpdatedAt,
	}, nil
}

func (s *RedisUserStore) Insert(ctx context.Context, u *models.User) (*models.User, error) {
	out := *u
	out.ID = uuid.New().String()

	val, err := json.Marshal(redisUser{
		ID:           out.ID,
		FirstName:    out.FirstName,
		LastName:     out.LastName,
		Email:        out.Email,
		PasswordHash: out.PasswordHash,
		UserType:     string(out.UserType),
		Tags:         fromTags(out.Tags),
		Bio:          out.Bio,
		Image:        out.Image,
		CreatedAt:    out.CreatedAt,
		UpdatedAt:    out.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("redis encode user: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, userKey(out.Email), val, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, models.ErrDuplicateEmail
	}
	return &out, nil
}

func (s *RedisUserStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	n, err := s.rdb.Del(ctx, userKey(email)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return n, nil
}
