package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/auth-server/internal/auth"
	"github.com/ayush/auth-server/internal/config"
	"github.com/ayush/auth-server/internal/logging"
	"github.com/ayush/auth-server/internal/models"
	"github.com/ayush/auth-server/internal/server"
	"github.com/ayush/auth-server/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel, nil)
	slog.SetDefault(logger)

	ctx := context.Background()

	users, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("user store ready", "backend", cfg.StoreBackend)

	// ── Credentials ──────────────────────────────────────────
	tagNames := cfg.UserTags
	if len(tagNames) == 0 {
		tagNames = models.DefaultTags
	}
	tags := models.NewTagSet(tagNames)

	hasher := auth.NewArgon2idHasher(auth.Argon2Params{
		Memory:  cfg.Argon2MemoryKB,
		Time:    cfg.Argon2Time,
		Threads: cfg.Argon2Threads,
	})
	hashes := auth.NewHashPool(hasher, cfg.HashWorkers)
	defer hashes.Close()

	svc := auth.NewService(users, hashes, auth.NewValidator(tags, cfg.PasswordMinLength), logger)
	authHandler := auth.NewHandler(svc, logger)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(authHandler, cfg.AllowedOrigins, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("auth server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// openStore connects the configured backend and prepares its uniqueness
// constraint.
func openStore(ctx context.Context, cfg *config.Config) (auth.UserStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		s := store.NewPostgresUserStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return s, pool.Close, nil

	case config.BackendRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		return store.NewRedisUserStore(rdb), func() { rdb.Close() }, nil

	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		disconnect := func() { client.Disconnect(context.Background()) }
		s := store.NewMongoUserStore(client.Database(cfg.MongoDB), cfg.MongoCollection)
		if err := s.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return s, disconnect, nil
	}
}
