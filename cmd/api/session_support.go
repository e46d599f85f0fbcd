package main

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/session-auth/internal/config"
	"github.com/yourusername/session-auth/internal/database"
	"github.com/yourusername/session-auth/internal/session"
	"github.com/yourusername/session-auth/internal/users"
)

// setupUsers は USER_STORE に応じたユーザーリポジトリと後始末関数を返します。
func setupUsers(ctx context.Context, cfg *config.Config) (users.Repository, func(), error) {
	if cfg.UserStore == config.UserStoreMemory {
		log.Warn().Msg("using in-memory user store; users are lost on restart")
		return users.NewMemoryRepository(), func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
	}

	pool, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}
	return users.NewPostgresRepository(pool), pool.Close, nil
}

// setupSessions は SESSION_STORE に応じたセッションストアと後始末関数を返します。
func setupSessions(ctx context.Context, cfg *config.Config) (sessions.Store, func(), error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// 再起動で既存セッションは無効になる
		secret = securecookie.GenerateRandomKey(32)
		log.Warn().Msg("SESSION_SECRET is not set; using a random key for this process")
	}

	if cfg.SessionStore == config.SessionStoreCookie {
		return cookie.NewStore(secret), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return session.NewRedisStore(rdb, secret), closeFn, nil
}
