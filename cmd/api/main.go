// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/session-auth/internal/api"
	"github.com/yourusername/session-auth/internal/auth"
	"github.com/yourusername/session-auth/internal/config"
	"github.com/yourusername/session-auth/internal/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	repo, closeUsers, err := setupUsers(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("user_store", cfg.UserStore).Msg("failed to set up user store")
	}
	defer closeUsers()

	store, closeSessions, err := setupSessions(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("session_store", cfg.SessionStore).Msg("failed to set up session store")
	}
	defer closeSessions()

	router := api.NewRouter(api.Deps{
		Users:              repo,
		Hasher:             auth.NewBcryptHasher(cfg.BcryptCost),
		SessionStore:       store,
		SessionOptions:     auth.SessionOptions(cfg.SessionMaxAge, cfg.GinMode == gin.ReleaseMode),
		CORSAllowedOrigins: cfg.CORSOrigins(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("mode", cfg.GinMode).
			Str("user_store", cfg.UserStore).
			Str("session_store", cfg.SessionStore).
			Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exiting")
}
