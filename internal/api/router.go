// Package api は HTTP ルーティングとミドルウェアチェーンを構成します。
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/session-auth/internal/auth"
	"github.com/yourusername/session-auth/internal/httperr"
	"github.com/yourusername/session-auth/internal/logger"
	"github.com/yourusername/session-auth/internal/metrics"
	"github.com/yourusername/session-auth/internal/users"
)

// Version はヘルスチェックで返すバージョンです。
const Version = "0.1.0"

// Deps は NewRouter に必要な依存関係をまとめた構造体です。
type Deps struct {
	Users          users.Repository
	Hasher         auth.PasswordHasher
	SessionStore   sessions.Store
	SessionOptions sessions.Options

	// 空の場合は CORS ミドルウェアを登録しない
	CORSAllowedOrigins []string
}

// NewRouter は全エンドポイントを登録した gin.Engine を返します。
//
// ミドルウェアの実行順序:
//
//	Recovery → RequestID → AccessLog → Metrics → CORS → Sessions → ErrorTranslator
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		logger.RequestID(),
		logger.Middleware(),
		metrics.Middleware(),
	)

	if len(deps.CORSAllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = deps.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
		}
		corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
		router.Use(cors.New(corsConfig))
	}

	deps.SessionStore.Options(deps.SessionOptions)
	router.Use(sessions.Sessions(auth.SessionCookieName, deps.SessionStore))
	router.Use(httperr.Middleware())

	// 誰でも叩けるヘルスチェックとメトリクス
	router.GET("/health", handleHealth)
	router.GET("/metrics", metrics.Handler())

	authManager := auth.NewManager(deps.Users, deps.Hasher, deps.SessionOptions)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register",
				authManager.CheckUsernameFree(),
				authManager.CheckPasswordLength(),
				authManager.Register,
			)
			authRoutes.POST("/login",
				authManager.CheckUsernameExists(),
				authManager.Login,
			)
			authRoutes.GET("/logout", authManager.Logout)
		}

		api.GET("/users", authManager.Restricted(), users.ListHandler(deps.Users))
	}

	return router
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "session-auth-api",
		"version": Version,
	})
}
