// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// セッションストアの種類です。
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

// ユーザーストアの種類です。
const (
	UserStorePostgres = "postgres"
	UserStoreMemory   = "memory"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// ログ設定
	LogLevel  string // zerolog のレベル (debug, info, warn, error)
	LogFormat string // console または json

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// セッション設定
	SessionSecret string // セッション署名用の秘密鍵
	SessionStore  string // cookie または redis
	SessionMaxAge int    // セッションの有効期間（秒）
	RedisURL      string // SESSION_STORE=redis のときの接続URL

	// ユーザーストア設定
	UserStore      string // postgres または memory
	DatabaseURL    string // PostgreSQL接続URL
	DBMaxConns     int    // コネクションプールの最大接続数
	MigrateOnStart bool   // 起動時にマイグレーションを適用するか

	// パスワードハッシュ設定
	BcryptCost int
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// ログ設定
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// セッション設定
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", SessionStoreCookie)),
		SessionMaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400), // 24時間
		RedisURL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		// ユーザーストア設定
		UserStore:      strings.ToLower(getEnv("USER_STORE", UserStorePostgres)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
		MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", true),

		// パスワードハッシュ設定
		BcryptCost: getEnvAsInt("BCRYPT_COST", 8),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %q", c.SessionStore)
	}

	switch c.UserStore {
	case UserStorePostgres, UserStoreMemory:
	default:
		return fmt.Errorf("unsupported USER_STORE: %q", c.UserStore)
	}

	if c.UserStore == UserStorePostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when USER_STORE=postgres")
	}

	if c.SessionStore == SessionStoreRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
	}

	// ローカル開発では秘密鍵は任意
	if c.GinMode == "release" && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in release mode")
	}

	// 0 以下は Cookie の即時削除を意味するため、ログインが保持されなくなる
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive: %d", c.SessionMaxAge)
	}

	return nil
}

// CORSOrigins はカンマ区切りの許可オリジンを配列で返します。
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
