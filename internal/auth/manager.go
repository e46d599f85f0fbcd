// Package auth はユーザー登録・ログイン・ログアウトと、セッションによるアクセス制御を提供します。
package auth

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yourusername/session-auth/internal/httperr"
	"github.com/yourusername/session-auth/internal/users"
)

// contextFoundUserKey は CheckUsernameExists が見つけたユーザーを Login に渡すためのキーです。
const contextFoundUserKey = "auth.found_user"

// Manager は認証ハンドラーとミドルウェアをまとめた構造体です。
type Manager struct {
	users          users.Repository
	hasher         PasswordHasher
	sessionOptions sessions.Options
}

// NewManager は認証マネージャーを作成します。
// sessionOptions はログアウト時に Cookie を失効させる際の基準として使います。
func NewManager(repo users.Repository, hasher PasswordHasher, sessionOptions sessions.Options) *Manager {
	return &Manager{
		users:          repo,
		hasher:         hasher,
		sessionOptions: sessionOptions,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bindCredentials はリクエストボディを読み取ります。ボディはキャッシュされるので複数のミドルウェアから呼べます。
func bindCredentials(c *gin.Context) (credentials, bool) {
	var req credentials
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		httperr.Abort(c, httperr.ErrInvalidBody)
		return credentials{}, false
	}
	return req, true
}
