package auth

import (
	"unicode/utf8"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/session-auth/internal/httperr"
	"github.com/yourusername/session-auth/internal/metrics"
	"github.com/yourusername/session-auth/internal/users"
)

// minPasswordLength 以下の文字数のパスワードは拒否します。
const minPasswordLength = 3

// CheckUsernameFree は登録時にユーザー名が未使用であることを確認するミドルウェアです。
// 登録済みの場合は 422 "Username taken" を返します。
// 最終的な一意性は DB 制約で担保するため、ここでの確認は早期リターン用です。
func (m *Manager) CheckUsernameFree() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		if req.Username == "" {
			httperr.Abort(c, httperr.ErrUsernameRequired)
			return
		}

		found, err := m.users.FindBy(c.Request.Context(), users.Filter{Username: req.Username})
		if err != nil {
			metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
			httperr.Abort(c, err)
			return
		}
		if len(found) > 0 {
			metrics.Registrations.WithLabelValues(metrics.ResultUsernameTaken).Inc()
			httperr.Abort(c, httperr.ErrUsernameTaken)
			return
		}
		c.Next()
	}
}

// CheckUsernameExists はログイン時にユーザーが存在することを確認するミドルウェアです。
// 存在しない場合は 401 "Invalid credentials" を返し、パスワード照合まで進みません。
func (m *Manager) CheckUsernameExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}

		found, err := m.users.FindBy(c.Request.Context(), users.Filter{Username: req.Username})
		if err != nil {
			metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
			httperr.Abort(c, err)
			return
		}
		if len(found) == 0 {
			metrics.Logins.WithLabelValues(metrics.ResultUnknownUser).Inc()
			log.Warn().Str("username", req.Username).Msg("login attempt for unknown user")
			httperr.Abort(c, httperr.ErrInvalidCredentials)
			return
		}

		c.Set(contextFoundUserKey, found[0])
		c.Next()
	}
}

// CheckPasswordLength はパスワードが minPasswordLength 文字より長いことを確認するミドルウェアです。
func (m *Manager) CheckPasswordLength() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		if utf8.RuneCountInString(req.Password) <= minPasswordLength {
			httperr.Abort(c, httperr.ErrPasswordTooShort)
			return
		}
		c.Next()
	}
}

// Restricted はセッションにログイン済みユーザーが無いリクエストを 401 で止めるミドルウェアです。
func (m *Manager) Restricted() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(sessions.Default(c))
		if !ok {
			httperr.Abort(c, httperr.ErrNotAuthenticated)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}
