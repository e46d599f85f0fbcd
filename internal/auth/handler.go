package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/session-auth/internal/httperr"
	"github.com/yourusername/session-auth/internal/metrics"
	"github.com/yourusername/session-auth/internal/users"
)

// Register は POST /api/auth/register のハンドラーです。
// CheckUsernameFree と CheckPasswordLength を通過している前提です。
func (m *Manager) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, err)
		return
	}

	created, err := m.users.Add(c.Request.Context(), users.User{
		Username: req.Username,
		Password: hash,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			// 事前チェックをすり抜けた同時登録
			metrics.Registrations.WithLabelValues(metrics.ResultUsernameTaken).Inc()
			httperr.Abort(c, httperr.ErrUsernameTaken)
			return
		}
		metrics.Registrations.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, err)
		return
	}

	metrics.Registrations.WithLabelValues(metrics.ResultSuccess).Inc()
	log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	c.JSON(http.StatusOK, created)
}

// Login は POST /api/auth/login のハンドラーです。
// CheckUsernameExists を通過している前提です。
func (m *Manager) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	user, err := m.foundUser(c, req.Username)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, err)
		return
	}

	verified, err := m.hasher.Compare(user.Password, req.Password)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, err)
		return
	}
	if !verified {
		metrics.Logins.WithLabelValues(metrics.ResultInvalidPassword).Inc()
		log.Warn().Str("username", req.Username).Msg("invalid password")
		httperr.Abort(c, httperr.ErrInvalidCredentials)
		return
	}

	session := sessions.Default(c)
	if err := m.rotateSession(session); err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, fmt.Errorf("failed to rotate session: %w", err))
		return
	}
	session.Options(m.sessionOptions)
	session.Set(sessionKeyUser, SessionUser{ID: user.ID, Username: user.Username})
	if err := session.Save(); err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultError).Inc()
		httperr.Abort(c, fmt.Errorf("failed to save session: %w", err))
		return
	}

	metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Welcome %s!", req.Username)})
}

// Logout は GET /api/auth/logout のハンドラーです。
// セッションの破棄に失敗した場合も、ログインしていない場合も 200 "no session" を返します。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	user, ok := CurrentUser(session)
	if !ok {
		metrics.Logouts.WithLabelValues(metrics.ResultNoSession).Inc()
		c.JSON(http.StatusOK, gin.H{"message": "no session"})
		return
	}

	if err := m.destroySession(session); err != nil {
		metrics.Logouts.WithLabelValues(metrics.ResultError).Inc()
		log.Error().Err(err).Str("username", user.Username).Msg("failed to destroy session")
		c.JSON(http.StatusOK, gin.H{"message": "no session"})
		return
	}

	metrics.Logouts.WithLabelValues(metrics.ResultSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// rotateSession はクライアントが持ち込んだサーバー側セッションを破棄し、
// 続く Save で新しいセッションIDが発行されるようにします。
// ID を持たない（Cookie ストアや未保存の）セッションは中身を空にするだけです。
func (m *Manager) rotateSession(session sessions.Session) error {
	if session.ID() == "" {
		session.Clear()
		return nil
	}
	return m.destroySession(session)
}

// destroySession はセッションを空にし、Cookie を失効させます。
func (m *Manager) destroySession(session sessions.Session) error {
	expired := m.sessionOptions
	expired.MaxAge = -1

	session.Clear()
	session.Options(expired)
	return session.Save()
}

// foundUser は CheckUsernameExists が見つけたユーザーを返します。
// ミドルウェアを経由しない呼び出しでは改めて検索します。
func (m *Manager) foundUser(c *gin.Context, username string) (users.User, error) {
	if v, ok := c.Get(contextFoundUserKey); ok {
		if user, ok := v.(users.User); ok {
			return user, nil
		}
	}

	found, err := m.users.FindBy(c.Request.Context(), users.Filter{Username: username})
	if err != nil {
		return users.User{}, err
	}
	if len(found) == 0 {
		return users.User{}, httperr.ErrInvalidCredentials
	}
	return found[0], nil
}
