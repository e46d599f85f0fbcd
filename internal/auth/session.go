package auth

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
)

const (
	// SessionCookieName はセッションCookieの名前です。
	SessionCookieName = "chocolatechip"

	sessionKeyUser = "user"
)

// ContextUserKey は、Restricted を通過したリクエストでログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// SessionUser はセッションに保存するユーザー情報です。パスワードハッシュは載せません。
type SessionUser struct {
	ID       int64
	Username string
}

func init() {
	// Cookie ストア・Redis ストアともに gob で値を保存するため登録が必要
	gob.Register(SessionUser{})
}

// SessionOptions はセッションCookieの設定を返します。
func SessionOptions(maxAge int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CurrentUser はセッションに保存されたユーザーを返します。
func CurrentUser(session sessions.Session) (SessionUser, bool) {
	user, ok := session.Get(sessionKeyUser).(SessionUser)
	if !ok || user.Username == "" {
		return SessionUser{}, false
	}
	return user, true
}
