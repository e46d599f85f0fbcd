// Package httperr はハンドラーが返す型付きエラーと、それを HTTP レスポンスに変換するミドルウェアを提供します。
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error はクライアントにそのまま返すステータスとメッセージを持つエラーです。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// クライアント向けの固定レスポンスです。文言は既存クライアントとの互換のため変更しないこと。
var (
	ErrUsernameTaken      = &Error{Status: http.StatusUnprocessableEntity, Message: "Username taken"}
	ErrUsernameRequired   = &Error{Status: http.StatusUnprocessableEntity, Message: "Username is required"}
	ErrPasswordTooShort   = &Error{Status: http.StatusUnprocessableEntity, Message: "Password must be longer than 3 chars"}
	ErrInvalidCredentials = &Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	ErrNotAuthenticated   = &Error{Status: http.StatusUnauthorized, Message: "You shall not pass!"}
	ErrInvalidBody        = &Error{Status: http.StatusBadRequest, Message: "Invalid request body"}
)

const internalErrorMessage = "Internal server error"

// Abort はエラーを記録して後続のハンドラーを止めます。
// レスポンスの書き込みは Middleware が行います。
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Middleware はチェーン内で記録された最後のエラーを JSON レスポンスに変換します。
// 既にレスポンスが書き込まれている場合は何もしません。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status, message := translate(c, c.Errors.Last().Err)
		c.JSON(status, gin.H{"message": message})
	}
}

func translate(c *gin.Context, err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}

	log.Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("unhandled error")
	return http.StatusInternalServerError, internalErrorMessage
}
