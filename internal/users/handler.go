package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/session-auth/internal/httperr"
)

// ListHandler は GET /api/users のハンドラーを返します。
// 認証チェックは呼び出し側で Restricted ミドルウェアを挟むこと。
func ListHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.Find(c.Request.Context())
		if err != nil {
			httperr.Abort(c, err)
			return
		}
		if list == nil {
			list = []User{}
		}
		c.JSON(http.StatusOK, list)
	}
}
