// Package users はユーザーの永続化と一覧APIを提供します。
package users

// User は登録済みユーザーを表します。
// Password は bcrypt ハッシュで、レスポンスには含めません。
type User struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Filter は FindBy の検索条件です。指定したフィールドの完全一致で絞り込みます。
type Filter struct {
	Username string
}
