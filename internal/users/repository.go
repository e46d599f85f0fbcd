package users

import (
	"context"
	"errors"
)

// ErrDuplicateUsername は一意制約によって挿入が拒否されたときに返されます。
var ErrDuplicateUsername = errors.New("username already exists")

// Repository はユーザーの永続化インターフェースです。
type Repository interface {
	// Add はユーザーを挿入し、採番済みのレコードを返します。
	// ユーザー名が既に存在する場合は ErrDuplicateUsername を返します。
	Add(ctx context.Context, user User) (User, error)

	// Find は全ユーザーを ID 順で返します。
	Find(ctx context.Context) ([]User, error)

	// FindBy は条件に一致するユーザーを返します。該当なしの場合は空スライスです。
	FindBy(ctx context.Context, filter Filter) ([]User, error)
}
