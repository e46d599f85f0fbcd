package users

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// DBTX は pgxpool.Pool と pgxmock の共通部分です。
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository は PostgreSQL の users テーブルを使う Repository です。
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add はユーザーを挿入します。
// ユーザー名の重複は users_username_key 制約で検出し、ErrDuplicateUsername に変換します。
func (r *PostgresRepository) Add(ctx context.Context, user User) (User, error) {
	var created User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING user_id, username
	`, user.Username, user.Password).Scan(&created.ID, &created.Username)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				Wrap(ErrDuplicateUsername)
		}
		return User{}, oops.Code("USER_ADD_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return created, nil
}

// Find は全ユーザーの user_id と username を返します。
func (r *PostgresRepository) Find(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, username FROM users ORDER BY user_id`)
	if err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "list users").
			Wrap(err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, oops.Code("USER_FIND_FAILED").
				With("operation", "scan user").
				Wrap(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_FIND_FAILED").
			With("operation", "iterate users").
			Wrap(err)
	}
	return out, nil
}

// FindBy はユーザー名が一致するユーザーをパスワードハッシュ付きで返します。
func (r *PostgresRepository) FindBy(ctx context.Context, filter Filter) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, username, password
		FROM users
		WHERE username = $1
		ORDER BY user_id
	`, filter.Username)
	if err != nil {
		return nil, oops.Code("USER_FIND_BY_FAILED").
			With("operation", "find users by username").
			With("username", filter.Username).
			Wrap(err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password); err != nil {
			return nil, oops.Code("USER_FIND_BY_FAILED").
				With("operation", "scan user").
				With("username", filter.Username).
				Wrap(err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_FIND_BY_FAILED").
			With("operation", "iterate users").
			With("username", filter.Username).
			Wrap(err)
	}
	return out, nil
}

// compile-time interface check
var _ Repository = (*PostgresRepository)(nil)
