package users

import (
	"context"
	"sync"
)

// MemoryRepository はプロセス内メモリにユーザーを保持する Repository です。
// ローカル開発（USER_STORE=memory）とテストで使います。
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  []User
}

// NewMemoryRepository は空の MemoryRepository を作成します。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

// Add はユーザーを追加します。
func (r *MemoryRepository) Add(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return User{}, ErrDuplicateUsername
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users = append(r.users, user)

	return User{ID: user.ID, Username: user.Username}, nil
}

// Find は全ユーザーを返します。
func (r *MemoryRepository) Find(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, User{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

// FindBy はユーザー名が一致するユーザーを返します。
func (r *MemoryRepository) FindBy(ctx context.Context, filter Filter) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []User{}
	for _, u := range r.users {
		if u.Username == filter.Username {
			out = append(out, u)
		}
	}
	return out, nil
}

var _ Repository = (*MemoryRepository)(nil)
