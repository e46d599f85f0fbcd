package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost は登録時のハッシュコストです。
const DefaultBcryptCost = 8

// maxBcryptInputBytes は bcrypt が受け付ける入力の上限です。
const maxBcryptInputBytes = 72

// PasswordHasher はパスワードの一方向ハッシュと照合を提供します。
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare は一致すれば (true, nil)、不一致なら (false, nil) を返します。
	// ハッシュが壊れている場合などはエラーを返します。
	Compare(hash, password string) (bool, error)
}

// BcryptHasher は bcrypt による PasswordHasher です。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は BcryptHasher を作成します。範囲外のコストは DefaultBcryptCost に丸めます。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash はパスワードをハッシュ化します。
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare はパスワードとハッシュを照合します。
func (h *BcryptHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}

// bcryptInput は 72 バイトを超えるパスワードを SHA-256 の base64 (44 バイト) に置き換えます。
// Hash と Compare の両方で同じ変換を通すこと。
func bcryptInput(password string) []byte {
	if len(password) <= maxBcryptInputBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
