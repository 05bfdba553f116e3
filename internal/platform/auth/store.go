package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"BIHIN-backend/internal/platform/apierr"
)

type Account struct {
	ID           string
	PasswordHash string
	Email        string
	Role         Role
	IsDisabled   bool
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

// 存在しない場合は (nil, nil)
func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT id, password_hash, email, role, is_disabled, created_at
FROM accounts
WHERE id = ?
LIMIT 1
`
	var a Account
	var role string
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID,
		&a.PasswordHash,
		&a.Email,
		&role,
		&a.IsDisabled,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Role = Role(role)
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO accounts (id, password_hash, email, role, is_disabled, created_at)
VALUES (?, ?, ?, ?, 0, ?)
`
	_, err := s.db.ExecContext(ctx, q, a.ID, a.PasswordHash, a.Email, string(a.Role), a.CreatedAt)
	if err != nil {
		if apierr.Is(apierr.FromMySQL(err), apierr.CodeConflict) {
			return apierr.ErrConflict("id already exists")
		}
		return err
	}
	return nil
}
