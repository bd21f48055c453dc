// Copyright 2026 The Tourbase Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourbase/tourbase/internal/identity"
)

// LoginTokenRepository implements identity.LoginTokenRepository
type LoginTokenRepository struct {
	db *DB
}

// NewLoginTokenRepository creates a new login token repository
func NewLoginTokenRepository(db *DB) *LoginTokenRepository {
	return &LoginTokenRepository{db: db}
}

// Create stores a magic-link token. Only the hash is persisted.
func (r *LoginTokenRepository) Create(ctx context.Context, token *identity.LoginToken) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO login_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert login token: %w", err)
	}
	return nil
}

// GetByHash retrieves a token by its hash
func (r *LoginTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*identity.LoginToken, error) {
	var t identity.LoginToken
	var usedAt sql.NullTime

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM login_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &usedAt, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get login token: %w", err)
	}

	if usedAt.Valid {
		t.UsedAt = &usedAt.Time
	}
	return &t, nil
}

// MarkUsed marks a token as redeemed. The WHERE guard on used_at makes
// redemption first-wins under concurrent attempts.
func (r *LoginTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE login_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to mark login token used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrTokenNotFound
	}
	return nil
}

// DeleteExpired removes tokens past their expiry
func (r *LoginTokenRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM login_tokens WHERE expires_at < NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to delete expired login tokens: %w", err)
	}
	return nil
}
