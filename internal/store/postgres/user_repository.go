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
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/identity"
	"github.com/tourbase/tourbase/internal/tenant"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user row
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID, user.TenantID, user.Email, user.Name, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// AddCredentials adds credentials for a user
func (r *UserRepository) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, credentials.UserID, credentials.PasswordHash, now)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}
	credentials.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, name, role, last_login_at, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

// GetByEmail retrieves a user by email within a workspace
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, name, role, last_login_at, created_at, updated_at
		FROM users WHERE tenant_id = $1 AND email = $2
	`, tenantID, email))
}

// GetByEmailGlobal retrieves the first user with the email across all
// workspaces, joining the owning tenant in one round trip. Sign-in runs
// before tenant binding, so the lookup cannot be tenant-scoped.
func (r *UserRepository) GetByEmailGlobal(ctx context.Context, email string) (*identity.User, *tenant.Tenant, error) {
	var u identity.User
	var role string
	var lastLogin sql.NullTime
	var t tenant.Tenant

	err := r.db.pool.QueryRow(ctx, `
		SELECT
			u.id, u.tenant_id, u.email, u.name, u.role, u.last_login_at, u.created_at, u.updated_at,
			t.id, t.slug, t.name, t.domain, t.plan, t.active,
			t.default_currency, t.currencies, t.locales,
			t.contact_email, t.contact_phone, t.logo_url,
			t.created_at, t.updated_at
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.email = $1
		ORDER BY u.created_at
		LIMIT 1
	`, email).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.Name, &role, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
		&t.ID, &t.Slug, &t.Name, &t.Domain, &t.Plan, &t.Active,
		&t.DefaultCurrency, &t.Currencies, &t.Locales,
		&t.ContactEmail, &t.ContactPhone, &t.LogoURL,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, identity.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	u.Role = authz.Role(role)
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, &t, nil
}

// GetCredentials retrieves user credentials
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	var c identity.Credentials
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, password_hash, updated_at FROM credentials WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.PasswordHash, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &c, nil
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE credentials SET password_hash = $2, updated_at = NOW() WHERE user_id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// SetRole changes a user's role
func (r *UserRepository) SetRole(ctx context.Context, userID string, role authz.Role) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1
	`, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// TouchLastLogin records a successful sign-in time
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE users SET last_login_at = $2 WHERE id = $1
	`, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*identity.User, error) {
	var u identity.User
	var role string
	var lastLogin sql.NullTime

	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &role, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.Role = authz.Role(role)
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}
