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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/tenant"
)

// Domain errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrWeakPassword      = errors.New("password does not meet security requirements")
	ErrTokenNotFound     = errors.New("login token not found")

	// ErrInvalidCredentials is the single failure every sign-in
	// rejection collapses to: unknown user, wrong password, inactive
	// workspace and cross-tenant attempts are indistinguishable to the
	// caller, so probes cannot enumerate accounts or subscription state.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User belongs to exactly one workspace. Email is unique within a
// workspace, not globally.
type User struct {
	ID          string
	TenantID    string
	Email       string
	Name        string
	Role        authz.Role
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Credentials represents user authentication credentials
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// Identity is the minimal denormalized record a successful sign-in
// produces: everything the session snapshot needs, captured once.
type Identity struct {
	UserID     string
	Email      string
	Name       string
	TenantID   string
	TenantSlug string
	TenantName string
	Role       authz.Role
	Plan       string
}

// LoginToken is a single-use magic-link credential. Only the SHA-256
// hash of the opaque token is stored.
type LoginToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// AddCredentials adds credentials for a user
	AddCredentials(ctx context.Context, credentials *Credentials) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email within a workspace
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// GetByEmailGlobal retrieves the first user with the email across all
	// workspaces, with the owning tenant eagerly attached. Used by the
	// sign-in path, which runs before tenant binding.
	GetByEmailGlobal(ctx context.Context, email string) (*User, *tenant.Tenant, error)

	// GetCredentials retrieves user credentials
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)

	// UpdatePassword updates user password
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// SetRole changes a user's role
	SetRole(ctx context.Context, userID string, role authz.Role) error

	// TouchLastLogin records a successful sign-in time
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// LoginTokenRepository defines the interface for magic-link persistence
type LoginTokenRepository interface {
	Create(ctx context.Context, token *LoginToken) error
	GetByHash(ctx context.Context, tokenHash string) (*LoginToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context) error
}
