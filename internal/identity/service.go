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
	"fmt"
	"strings"
	"time"

	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/id"
	"github.com/tourbase/tourbase/internal/tenant"
)

// Service provides credential verification and user provisioning
type Service struct {
	repo        UserRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(repo UserRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Verify checks email/password against the stored hash and returns the
// identity snapshot, or ErrInvalidCredentials.
//
// The email lookup is global, not tenant-scoped: it runs before tenant
// binding, so the first matching user wins. When the request resolved a
// tenant hint, a user belonging to a different workspace is rejected
// even with the correct password. When hint is nil (no hint resolved,
// e.g. a custom-domain lookup miss), the cross-tenant check is skipped
// and login proceeds globally.
//
// Read-only: the one side effect a sign-in has (last-login timestamp)
// belongs to the sign-in surface, not the verifier.
func (s *Service) Verify(ctx context.Context, email, password string, hint *tenant.Tenant) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, owner, err := s.repo.GetByEmailGlobal(ctx, email)
	if err != nil {
		s.auditFailure(ctx, "", email, "user_not_found")
		return nil, ErrInvalidCredentials
	}

	if !owner.Active {
		s.auditFailure(ctx, owner.ID, email, "tenant_inactive")
		return nil, ErrInvalidCredentials
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		s.auditFailure(ctx, owner.ID, email, "no_credentials")
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, credentials.PasswordHash)
	if err != nil || !valid {
		s.auditFailure(ctx, owner.ID, email, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if hint != nil && hint.ID != owner.ID {
		s.auditFailure(ctx, hint.ID, email, "cross_tenant_login")
		return nil, ErrInvalidCredentials
	}

	return snapshotOf(user, owner), nil
}

// Provision creates a new user with credentials in a workspace.
func (s *Service) Provision(ctx context.Context, tenantID, email, name string, role authz.Role, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	if !isStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	if existing, err := s.repo.GetByEmail(ctx, tenantID, email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	now := time.Now()
	user := &User{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.AddCredentials(ctx, &Credentials{UserID: user.ID, PasswordHash: passwordHash}); err != nil {
		return nil, fmt.Errorf("failed to add credentials: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantID,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{audit.AttrEmail: email, "role": string(role)},
	})

	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangeRole updates a user's role. Sessions issued before the change
// keep the old role snapshot until they are refreshed.
func (s *Service) ChangeRole(ctx context.Context, userID string, role authz.Role, actorID string) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := s.repo.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleChanged,
		TenantID: user.TenantID,
		ActorID:  actorID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID, "role": string(role)},
	})
	return nil
}

// ChangePassword changes a user's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	credentials, err := s.repo.GetCredentials(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	valid, err := s.hasher.Verify(oldPassword, credentials.PasswordHash)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}

	if !isStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, newHash)
}

// RecordSignIn touches the last-login timestamp. Called by the sign-in
// surface after a session is issued; failure is not fatal to sign-in.
func (s *Service) RecordSignIn(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID, time.Now())
}

func (s *Service) auditFailure(ctx context.Context, tenantID, email, reason string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginFailed,
		TenantID: tenantID,
		Resource: email,
		Metadata: map[string]any{audit.AttrReason: reason},
	})
}

func snapshotOf(user *User, owner *tenant.Tenant) *Identity {
	return &Identity{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		TenantID:   owner.ID,
		TenantSlug: owner.Slug,
		TenantName: owner.Name,
		Role:       user.Role,
		Plan:       owner.Plan,
	}
}

// Helper functions
func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && len(email) < 255
}

func isStrongPassword(password string) bool {
	return len(password) >= 8
}
