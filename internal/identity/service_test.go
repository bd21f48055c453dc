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
	"testing"
	"time"

	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/plan"
	"github.com/tourbase/tourbase/internal/tenant"
)

// MockUserRepository is a simple in-memory implementation of UserRepository
type MockUserRepository struct {
	users       map[string]*User
	credentials map[string]*Credentials
	tenants     map[string]*tenant.Tenant
}

func NewMockUserRepository(tenants ...*tenant.Tenant) *MockUserRepository {
	m := &MockUserRepository{
		users:       make(map[string]*User),
		credentials: make(map[string]*Credentials),
		tenants:     make(map[string]*tenant.Tenant),
	}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) AddCredentials(ctx context.Context, credentials *Credentials) error {
	m.credentials[credentials.UserID] = credentials
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	for _, u := range m.users {
		if u.TenantID == tenantID && u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) GetByEmailGlobal(ctx context.Context, email string) (*User, *tenant.Tenant, error) {
	var oldest *User
	for _, u := range m.users {
		if u.Email != email {
			continue
		}
		if oldest == nil || u.CreatedAt.Before(oldest.CreatedAt) {
			oldest = u
		}
	}
	if oldest == nil {
		return nil, nil, ErrUserNotFound
	}
	owner, ok := m.tenants[oldest.TenantID]
	if !ok {
		return nil, nil, ErrUserNotFound
	}
	return oldest, owner, nil
}

func (m *MockUserRepository) GetCredentials(ctx context.Context, userID string) (*Credentials, error) {
	c, ok := m.credentials[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return c, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	c, ok := m.credentials[userID]
	if !ok {
		return ErrUserNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, userID string, role authz.Role) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func testFixture() (*MockUserRepository, *Service, *tenant.Tenant, *tenant.Tenant) {
	acme := &tenant.Tenant{ID: "t-acme", Slug: "acme", Name: "Acme Tours", Plan: plan.Pro, Active: true}
	globex := &tenant.Tenant{ID: "t-globex", Slug: "globex", Name: "Globex Travel", Plan: plan.Free, Active: true}
	repo := NewMockUserRepository(acme, globex)
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)
	s := NewService(repo, hasher, audit.NewSlogLogger())
	return repo, s, acme, globex
}

// TestPurpose: Validates the credential verification flow and the snapshot it produces.
// Scope: Unit Test
// Security: Authentication mechanism and identity snapshot integrity
// Expected: Correct credentials yield a snapshot carrying the workspace slug, name, role, and plan; wrong credentials fail.
// Test Case ID: IDN-01
func TestIdentity_Service_Verify(t *testing.T) {
	_, s, acme, _ := testFixture()
	ctx := context.Background()

	user, err := s.Provision(ctx, acme.ID, "owner@acme.example", "Owner", authz.RoleAdmin, "SecurePassword123")
	if err != nil {
		t.Fatalf("failed to provision: %v", err)
	}

	ident, err := s.Verify(ctx, "owner@acme.example", "SecurePassword123", nil)
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if ident.UserID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, ident.UserID)
	}
	if ident.TenantSlug != "acme" || ident.TenantName != "Acme Tours" {
		t.Errorf("snapshot workspace mismatch: %+v", ident)
	}
	if ident.Role != authz.RoleAdmin || ident.Plan != plan.Pro {
		t.Errorf("snapshot role/plan mismatch: %+v", ident)
	}

	// Email comparison is case-insensitive.
	if _, err := s.Verify(ctx, "OWNER@ACME.example", "SecurePassword123", nil); err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}

	if _, err := s.Verify(ctx, "owner@acme.example", "WrongPassword", nil); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Verify(ctx, "nobody@acme.example", "SecurePassword123", nil); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

// TestPurpose: Validates that every sign-in rejection collapses to the same error.
// Scope: Unit Test
// Security: Anti-enumeration. Unknown accounts, suspended workspaces, and cross-workspace attempts must be indistinguishable.
// Expected: ErrInvalidCredentials for an inactive workspace and for a tenant-hint mismatch, identical to a wrong password.
// Test Case ID: IDN-02
func TestIdentity_Service_Verify_Collapse(t *testing.T) {
	_, s, acme, globex := testFixture()
	ctx := context.Background()

	if _, err := s.Provision(ctx, acme.ID, "owner@acme.example", "Owner", authz.RoleAdmin, "SecurePassword123"); err != nil {
		t.Fatalf("failed to provision: %v", err)
	}

	// Hint pointing at a different workspace than the account's owner.
	if _, err := s.Verify(ctx, "owner@acme.example", "SecurePassword123", globex); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for cross-workspace hint, got %v", err)
	}

	// Matching hint still succeeds.
	if _, err := s.Verify(ctx, "owner@acme.example", "SecurePassword123", acme); err != nil {
		t.Errorf("expected success with matching hint, got %v", err)
	}

	// Suspended workspace rejects sign-in with the same error.
	acme.Active = false
	if _, err := s.Verify(ctx, "owner@acme.example", "SecurePassword123", nil); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for inactive workspace, got %v", err)
	}
}

// TestPurpose: Validates provisioning conflict and input rejection.
// Scope: Unit Test
// Security: Data integrity and password strength floor
// Expected: Duplicate email within a workspace, malformed email, and short passwords are rejected.
// Test Case ID: IDN-03
func TestIdentity_Service_Provision_Validation(t *testing.T) {
	_, s, acme, globex := testFixture()
	ctx := context.Background()

	if _, err := s.Provision(ctx, acme.ID, "guide@acme.example", "Guide", authz.RoleSales, "SecurePassword123"); err != nil {
		t.Fatalf("failed to provision: %v", err)
	}

	if _, err := s.Provision(ctx, acme.ID, "guide@acme.example", "Guide", authz.RoleSales, "SecurePassword123"); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}

	// Same email in another workspace is allowed: email is unique per
	// workspace, not globally.
	if _, err := s.Provision(ctx, globex.ID, "guide@acme.example", "Guide", authz.RoleSales, "SecurePassword123"); err != nil {
		t.Errorf("expected cross-workspace duplicate to succeed, got %v", err)
	}

	if _, err := s.Provision(ctx, acme.ID, "not-an-email", "X", authz.RoleUser, "SecurePassword123"); err != ErrInvalidEmail {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := s.Provision(ctx, acme.ID, "weak@acme.example", "X", authz.RoleUser, "short"); err != ErrWeakPassword {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

// TestPurpose: Validates the password change flow.
// Scope: Unit Test
// Security: Old password reverification before rotation
// Expected: Wrong old password rejects; after a change the new password verifies and the old does not.
// Test Case ID: IDN-04
func TestIdentity_Service_ChangePassword(t *testing.T) {
	_, s, acme, _ := testFixture()
	ctx := context.Background()

	user, err := s.Provision(ctx, acme.ID, "owner@acme.example", "Owner", authz.RoleAdmin, "SecurePassword123")
	if err != nil {
		t.Fatalf("failed to provision: %v", err)
	}

	if err := s.ChangePassword(ctx, user.ID, "WrongOld", "AnotherPassword456"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := s.ChangePassword(ctx, user.ID, "SecurePassword123", "short"); err != ErrWeakPassword {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
	if err := s.ChangePassword(ctx, user.ID, "SecurePassword123", "AnotherPassword456"); err != nil {
		t.Fatalf("expected change to succeed, got %v", err)
	}

	if _, err := s.Verify(ctx, "owner@acme.example", "AnotherPassword456", nil); err != nil {
		t.Errorf("expected new password to verify, got %v", err)
	}
	if _, err := s.Verify(ctx, "owner@acme.example", "SecurePassword123", nil); err != ErrInvalidCredentials {
		t.Errorf("expected old password to fail, got %v", err)
	}
}
