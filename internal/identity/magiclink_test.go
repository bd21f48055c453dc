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
	"github.com/tourbase/tourbase/internal/tenant"
)

// MockLoginTokenRepository is an in-memory LoginTokenRepository
type MockLoginTokenRepository struct {
	byHash map[string]*LoginToken
}

func NewMockLoginTokenRepository() *MockLoginTokenRepository {
	return &MockLoginTokenRepository{byHash: make(map[string]*LoginToken)}
}

func (m *MockLoginTokenRepository) Create(ctx context.Context, token *LoginToken) error {
	m.byHash[token.TokenHash] = token
	return nil
}

func (m *MockLoginTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*LoginToken, error) {
	t, ok := m.byHash[tokenHash]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return t, nil
}

func (m *MockLoginTokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	for _, t := range m.byHash {
		if t.ID == id && t.UsedAt == nil {
			t.UsedAt = &at
			return nil
		}
	}
	return ErrTokenNotFound
}

func (m *MockLoginTokenRepository) DeleteExpired(ctx context.Context) error {
	for h, t := range m.byHash {
		if time.Now().After(t.ExpiresAt) {
			delete(m.byHash, h)
		}
	}
	return nil
}

// captureMailer records the last issued token instead of sending mail
type captureMailer struct {
	email string
	token string
	sent  int
}

func (c *captureMailer) SendLoginLink(ctx context.Context, email, token string) error {
	c.email = email
	c.token = token
	c.sent++
	return nil
}

type tenantRepoAdapter struct {
	tenants map[string]*tenant.Tenant
}

func (a *tenantRepoAdapter) Create(ctx context.Context, t *tenant.Tenant) error { return nil }
func (a *tenantRepoAdapter) Update(ctx context.Context, t *tenant.Tenant) error { return nil }
func (a *tenantRepoAdapter) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	if t, ok := a.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}
func (a *tenantRepoAdapter) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}
func (a *tenantRepoAdapter) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}
func (a *tenantRepoAdapter) SetActive(ctx context.Context, id string, active bool) error { return nil }
func (a *tenantRepoAdapter) SetPlan(ctx context.Context, id, plan string) error          { return nil }
func (a *tenantRepoAdapter) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	return nil, nil
}

func magicLinkFixture(ttl time.Duration) (*MockUserRepository, *MockLoginTokenRepository, *captureMailer, *MagicLinkService, *tenant.Tenant) {
	acme := &tenant.Tenant{ID: "t-acme", Slug: "acme", Name: "Acme Tours", Plan: "pro", Active: true}
	users := NewMockUserRepository(acme)
	tokens := NewMockLoginTokenRepository()
	mailer := &captureMailer{}
	tenants := &tenantRepoAdapter{tenants: map[string]*tenant.Tenant{acme.ID: acme}}
	svc := NewMagicLinkService(users, tenants, tokens, mailer, audit.NewSlogLogger(), ttl)
	return users, tokens, mailer, svc, acme
}

// TestPurpose: Validates the passwordless request/redeem round trip and single-use enforcement.
// Scope: Unit Test
// Security: Single-use tokens; only the hash is persisted.
// Expected: A requested token redeems once into a full identity snapshot and is rejected on replay.
// Test Case ID: IDN-ML-01
func TestIdentity_MagicLink_RoundTrip(t *testing.T) {
	users, tokens, mailer, svc, acme := magicLinkFixture(15 * time.Minute)
	ctx := context.Background()

	user := &User{ID: "u-1", TenantID: acme.ID, Email: "owner@acme.example", Role: authz.RoleAdmin, CreatedAt: time.Now()}
	users.Create(ctx, user)

	if err := svc.Request(ctx, "Owner@Acme.example"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if mailer.sent != 1 {
		t.Fatalf("expected one mail, got %d", mailer.sent)
	}

	// The raw token never touches storage.
	if _, ok := tokens.byHash[mailer.token]; ok {
		t.Error("raw token stored; only the hash may be persisted")
	}

	ident, err := svc.Redeem(ctx, mailer.token)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if ident.UserID != user.ID || ident.TenantSlug != "acme" {
		t.Errorf("unexpected snapshot: %+v", ident)
	}

	// Replay is rejected.
	if _, err := svc.Redeem(ctx, mailer.token); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials on replay, got %v", err)
	}
}

// TestPurpose: Validates enumeration resistance and expiry of magic links.
// Scope: Unit Test
// Security: Unknown emails must be indistinguishable from known ones; expired tokens must not sign in.
// Expected: Requests for unknown emails succeed silently without mail; expired tokens are rejected.
// Test Case ID: IDN-ML-02
func TestIdentity_MagicLink_UnknownAndExpired(t *testing.T) {
	users, _, mailer, svc, acme := magicLinkFixture(-1 * time.Minute)
	ctx := context.Background()

	if err := svc.Request(ctx, "nobody@example.com"); err != nil {
		t.Errorf("unknown email must not error, got %v", err)
	}
	if mailer.sent != 0 {
		t.Errorf("no mail expected for unknown email, got %d", mailer.sent)
	}

	// Negative TTL produces an already-expired token.
	user := &User{ID: "u-1", TenantID: acme.ID, Email: "owner@acme.example", Role: authz.RoleAdmin, CreatedAt: time.Now()}
	users.Create(ctx, user)

	if err := svc.Request(ctx, "owner@acme.example"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.Redeem(ctx, mailer.token); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for expired token, got %v", err)
	}
}

// TestPurpose: Validates that workspace suspension between issue and redeem blocks sign-in.
// Scope: Unit Test
// Security: Suspended workspaces must not gain sessions through previously issued links.
// Expected: A valid token fails redemption once the owning workspace is deactivated.
// Test Case ID: IDN-ML-03
func TestIdentity_MagicLink_InactiveTenantAtRedeem(t *testing.T) {
	users, _, mailer, svc, acme := magicLinkFixture(15 * time.Minute)
	ctx := context.Background()

	user := &User{ID: "u-1", TenantID: acme.ID, Email: "owner@acme.example", Role: authz.RoleAdmin, CreatedAt: time.Now()}
	users.Create(ctx, user)

	if err := svc.Request(ctx, "owner@acme.example"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	acme.Active = false
	if _, err := svc.Redeem(ctx, mailer.token); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials after suspension, got %v", err)
	}
}
