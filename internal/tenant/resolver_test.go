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

package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is a minimal in-memory Repository for resolver tests.
type memRepo struct {
	bySlug   map[string]*Tenant
	byDomain map[string]*Tenant
}

func newMemRepo(tenants ...*Tenant) *memRepo {
	r := &memRepo{
		bySlug:   make(map[string]*Tenant),
		byDomain: make(map[string]*Tenant),
	}
	for _, t := range tenants {
		r.bySlug[t.Slug] = t
		if t.Domain != nil {
			r.byDomain[*t.Domain] = t
		}
	}
	return r
}

func (r *memRepo) Create(ctx context.Context, t *Tenant) error {
	r.bySlug[t.Slug] = t
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*Tenant, error) {
	for _, t := range r.bySlug {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (r *memRepo) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	if t, ok := r.bySlug[slug]; ok {
		return t, nil
	}
	return nil, ErrTenantNotFound
}

func (r *memRepo) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	if t, ok := r.byDomain[domain]; ok {
		return t, nil
	}
	return nil, ErrTenantNotFound
}

func (r *memRepo) Update(ctx context.Context, t *Tenant) error { return nil }

func (r *memRepo) SetActive(ctx context.Context, id string, active bool) error { return nil }

func (r *memRepo) SetPlan(ctx context.Context, id, plan string) error { return nil }

func (r *memRepo) List(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return nil, nil
}

func acmeFixture() (*memRepo, *Resolver) {
	domain := "tours.acme.example"
	repo := newMemRepo(
		&Tenant{ID: "t-acme", Slug: "acme", Name: "Acme Tours", Active: true, Domain: &domain},
		&Tenant{ID: "t-globex", Slug: "globex", Name: "Globex Travel", Active: true},
	)
	resolver := NewResolver(repo, "tourbase.app", []string{"localhost", "127.0.0.1", "::1"})
	return repo, resolver
}

// TestPurpose: Validates subdomain-based workspace resolution against the platform apex domain.
// Scope: Unit Test
// Security: Tenant isolation depends on deterministic host-to-workspace mapping.
// Expected: {slug}.platform-domain resolves by slug; the bare apex and unknown slugs fail without falling back.
// Test Case ID: TEN-RES-01
func TestTenant_Resolver_Subdomain(t *testing.T) {
	_, resolver := acmeFixture()
	ctx := context.Background()

	got, err := resolver.Resolve(ctx, RequestMeta{Host: "acme.tourbase.app"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)

	// Port and case do not change the outcome.
	got, err = resolver.Resolve(ctx, RequestMeta{Host: "ACME.tourbase.app:8443"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)

	// Unknown slug under the platform domain is claimed by the
	// subdomain strategy and must not fall through to custom domains.
	_, err = resolver.Resolve(ctx, RequestMeta{Host: "nosuch.tourbase.app"})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	// The bare apex has only two labels and is not a workspace address.
	_, err = resolver.Resolve(ctx, RequestMeta{Host: "tourbase.app"})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

// TestPurpose: Validates custom-domain workspace resolution for hosts outside the platform domain.
// Scope: Unit Test
// Security: Custom domains must map only to the workspace that registered them.
// Expected: A registered full hostname resolves; an unregistered one returns not-found.
// Test Case ID: TEN-RES-02
func TestTenant_Resolver_CustomDomain(t *testing.T) {
	_, resolver := acmeFixture()
	ctx := context.Background()

	got, err := resolver.Resolve(ctx, RequestMeta{Host: "tours.acme.example"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)

	_, err = resolver.Resolve(ctx, RequestMeta{Host: "unknown.example"})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

// TestPurpose: Validates development-host hint resolution and its precedence rules.
// Scope: Unit Test
// Security: Hints are honored only on configured development hosts, never on production hosts.
// Expected: Header hint wins over query hint; no hint on a dev host yields the distinct no-hint error.
// Test Case ID: TEN-RES-03
func TestTenant_Resolver_DevHints(t *testing.T) {
	_, resolver := acmeFixture()
	ctx := context.Background()

	got, err := resolver.Resolve(ctx, RequestMeta{Host: "localhost:8080", HeaderHint: "globex"})
	require.NoError(t, err)
	assert.Equal(t, "t-globex", got.ID)

	got, err = resolver.Resolve(ctx, RequestMeta{Host: "127.0.0.1", QueryHint: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)

	// Header takes precedence over query.
	got, err = resolver.Resolve(ctx, RequestMeta{Host: "localhost", HeaderHint: "acme", QueryHint: "globex"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)

	// A dev host without any hint is distinguishable from a miss.
	_, err = resolver.Resolve(ctx, RequestMeta{Host: "localhost"})
	assert.ErrorIs(t, err, ErrNoTenantHint)

	// Hints are ignored on non-dev hosts: the host itself decides.
	got, err = resolver.Resolve(ctx, RequestMeta{Host: "acme.tourbase.app", HeaderHint: "globex"})
	require.NoError(t, err)
	assert.Equal(t, "t-acme", got.ID)
}
