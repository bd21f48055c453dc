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
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tourbase/tourbase/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `
	id, slug, name, domain, plan, active,
	default_currency, currencies, locales,
	contact_email, contact_phone, logo_url,
	created_at, updated_at
`

// Create inserts a new workspace row
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (
			id, slug, name, domain, plan, active,
			default_currency, currencies, locales,
			contact_email, contact_phone, logo_url,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		t.ID, t.Slug, t.Name, t.Domain, t.Plan, t.Active,
		t.DefaultCurrency, t.Currencies, t.Locales,
		t.ContactEmail, t.ContactPhone, t.LogoURL,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a workspace by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.get(ctx, "id = $1", id)
}

// GetBySlug retrieves a workspace by its unique subdomain slug
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return r.get(ctx, "slug = $1", slug)
}

// GetByDomain retrieves a workspace by its registered custom domain
func (r *TenantRepository) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return r.get(ctx, "domain = $1", domain)
}

func (r *TenantRepository) get(ctx context.Context, where string, arg any) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := r.db.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE `+where,
		arg,
	).Scan(
		&t.ID, &t.Slug, &t.Name, &t.Domain, &t.Plan, &t.Active,
		&t.DefaultCurrency, &t.Currencies, &t.Locales,
		&t.ContactEmail, &t.ContactPhone, &t.LogoURL,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}

// Update updates mutable workspace fields
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET
			name = $2,
			domain = $3,
			plan = $4,
			active = $5,
			default_currency = $6,
			currencies = $7,
			locales = $8,
			contact_email = $9,
			contact_phone = $10,
			logo_url = $11,
			updated_at = $12
		WHERE id = $1
	`,
		t.ID, t.Name, t.Domain, t.Plan, t.Active,
		t.DefaultCurrency, t.Currencies, t.Locales,
		t.ContactEmail, t.ContactPhone, t.LogoURL,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// SetActive flips the active flag
func (r *TenantRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update tenant active flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// SetPlan moves a workspace to a different plan
func (r *TenantRepository) SetPlan(ctx context.Context, id string, plan string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET plan = $2, updated_at = NOW() WHERE id = $1
	`, id, plan)
	if err != nil {
		return fmt.Errorf("failed to update tenant plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

// List lists workspaces with pagination
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(
			&t.ID, &t.Slug, &t.Name, &t.Domain, &t.Plan, &t.Active,
			&t.DefaultCurrency, &t.Currencies, &t.Locales,
			&t.ContactEmail, &t.ContactPhone, &t.LogoURL,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}

// PlanFor implements plan.PlanSource with a narrow single-column read.
func (r *TenantRepository) PlanFor(ctx context.Context, tenantID string) (string, error) {
	var plan string
	err := r.db.pool.QueryRow(ctx,
		`SELECT plan FROM tenants WHERE id = $1`, tenantID,
	).Scan(&plan)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", tenant.ErrTenantNotFound
		}
		return "", fmt.Errorf("failed to get tenant plan: %w", err)
	}
	return plan, nil
}
