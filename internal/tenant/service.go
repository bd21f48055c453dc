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
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/id"
	"github.com/tourbase/tourbase/internal/plan"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// Service provides workspace management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateTenant provisions a new workspace on the given plan.
func (s *Service) CreateTenant(ctx context.Context, slug, name, planName, contactEmail string) (*Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if !plan.Valid(planName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, planName)
	}

	if _, err := s.repo.GetBySlug(ctx, slug); err == nil {
		return nil, ErrSlugTaken
	}

	now := time.Now()
	t := &Tenant{
		ID:              id.NewUUIDv7(),
		Slug:            slug,
		Name:            name,
		Plan:            planName,
		Active:          true,
		DefaultCurrency: "USD",
		Currencies:      []string{"USD"},
		Locales:         []string{"en"},
		ContactEmail:    contactEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		Resource: "tenant",
		Metadata: map[string]any{audit.AttrTenantSlug: slug, audit.AttrPlan: planName},
	})

	return t, nil
}

// GetTenant retrieves a workspace by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTenants lists workspaces with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// Deactivate marks a workspace inactive. Inactive workspaces reject all
// authenticated access; rows are kept for billing reactivation.
func (s *Service) Deactivate(ctx context.Context, tenantID, actorID string) error {
	if err := s.repo.SetActive(ctx, tenantID, false); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeactivated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "tenant",
	})
	return nil
}

// Reactivate restores an inactive workspace.
func (s *Service) Reactivate(ctx context.Context, tenantID, actorID string) error {
	if err := s.repo.SetActive(ctx, tenantID, true); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantReactivated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "tenant",
	})
	return nil
}

// ChangePlan moves a workspace to a different subscription plan.
// Sessions issued before the change keep the old plan snapshot until
// they are refreshed.
func (s *Service) ChangePlan(ctx context.Context, tenantID, planName, actorID string) error {
	if !plan.Valid(planName) {
		return fmt.Errorf("%w: %q", ErrInvalidPlan, planName)
	}
	if err := s.repo.SetPlan(ctx, tenantID, planName); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePlanChanged,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: "tenant",
		Metadata: map[string]any{audit.AttrPlan: planName},
	})
	return nil
}
