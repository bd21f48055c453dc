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

	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/tenant"
)

// BootstrapSeed is the env-driven first-run configuration.
type BootstrapSeed struct {
	SuperadminEmail    string
	SuperadminPassword string
	TenantSlug         string
	TenantName         string
	TenantPlan         string
}

// BootstrapService seeds the platform workspace and its superadmin on
// first run.
type BootstrapService struct {
	identityService *Service
	tenantService   *tenant.Service
	tenants         tenant.Repository
	auditLogger     audit.Logger
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(
	identityService *Service,
	tenantService *tenant.Service,
	tenants tenant.Repository,
	auditLogger audit.Logger,
) *BootstrapService {
	return &BootstrapService{
		identityService: identityService,
		tenantService:   tenantService,
		tenants:         tenants,
		auditLogger:     auditLogger,
	}
}

// Bootstrap executes the seed if configured and not already applied.
// Missing email means bootstrap is disabled; an existing superadmin in
// the platform workspace means it already ran, and we skip silently.
func (s *BootstrapService) Bootstrap(ctx context.Context, seed BootstrapSeed) error {
	if seed.SuperadminEmail == "" {
		return nil
	}
	if seed.SuperadminPassword == "" {
		return fmt.Errorf("bootstrap superadmin password is required when bootstrap email is set")
	}

	platform, err := s.tenants.GetBySlug(ctx, seed.TenantSlug)
	if err != nil {
		platform, err = s.tenantService.CreateTenant(ctx, seed.TenantSlug, seed.TenantName, seed.TenantPlan, seed.SuperadminEmail)
		if err != nil {
			return fmt.Errorf("failed to create platform tenant: %w", err)
		}
	}

	if existing, err := s.identityService.repo.GetByEmail(ctx, platform.ID, seed.SuperadminEmail); err == nil && existing != nil {
		return nil
	}

	user, err := s.identityService.Provision(ctx, platform.ID, seed.SuperadminEmail, "Superadmin", authz.RoleSuperadmin, seed.SuperadminPassword)
	if err != nil {
		return fmt.Errorf("failed to provision superadmin: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: platform.ID,
		ActorID:  audit.ActorSystemBootstrap,
		Resource: "superadmin",
		Metadata: map[string]any{audit.AttrEmail: user.Email},
	})

	return nil
}
