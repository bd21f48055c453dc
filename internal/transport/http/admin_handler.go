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

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tourbase/tourbase/internal/observability/logger"
	"github.com/tourbase/tourbase/internal/tenant"
)

// CreateTenantRequest represents a new workspace
type CreateTenantRequest struct {
	Slug         string `json:"slug" binding:"required" example:"acme-tours"`
	Name         string `json:"name" binding:"required" example:"Acme Tours"`
	Plan         string `json:"plan" example:"free"`
	ContactEmail string `json:"contact_email"`
}

// CreateTenant provisions a new workspace
// @Summary Create workspace
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body CreateTenantRequest true "Workspace"
// @Success 201 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Slug, req.Name, req.Plan, req.ContactEmail)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrSlugTaken):
			respondError(w, http.StatusConflict, "slug already taken")
		case errors.Is(err, tenant.ErrInvalidSlug), errors.Is(err, tenant.ErrInvalidPlan):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to create tenant", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create workspace")
		}
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

// ListTenants lists workspaces
// @Summary List workspaces
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {array} tenant.Tenant
// @Router /admin/tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	tenants, err := h.tenantService.ListTenants(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tenants": tenants,
	})
}

// DeactivateTenant suspends a workspace. Existing sessions survive
// until expiry; new sign-ins are rejected.
// @Summary Deactivate workspace
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/deactivate [post]
func (h *Handler) DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	if err := h.tenantService.Deactivate(r.Context(), chi.URLParam(r, "tenantID"), grant.UserID); err != nil {
		h.respondTenantError(w, r, err, "failed to deactivate workspace")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "workspace deactivated",
	})
}

// ReactivateTenant restores a suspended workspace
// @Summary Reactivate workspace
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/reactivate [post]
func (h *Handler) ReactivateTenant(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	if err := h.tenantService.Reactivate(r.Context(), chi.URLParam(r, "tenantID"), grant.UserID); err != nil {
		h.respondTenantError(w, r, err, "failed to reactivate workspace")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "workspace reactivated",
	})
}

// ChangeTenantPlanRequest represents a plan change
type ChangeTenantPlanRequest struct {
	Plan string `json:"plan" binding:"required" example:"pro"`
}

// ChangeTenantPlan moves a workspace to another plan. Active sessions
// keep their captured plan snapshot until reissue; new limits apply to
// quota checks immediately.
// @Summary Change workspace plan
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body ChangeTenantPlanRequest true "Plan"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/tenants/{tenantID}/plan [put]
func (h *Handler) ChangeTenantPlan(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	var req ChangeTenantPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.tenantService.ChangePlan(r.Context(), chi.URLParam(r, "tenantID"), req.Plan, grant.UserID); err != nil {
		if errors.Is(err, tenant.ErrInvalidPlan) {
			respondError(w, http.StatusBadRequest, "unknown plan")
			return
		}
		h.respondTenantError(w, r, err, "failed to change plan")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "plan changed",
	})
}

func (h *Handler) respondTenantError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, tenant.ErrTenantNotFound) {
		respondError(w, http.StatusNotFound, "workspace not found")
		return
	}
	slog.ErrorContext(r.Context(), fallback, logger.Error(err))
	respondError(w, http.StatusInternalServerError, fallback)
}
