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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/gate"
	"github.com/tourbase/tourbase/internal/id"
	"github.com/tourbase/tourbase/internal/identity"
	"github.com/tourbase/tourbase/internal/inventory"
	"github.com/tourbase/tourbase/internal/observability/logger"
	"github.com/tourbase/tourbase/internal/plan"
)

// checkQuota runs the plan limit check immediately before a create.
// On denial it writes the one rejection kind that carries detail
// (limit and current usage) and reports false.
func (h *Handler) checkQuota(w http.ResponseWriter, r *http.Request, grant *gate.Grant, resource plan.Resource) bool {
	result, err := h.enforcer.CheckLimit(r.Context(), grant.TenantID, resource)
	if err != nil {
		slog.ErrorContext(r.Context(), "quota check failed",
			logger.Error(err),
			logger.TenantID(grant.TenantID),
			logger.Resource(string(resource)),
		)
		respondError(w, http.StatusInternalServerError, "failed to check plan limits")
		return false
	}
	if result.Allowed {
		return true
	}

	h.authMetrics.RecordQuotaDenial(r.Context(), string(resource))
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:     audit.TypeQuotaDenied,
		TenantID: grant.TenantID,
		ActorID:  grant.UserID,
		Resource: string(resource),
		Metadata: map[string]any{
			audit.AttrLimit:   result.Limit,
			audit.AttrCurrent: result.Current,
			audit.AttrPlan:    grant.Plan,
		},
	})

	respondJSON(w, http.StatusForbidden, map[string]any{
		"error":    "plan limit reached",
		"resource": string(resource),
		"limit":    result.Limit,
		"current":  result.Current,
	})
	return false
}

// CreateTourRequest represents a new tour
type CreateTourRequest struct {
	Name         string `json:"name" binding:"required" example:"Sunset Kayak Tour"`
	Description  string `json:"description"`
	Price        int64  `json:"price" example:"12500"`
	Currency     string `json:"currency" example:"EUR"`
	DurationDays int    `json:"duration_days" example:"1"`
}

// CreateTour creates a tour, subject to the plan's tour limit
// @Summary Create tour
// @Tags Tours
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body CreateTourRequest true "Tour"
// @Success 201 {object} inventory.Tour
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]any
// @Router /tours [post]
func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	var req CreateTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	if !h.checkQuota(w, r, grant, plan.ResourceTours) {
		return
	}

	tour := &inventory.Tour{
		ID:           id.NewUUIDv7(),
		TenantID:     grant.TenantID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		DurationDays: req.DurationDays,
		CreatedBy:    grant.UserID,
		CreatedAt:    time.Now(),
	}

	if err := h.inventory.CreateTour(r.Context(), tour); err != nil {
		slog.ErrorContext(r.Context(), "failed to create tour", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create tour")
		return
	}

	respondJSON(w, http.StatusCreated, tour)
}

// GetTour returns a tour in the caller's workspace
// @Summary Get tour
// @Tags Tours
// @Produce json
// @Security CookieAuth
// @Param tourID path string true "Tour ID"
// @Success 200 {object} inventory.Tour
// @Failure 404 {object} map[string]string
// @Router /tours/{tourID} [get]
func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	tour, err := h.inventory.GetTour(r.Context(), grant.TenantID, chi.URLParam(r, "tourID"))
	if err != nil {
		if errors.Is(err, inventory.ErrTourNotFound) {
			respondError(w, http.StatusNotFound, "tour not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tour", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get tour")
		return
	}

	respondJSON(w, http.StatusOK, tour)
}

// ListTours lists tours in the caller's workspace
// @Summary List tours
// @Tags Tours
// @Produce json
// @Security CookieAuth
// @Success 200 {array} inventory.Tour
// @Router /tours [get]
func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())
	limit, offset := parsePagination(r)

	tours, err := h.inventory.ListTours(r.Context(), grant.TenantID, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tours", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tours")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tours": tours,
	})
}

// CreateBookingRequest represents a new booking
type CreateBookingRequest struct {
	TourID        string `json:"tour_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email"`
	Seats         int    `json:"seats" example:"2"`
}

// CreateBooking creates a booking, subject to the plan's booking limit
// @Summary Create booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body CreateBookingRequest true "Booking"
// @Success 201 {object} inventory.Booking
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]any
// @Router /bookings [post]
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TourID == "" || req.CustomerName == "" {
		respondError(w, http.StatusBadRequest, "tour_id and customer_name are required")
		return
	}
	if req.Seats <= 0 {
		req.Seats = 1
	}

	// Tour lookup is tenant-scoped, so a foreign tour id reads as absent.
	tour, err := h.inventory.GetTour(r.Context(), grant.TenantID, req.TourID)
	if err != nil {
		if errors.Is(err, inventory.ErrTourNotFound) {
			respondError(w, http.StatusNotFound, "tour not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tour", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	if !h.checkQuota(w, r, grant, plan.ResourceBookings) {
		return
	}

	booking := &inventory.Booking{
		ID:            id.NewUUIDv7(),
		TenantID:      grant.TenantID,
		TourID:        tour.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Seats:         req.Seats,
		Status:        inventory.BookingPending,
		TotalAmount:   tour.Price * int64(req.Seats),
		CreatedBy:     grant.UserID,
		CreatedAt:     time.Now(),
	}

	if err := h.inventory.CreateBooking(r.Context(), booking); err != nil {
		slog.ErrorContext(r.Context(), "failed to create booking", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	respondJSON(w, http.StatusCreated, booking)
}

// ListBookings lists bookings in the caller's workspace
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Security CookieAuth
// @Success 200 {array} inventory.Booking
// @Router /bookings [get]
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())
	limit, offset := parsePagination(r)

	bookings, err := h.inventory.ListBookings(r.Context(), grant.TenantID, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list bookings", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
	})
}

// ProvisionStaffRequest represents a new staff member
type ProvisionStaffRequest struct {
	Email    string `json:"email" binding:"required" example:"guide@acme.example"`
	Name     string `json:"name"`
	Role     string `json:"role" example:"sales"`
	Password string `json:"password" binding:"required"`
}

// ProvisionStaff creates a staff user, subject to the plan's staff limit
// @Summary Provision staff user
// @Tags Staff
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body ProvisionStaffRequest true "Staff member"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /staff [post]
func (h *Handler) ProvisionStaff(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	var req ProvisionStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := authz.Role(req.Role)
	if req.Role == "" {
		role = authz.RoleUser
	}
	if !role.Valid() || role == authz.RoleSuperadmin {
		respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if !h.checkQuota(w, r, grant, plan.ResourceStaff) {
		return
	}

	user, err := h.identityService.Provision(r.Context(), grant.TenantID, req.Email, req.Name, role, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "password does not meet security requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to provision staff user", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
}
