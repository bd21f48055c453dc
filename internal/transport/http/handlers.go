// @title Tourbase API
// @version 1.0.0
// @description Multi-tenant tour operator platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name tb_session

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/gate"
	"github.com/tourbase/tourbase/internal/identity"
	"github.com/tourbase/tourbase/internal/inventory"
	"github.com/tourbase/tourbase/internal/observability/logger"
	"github.com/tourbase/tourbase/internal/observability/metrics"
	"github.com/tourbase/tourbase/internal/plan"
	"github.com/tourbase/tourbase/internal/session"
	"github.com/tourbase/tourbase/internal/tenant"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	magicLink       *identity.MagicLinkService
	tenantService   *tenant.Service
	resolver        *tenant.Resolver
	binder          *session.Binder
	gate            *gate.Gate
	enforcer        *plan.Enforcer
	inventory       inventory.Repository
	authMetrics     *metrics.AuthMetrics
	auditLogger     audit.Logger
	sessionConfig   SessionConfig
	tenancyConfig   TenancyConfig
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	MaxAge         int
}

// TenancyConfig names the dev-host hint carriers the tenant middleware
// reads.
type TenancyConfig struct {
	TenantHeader     string
	TenantQueryParam string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	magicLink *identity.MagicLinkService,
	tenantService *tenant.Service,
	resolver *tenant.Resolver,
	binder *session.Binder,
	g *gate.Gate,
	enforcer *plan.Enforcer,
	inv inventory.Repository,
	authMetrics *metrics.AuthMetrics,
	auditLogger audit.Logger,
	sessionConfig SessionConfig,
	tenancyConfig TenancyConfig,
) *Handler {
	return &Handler{
		identityService: identityService,
		magicLink:       magicLink,
		tenantService:   tenantService,
		resolver:        resolver,
		binder:          binder,
		gate:            g,
		enforcer:        enforcer,
		inventory:       inv,
		authMetrics:     authMetrics,
		auditLogger:     auditLogger,
		sessionConfig:   sessionConfig,
		tenancyConfig:   tenancyConfig,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Sign-in endpoints run under tenant resolution but do not
		// require it: a hint-less sign-in proceeds on the global email
		// lookup.
		r.Group(func(r chi.Router) {
			r.Use(h.TenantMiddleware)
			r.Post("/auth/login", h.Login)
			r.Post("/auth/magic-link", h.RequestMagicLink)
			r.Post("/auth/magic-link/redeem", h.RedeemMagicLink)
		})

		r.Post("/auth/logout", h.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentUser)
			r.Post("/auth/change-password", h.ChangePassword)

			r.Route("/tours", func(r chi.Router) {
				r.With(h.RequirePermission(authz.PermViewTours)).Get("/", h.ListTours)
				r.With(h.RequirePermission(authz.PermViewTours)).Get("/{tourID}", h.GetTour)
				r.With(h.RequirePermission(authz.PermManageTours)).Post("/", h.CreateTour)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.With(h.RequirePermission(authz.PermViewBookings)).Get("/", h.ListBookings)
				r.With(h.RequirePermission(authz.PermManageBookings)).Post("/", h.CreateBooking)
			})

			r.With(h.RequirePermission(authz.PermManageStaff)).Post("/staff", h.ProvisionStaff)

			// Platform administration (superadmin only)
			r.Route("/admin/tenants", func(r chi.Router) {
				r.Use(h.RequireRole(authz.RoleSuperadmin))
				r.Get("/", h.ListTenants)
				r.Post("/", h.CreateTenant)
				r.Post("/{tenantID}/deactivate", h.DeactivateTenant)
				r.Post("/{tenantID}/reactivate", h.ReactivateTenant)
				r.Put("/{tenantID}/plan", h.ChangeTenantPlan)
			})
		})
	})

	return r
}

// HealthCheck returns service health
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tourbase",
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate user and issue a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A host that claimed a workspace and missed is a dead address,
	// not a sign-in failure.
	hint := GetTenant(r.Context())
	if hint == nil && errors.Is(GetTenantErr(r.Context()), tenant.ErrTenantNotFound) {
		respondError(w, http.StatusNotFound, "workspace not found")
		return
	}

	ident, err := h.identityService.Verify(r.Context(), req.Email, req.Password, hint)
	if err != nil {
		h.authMetrics.SignInFails.Add(r.Context(), 1)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.binder.CreateSession(ident)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if err := h.identityService.RecordSignIn(r.Context(), ident.UserID); err != nil {
		slog.WarnContext(r.Context(), "failed to record sign-in time", logger.Error(err))
	}

	h.setSessionCookie(w, token)
	h.authMetrics.SignIns.Add(r.Context(), 1)

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeLoginSuccess,
		TenantID:  ident.TenantID,
		ActorID:   ident.UserID,
		Resource:  "session",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"user_id":     ident.UserID,
		"email":       ident.Email,
		"tenant_id":   ident.TenantID,
		"tenant_slug": ident.TenantSlug,
		"role":        string(ident.Role),
		"plan":        ident.Plan,
	})
}

// MagicLinkRequest represents a passwordless sign-in request
type MagicLinkRequest struct {
	Email string `json:"email" binding:"required" example:"user@example.com"`
}

// RequestMagicLink issues a single-use sign-in link
// @Summary Request magic link
// @Description Send a single-use sign-in link to the email if it exists
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body MagicLinkRequest true "Email"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/magic-link [post]
func (h *Handler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.magicLink.Request(r.Context(), req.Email); err != nil {
		slog.ErrorContext(r.Context(), "failed to issue magic link", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to issue sign-in link")
		return
	}

	// Identical response whether or not the email matched a user.
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "if the address is registered, a sign-in link has been sent",
	})
}

// RedeemMagicLinkRequest carries the opaque token from the link
type RedeemMagicLinkRequest struct {
	Token string `json:"token" binding:"required"`
}

// RedeemMagicLink exchanges a magic-link token for a session
// @Summary Redeem magic link
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RedeemMagicLinkRequest true "Token"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/magic-link/redeem [post]
func (h *Handler) RedeemMagicLink(w http.ResponseWriter, r *http.Request) {
	var req RedeemMagicLinkRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, err := h.magicLink.Redeem(r.Context(), req.Token)
	if err != nil {
		h.authMetrics.SignInFails.Add(r.Context(), 1)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.binder.CreateSession(ident)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if err := h.identityService.RecordSignIn(r.Context(), ident.UserID); err != nil {
		slog.WarnContext(r.Context(), "failed to record sign-in time", logger.Error(err))
	}

	h.setSessionCookie(w, token)
	h.authMetrics.SignIns.Add(r.Context(), 1)

	respondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": ident.UserID,
		"email":   ident.Email,
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Clear the session cookie. Tokens are stateless and
// remain valid until expiry; logout is a client-side discard.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if grant, err := h.gate.Authorize(h.getSessionToken(r)); err == nil {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLogout,
			TenantID:  grant.TenantID,
			ActorID:   grant.UserID,
			Resource:  "session",
			IPAddress: getIPAddress(r),
		})
	}

	h.clearSessionCookie(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// GetCurrentUser returns the session snapshot
// @Summary Current user
// @Description Return the identity snapshot the session token carries
// @Tags Auth
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	snap, err := h.binder.ReadSession(h.getSessionToken(r))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     snap.UserID,
		"tenant_id":   snap.TenantID,
		"tenant_slug": snap.TenantSlug,
		"tenant_name": snap.TenantName,
		"role":        string(snap.Role),
		"plan":        snap.Plan,
		"permissions": authz.PermissionsFor(snap.Role),
	})
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword updates the caller's password
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	grant := GetGrant(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.identityService.ChangePassword(r.Context(), grant.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "new password does not meet security requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to change password", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    token,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   h.sessionConfig.MaxAge,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

// getSessionToken reads the session token from the cookie, falling
// back to an Authorization bearer header for API clients.
func (h *Handler) getSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(h.sessionConfig.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
