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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/gate"
	"github.com/tourbase/tourbase/internal/observability/logger"
	"github.com/tourbase/tourbase/internal/tenant"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.Host(r.Host),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// TenantMiddleware resolves the workspace from the request host and dev
// hints, and stores the outcome in context. Resolution failures are
// stored rather than rejected here: sign-in tolerates a missing hint,
// while workspace-scoped routes enforce presence via RequireTenant.
func (h *Handler) TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := tenant.RequestMeta{
			Host:       r.Host,
			HeaderHint: r.Header.Get(h.tenancyConfig.TenantHeader),
			QueryHint:  r.URL.Query().Get(h.tenancyConfig.TenantQueryParam),
		}

		t, err := h.resolver.Resolve(r.Context(), meta)

		ctx := r.Context()
		if err != nil {
			ctx = context.WithValue(ctx, tenantErrKey, err)
		} else {
			ctx = context.WithValue(ctx, tenantKey, t)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTenant enforces that the request host resolved to a workspace.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetTenant(r.Context()) == nil {
			err := GetTenantErr(r.Context())
			if errors.Is(err, tenant.ErrNoTenantHint) {
				respondError(w, http.StatusBadRequest, "no workspace hint in request")
				return
			}
			respondError(w, http.StatusNotFound, "workspace not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware validates the session token and stores the grant in
// context. The token is read from the session cookie, falling back to
// an Authorization bearer header for API clients.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grant, err := h.gate.Authorize(h.getSessionToken(r))
		if err != nil {
			h.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		ctx := context.WithValue(r.Context(), grantKey, grant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a subtree on role membership. Superadmin passes
// every role gate. Runs after AuthMiddleware.
func (h *Handler) RequireRole(roles ...authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := h.gate.Authorize(h.getSessionToken(r), roles...)
			if err != nil {
				respondGateError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a subtree on a permission atom from the
// static role table. Runs after AuthMiddleware.
func (h *Handler) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			grant := GetGrant(r.Context())
			if grant == nil {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !authz.HasPermission(grant.Role, permission) {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondGateError(w http.ResponseWriter, err error) {
	if errors.Is(err, gate.ErrForbidden) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	respondError(w, http.StatusUnauthorized, "not authenticated")
}
