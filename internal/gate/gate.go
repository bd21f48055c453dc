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

// Package gate composes the session binder and the permission table
// into the single authorization entry point route handlers call.
package gate

import (
	"errors"

	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/session"
)

var (
	// ErrUnauthenticated means no valid session accompanied the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid session lacked the required role. The
	// error carries no detail about which requirement was missed.
	ErrForbidden = errors.New("forbidden")
)

// Grant is what a passed gate hands back: the identifiers a handler
// scopes its persistence operations with.
type Grant struct {
	UserID     string
	TenantID   string
	TenantSlug string
	Role       authz.Role
	Plan       string
}

// Gate accepts or rejects an inbound operation.
//
// Quota checks are deliberately not part of the gate: only create-type
// operations consult the plan enforcer, and they do so explicitly right
// before the insert.
type Gate struct {
	binder *session.Binder
}

// New creates a request gate over a session binder.
func New(binder *session.Binder) *Gate {
	return &Gate{binder: binder}
}

// Authorize validates the session token and, when requiredRoles is
// non-empty, checks membership. Superadmin passes every role gate.
func (g *Gate) Authorize(token string, requiredRoles ...authz.Role) (*Grant, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	snap, err := g.binder.ReadSession(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if len(requiredRoles) > 0 && !roleAllowed(snap.Role, requiredRoles) {
		return nil, ErrForbidden
	}

	return &Grant{
		UserID:     snap.UserID,
		TenantID:   snap.TenantID,
		TenantSlug: snap.TenantSlug,
		Role:       snap.Role,
		Plan:       snap.Plan,
	}, nil
}

// RequirePermission authorizes the token and checks a permission atom
// against the static role table.
func (g *Gate) RequirePermission(token, permission string) (*Grant, error) {
	grant, err := g.Authorize(token)
	if err != nil {
		return nil, err
	}
	if !authz.HasPermission(grant.Role, permission) {
		return nil, ErrForbidden
	}
	return grant, nil
}

func roleAllowed(role authz.Role, required []authz.Role) bool {
	if role == authz.RoleSuperadmin {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}
