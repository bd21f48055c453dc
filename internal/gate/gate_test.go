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

package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/identity"
	"github.com/tourbase/tourbase/internal/session"
)

func gateFixture(role authz.Role, lifetime time.Duration) (*Gate, string) {
	binder := session.NewBinder("test-signing-secret-at-least-32-bytes", "tourbase", lifetime)
	token, err := binder.CreateSession(&identity.Identity{
		UserID:     "u-1",
		TenantID:   "t-acme",
		TenantSlug: "acme",
		TenantName: "Acme Tours",
		Role:       role,
		Plan:       "basic",
	})
	if err != nil {
		panic(err)
	}
	return New(binder), token
}

// TestPurpose: Validates the gate's accept/reject decisions for token presence, validity, and role membership.
// Scope: Unit Test
// Security: The gate is the single authorization entry point for request handling.
// Expected: Missing and expired tokens are unauthenticated; a valid token without the required role is forbidden; a grant carries the tenant scope.
// Test Case ID: GAT-01
func TestGate_Authorize(t *testing.T) {
	g, token := gateFixture(authz.RoleSales, time.Hour)

	_, err := g.Authorize("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	grant, err := g.Authorize(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", grant.UserID)
	assert.Equal(t, "t-acme", grant.TenantID)
	assert.Equal(t, authz.RoleSales, grant.Role)
	assert.Equal(t, "basic", grant.Plan)

	grant, err = g.Authorize(token, authz.RoleSales, authz.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "acme", grant.TenantSlug)

	_, err = g.Authorize(token, authz.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	expired, expiredToken := gateFixture(authz.RoleSales, -time.Minute)
	_, err = expired.Authorize(expiredToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

// TestPurpose: Validates that superadmin passes every role gate.
// Scope: Unit Test
// Security: Platform operator access model
// Expected: A superadmin grant satisfies any role requirement.
// Test Case ID: GAT-02
func TestGate_SuperadminPassesRoleGates(t *testing.T) {
	g, token := gateFixture(authz.RoleSuperadmin, time.Hour)

	for _, required := range []authz.Role{authz.RoleAdmin, authz.RoleSales, authz.RoleSupport, authz.RoleUser} {
		_, err := g.Authorize(token, required)
		assert.NoError(t, err, "superadmin must pass %s gate", required)
	}
}

// TestPurpose: Validates permission-atom gating through the static role table.
// Scope: Unit Test
// Security: Fine-grained operation authorization
// Expected: A sales grant passes booking management but not tour management; failures carry no detail.
// Test Case ID: GAT-03
func TestGate_RequirePermission(t *testing.T) {
	g, token := gateFixture(authz.RoleSales, time.Hour)

	grant, err := g.RequirePermission(token, authz.PermManageBookings)
	require.NoError(t, err)
	assert.Equal(t, "t-acme", grant.TenantID)

	_, err = g.RequirePermission(token, authz.PermManageTours)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = g.RequirePermission("", authz.PermManageBookings)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
