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

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPurpose: Validates the flat role table against the expected grants per role.
// Scope: Unit Test
// Security: Authorization decisions derive entirely from this table; a wrong row is a privilege escalation.
// Expected: Each role carries exactly its intended atoms; no role inherits from another.
// Test Case ID: AUZ-01
func TestAuthz_HasPermission_Table(t *testing.T) {
	cases := []struct {
		role       Role
		permission string
		want       bool
	}{
		{RoleAdmin, PermManageTours, true},
		{RoleAdmin, PermManageStaff, true},
		{RoleAdmin, PermViewReports, true},
		{RoleAdmin, PermManageTenants, false},
		{RoleSales, PermManageBookings, true},
		{RoleSales, PermViewTours, true},
		{RoleSales, PermManageTours, false},
		{RoleSales, PermManageStaff, false},
		{RoleSupport, PermManageTickets, true},
		{RoleSupport, PermViewBookings, true},
		{RoleSupport, PermManageBookings, false},
		{RoleUser, PermViewBookings, true},
		{RoleUser, PermViewCustomers, false},
		{Role("ghost"), PermViewBookings, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HasPermission(tc.role, tc.permission),
			"role %s permission %s", tc.role, tc.permission)
	}
}

// TestPurpose: Validates the superadmin wildcard covers every atom including future ones.
// Scope: Unit Test
// Security: Platform operators bypass per-atom grants by design.
// Expected: Superadmin passes for every defined atom and for atoms that do not exist yet.
// Test Case ID: AUZ-02
func TestAuthz_SuperadminWildcard(t *testing.T) {
	for _, p := range []string{
		PermManageTours, PermManageStaff, PermManageTenants,
		"manage:something-added-later",
	} {
		assert.True(t, HasPermission(RoleSuperadmin, p), "superadmin must carry %s", p)
	}
}

// TestPurpose: Validates that PermissionsFor hands out copies, not the table rows.
// Scope: Unit Test
// Security: A caller mutating a returned slice must not alter authorization for everyone else.
// Expected: Mutating the returned slice leaves subsequent lookups unchanged.
// Test Case ID: AUZ-03
func TestAuthz_PermissionsFor_Copy(t *testing.T) {
	perms := PermissionsFor(RoleUser)
	assert.Equal(t, []string{PermViewBookings}, perms)

	perms[0] = PermAll
	assert.False(t, HasPermission(RoleUser, PermManageTenants))
	assert.Equal(t, []string{PermViewBookings}, PermissionsFor(RoleUser))

	assert.Nil(t, PermissionsFor(Role("ghost")))
}
