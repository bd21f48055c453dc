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

// Role is an enumerated access level assigned to a user within a
// workspace. Superadmin is tenant-agnostic; every other role is scoped
// to its own workspace.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleSales      Role = "sales"
	RoleSupport    Role = "support"
	RoleUser       Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleSales, RoleSupport, RoleUser:
		return true
	}
	return false
}

// Permission atoms. The wildcard grants every atom, present and future.
const (
	PermAll = "*"

	PermManageTours     = "manage:tours"
	PermViewTours       = "view:tours"
	PermManageBookings  = "manage:bookings"
	PermViewBookings    = "view:bookings"
	PermManageCustomers = "manage:customers"
	PermViewCustomers   = "view:customers"
	PermManageVendors   = "manage:vendors"
	PermViewVendors     = "view:vendors"
	PermManageStaff     = "manage:staff"
	PermViewStaff       = "view:staff"
	PermViewReports     = "view:reports"
	PermManageTickets   = "manage:tickets"
	PermManageTenants   = "manage:tenants"
)

// rolePermissions is the flat role table. No inheritance: a new
// permission atom must be added to every role row that should carry it.
// Adding a role means adding one row, not subclassing.
var rolePermissions = map[Role][]string{
	RoleSuperadmin: {PermAll},
	RoleAdmin: {
		PermManageTours, PermViewTours,
		PermManageBookings, PermViewBookings,
		PermManageCustomers, PermViewCustomers,
		PermManageVendors, PermViewVendors,
		PermManageStaff, PermViewStaff,
		PermViewReports,
	},
	RoleSales: {
		PermManageBookings, PermViewBookings,
		PermViewCustomers,
		PermViewTours,
	},
	RoleSupport: {
		PermViewBookings,
		PermViewCustomers,
		PermManageTickets,
	},
	RoleUser: {
		PermViewBookings,
	},
}

// PermissionsFor returns the permission atoms granted to a role. The
// returned slice is a copy; callers may not mutate the table.
func PermissionsFor(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether a role carries a permission atom.
// Pure lookup: deterministic, no state, no side effects.
func HasPermission(role Role, permission string) bool {
	for _, p := range rolePermissions[role] {
		if p == PermAll || p == permission {
			return true
		}
	}
	return false
}
