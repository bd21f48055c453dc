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

	"github.com/tourbase/tourbase/internal/gate"
	"github.com/tourbase/tourbase/internal/tenant"
)

type contextKey string

const (
	tenantKey    contextKey = "tenant"
	tenantErrKey contextKey = "tenant_err"
	grantKey     contextKey = "grant"
)

// GetTenant retrieves the resolved workspace from context. Nil when
// resolution found no tenant for the request host.
func GetTenant(ctx context.Context) *tenant.Tenant {
	if t, ok := ctx.Value(tenantKey).(*tenant.Tenant); ok {
		return t
	}
	return nil
}

// GetTenantErr retrieves the resolution failure from context. Handlers
// use it to distinguish a missing hint from an unknown workspace.
func GetTenantErr(ctx context.Context) error {
	if err, ok := ctx.Value(tenantErrKey).(error); ok {
		return err
	}
	return nil
}

// GetGrant retrieves the authorization grant from context. Nil on
// unauthenticated routes.
func GetGrant(ctx context.Context) *gate.Grant {
	if g, ok := ctx.Value(grantKey).(*gate.Grant); ok {
		return g
	}
	return nil
}
