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

package plan

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownResource = errors.New("unknown resource kind")

// PlanSource resolves a tenant's current plan name.
type PlanSource interface {
	PlanFor(ctx context.Context, tenantID string) (string, error)
}

// UsageCounter counts current rows of a resource kind scoped to a tenant.
type UsageCounter interface {
	Count(ctx context.Context, tenantID string, resource Resource) (int, error)
}

// Result is the outcome of a quota check. On denial, Limit and Current
// are populated for user-facing messaging; quota denials are the one
// rejection kind that is surfaced with detail.
type Result struct {
	Allowed  bool
	Resource Resource
	Limit    int
	Current  int
}

// QuotaError is the typed denial a create path returns to its caller.
type QuotaError struct {
	Resource Resource
	Limit    int
	Current  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("plan limit reached for %s: %d of %d used", e.Resource, e.Current, e.Limit)
}

// Enforcer checks tenant resource usage against plan limits.
//
// The check is advisory-synchronous: callers invoke it immediately
// before the corresponding create, in the same request. The
// count-then-compare is not atomic with the create, so two concurrent
// creations can both pass a check at limit-1 and land one row over.
// Best-effort by contract; closing the race would need the count and
// insert in one transaction or a guarded atomic counter column.
type Enforcer struct {
	plans   PlanSource
	counter UsageCounter
}

// NewEnforcer creates a quota enforcer.
func NewEnforcer(plans PlanSource, counter UsageCounter) *Enforcer {
	return &Enforcer{plans: plans, counter: counter}
}

// CheckLimit reports whether the tenant may create one more row of the
// given resource kind. Unlimited plans return Allowed without counting.
func (e *Enforcer) CheckLimit(ctx context.Context, tenantID string, resource Resource) (Result, error) {
	switch resource {
	case ResourceTours, ResourceBookings, ResourceStaff:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}

	planName, err := e.plans.PlanFor(ctx, tenantID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve plan for tenant: %w", err)
	}

	limit := LimitsFor(planName).For(resource)
	if limit == Unlimited {
		// Skip the count: high-volume tenants sit on unlimited plans
		// and the count is the expensive part of this check.
		return Result{Allowed: true, Resource: resource, Limit: limit}, nil
	}

	current, err := e.counter.Count(ctx, tenantID, resource)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count %s usage: %w", resource, err)
	}

	if current >= limit {
		return Result{Allowed: false, Resource: resource, Limit: limit, Current: current}, nil
	}
	return Result{Allowed: true, Resource: resource, Limit: limit, Current: current}, nil
}

// Err converts a denied Result into its typed error, nil otherwise.
func (r Result) Err() error {
	if r.Allowed {
		return nil
	}
	return &QuotaError{Resource: r.Resource, Limit: r.Limit, Current: r.Current}
}
