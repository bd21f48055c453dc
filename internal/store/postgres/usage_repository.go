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

package postgres

import (
	"context"
	"fmt"

	"github.com/tourbase/tourbase/internal/plan"
)

// UsageRepository implements plan.UsageCounter with live COUNT queries.
// No cached counters: quota checks read current truth, and the tenant
// indexes on each table keep the counts cheap at plan-limit scale.
type UsageRepository struct {
	db *DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Count returns the number of live rows of a resource kind in a workspace.
func (r *UsageRepository) Count(ctx context.Context, tenantID string, resource plan.Resource) (int, error) {
	var query string
	switch resource {
	case plan.ResourceTours:
		query = `SELECT COUNT(*) FROM tours WHERE tenant_id = $1`
	case plan.ResourceBookings:
		query = `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1`
	case plan.ResourceStaff:
		query = `SELECT COUNT(*) FROM users WHERE tenant_id = $1`
	default:
		return 0, fmt.Errorf("%w: %q", plan.ErrUnknownResource, resource)
	}

	var count int
	if err := r.db.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return count, nil
}
