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

	"github.com/jackc/pgx/v5"
	"github.com/tourbase/tourbase/internal/inventory"
)

// InventoryRepository implements inventory.Repository
type InventoryRepository struct {
	db *DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// CreateTour inserts a new tour row
func (r *InventoryRepository) CreateTour(ctx context.Context, t *inventory.Tour) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tours (id, tenant_id, name, description, price, currency, duration_days, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.TenantID, t.Name, t.Description, t.Price, t.Currency, t.DurationDays, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

// GetTour retrieves a tour scoped to a workspace
func (r *InventoryRepository) GetTour(ctx context.Context, tenantID, id string) (*inventory.Tour, error) {
	var t inventory.Tour
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, price, currency, duration_days, created_by, created_at
		FROM tours WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Price,
		&t.Currency, &t.DurationDays, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, inventory.ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return &t, nil
}

// ListTours lists tours in a workspace ordered by creation time
func (r *InventoryRepository) ListTours(ctx context.Context, tenantID string, limit, offset int) ([]*inventory.Tour, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, price, currency, duration_days, created_by, created_at
		FROM tours WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	defer rows.Close()

	var tours []*inventory.Tour
	for rows.Next() {
		var t inventory.Tour
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.Name, &t.Description, &t.Price,
			&t.Currency, &t.DurationDays, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, &t)
	}
	return tours, rows.Err()
}

// CreateBooking inserts a new booking row
func (r *InventoryRepository) CreateBooking(ctx context.Context, b *inventory.Booking) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO bookings (id, tenant_id, tour_id, customer_name, customer_email, seats, status, total_amount, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.TenantID, b.TourID, b.CustomerName, b.CustomerEmail, b.Seats, b.Status, b.TotalAmount, b.CreatedBy, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// ListBookings lists bookings in a workspace ordered by creation time
func (r *InventoryRepository) ListBookings(ctx context.Context, tenantID string, limit, offset int) ([]*inventory.Booking, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, tour_id, customer_name, customer_email, seats, status, total_amount, created_by, created_at
		FROM bookings WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*inventory.Booking
	for rows.Next() {
		var b inventory.Booking
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.TourID, &b.CustomerName, &b.CustomerEmail,
			&b.Seats, &b.Status, &b.TotalAmount, &b.CreatedBy, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}
