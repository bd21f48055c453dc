package inventory

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTourNotFound    = errors.New("tour not found")
	ErrBookingNotFound = errors.New("booking not found")
)

// Tour is a sellable tour product owned by a workspace.
type Tour struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        int64     `json:"price"` // minor units
	Currency     string    `json:"currency"`
	DurationDays int       `json:"duration_days"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Booking reserves seats on a tour for a customer.
type Booking struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	TourID        string    `json:"tour_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Seats         int       `json:"seats"`
	Status        string    `json:"status"`
	TotalAmount   int64     `json:"total_amount"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Booking status constants
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Repository defines tenant-scoped inventory persistence. Every query
// carries the tenant id; there is no cross-tenant read path.
type Repository interface {
	CreateTour(ctx context.Context, t *Tour) error
	GetTour(ctx context.Context, tenantID, id string) (*Tour, error)
	ListTours(ctx context.Context, tenantID string, limit, offset int) ([]*Tour, error)

	CreateBooking(ctx context.Context, b *Booking) error
	ListBookings(ctx context.Context, tenantID string, limit, offset int) ([]*Booking, error)
}
