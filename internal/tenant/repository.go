package tenant

import (
	"context"
	"errors"
)

var (
	// ErrTenantNotFound means the lookup key matched no workspace.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoTenantHint means the request carried nothing to resolve a
	// workspace from: a development host with neither header nor query
	// hint. Distinct from ErrTenantNotFound so callers can fall back to
	// hint-less behavior instead of a 404.
	ErrNoTenantHint = errors.New("no tenant hint in request")

	ErrSlugTaken   = errors.New("tenant slug already in use")
	ErrDomainTaken = errors.New("tenant domain already in use")
	ErrInvalidSlug = errors.New("tenant slug is not subdomain-safe")
	ErrInvalidPlan = errors.New("unknown plan")
)

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	SetActive(ctx context.Context, id string, active bool) error
	SetPlan(ctx context.Context, id string, plan string) error
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)
}
