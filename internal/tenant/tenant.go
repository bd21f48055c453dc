package tenant

import (
	"time"
)

// Tenant represents an isolated tour-operator workspace
type Tenant struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	Domain          *string   `json:"domain,omitempty"`
	Plan            string    `json:"plan"`
	Active          bool      `json:"active"`
	DefaultCurrency string    `json:"default_currency"`
	Currencies      []string  `json:"currencies"`
	Locales         []string  `json:"locales"`
	ContactEmail    string    `json:"contact_email"`
	ContactPhone    string    `json:"contact_phone"`
	LogoURL         string    `json:"logo_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
