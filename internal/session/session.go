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

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tourbase/tourbase/internal/authz"
	"github.com/tourbase/tourbase/internal/identity"
)

// Domain errors
var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

// Snapshot is the denormalized identity a session token carries. It is
// captured once at sign-in; role or plan changes after that are not
// visible until the session is reissued. The token is the sole source
// of truth for request-scoped identity: authorizing a request needs no
// persistence read.
type Snapshot struct {
	UserID     string
	TenantID   string
	TenantSlug string
	TenantName string
	Role       authz.Role
	Plan       string
}

type claims struct {
	TenantID   string `json:"tid"`
	TenantSlug string `json:"tsl"`
	TenantName string `json:"tnm"`
	Role       string `json:"rol"`
	Plan       string `json:"pln"`
	jwt.RegisteredClaims
}

// Binder issues and reads signed session tokens (HS256 JWT).
type Binder struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
}

// NewBinder creates a session binder.
func NewBinder(secret, issuer string, lifetime time.Duration) *Binder {
	return &Binder{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
	}
}

// CreateSession produces a signed, tamper-evident token embedding the
// identity snapshot.
func (b *Binder) CreateSession(ident *identity.Identity) (string, error) {
	now := time.Now()
	c := claims{
		TenantID:   ident.TenantID,
		TenantSlug: ident.TenantSlug,
		TenantName: ident.TenantName,
		Role:       string(ident.Role),
		Plan:       ident.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    b.issuer,
			Subject:   ident.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ReadSession verifies signature and expiry and returns the embedded
// snapshot.
func (b *Binder) ReadSession(tokenString string) (*Snapshot, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c,
		func(t *jwt.Token) (any, error) { return b.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(b.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}
	if !token.Valid {
		return nil, ErrSessionInvalid
	}

	return &Snapshot{
		UserID:     c.Subject,
		TenantID:   c.TenantID,
		TenantSlug: c.TenantSlug,
		TenantName: c.TenantName,
		Role:       authz.Role(c.Role),
		Plan:       c.Plan,
	}, nil
}
