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

package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tourbase/tourbase/internal/audit"
	"github.com/tourbase/tourbase/internal/id"
	"github.com/tourbase/tourbase/internal/observability/logger"
	"github.com/tourbase/tourbase/internal/tenant"
)

// Mailer delivers sign-in links. Delivery mechanics belong to the
// surrounding product, not this core.
type Mailer interface {
	SendLoginLink(ctx context.Context, email, token string) error
}

// SlogMailer logs the link instead of sending it. Development only.
type SlogMailer struct{}

func (SlogMailer) SendLoginLink(ctx context.Context, email, token string) error {
	slog.InfoContext(ctx, "magic link issued", logger.Email(email), logger.String("token", token))
	return nil
}

// MagicLinkService implements passwordless sign-in with single-use
// hashed tokens.
type MagicLinkService struct {
	users       UserRepository
	tenants     tenant.Repository
	tokens      LoginTokenRepository
	mailer      Mailer
	auditLogger audit.Logger
	ttl         time.Duration
}

// NewMagicLinkService creates a magic-link service
func NewMagicLinkService(
	users UserRepository,
	tenants tenant.Repository,
	tokens LoginTokenRepository,
	mailer Mailer,
	auditLogger audit.Logger,
	ttl time.Duration,
) *MagicLinkService {
	return &MagicLinkService{
		users:       users,
		tenants:     tenants,
		tokens:      tokens,
		mailer:      mailer,
		auditLogger: auditLogger,
		ttl:         ttl,
	}
}

// Request issues a sign-in link for the email if a matching user exists.
// Always returns nil for unknown emails so the endpoint cannot be used
// to enumerate accounts.
func (s *MagicLinkService) Request(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, owner, err := s.users.GetByEmailGlobal(ctx, email)
	if err != nil {
		return nil
	}
	if !owner.Active {
		return nil
	}

	token := id.NewOpaqueToken()
	record := &LoginToken{
		ID:        id.NewUUIDv7(),
		UserID:    user.ID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(s.ttl),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to store login token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMagicLinkIssued,
		TenantID: owner.ID,
		ActorID:  user.ID,
		Resource: "login_token",
	})

	return s.mailer.SendLoginLink(ctx, email, token)
}

// Redeem exchanges a valid, unexpired, unused token for an identity
// snapshot. The workspace-active check runs again here: a tenant
// deactivated between issue and redeem rejects the sign-in.
func (s *MagicLinkService) Redeem(ctx context.Context, token string) (*Identity, error) {
	record, err := s.tokens.GetByHash(ctx, hashToken(token))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if record.UsedAt != nil || time.Now().After(record.ExpiresAt) {
		return nil, ErrInvalidCredentials
	}

	if err := s.tokens.MarkUsed(ctx, record.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to consume login token: %w", err)
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	owner, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !owner.Active {
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMagicLinkRedeemed,
		TenantID: owner.ID,
		ActorID:  user.ID,
		Resource: "login_token",
	})

	return snapshotOf(user, owner), nil
}

// CleanupExpired removes expired tokens; run periodically.
func (s *MagicLinkService) CleanupExpired(ctx context.Context) error {
	return s.tokens.DeleteExpired(ctx)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
