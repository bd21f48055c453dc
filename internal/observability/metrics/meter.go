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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter wraps the OpenTelemetry meter
type Meter struct {
	meter metric.Meter
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	if !cfg.Enabled {
		return &Meter{meter: otel.Meter("noop")}, nil
	}
	return &Meter{meter: otel.Meter(serviceName)}, nil
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// AuthMetrics bundles the counters the authorization core emits.
type AuthMetrics struct {
	SignIns      metric.Int64Counter
	SignInFails  metric.Int64Counter
	QuotaDenials metric.Int64Counter
}

// NewAuthMetrics registers the authentication and quota counters.
func NewAuthMetrics(m *Meter) (*AuthMetrics, error) {
	signIns, err := m.meter.Int64Counter("auth_sign_ins_total",
		metric.WithDescription("Successful sign-ins"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in counter: %w", err)
	}
	fails, err := m.meter.Int64Counter("auth_sign_in_failures_total",
		metric.WithDescription("Rejected sign-in attempts"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in failure counter: %w", err)
	}
	denials, err := m.meter.Int64Counter("quota_denials_total",
		metric.WithDescription("Creations rejected by plan quota checks"))
	if err != nil {
		return nil, fmt.Errorf("failed to create quota denial counter: %w", err)
	}
	return &AuthMetrics{SignIns: signIns, SignInFails: fails, QuotaDenials: denials}, nil
}

// RecordQuotaDenial increments the denial counter tagged by resource kind.
func (a *AuthMetrics) RecordQuotaDenial(ctx context.Context, resource string) {
	a.QuotaDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}
