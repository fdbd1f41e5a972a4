package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics records domain counters. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	registrations metric.Int64Counter
	signIns       metric.Int64Counter
	linkOutcomes  metric.Int64Counter
}

// NewAuthMetrics creates the counters on the given meter
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	registrations, err := meter.Int64Counter("auth.registrations",
		metric.WithDescription("Credentials users registered"))
	if err != nil {
		return nil, fmt.Errorf("failed to create registrations counter: %w", err)
	}

	signIns, err := meter.Int64Counter("auth.signins",
		metric.WithDescription("Sign-in attempts by provider and result"))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-ins counter: %w", err)
	}

	linkOutcomes, err := meter.Int64Counter("auth.link.outcomes",
		metric.WithDescription("Account linking outcomes by provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to create link outcomes counter: %w", err)
	}

	return &AuthMetrics{
		registrations: registrations,
		signIns:       signIns,
		linkOutcomes:  linkOutcomes,
	}, nil
}

// RecordRegistration counts a successful registration
func (m *AuthMetrics) RecordRegistration(ctx context.Context) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1)
}

// RecordSignIn counts a sign-in attempt
func (m *AuthMetrics) RecordSignIn(ctx context.Context, provider, result string) {
	if m == nil {
		return
	}
	m.signIns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("result", result),
	))
}

// RecordLink counts a linking outcome
func (m *AuthMetrics) RecordLink(ctx context.Context, provider string, outcome LinkOutcome) {
	if m == nil {
		return
	}
	m.linkOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", string(outcome)),
	))
}
