package service

import (
	"log/slog"

	identitymetrics "sigil/internal/identity/metrics"
	"sigil/pkg/audit"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher audit.Publisher
	metrics        *identitymetrics.Metrics
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}
