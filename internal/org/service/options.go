package service

import (
	"log/slog"

	orgmetrics "sigil/internal/org/metrics"
	"sigil/pkg/audit"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher audit.Publisher
	metrics        *orgmetrics.Metrics
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

func WithMetrics(m *orgmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}
