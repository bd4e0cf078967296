package service

import (
	"log/slog"

	clientmetrics "sigil/internal/client/metrics"
	"sigil/pkg/audit"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher audit.Publisher
	metrics        *clientmetrics.Metrics
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

func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}
