package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sigil/internal/client/models"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

var tracer = otel.Tracer("sigil/internal/client/service")

// ResolveClient looks a client up by its OAuth client ID slug within a
// tenant. This sits on the authorization hot path, so it is traced and
// timed separately from the admin CRUD operations.
func (s *Service) ResolveClient(ctx context.Context, orgID id.OrgID, slug string) (*models.Client, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "client.resolve",
		trace.WithAttributes(
			attribute.String("org.id", orgID.String()),
			attribute.String("client.client_id", slug),
		),
	)
	defer span.End()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveResolveClient(start)
		}
	}()

	if err := requireOrgID(orgID); err != nil {
		span.SetStatus(codes.Error, "missing organization ID")
		return nil, err
	}
	if slug == "" {
		span.SetStatus(codes.Error, "missing client ID")
		return nil, dErrors.New(dErrors.CodeBadRequest, "client ID required")
	}

	client, err := s.clients.FindByOrgAndClientID(ctx, orgID, slug)
	if err != nil {
		err = wrapClientErr(err, "failed to resolve client")
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		return nil, err
	}
	return client, nil
}

// ValidateRedirectURI answers the authorization-time question: may this
// client redirect to this exact URI? The match is exact-string; no
// normalization of case, ports, or trailing slashes is applied.
func (s *Service) ValidateRedirectURI(ctx context.Context, orgID id.OrgID, slug, candidate string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client.validate_redirect_uri")
	defer span.End()

	client, err := s.ResolveClient(ctx, orgID, slug)
	if err != nil {
		return false, err
	}

	ok := client.ValidateRedirectURI(candidate)
	span.SetAttributes(attribute.Bool("redirect_uri.allowed", ok))
	if !ok {
		if s.metrics != nil {
			s.metrics.IncrementRedirectURIRejections()
		}
		s.auditEmitter.emit(ctx, "client.redirect_uri_rejected", client.ID.String(),
			"id", client.ID,
			"client_id", client.ClientID,
			"redirect_uri", candidate,
		)
	}
	return ok, nil
}
