package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sigil/internal/org/models"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/httputil"
	request "sigil/pkg/middleware/request"
)

// Service defines the interface for organization operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateOrganization(ctx context.Context, name, subdomain string, settings *models.Settings) (*models.Organization, error)
	GetOrganization(ctx context.Context, orgID id.OrgID) (*models.OrgDetails, error)
	GetOrganizationBySubdomain(ctx context.Context, subdomain string) (*models.Organization, error)
	UpdateSettings(ctx context.Context, orgID id.OrgID, settings models.Settings) (*models.Organization, error)
	DeactivateOrganization(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
	ReactivateOrganization(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/orgs", h.HandleCreateOrganization)
	r.Get("/admin/orgs/{id}", h.HandleGetOrganization)
	r.Get("/admin/orgs/by-subdomain/{subdomain}", h.HandleGetOrganizationBySubdomain)
	r.Put("/admin/orgs/{id}/settings", h.HandleUpdateSettings)
	r.Post("/admin/orgs/{id}/deactivate", h.HandleDeactivateOrganization)
	r.Post("/admin/orgs/{id}/reactivate", h.HandleReactivateOrganization)
}

// HandleCreateOrganization creates an organization.
func (h *Handler) HandleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateOrganizationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.CreateOrganization(ctx, req.Name, req.Subdomain, req.Settings.ToSettings())
	if err != nil {
		h.logger.ErrorContext(ctx, "create organization failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

// HandleGetOrganization returns organization metadata with counts.
func (h *Handler) HandleGetOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	details, err := h.service.GetOrganization(ctx, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get organization failed", "error", err, "request_id", requestID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrgDetailsResponse(details))
}

// HandleGetOrganizationBySubdomain resolves an organization by subdomain.
// Used by the login page to discover the tenant before authenticating.
func (h *Handler) HandleGetOrganizationBySubdomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	subdomain := chi.URLParam(r, "subdomain")

	org, err := h.service.GetOrganizationBySubdomain(ctx, subdomain)
	if err != nil {
		h.logger.ErrorContext(ctx, "get organization by subdomain failed", "error", err, "request_id", requestID, "subdomain", subdomain)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// HandleUpdateSettings replaces an organization's settings.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateSettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.UpdateSettings(ctx, orgID, req.ToSettingsValue())
	if err != nil {
		h.logger.ErrorContext(ctx, "update settings failed", "error", err, "request_id", requestID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// HandleDeactivateOrganization deactivates an organization. Logins and
// registrations under it are blocked until it is reactivated.
func (h *Handler) HandleDeactivateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	org, err := h.service.DeactivateOrganization(ctx, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "deactivate organization failed", "error", err, "request_id", requestID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

// HandleReactivateOrganization reactivates an organization.
func (h *Handler) HandleReactivateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}

	org, err := h.service.ReactivateOrganization(ctx, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "reactivate organization failed", "error", err, "request_id", requestID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func parseOrgID(w http.ResponseWriter, r *http.Request) (id.OrgID, bool) {
	orgID, err := id.ParseOrgID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return id.OrgID{}, false
	}
	return orgID, true
}
