package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sigil/internal/client/models"
	"sigil/internal/client/service"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/httputil"
	request "sigil/pkg/middleware/request"
)

// Service defines the interface for OAuth client operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateClient(ctx context.Context, cmd *service.CreateClientCommand) (*models.Client, string, error)
	GetClient(ctx context.Context, clientID id.ClientID) (*models.Client, error)
	GetClientForOrg(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (*models.Client, error)
	AddRedirectURI(ctx context.Context, orgID id.OrgID, clientID id.ClientID, rawURI string) (*models.Client, error)
	RemoveRedirectURI(ctx context.Context, orgID id.OrgID, clientID id.ClientID, rawURI string) (*models.Client, error)
	UpdateDisplayName(ctx context.Context, orgID id.OrgID, clientID id.ClientID, displayName string) (*models.Client, error)
	RotateSecret(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (string, error)
	ValidateRedirectURI(ctx context.Context, orgID id.OrgID, slug, candidate string) (bool, error)
	AssignOrganization(ctx context.Context, clientID id.ClientID, orgID id.OrgID) (*models.Client, error)
	DeleteClient(ctx context.Context, orgID id.OrgID, clientID id.ClientID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/clients", h.HandleCreateClient)
	r.Get("/admin/clients/{id}", h.HandleGetClient)
	r.Post("/admin/clients/{id}/assign-org", h.HandleAssignOrganization)
	r.Get("/admin/orgs/{orgID}/clients/{id}", h.HandleGetClientForOrg)
	r.Put("/admin/orgs/{orgID}/clients/{id}/display-name", h.HandleUpdateDisplayName)
	r.Post("/admin/orgs/{orgID}/clients/{id}/redirect-uris", h.HandleAddRedirectURI)
	r.Delete("/admin/orgs/{orgID}/clients/{id}/redirect-uris", h.HandleRemoveRedirectURI)
	r.Post("/admin/orgs/{orgID}/clients/{id}/rotate-secret", h.HandleRotateSecret)
	r.Delete("/admin/orgs/{orgID}/clients/{id}", h.HandleDeleteClient)
	r.Post("/admin/orgs/{orgID}/clients/validate-redirect", h.HandleValidateRedirectURI)
}

// HandleCreateClient registers an OAuth client under an organization.
// For confidential clients the response carries the plaintext secret; it is
// not retrievable afterwards.
func (h *Handler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateClientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, secret, err := h.service.CreateClient(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "create client failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toClientResponse(client, secret))
}

// HandleGetClient returns a client without tenant scoping (operator access).
func (h *Handler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	client, err := h.service.GetClient(ctx, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get client failed", "error", err, "request_id", requestID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client, ""))
}

// HandleGetClientForOrg returns a client scoped to an organization.
func (h *Handler) HandleGetClientForOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	client, err := h.service.GetClientForOrg(ctx, orgID, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get client failed", "error", err, "request_id", requestID, "org_id", orgID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client, ""))
}

// HandleUpdateDisplayName renames a client.
func (h *Handler) HandleUpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateDisplayNameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client, err := h.service.UpdateDisplayName(ctx, orgID, clientID, req.DisplayName)
	if err != nil {
		h.logger.ErrorContext(ctx, "update display name failed", "error", err, "request_id", requestID, "org_id", orgID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client, ""))
}

// HandleAddRedirectURI registers an additional redirect target.
func (h *Handler) HandleAddRedirectURI(w http.ResponseWriter, r *http.Request) {
	h.changeRedirectURI(w, r, "add redirect uri failed", h.service.AddRedirectURI)
}

// HandleRemoveRedirectURI drops a registered redirect target.
func (h *Handler) HandleRemoveRedirectURI(w http.ResponseWriter, r *http.Request) {
	h.changeRedirectURI(w, r, "remove redirect uri failed", h.service.RemoveRedirectURI)
}

func (h *Handler) changeRedirectURI(
	w http.ResponseWriter,
	r *http.Request,
	logMsg string,
	op func(context.Context, id.OrgID, id.ClientID, string) (*models.Client, error),
) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RedirectURIRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client, err := op(ctx, orgID, clientID, req.RedirectURI)
	if err != nil {
		h.logger.ErrorContext(ctx, logMsg, "error", err, "request_id", requestID, "org_id", orgID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client, ""))
}

// HandleRotateSecret rotates a confidential client's secret.
// The new secret appears only in this response.
func (h *Handler) HandleRotateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	secret, err := h.service.RotateSecret(ctx, orgID, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "rotate secret failed", "error", err, "request_id", requestID, "org_id", orgID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &RotateSecretResponse{ClientSecret: secret})
}

// HandleValidateRedirectURI answers whether a client may redirect to the
// given URI. Exposed for the authorization frontend.
func (h *Handler) HandleValidateRedirectURI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ValidateRedirectURIRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	allowed, err := h.service.ValidateRedirectURI(ctx, orgID, req.ClientID, req.RedirectURI)
	if err != nil {
		h.logger.ErrorContext(ctx, "validate redirect uri failed", "error", err, "request_id", requestID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &ValidateRedirectURIResponse{Allowed: allowed})
}

// HandleAssignOrganization backfills a tenant onto a legacy client record.
func (h *Handler) HandleAssignOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssignOrganizationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	orgID, err := id.ParseOrgID(req.OrgID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return
	}

	client, err := h.service.AssignOrganization(ctx, clientID, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "assign organization failed", "error", err, "request_id", requestID, "client_id", clientID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toClientResponse(client, ""))
}

// HandleDeleteClient removes a client.
func (h *Handler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	clientID, ok := parseClientID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteClient(ctx, orgID, clientID); err != nil {
		h.logger.ErrorContext(ctx, "delete client failed", "error", err, "request_id", requestID, "org_id", orgID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseClientID(w http.ResponseWriter, r *http.Request) (id.ClientID, bool) {
	clientID, err := id.ParseClientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid client id"))
		return id.ClientID{}, false
	}
	return clientID, true
}

func parseScopeOrgID(w http.ResponseWriter, r *http.Request) (id.OrgID, bool) {
	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return id.OrgID{}, false
	}
	return orgID, true
}
