package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sigil/internal/identity/models"
	"sigil/internal/identity/service"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/httputil"
	request "sigil/pkg/middleware/request"
)

// Service defines the interface for user account operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	RegisterUser(ctx context.Context, cmd *service.RegisterUserCommand) (*models.User, error)
	Login(ctx context.Context, cmd *service.LoginCommand) (*models.User, string, error)
	GetUser(ctx context.Context, userID id.UserID) (*models.User, error)
	GetUserForOrg(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, firstName, lastName string) (*models.User, error)
	PromoteToOrgAdmin(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error)
	DemoteFromOrgAdmin(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error)
	AssignOrganization(ctx context.Context, userID id.UserID, orgID id.OrgID) (*models.User, error)
	DeleteUser(ctx context.Context, userID id.UserID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin-token-protected account management routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/users", h.HandleRegisterUser)
	r.Get("/admin/users/{id}", h.HandleGetUser)
	r.Put("/admin/users/{id}/profile", h.HandleUpdateProfile)
	r.Post("/admin/users/{id}/assign-org", h.HandleAssignOrganization)
	r.Delete("/admin/users/{id}", h.HandleDeleteUser)
	r.Get("/admin/orgs/{orgID}/users/{id}", h.HandleGetUserForOrg)
	r.Post("/admin/orgs/{orgID}/users/{id}/promote", h.HandlePromote)
	r.Post("/admin/orgs/{orgID}/users/{id}/demote", h.HandleDemote)
}

// RegisterPublic mounts the routes that must stay reachable without the
// admin token. Login authenticates with tenant credentials instead.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// HandleRegisterUser creates a user under an organization.
func (h *Handler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.RegisterUser(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "register user failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin authenticates tenant credentials and returns a session token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, token, err := h.service.Login(ctx, req.ToCommand())
	if err != nil {
		// Uniform failure detail lives in the service; log at info to keep
		// failed password attempts out of the error stream.
		h.logger.InfoContext(ctx, "login rejected", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// HandleGetUser returns a user without tenant scoping (operator access).
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleGetUserForOrg returns a user scoped to an organization.
func (h *Handler) HandleGetUserForOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserForOrg(ctx, orgID, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get user failed", "error", err, "request_id", requestID, "org_id", orgID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateProfile updates a user's name fields.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.UpdateProfile(ctx, userID, req.FirstName, req.LastName)
	if err != nil {
		h.logger.ErrorContext(ctx, "update profile failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandlePromote grants the organization admin role.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.setOrgAdmin(w, r, true)
}

// HandleDemote revokes the organization admin role.
func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	h.setOrgAdmin(w, r, false)
}

func (h *Handler) setOrgAdmin(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	orgID, ok := parseScopeOrgID(w, r)
	if !ok {
		return
	}
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var (
		user *models.User
		err  error
	)
	if admin {
		user, err = h.service.PromoteToOrgAdmin(ctx, orgID, userID)
	} else {
		user, err = h.service.DemoteFromOrgAdmin(ctx, orgID, userID)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "change admin role failed", "error", err, "request_id", requestID, "org_id", orgID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleAssignOrganization backfills a tenant onto a legacy user record.
func (h *Handler) HandleAssignOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
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

	user, err := h.service.AssignOrganization(ctx, userID, orgID)
	if err != nil {
		h.logger.ErrorContext(ctx, "assign organization failed", "error", err, "request_id", requestID, "user_id", userID, "org_id", orgID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleDeleteUser removes a user.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "delete user failed", "error", err, "request_id", requestID, "user_id", userID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return id.UserID{}, false
	}
	return userID, true
}

func parseScopeOrgID(w http.ResponseWriter, r *http.Request) (id.OrgID, bool) {
	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid organization id"))
		return id.OrgID{}, false
	}
	return orgID, true
}
