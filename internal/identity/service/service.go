package service

import (
	"context"
	"errors"
	"time"

	identitymetrics "sigil/internal/identity/metrics"
	"sigil/internal/identity/models"
	orgmodels "sigil/internal/org/models"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/secrets"
	"sigil/pkg/sentinel"
	"sigil/pkg/tokens"
)

// Service orchestrates user account management and authentication.
type Service struct {
	users  UserStore
	orgs   OrgStore
	issuer *tokens.Issuer

	auditEmitter *auditEmitter
	metrics      *identitymetrics.Metrics
}

func New(users UserStore, orgs OrgStore, issuer *tokens.Issuer, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Service{
		users:        users,
		orgs:         orgs,
		issuer:       issuer,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
	}
}

// RegisterUser creates a user under an organization, enforcing tenant
// quotas and per-tenant email uniqueness. The store's unique index is the
// backstop for concurrent registrations of the same email.
func (s *Service) RegisterUser(ctx context.Context, cmd *RegisterUserCommand) (*models.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid registration request")
	}

	org, err := s.orgs.FindByID(ctx, cmd.OrgID)
	if err != nil {
		return nil, wrapOrgErr(err, "failed to load organization")
	}
	if !org.IsActive() {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot register user under inactive organization")
	}

	count, err := s.users.CountByOrg(ctx, cmd.OrgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	if count >= org.Settings.MaxUsers {
		return nil, dErrors.New(dErrors.CodeValidation, "organization user limit reached")
	}

	email, err := models.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	user, err := models.NewUser(
		id.NewUserID(),
		cmd.OrgID,
		email,
		passwordHash,
		cmd.FirstName,
		cmd.LastName,
		cmd.OrgAdmin,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if s.metrics != nil {
		s.metrics.IncrementUsersRegistered()
	}
	s.drainEvents(ctx, user)
	return user, nil
}

// Login authenticates a user against their tenant and issues an admin
// session token. Every failure path returns the same unauthorized error so
// the endpoint cannot be used as an account oracle.
func (s *Service) Login(ctx context.Context, cmd *LoginCommand) (*models.User, string, error) {
	start := time.Now()
	if err := cmd.Validate(); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid login request")
	}

	user, org, err := s.authenticate(ctx, cmd)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveLogin(start, false)
		}
		return nil, "", err
	}

	user.RecordLogin(time.Now())
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login")
	}
	s.drainEvents(ctx, user)

	token, err := s.issuer.Issue(user.ID, user.OrgID, user.IsOrgAdmin, org.Settings.SessionTimeout, time.Now())
	if err != nil {
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.ObserveLogin(start, true)
	}
	return user, token, nil
}

func (s *Service) authenticate(ctx context.Context, cmd *LoginCommand) (*models.User, *orgmodels.Organization, error) {
	invalidCredentials := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

	org, err := s.orgs.FindBySubdomain(ctx, cmd.Subdomain)
	if err != nil {
		return nil, nil, invalidCredentials
	}
	if !org.IsActive() {
		return nil, nil, invalidCredentials
	}

	email, err := models.NewEmail(cmd.Email)
	if err != nil {
		return nil, nil, invalidCredentials
	}

	user, err := s.users.FindByOrgAndEmail(ctx, org.ID, email.Value())
	if err != nil {
		return nil, nil, invalidCredentials
	}
	if err := secrets.Verify(cmd.Password, user.PasswordHash); err != nil {
		return nil, nil, invalidCredentials
	}
	return user, org, nil
}

// GetUser returns a user by id (platform-admin path, no tenant scoping).
func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to get user")
	}
	return user, nil
}

// GetUserForOrg enforces tenant scoping when retrieving a user.
func (s *Service) GetUserForOrg(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error) {
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByOrgAndID(ctx, orgID, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to get user")
	}
	return user, nil
}

// UpdateProfile changes a user's display names.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, firstName, lastName string) (*models.User, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to get user")
	}
	if err := user.UpdateProfile(firstName, lastName); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	s.auditEmitter.emit(ctx, "user.profile_updated", user.ID.String(), "user_id", user.ID)
	return user, nil
}

// PromoteToOrgAdmin grants the organization-admin role. Idempotent.
func (s *Service) PromoteToOrgAdmin(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error) {
	return s.setOrgAdmin(ctx, orgID, userID, true, "user.promoted")
}

// DemoteFromOrgAdmin revokes the organization-admin role. Idempotent.
func (s *Service) DemoteFromOrgAdmin(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error) {
	return s.setOrgAdmin(ctx, orgID, userID, false, "user.demoted")
}

func (s *Service) setOrgAdmin(ctx context.Context, orgID id.OrgID, userID id.UserID, admin bool, event string) (*models.User, error) {
	user, err := s.GetUserForOrg(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		user.PromoteToOrgAdmin()
	} else {
		user.DemoteFromOrgAdmin()
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	s.auditEmitter.emit(ctx, event, user.ID.String(), "user_id", user.ID, "org_id", orgID)
	return user, nil
}

// AssignOrganization performs the one-time tenant backfill for legacy users.
func (s *Service) AssignOrganization(ctx context.Context, userID id.UserID, orgID id.OrgID) (*models.User, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if err := requireOrgID(orgID); err != nil {
		return nil, err
	}
	if _, err := s.orgs.FindByID(ctx, orgID); err != nil {
		return nil, wrapOrgErr(err, "failed to load organization")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to get user")
	}
	if err := user.AssignOrganization(orgID); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	s.auditEmitter.emit(ctx, "user.organization_assigned", user.ID.String(),
		"user_id", user.ID,
		"org_id", orgID,
	)
	return user, nil
}

// DeleteUser removes a user account. Deletion is the only destruction path;
// there is no soft-delete state on the aggregate.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return wrapUserErr(err, "failed to delete user")
	}
	s.auditEmitter.emit(ctx, "user.deleted", userID.String(), "user_id", userID)
	return nil
}
