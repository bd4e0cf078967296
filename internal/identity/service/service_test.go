package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sigil/internal/identity/models"
	userstore "sigil/internal/identity/store/user"
	orgmodels "sigil/internal/org/models"
	orgstore "sigil/internal/org/store/organization"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
	"sigil/pkg/tokens"
)

// IdentityServiceSuite tests user registration and authentication against
// in-memory stores.
type IdentityServiceSuite struct {
	suite.Suite

	ctx    context.Context
	orgs   *orgstore.InMemory
	users  *userstore.InMemory
	issuer *tokens.Issuer
	svc    *Service

	org *orgmodels.Organization
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.orgs = orgstore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.issuer = tokens.NewIssuer("test-signing-key")
	s.svc = New(s.users, s.orgs, s.issuer)

	s.org = s.createOrg("acme", orgmodels.DefaultSettings())
}

func (s *IdentityServiceSuite) createOrg(subdomain string, settings orgmodels.Settings) *orgmodels.Organization {
	org, err := orgmodels.NewOrganization(id.NewOrgID(), "Acme", subdomain, settings, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.orgs.CreateIfSubdomainAvailable(s.ctx, org))
	return org
}

func (s *IdentityServiceSuite) registerCmd() *RegisterUserCommand {
	return &RegisterUserCommand{
		OrgID:     s.org.ID,
		Email:     "eve@example.com",
		Password:  "correct-horse-battery",
		FirstName: "Eve",
		LastName:  "Stone",
	}
}

func (s *IdentityServiceSuite) TestRegisterUser() {
	s.Run("successful registration", func() {
		user, err := s.svc.RegisterUser(s.ctx, s.registerCmd())
		s.Require().NoError(err)
		s.Equal(s.org.ID, user.OrgID)
		s.Equal("eve@example.com", user.Email.Value())
		s.NotEqual("correct-horse-battery", user.PasswordHash, "password must be stored hashed")
		s.Empty(user.Events(), "events are drained after persistence")
	})

	s.Run("duplicate email in the same organization conflicts", func() {
		cmd := s.registerCmd()
		cmd.Email = "EVE@example.com"
		_, err := s.svc.RegisterUser(s.ctx, cmd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "email already registered")
	})

	s.Run("same email under another organization is allowed", func() {
		other := s.createOrg("globex", orgmodels.DefaultSettings())
		cmd := s.registerCmd()
		cmd.OrgID = other.ID
		_, err := s.svc.RegisterUser(s.ctx, cmd)
		s.Require().NoError(err)
	})

	s.Run("short password is rejected", func() {
		cmd := s.registerCmd()
		cmd.Email = "short@example.com"
		cmd.Password = "tooshort"
		_, err := s.svc.RegisterUser(s.ctx, cmd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown organization", func() {
		cmd := s.registerCmd()
		cmd.OrgID = id.NewOrgID()
		_, err := s.svc.RegisterUser(s.ctx, cmd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("inactive organization blocks registration", func() {
		inactive := s.createOrg("umbra", orgmodels.DefaultSettings())
		s.Require().NoError(inactive.Deactivate(time.Now()))
		s.Require().NoError(s.orgs.Update(s.ctx, inactive))

		cmd := s.registerCmd()
		cmd.OrgID = inactive.ID
		cmd.Email = "frank@example.com"
		_, err := s.svc.RegisterUser(s.ctx, cmd)
		s.Require().Error(err)
		s.Contains(err.Error(), "inactive organization")
	})
}

func (s *IdentityServiceSuite) TestUserQuota() {
	settings := orgmodels.DefaultSettings()
	settings.MaxUsers = 1
	small := s.createOrg("tiny", settings)

	cmd := s.registerCmd()
	cmd.OrgID = small.ID
	_, err := s.svc.RegisterUser(s.ctx, cmd)
	s.Require().NoError(err)

	cmd = s.registerCmd()
	cmd.OrgID = small.ID
	cmd.Email = "second@example.com"
	_, err = s.svc.RegisterUser(s.ctx, cmd)
	s.Require().Error(err)
	s.Contains(err.Error(), "organization user limit reached")
}

func (s *IdentityServiceSuite) TestLogin() {
	registered, err := s.svc.RegisterUser(s.ctx, s.registerCmd())
	s.Require().NoError(err)

	login := func(subdomain, email, password string) (string, error) {
		_, token, err := s.svc.Login(s.ctx, &LoginCommand{
			Subdomain: subdomain,
			Email:     email,
			Password:  password,
		})
		return token, err
	}

	s.Run("successful login stamps last login and issues a token", func() {
		user, token, err := s.svc.Login(s.ctx, &LoginCommand{
			Subdomain: "acme",
			Email:     "eve@example.com",
			Password:  "correct-horse-battery",
		})
		s.Require().NoError(err)
		s.Require().NotNil(user.LastLoginAt)
		s.Require().NotEmpty(token)

		claims, err := s.issuer.Verify(token)
		s.Require().NoError(err)
		s.Equal(registered.ID.String(), claims.Subject)
		s.Equal(s.org.ID.String(), claims.OrgID)
		s.False(claims.OrgAdmin)
	})

	s.Run("all failures return the same unauthorized error", func() {
		cases := []struct {
			name                       string
			subdomain, email, password string
		}{
			{"wrong password", "acme", "eve@example.com", "wrong-password-entirely"},
			{"unknown email", "acme", "ghost@example.com", "correct-horse-battery"},
			{"unknown subdomain", "nowhere", "eve@example.com", "correct-horse-battery"},
			{"malformed email", "acme", "not-an-email", "correct-horse-battery"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				_, err := login(tc.subdomain, tc.email, tc.password)
				s.Require().Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
				s.Contains(err.Error(), "invalid credentials")
			})
		}
	})

	s.Run("inactive organization rejects valid credentials", func() {
		s.Require().NoError(s.org.Deactivate(time.Now()))
		s.Require().NoError(s.orgs.Update(s.ctx, s.org))

		_, err := login("acme", "eve@example.com", "correct-horse-battery")
		s.Require().Error(err)
		s.Contains(err.Error(), "invalid credentials")
	})
}

func (s *IdentityServiceSuite) TestProfileAndRoles() {
	user, err := s.svc.RegisterUser(s.ctx, s.registerCmd())
	s.Require().NoError(err)

	s.Run("update profile", func() {
		updated, err := s.svc.UpdateProfile(s.ctx, user.ID, "Evelyn", "Stone")
		s.Require().NoError(err)
		s.Equal("Evelyn", updated.FirstName)
	})

	s.Run("invalid profile update is rejected", func() {
		_, err := s.svc.UpdateProfile(s.ctx, user.ID, "", "Stone")
		s.Require().Error(err)
	})

	s.Run("promote and demote are tenant scoped", func() {
		promoted, err := s.svc.PromoteToOrgAdmin(s.ctx, s.org.ID, user.ID)
		s.Require().NoError(err)
		s.True(promoted.IsOrgAdmin)

		_, err = s.svc.PromoteToOrgAdmin(s.ctx, id.NewOrgID(), user.ID)
		s.Require().Error(err, "another tenant's scope must not see the user")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		demoted, err := s.svc.DemoteFromOrgAdmin(s.ctx, s.org.ID, user.ID)
		s.Require().NoError(err)
		s.False(demoted.IsOrgAdmin)
	})
}

func (s *IdentityServiceSuite) TestAssignOrganization() {
	email, err := models.NewEmail("legacy@example.com")
	s.Require().NoError(err)
	legacy, err := models.NewUnassignedUser(id.NewUserID(), email, "hash", "Lee", "Grant", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(s.ctx, legacy))

	assigned, err := s.svc.AssignOrganization(s.ctx, legacy.ID, s.org.ID)
	s.Require().NoError(err)
	s.Equal(s.org.ID, assigned.OrgID)

	// The backfill re-indexes, so the user now counts against the tenant
	// and resolves by email within it.
	count, err := s.users.CountByOrg(s.ctx, s.org.ID)
	s.Require().NoError(err)
	s.Equal(1, count)

	_, err = s.svc.AssignOrganization(s.ctx, legacy.ID, id.NewOrgID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "unknown org must fail the lookup")

	_, err = s.svc.AssignOrganization(s.ctx, legacy.ID, s.org.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *IdentityServiceSuite) TestDeleteUser() {
	user, err := s.svc.RegisterUser(s.ctx, s.registerCmd())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteUser(s.ctx, user.ID))

	_, err = s.svc.GetUser(s.ctx, user.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.svc.DeleteUser(s.ctx, user.ID)
	s.Require().Error(err)
}
