package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sigil/internal/client/models"
	clientstore "sigil/internal/client/store/client"
	orgmodels "sigil/internal/org/models"
	orgstore "sigil/internal/org/store/organization"
	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// ClientServiceSuite tests client registration and the authorization-path
// lookups against in-memory stores.
type ClientServiceSuite struct {
	suite.Suite

	ctx     context.Context
	orgs    *orgstore.InMemory
	clients *clientstore.InMemory
	svc     *Service

	org     *orgmodels.Organization
	ownerID id.UserID
}

func TestClientServiceSuite(t *testing.T) {
	suite.Run(t, new(ClientServiceSuite))
}

func (s *ClientServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.orgs = orgstore.NewInMemory()
	s.clients = clientstore.NewInMemory()
	s.svc = New(s.clients, s.orgs)
	s.ownerID = id.NewUserID()

	s.org = s.createOrg("acme", orgmodels.DefaultSettings())
}

func (s *ClientServiceSuite) createOrg(subdomain string, settings orgmodels.Settings) *orgmodels.Organization {
	org, err := orgmodels.NewOrganization(id.NewOrgID(), "Acme", subdomain, settings, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.orgs.CreateIfSubdomainAvailable(s.ctx, org))
	return org
}

func (s *ClientServiceSuite) createCmd() *CreateClientCommand {
	return &CreateClientCommand{
		OrgID:        s.org.ID,
		OwnerID:      s.ownerID,
		ClientID:     "web-dashboard",
		DisplayName:  "Web Dashboard",
		RedirectURIs: []string{"https://app.example.com/callback"},
		Scopes:       []string{"openid", "profile"},
	}
}

func (s *ClientServiceSuite) TestCreateClient() {
	s.Run("public client returns no secret", func() {
		client, secret, err := s.svc.CreateClient(s.ctx, s.createCmd())
		s.Require().NoError(err)
		s.Empty(secret)
		s.False(client.IsConfidential())
		s.Empty(client.Events(), "events are drained after persistence")
	})

	s.Run("normalize trims redirect URIs and lowercases the slug", func() {
		cmd := s.createCmd()
		cmd.ClientID = "  Mixed-Case-App  "
		cmd.RedirectURIs = []string{"  https://app.example.com/cb  "}
		cmd.Normalize()

		client, _, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().NoError(err)
		s.Equal("mixed-case-app", client.ClientID)
		s.Equal([]string{"https://app.example.com/cb"}, client.RedirectURIValues())
	})

	s.Run("duplicate slug in the same organization conflicts", func() {
		_, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "client ID already registered")
	})

	s.Run("same slug under another organization is allowed", func() {
		other := s.createOrg("globex", orgmodels.DefaultSettings())
		cmd := s.createCmd()
		cmd.OrgID = other.ID
		_, _, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().NoError(err)
	})

	s.Run("confidential client returns the plaintext secret once", func() {
		cmd := s.createCmd()
		cmd.ClientID = "backend-api"
		cmd.Confidential = true
		client, secret, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().NoError(err)
		s.Require().NotEmpty(secret)

		// Only the hash is stored.
		stored, ok := client.Secret()
		s.Require().True(ok)
		s.NotEqual(secret, stored.Value())

		verified, err := s.svc.VerifyClientSecret(s.ctx, s.org.ID, "backend-api", secret)
		s.Require().NoError(err)
		s.True(verified)

		verified, err = s.svc.VerifyClientSecret(s.ctx, s.org.ID, "backend-api", "wrong")
		s.Require().NoError(err)
		s.False(verified)
	})

	s.Run("invalid slug is rejected", func() {
		cmd := s.createCmd()
		cmd.ClientID = "Not A Slug!"
		_, _, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid redirect URI is rejected", func() {
		cmd := s.createCmd()
		cmd.ClientID = "native-app"
		cmd.RedirectURIs = []string{"http://app.example.com/callback"}
		_, _, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().Error(err)
		s.Contains(err.Error(), "HTTPS is required")
	})

	s.Run("inactive organization blocks registration", func() {
		inactive := s.createOrg("umbra", orgmodels.DefaultSettings())
		s.Require().NoError(inactive.Deactivate(time.Now()))
		s.Require().NoError(s.orgs.Update(s.ctx, inactive))

		cmd := s.createCmd()
		cmd.OrgID = inactive.ID
		_, _, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().Error(err)
		s.Contains(err.Error(), "inactive organization")
	})
}

func (s *ClientServiceSuite) TestClientQuota() {
	settings := orgmodels.DefaultSettings()
	settings.MaxClients = 1
	small := s.createOrg("tiny", settings)

	cmd := s.createCmd()
	cmd.OrgID = small.ID
	_, _, err := s.svc.CreateClient(s.ctx, cmd)
	s.Require().NoError(err)

	cmd = s.createCmd()
	cmd.OrgID = small.ID
	cmd.ClientID = "second-app"
	_, _, err = s.svc.CreateClient(s.ctx, cmd)
	s.Require().Error(err)
	s.Contains(err.Error(), "organization client limit reached")
}

func (s *ClientServiceSuite) TestTenantScoping() {
	client, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
	s.Require().NoError(err)

	_, err = s.svc.GetClientForOrg(s.ctx, s.org.ID, client.ID)
	s.Require().NoError(err)

	// A different tenant cannot see the client; the error is
	// indistinguishable from a missing record.
	_, err = s.svc.GetClientForOrg(s.ctx, id.NewOrgID(), client.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "client not found")
}

func (s *ClientServiceSuite) TestRedirectURIMutation() {
	client, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
	s.Require().NoError(err)

	s.Run("add persists", func() {
		updated, err := s.svc.AddRedirectURI(s.ctx, s.org.ID, client.ID, "https://app.example.com/alt")
		s.Require().NoError(err)
		s.Len(updated.RedirectURIs(), 2)

		reloaded, err := s.svc.GetClientForOrg(s.ctx, s.org.ID, client.ID)
		s.Require().NoError(err)
		s.Len(reloaded.RedirectURIs(), 2)
	})

	s.Run("duplicate add fails", func() {
		_, err := s.svc.AddRedirectURI(s.ctx, s.org.ID, client.ID, "https://app.example.com/callback")
		s.Require().Error(err)
	})

	s.Run("remove of absent URI fails", func() {
		_, err := s.svc.RemoveRedirectURI(s.ctx, s.org.ID, client.ID, "https://never.example.com/cb")
		s.Require().Error(err)
	})

	s.Run("remove persists", func() {
		updated, err := s.svc.RemoveRedirectURI(s.ctx, s.org.ID, client.ID, "https://app.example.com/alt")
		s.Require().NoError(err)
		s.Equal([]string{"https://app.example.com/callback"}, updated.RedirectURIValues())
	})
}

func (s *ClientServiceSuite) TestRotateSecret() {
	s.Run("confidential rotation returns a fresh plaintext", func() {
		cmd := s.createCmd()
		cmd.ClientID = "backend-api"
		cmd.Confidential = true
		client, original, err := s.svc.CreateClient(s.ctx, cmd)
		s.Require().NoError(err)

		rotated, err := s.svc.RotateSecret(s.ctx, s.org.ID, client.ID)
		s.Require().NoError(err)
		s.NotEqual(original, rotated)

		verified, err := s.svc.VerifyClientSecret(s.ctx, s.org.ID, "backend-api", rotated)
		s.Require().NoError(err)
		s.True(verified)

		verified, err = s.svc.VerifyClientSecret(s.ctx, s.org.ID, "backend-api", original)
		s.Require().NoError(err)
		s.False(verified, "the previous secret must stop working")
	})

	s.Run("public client cannot rotate", func() {
		client, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
		s.Require().NoError(err)

		_, err = s.svc.RotateSecret(s.ctx, s.org.ID, client.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ClientServiceSuite) TestResolveAndValidate() {
	client, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
	s.Require().NoError(err)

	s.Run("resolve by slug within the tenant", func() {
		resolved, err := s.svc.ResolveClient(s.ctx, s.org.ID, "web-dashboard")
		s.Require().NoError(err)
		s.Equal(client.ID, resolved.ID)
	})

	s.Run("resolve misses across tenants", func() {
		_, err := s.svc.ResolveClient(s.ctx, id.NewOrgID(), "web-dashboard")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("redirect URI validation is exact string match", func() {
		allowed, err := s.svc.ValidateRedirectURI(s.ctx, s.org.ID, "web-dashboard", "https://app.example.com/callback")
		s.Require().NoError(err)
		s.True(allowed)

		allowed, err = s.svc.ValidateRedirectURI(s.ctx, s.org.ID, "web-dashboard", "https://app.example.com/callback/")
		s.Require().NoError(err)
		s.False(allowed)

		allowed, err = s.svc.ValidateRedirectURI(s.ctx, s.org.ID, "web-dashboard", "https://APP.example.com/callback")
		s.Require().NoError(err)
		s.False(allowed)
	})
}

func (s *ClientServiceSuite) TestAssignOrganization() {
	legacy := models.Rehydrate(
		id.NewClientID(), id.OrgID{}, s.ownerID,
		"legacy-app", "Legacy", models.ClientTypePublic, "",
		[]string{"https://legacy.example.com/cb"}, nil, time.Now(),
	)
	s.Require().NoError(s.clients.Create(s.ctx, legacy))

	assigned, err := s.svc.AssignOrganization(s.ctx, legacy.ID, s.org.ID)
	s.Require().NoError(err)
	s.Equal(s.org.ID, assigned.OrgID)

	// Slug resolution now works within the assigned tenant.
	_, err = s.svc.ResolveClient(s.ctx, s.org.ID, "legacy-app")
	s.Require().NoError(err)

	_, err = s.svc.AssignOrganization(s.ctx, legacy.ID, s.org.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ClientServiceSuite) TestDeleteClient() {
	client, _, err := s.svc.CreateClient(s.ctx, s.createCmd())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteClient(s.ctx, s.org.ID, client.ID))

	_, err = s.svc.GetClient(s.ctx, client.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// The slug is free for reuse after deletion.
	_, _, err = s.svc.CreateClient(s.ctx, s.createCmd())
	s.Require().NoError(err)
}
