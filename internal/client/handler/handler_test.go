package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"sigil/internal/client/service"
	clientstore "sigil/internal/client/store/client"
	orgmodels "sigil/internal/org/models"
	orgstore "sigil/internal/org/store/organization"
	id "sigil/pkg/domain"
	adminmw "sigil/pkg/middleware/admin"
)

const adminToken = "secret-token"

type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	orgID   id.OrgID
	ownerID id.UserID
}

func (s *HandlerSuite) SetupTest() {
	clients := clientstore.NewInMemory()
	orgs := orgstore.NewInMemory()
	svc := service.New(clients, orgs)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	org, err := orgmodels.NewOrganization(id.NewOrgID(), "Acme", "acme",
		orgmodels.DefaultSettings(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(orgs.CreateIfSubdomainAvailable(context.Background(), org))
	s.orgID = org.ID
	s.ownerID = id.NewUserID()

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(adminmw.RequireAdminToken(adminToken, logger))
	h.Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", adminToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) createClient(slug string, confidential bool) ClientResponse {
	payload := map[string]any{
		"org_id":        s.orgID.String(),
		"owner_id":      s.ownerID.String(),
		"client_id":     slug,
		"display_name":  "Test Client",
		"confidential":  confidential,
		"redirect_uris": []string{"https://app.example.com/callback"},
		"scopes":        []string{"openid"},
	}
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	rec := s.do(http.MethodPost, "/admin/clients", string(body))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp ClientResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// TestAdminTokenRequired verifies middleware wiring - admin endpoints reject
// requests without a valid admin token.
func (s *HandlerSuite) TestAdminTokenRequired() {
	req := httptest.NewRequest(http.MethodGet, "/admin/clients/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code, "expected 401 when admin token missing")
}

func (s *HandlerSuite) TestCreateClient() {
	s.Run("public client has no secret", func() {
		resp := s.createClient("web-app", false)
		s.NotEmpty(resp.ID)
		s.Equal("web-app", resp.ClientID)
		s.Equal("public", resp.Type)
		s.Empty(resp.ClientSecret)
	})

	s.Run("confidential client returns the secret once", func() {
		resp := s.createClient("backend-app", true)
		s.Equal("confidential", resp.Type)
		s.NotEmpty(resp.ClientSecret)

		rec := s.do(http.MethodGet, "/admin/clients/"+resp.ID, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var fetched ClientResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &fetched))
		s.Empty(fetched.ClientSecret, "secret must not be returned on reads")
	})

	s.Run("surrounding whitespace in redirect URIs is trimmed", func() {
		rec := s.do(http.MethodPost, "/admin/clients",
			`{"org_id":"`+s.orgID.String()+`","owner_id":"`+s.ownerID.String()+`","client_id":"trimmed-app","display_name":"Trimmed","redirect_uris":["  https://app.example.com/cb  "]}`)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		var resp ClientResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal([]string{"https://app.example.com/cb"}, resp.RedirectURIs)
	})

	s.Run("rejects invalid JSON", func() {
		rec := s.do(http.MethodPost, "/admin/clients", "not valid json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejects empty redirect URI set", func() {
		rec := s.do(http.MethodPost, "/admin/clients",
			`{"org_id":"`+s.orgID.String()+`","owner_id":"`+s.ownerID.String()+`","client_id":"no-uris","display_name":"No URIs","redirect_uris":[]}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("duplicate slug conflicts", func() {
		s.createClient("dup-app", false)
		rec := s.do(http.MethodPost, "/admin/clients",
			`{"org_id":"`+s.orgID.String()+`","owner_id":"`+s.ownerID.String()+`","client_id":"dup-app","display_name":"Dup","redirect_uris":["https://app.example.com/cb"]}`)
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *HandlerSuite) TestRedirectURIs() {
	created := s.createClient("web-app", false)
	base := "/admin/orgs/" + s.orgID.String() + "/clients/" + created.ID

	s.Run("add and remove", func() {
		rec := s.do(http.MethodPost, base+"/redirect-uris",
			`{"redirect_uri":"https://other.example.com/cb"}`)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var resp ClientResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.RedirectURIs, 2)

		rec = s.do(http.MethodDelete, base+"/redirect-uris",
			`{"redirect_uri":"https://other.example.com/cb"}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Len(resp.RedirectURIs, 1)
	})

	s.Run("duplicate add is rejected", func() {
		rec := s.do(http.MethodPost, base+"/redirect-uris",
			`{"redirect_uri":"https://app.example.com/callback"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("validation matches exact strings only", func() {
		validate := "/admin/orgs/" + s.orgID.String() + "/clients/validate-redirect"

		rec := s.do(http.MethodPost, validate,
			`{"client_id":"web-app","redirect_uri":"https://app.example.com/callback"}`)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var resp ValidateRedirectURIResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Allowed)

		rec = s.do(http.MethodPost, validate,
			`{"client_id":"web-app","redirect_uri":"https://app.example.com/callback/"}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.False(resp.Allowed, "trailing slash variant must not match")
	})
}

func (s *HandlerSuite) TestRotateSecret() {
	s.Run("confidential client gets a fresh secret", func() {
		created := s.createClient("backend-app", true)

		rec := s.do(http.MethodPost,
			"/admin/orgs/"+s.orgID.String()+"/clients/"+created.ID+"/rotate-secret", "")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var resp RotateSecretResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.NotEmpty(resp.ClientSecret)
		s.NotEqual(created.ClientSecret, resp.ClientSecret)
	})

	s.Run("public client cannot rotate", func() {
		created := s.createClient("web-app", false)

		rec := s.do(http.MethodPost,
			"/admin/orgs/"+s.orgID.String()+"/clients/"+created.ID+"/rotate-secret", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestTenantScoping() {
	created := s.createClient("web-app", false)

	rec := s.do(http.MethodGet, "/admin/orgs/"+uuid.New().String()+"/clients/"+created.ID, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestDeleteClient() {
	created := s.createClient("web-app", false)
	base := "/admin/orgs/" + s.orgID.String() + "/clients/" + created.ID

	rec := s.do(http.MethodDelete, base, "")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, base, "")
	s.Equal(http.StatusNotFound, rec.Code)
}
