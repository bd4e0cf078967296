package models

import (
	"time"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// ClientType distinguishes OAuth client categories by their ability to hold
// a secret securely.
type ClientType string

const (
	ClientTypePublic       ClientType = "public"
	ClientTypeConfidential ClientType = "confidential"
)

func (t ClientType) IsValid() bool {
	return t == ClientTypePublic || t == ClientTypeConfidential
}

func (t ClientType) String() string {
	return string(t)
}

// Client is the aggregate root for an OAuth client registration. The type is
// fixed at creation: only the confidential constructor can populate the
// secret, so a public client holding a secret is unrepresentable. The
// redirect-URI set and scope list are owned exclusively by the aggregate -
// accessors hand out copies, never the backing slices.
type Client struct {
	ID          id.ClientID
	OrgID       id.OrgID
	OwnerID     id.UserID
	ClientID    string // human-derived slug, unique within the organization
	DisplayName string
	Type        ClientType
	CreatedAt   time.Time

	secret        ClientSecret
	redirectURIs  []RedirectURI
	allowedScopes []string

	events []Event
}

// NewPublicClient registers a public (secret-less) OAuth client.
// Redirect URIs must already be validated RedirectURI values; duplicates are
// rejected. Scopes are kept in order and duplicates are not rejected here.
func NewPublicClient(
	clientID id.ClientID,
	orgID id.OrgID,
	ownerID id.UserID,
	oauthClientID string,
	displayName string,
	redirectURIs []RedirectURI,
	scopes []string,
	now time.Time,
) (*Client, error) {
	return newClient(clientID, orgID, ownerID, oauthClientID, displayName,
		ClientTypePublic, ClientSecret{}, redirectURIs, scopes, now)
}

// NewConfidentialClient registers a confidential client carrying a secret.
// The secret should already be hashed by the caller; plaintext is never
// stored on the aggregate.
func NewConfidentialClient(
	clientID id.ClientID,
	orgID id.OrgID,
	ownerID id.UserID,
	oauthClientID string,
	displayName string,
	secret ClientSecret,
	redirectURIs []RedirectURI,
	scopes []string,
	now time.Time,
) (*Client, error) {
	if secret.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "confidential client requires a secret")
	}
	return newClient(clientID, orgID, ownerID, oauthClientID, displayName,
		ClientTypeConfidential, secret, redirectURIs, scopes, now)
}

func newClient(
	clientID id.ClientID,
	orgID id.OrgID,
	ownerID id.UserID,
	oauthClientID string,
	displayName string,
	clientType ClientType,
	secret ClientSecret,
	redirectURIs []RedirectURI,
	scopes []string,
	now time.Time,
) (*Client, error) {
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display name cannot be empty")
	}
	if oauthClientID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client ID cannot be empty")
	}
	if len(redirectURIs) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "at least one redirect URI is required")
	}

	c := &Client{
		ID:            clientID,
		OrgID:         orgID,
		OwnerID:       ownerID,
		ClientID:      oauthClientID,
		DisplayName:   displayName,
		Type:          clientType,
		CreatedAt:     now,
		secret:        secret,
		allowedScopes: append([]string(nil), scopes...),
	}
	for _, uri := range redirectURIs {
		if err := c.addRedirectURI(uri); err != nil {
			return nil, err
		}
	}
	c.record(ClientRegistered{ClientID: c.ClientID, ID: c.ID})
	return c, nil
}

// AddRedirectURI registers an additional redirect target.
// Fails if an identical URI (exact string match) is already registered.
func (c *Client) AddRedirectURI(uri RedirectURI) error {
	return c.addRedirectURI(uri)
}

func (c *Client) addRedirectURI(uri RedirectURI) error {
	if uri.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "redirect URI is required")
	}
	if c.hasRedirectURI(uri.Value()) {
		return dErrors.New(dErrors.CodeInvariantViolation, "redirect URI already registered: "+uri.Value())
	}
	c.redirectURIs = append(c.redirectURIs, uri)
	return nil
}

// RemoveRedirectURI deregisters a redirect target.
// Fails if no matching URI exists; the set is never left empty-handed by a
// failed call.
func (c *Client) RemoveRedirectURI(uri RedirectURI) error {
	for i, existing := range c.redirectURIs {
		if existing.Value() == uri.Value() {
			c.redirectURIs = append(c.redirectURIs[:i], c.redirectURIs[i+1:]...)
			return nil
		}
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "redirect URI not registered: "+uri.Value())
}

// ValidateRedirectURI is the authorization-time gate: it reports whether the
// candidate exactly matches a registered URI. Case or trailing-slash variants
// do not match.
func (c *Client) ValidateRedirectURI(candidate string) bool {
	return c.hasRedirectURI(candidate)
}

func (c *Client) hasRedirectURI(value string) bool {
	for _, existing := range c.redirectURIs {
		if existing.Value() == value {
			return true
		}
	}
	return false
}

// UpdateDisplayName changes the client's display name.
func (c *Client) UpdateDisplayName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "display name cannot be empty")
	}
	c.DisplayName = name
	return nil
}

// IsOwnedBy reports whether the given user created this client.
// Used as an authorization helper for administrative operations.
func (c *Client) IsOwnedBy(userID id.UserID) bool {
	return c.OwnerID == userID
}

// IsConfidential reports whether this client can hold a secret.
func (c *Client) IsConfidential() bool {
	return c.Type == ClientTypeConfidential
}

// Secret returns the stored secret and true for confidential clients,
// or a zero value and false for public ones.
func (c *Client) Secret() (ClientSecret, bool) {
	if !c.IsConfidential() {
		return ClientSecret{}, false
	}
	return c.secret, true
}

// RotateSecret replaces the stored secret hash on a confidential client and
// records a ClientSecretRotated event.
func (c *Client) RotateSecret(newSecret ClientSecret) error {
	if !c.IsConfidential() {
		return dErrors.New(dErrors.CodeInvariantViolation, "public client cannot hold a secret")
	}
	if newSecret.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "secret is required")
	}
	c.secret = newSecret
	c.record(ClientSecretRotated{ID: c.ID})
	return nil
}

// AssignOrganization performs the one-time tenant backfill for legacy/seed
// data. Write-once: reassigning an already-set organization fails.
func (c *Client) AssignOrganization(orgID id.OrgID) error {
	if orgID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	if !c.OrgID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization already assigned")
	}
	c.OrgID = orgID
	return nil
}

// RedirectURIs returns a copy of the registered redirect targets.
func (c *Client) RedirectURIs() []RedirectURI {
	out := make([]RedirectURI, len(c.redirectURIs))
	copy(out, c.redirectURIs)
	return out
}

// RedirectURIValues returns the registered targets as raw strings, for
// persistence and serialization.
func (c *Client) RedirectURIValues() []string {
	out := make([]string, len(c.redirectURIs))
	for i, uri := range c.redirectURIs {
		out[i] = uri.Value()
	}
	return out
}

// AllowedScopes returns a copy of the scope list, in registration order.
func (c *Client) AllowedScopes() []string {
	return append([]string(nil), c.allowedScopes...)
}

// Events returns a copy of the buffered domain events. The buffer is not
// cleared on read; callers drain it with ClearEvents once per unit of work.
func (c *Client) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// ClearEvents empties the event buffer after the caller has drained it.
func (c *Client) ClearEvents() {
	c.events = nil
}

func (c *Client) record(e Event) {
	c.events = append(c.events, e)
}

// Rehydrate reconstructs a stored client without running creation validation
// or recording events. Persistence only - redirect URIs are trusted as
// previously validated.
func Rehydrate(
	clientID id.ClientID,
	orgID id.OrgID,
	ownerID id.UserID,
	oauthClientID string,
	displayName string,
	clientType ClientType,
	secretHash string,
	redirectURIs []string,
	scopes []string,
	createdAt time.Time,
) *Client {
	c := &Client{
		ID:            clientID,
		OrgID:         orgID,
		OwnerID:       ownerID,
		ClientID:      oauthClientID,
		DisplayName:   displayName,
		Type:          clientType,
		CreatedAt:     createdAt,
		allowedScopes: append([]string(nil), scopes...),
	}
	if clientType == ClientTypeConfidential {
		c.secret = SecretFromHash(secretHash)
	}
	for _, uri := range redirectURIs {
		c.redirectURIs = append(c.redirectURIs, RedirectURI{value: uri})
	}
	return c
}
