// Package tokens issues and verifies admin session tokens.
// These tokens authenticate administrators against this backend only;
// end-user OAuth access tokens are issued by the external OAuth layer.
package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

const issuerName = "sigil-admin"

// SessionClaims are the claims carried by an admin session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	OrgID    string `json:"org_id,omitempty"`
	OrgAdmin bool   `json:"org_admin"`
}

// Issuer signs and verifies admin session tokens with a shared HMAC key.
type Issuer struct {
	signingKey []byte
}

func NewIssuer(signingKey string) *Issuer {
	return &Issuer{signingKey: []byte(signingKey)}
}

// Issue creates a signed session token for the given user.
// The TTL comes from the organization's session timeout setting.
func (i *Issuer) Issue(userID id.UserID, orgID id.OrgID, orgAdmin bool, ttl time.Duration, now time.Time) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		OrgID:    orgID.String(),
		OrgAdmin: orgAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (i *Issuer) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	return claims, nil
}
