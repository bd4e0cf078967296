package models

import (
	"net/url"
	"strings"

	dErrors "sigil/pkg/domain-errors"
)

// RedirectURI is a validated OAuth redirect target. This is the first line of
// defense against authorization-code interception: only https URIs are
// accepted, with a development carve-out for localhost over http. Equality is
// by exact string value - no normalization - because the authorization flow
// matches redirect targets byte for byte.
type RedirectURI struct {
	value string
}

// NewRedirectURI validates a candidate redirect target.
// Accepted: any absolute https URI, and http URIs whose host is exactly
// "localhost" (case-insensitive, any port or path). Everything else is
// rejected, including loopback IP literals over http and custom schemes.
func NewRedirectURI(raw string) (RedirectURI, error) {
	if strings.TrimSpace(raw) == "" {
		return RedirectURI{}, dErrors.New(dErrors.CodeValidation, "redirect URI cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return RedirectURI{}, dErrors.New(dErrors.CodeValidation, "invalid redirect URI: "+raw)
	}
	if parsed.Scheme != "https" {
		if parsed.Scheme != "http" || !strings.EqualFold(parsed.Hostname(), "localhost") {
			return RedirectURI{}, dErrors.New(dErrors.CodeValidation, "HTTPS is required for non-localhost redirect URIs")
		}
	}
	return RedirectURI{value: raw}, nil
}

// Value returns the exact URI string as registered.
func (r RedirectURI) Value() string {
	return r.value
}

func (r RedirectURI) String() string {
	return r.value
}

// IsZero reports whether the URI was never constructed via NewRedirectURI.
func (r RedirectURI) IsZero() bool {
	return r.value == ""
}
