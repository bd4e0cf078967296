package models

import (
	"sigil/pkg/secrets"
)

// ClientSecret wraps a client secret representation. Two construction paths:
// GenerateClientSecret produces a fresh plaintext secret that the caller must
// hash before persisting (and may show to the end user exactly once);
// SecretFromHash wraps an already-hashed value loaded from storage. The type
// does not track which state it holds - callers own that distinction, and the
// service layer hashes generated secrets immediately.
type ClientSecret struct {
	value string
}

// GenerateClientSecret draws 32 bytes of cryptographically secure randomness
// and returns it base64-encoded as a plaintext secret.
func GenerateClientSecret() (ClientSecret, error) {
	v, err := secrets.Generate()
	if err != nil {
		return ClientSecret{}, err
	}
	return ClientSecret{value: v}, nil
}

// SecretFromHash wraps a pre-hashed secret value with no further validation.
// Hashing itself is an external capability (pkg/secrets).
func SecretFromHash(value string) ClientSecret {
	return ClientSecret{value: value}
}

// Value returns the stored string. Treat generated values as sensitive.
func (s ClientSecret) Value() string {
	return s.value
}

// String redacts the secret so it cannot leak through logging or %v formatting.
func (s ClientSecret) String() string {
	return "[redacted]"
}

// IsZero reports whether no secret is present.
func (s ClientSecret) IsZero() bool {
	return s.value == ""
}
