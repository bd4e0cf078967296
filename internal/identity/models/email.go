package models

import (
	"strings"

	dErrors "sigil/pkg/domain-errors"
)

// maxEmailLength is the RFC 5321 limit for a complete address.
const maxEmailLength = 254

// Email is a validated, normalized email address. The zero value is invalid;
// construct via NewEmail. Comparable - two Emails are equal when their
// normalized values are equal.
type Email struct {
	value string
}

// NewEmail trims and lowercases the input, then validates it against a strict
// address grammar. The grammar deliberately rejects bare hostnames (no dot in
// the domain) and other shapes that pass looser parsers but break downstream
// mail delivery.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return Email{}, dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	if len(normalized) > maxEmailLength {
		return Email{}, dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	if !isValidAddress(normalized) {
		return Email{}, dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	return Email{value: normalized}, nil
}

// EmailFromStored wraps a previously validated address loaded from storage.
// Persistence only - no validation is performed.
func EmailFromStored(value string) Email {
	return Email{value: value}
}

// Value returns the normalized address string.
func (e Email) Value() string {
	return e.value
}

func (e Email) String() string {
	return e.value
}

// IsZero reports whether the email was never constructed via NewEmail.
func (e Email) IsZero() bool {
	return e.value == ""
}

// isValidAddress enforces the address grammar:
//   - exactly one "@" with a non-empty local part
//   - domain contains at least one "." with a non-empty label after the last dot
//   - no consecutive dots anywhere
//   - no dot immediately adjacent to the "@"
func isValidAddress(addr string) bool {
	if strings.Count(addr, "@") != 1 {
		return false
	}
	at := strings.IndexByte(addr, '@')
	local, domain := addr[:at], addr[at+1:]

	if local == "" || domain == "" {
		return false
	}
	if strings.Contains(addr, "..") {
		return false
	}
	if strings.HasSuffix(local, ".") || strings.HasPrefix(domain, ".") {
		return false
	}
	lastDot := strings.LastIndexByte(domain, '.')
	if lastDot < 0 {
		return false
	}
	// TLD label after the last dot must be non-empty.
	if lastDot == len(domain)-1 {
		return false
	}
	return true
}
