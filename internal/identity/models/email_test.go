package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "sigil/pkg/domain-errors"
)

// EmailSuite tests the Email value object.
type EmailSuite struct {
	suite.Suite
}

func TestEmailSuite(t *testing.T) {
	suite.Run(t, new(EmailSuite))
}

func (s *EmailSuite) TestNormalization() {
	s.Run("trims and lowercases", func() {
		email, err := NewEmail("  Alice@Example.COM  ")
		s.Require().NoError(err)
		s.Equal("alice@example.com", email.Value())
	})

	s.Run("equality is structural on the normalized value", func() {
		a, err := NewEmail("Bob@example.com")
		s.Require().NoError(err)
		b, err := NewEmail("bob@EXAMPLE.com")
		s.Require().NoError(err)
		s.Equal(a, b)
	})
}

func (s *EmailSuite) TestRejections() {
	cases := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "email cannot be empty"},
		{"whitespace only", "   ", "email cannot be empty"},
		{"missing at sign", "alice.example.com", "invalid email format"},
		{"two at signs", "alice@bob@example.com", "invalid email format"},
		{"empty local part", "@example.com", "invalid email format"},
		{"bare hostname domain", "alice@localhost", "invalid email format"},
		{"consecutive dots", "ali..ce@example.com", "invalid email format"},
		{"dot before at", "alice.@example.com", "invalid email format"},
		{"dot after at", "alice@.example.com", "invalid email format"},
		{"empty label after last dot", "alice@example.", "invalid email format"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := NewEmail(tc.input)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Contains(err.Error(), tc.message)
		})
	}
}

func (s *EmailSuite) TestLengthLimit() {
	local := strings.Repeat("a", 250)
	_, err := NewEmail(local + "@example.com")
	s.Require().Error(err)
	s.Contains(err.Error(), "email is too long")

	// 254 characters exactly is still accepted.
	local = strings.Repeat("a", 254-len("@example.com"))
	email, err := NewEmail(local + "@example.com")
	s.Require().NoError(err)
	s.Len(email.Value(), 254)
}

func (s *EmailSuite) TestFromStored() {
	email := EmailFromStored("carol@example.com")
	s.False(email.IsZero())
	s.Equal("carol@example.com", email.Value())

	s.True(Email{}.IsZero())
}
