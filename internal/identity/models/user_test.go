package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// UserSuite tests the User aggregate.
type UserSuite struct {
	suite.Suite
}

func TestUserSuite(t *testing.T) {
	suite.Run(t, new(UserSuite))
}

func (s *UserSuite) email() Email {
	email, err := NewEmail("dana@example.com")
	s.Require().NoError(err)
	return email
}

func (s *UserSuite) newUser() *User {
	user, err := NewUser(id.NewUserID(), id.NewOrgID(), s.email(), "hash", "Dana", "Miller", false, time.Now())
	s.Require().NoError(err)
	return user
}

func (s *UserSuite) TestRegister() {
	s.Run("valid registration records UserRegistered", func() {
		now := time.Now()
		userID := id.NewUserID()
		user, err := NewUser(userID, id.NewOrgID(), s.email(), "hash", "Dana", "Miller", false, now)
		s.Require().NoError(err)
		s.Equal(now, user.CreatedAt)
		s.Nil(user.LastLoginAt)

		events := user.Events()
		s.Require().Len(events, 1)
		registered, ok := events[0].(UserRegistered)
		s.Require().True(ok)
		s.Equal(userID, registered.UserID)
		s.Equal("dana@example.com", registered.Email)
	})

	s.Run("missing organization is rejected", func() {
		_, err := NewUser(id.NewUserID(), id.OrgID{}, s.email(), "hash", "Dana", "Miller", false, time.Now())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Contains(err.Error(), "organization ID is required")
	})

	s.Run("zero email is rejected", func() {
		_, err := NewUser(id.NewUserID(), id.NewOrgID(), Email{}, "hash", "Dana", "Miller", false, time.Now())
		s.Require().Error(err)
		s.Contains(err.Error(), "email is required")
	})

	s.Run("missing password hash is rejected", func() {
		_, err := NewUser(id.NewUserID(), id.NewOrgID(), s.email(), "", "Dana", "Miller", false, time.Now())
		s.Require().Error(err)
		s.Contains(err.Error(), "password hash is required")
	})
}

func (s *UserSuite) TestNameValidation() {
	s.Run("empty first name", func() {
		_, err := NewUser(id.NewUserID(), id.NewOrgID(), s.email(), "hash", "", "Miller", false, time.Now())
		s.Require().Error(err)
		s.Contains(err.Error(), "first name must be between 1 and 100 characters")
	})

	s.Run("last name over 100 characters", func() {
		long := strings.Repeat("x", 101)
		_, err := NewUser(id.NewUserID(), id.NewOrgID(), s.email(), "hash", "Dana", long, false, time.Now())
		s.Require().Error(err)
		s.Contains(err.Error(), "last name must be between 1 and 100 characters")
	})

	s.Run("length counts runes, not bytes", func() {
		name := strings.Repeat("å", 100)
		_, err := NewUser(id.NewUserID(), id.NewOrgID(), s.email(), "hash", name, "Miller", false, time.Now())
		s.Require().NoError(err)
	})

	s.Run("failed update leaves names untouched", func() {
		user := s.newUser()
		err := user.UpdateProfile("", "New")
		s.Require().Error(err)
		s.Equal("Dana", user.FirstName)
		s.Equal("Miller", user.LastName)
	})

	s.Run("successful update replaces both names", func() {
		user := s.newUser()
		s.Require().NoError(user.UpdateProfile("Daniela", "Muller"))
		s.Equal("Daniela", user.FirstName)
		s.Equal("Muller", user.LastName)
	})
}

func (s *UserSuite) TestRecordLogin() {
	user := s.newUser()
	user.ClearEvents()

	now := time.Now()
	user.RecordLogin(now)

	s.Require().NotNil(user.LastLoginAt)
	s.Equal(now, *user.LastLoginAt)

	events := user.Events()
	s.Require().Len(events, 1)
	authenticated, ok := events[0].(UserAuthenticated)
	s.Require().True(ok)
	s.Equal(user.ID, authenticated.UserID)
	s.Equal(now, authenticated.At)
}

func (s *UserSuite) TestAdminRole() {
	user := s.newUser()
	s.False(user.IsOrgAdmin)

	user.PromoteToOrgAdmin()
	s.True(user.IsOrgAdmin)
	user.PromoteToOrgAdmin()
	s.True(user.IsOrgAdmin)

	user.DemoteFromOrgAdmin()
	s.False(user.IsOrgAdmin)
	user.DemoteFromOrgAdmin()
	s.False(user.IsOrgAdmin)
}

func (s *UserSuite) TestAssignOrganization() {
	s.Run("unassigned user accepts exactly one assignment", func() {
		user, err := NewUnassignedUser(id.NewUserID(), s.email(), "hash", "Dana", "Miller", time.Now())
		s.Require().NoError(err)
		s.True(user.OrgID.IsNil())

		orgID := id.NewOrgID()
		s.Require().NoError(user.AssignOrganization(orgID))
		s.Equal(orgID, user.OrgID)

		err = user.AssignOrganization(id.NewOrgID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Contains(err.Error(), "organization already assigned")
		s.Equal(orgID, user.OrgID)
	})

	s.Run("nil organization is rejected", func() {
		user, err := NewUnassignedUser(id.NewUserID(), s.email(), "hash", "Dana", "Miller", time.Now())
		s.Require().NoError(err)
		s.Require().Error(user.AssignOrganization(id.OrgID{}))
	})

	s.Run("assigned user cannot be reassigned", func() {
		user := s.newUser()
		err := user.AssignOrganization(id.NewOrgID())
		s.Require().Error(err)
	})
}

func (s *UserSuite) TestEventBuffer() {
	user := s.newUser()

	// Events returns a copy; mutating it does not affect the buffer.
	events := user.Events()
	s.Require().Len(events, 1)
	events[0] = nil
	s.NotNil(user.Events()[0])

	user.ClearEvents()
	s.Empty(user.Events())
}
