package handler

import (
	"time"

	"sigil/internal/identity/models"
)

type UserResponse struct {
	ID          string     `json:"id"`
	OrgID       string     `json:"org_id,omitempty"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	OrgAdmin    bool       `json:"org_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Response mapping functions - convert domain objects to HTTP DTOs

func toUserResponse(u *models.User) *UserResponse {
	resp := &UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email.String(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		OrgAdmin:    u.IsOrgAdmin,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
	if !u.OrgID.IsNil() {
		resp.OrgID = u.OrgID.String()
	}
	return resp
}
