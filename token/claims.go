// Package token reads the session token issued by the registration backend.
//
// Nothing here verifies a signature. Peek decodes the payload so pages can pick a view and
// show a name; the backend validates the raw token on every request and remains the only
// authorization boundary.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ideathon-portal/users"
)

// Role mirrors the role claim.
type Role = users.RoleType

const (
	RoleAdmin = users.RoleAdmin
	RoleUser  = users.RoleUser
	RoleNone  = users.RoleNone
)

// Claims is the payload of a session token. Only sub and exp come from the registered set.
type Claims struct {
	jwt.RegisteredClaims
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Mobile          string             `json:"mobile"`
	TeamName        string             `json:"teamName,omitempty"`
	TeamMemberCount int                `json:"teamMemberCount,omitempty"`
	TeamMembers     []users.TeamMember `json:"teamMembers,omitempty"`
	Institute       string             `json:"institute,omitempty"`
	IdeaDescription string             `json:"ideaDescription,omitempty"`
	Role            Role               `json:"role,omitempty"`
}

// Expired is true when exp is missing or now is at or past it.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// GetRole returns the role claim, RoleNone for anything other than admin or user.
func (c *Claims) GetRole() Role {
	if c == nil {
		return RoleNone
	}
	switch c.Role {
	case RoleAdmin, RoleUser:
		return c.Role
	default:
		return RoleNone
	}
}

// User builds the display profile carried by the claims.
func (c *Claims) User() *users.User {
	if c == nil {
		return nil
	}
	return &users.User{
		ID:              c.Subject,
		Name:            c.Name,
		Email:           c.Email,
		Mobile:          c.Mobile,
		Institute:       c.Institute,
		TeamName:        c.TeamName,
		TeamMemberCount: c.TeamMemberCount,
		TeamMembers:     c.TeamMembers,
		IdeaDescription: c.IdeaDescription,
		Role:            c.GetRole(),
	}
}
