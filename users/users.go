package users

import (
	"regexp"
	"strings"
)

// RoleType is the role a participant account holds on the backend.
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Organiser with access to the whole roster
	RoleUser  RoleType = "user"  // Team leader who registered a team
	RoleNone  RoleType = ""      // No role claim present
)

// TeamMember is a non-leader member of a registered team.
type TeamMember struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// User is a registered team leader as the backend reports it. The admin roster is a list of these.
type User struct {
	ID              string       `json:"_id,omitempty"`             // Backend identifier
	Name            string       `json:"name"`                      // Leader name
	Email           string       `json:"email"`                     // Leader email, also the login identity
	Mobile          string       `json:"mobile"`                    // Leader mobile number
	Institute       string       `json:"institute,omitempty"`       // College or organisation
	TeamName        string       `json:"teamName,omitempty"`        // Display name of the team
	TeamMemberCount int          `json:"teamMemberCount,omitempty"` // Members excluding the leader
	TeamMembers     []TeamMember `json:"teamMembers,omitempty"`     // Members excluding the leader, in entry order
	Topic           string       `json:"topic,omitempty"`           // Problem statement track
	IdeaDescription string       `json:"ideaDescription,omitempty"` // Free text pitch
	Role            RoleType     `json:"role,omitempty"`
}

// TeamSize is the number of people in the team, leader included.
func (u *User) TeamSize() int {
	members := len(u.TeamMembers)
	if u.TeamMemberCount > members {
		members = u.TeamMemberCount
	}
	return members + 1
}

// IsAdmin reports whether the profile carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Matches reports whether query appears in any of the searchable leader or team fields.
// An empty query matches everything.
func (u *User) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	fields := []string{u.Name, u.Email, u.Mobile, u.Institute, u.TeamName, u.Topic}
	for _, m := range u.TeamMembers {
		fields = append(fields, m.Name, m.Email)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the local@domain.tld shape. It is a typo guard, the backend decides deliverability.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
