package users_test

import (
	"testing"

	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@test.com", true},
		{"  leader@college.ac.in ", true},
		{"", false},
		{"no-at-sign.com", false},
		{"a@b", false},
		{"a b@test.com", false},
		{"@test.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			require.Equal(t, tt.valid, users.ValidEmail(tt.email))
		})
	}
}

func TestUser_TeamSize(t *testing.T) {
	u := &users.User{TeamMembers: []users.TeamMember{{Name: "B"}, {Name: "C"}}}
	require.Equal(t, 3, u.TeamSize())

	u.TeamMemberCount = 3
	require.Equal(t, 4, u.TeamSize(), "declared count wins when members were not sent")
}

func TestUser_Matches(t *testing.T) {
	u := &users.User{
		Name:        "Asha",
		Email:       "asha@test.com",
		TeamName:    "Byte Riders",
		TeamMembers: []users.TeamMember{{Name: "Ravi", Email: "ravi@test.com"}},
	}

	require.True(t, u.Matches(""))
	require.True(t, u.Matches("byte"))
	require.True(t, u.Matches("RAVI"))
	require.False(t, u.Matches("nobody"))
}

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *users.User
	require.False(t, nilUser.IsAdmin())
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsAdmin())
	require.False(t, (&users.User{Role: users.RoleUser}).IsAdmin())
}
