package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/ideathon-portal/token"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims token.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestPeek(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	raw := signedToken(t, token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(exp)},
		Email:            "a@test.com",
		Name:             "Asha",
		TeamName:         "Byte Riders",
		TeamMembers:      []users.TeamMember{{Name: "Ravi", Email: "ravi@test.com", Mobile: "999"}},
		Role:             token.RoleUser,
	})

	claims, ok := token.Peek(raw)
	require.True(t, ok)
	require.Equal(t, "u-1", claims.Subject)
	require.Equal(t, "a@test.com", claims.Email)
	require.Equal(t, "Byte Riders", claims.TeamName)
	require.Len(t, claims.TeamMembers, 1)
	require.Equal(t, token.RoleUser, claims.GetRole())
	require.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestPeek_PaddedAndStandardAlphabet(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(`{"email":"a@test.com","name":"?>?"}`))
	claims, ok := token.Peek("h." + payload + ".sig")
	require.True(t, ok)
	require.Equal(t, "?>?", claims.Name)
}

func TestPeek_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no dot", "abcdef"},
		{"empty payload", "header..sig"},
		{"not base64", "header.!!!*.sig"},
		{"base64 text not json", "header." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".sig"},
		{"json array", "header." + base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`)) + ".sig"},
		{"broken json", "header." + base64.RawURLEncoding.EncodeToString([]byte(`{"email":`)) + ".sig"},
		{"invalid utf8", "header." + base64.RawURLEncoding.EncodeToString([]byte{'{', 0xff, '}'}) + ".sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				claims, ok := token.Peek(tt.raw)
				require.False(t, ok)
				require.Nil(t, claims)
			})
		})
	}
}

func TestClaims_Expired(t *testing.T) {
	now := time.Now()

	t.Run("missing exp", func(t *testing.T) {
		require.True(t, (&token.Claims{}).Expired(now))
	})
	t.Run("nil claims", func(t *testing.T) {
		var c *token.Claims
		require.True(t, c.Expired(now))
	})
	t.Run("exp equals now", func(t *testing.T) {
		c := &token.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}}
		require.True(t, c.Expired(c.ExpiresAt.Time))
	})
	t.Run("exp in the past", func(t *testing.T) {
		c := &token.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
		require.True(t, c.Expired(now))
	})
	t.Run("exp in the future", func(t *testing.T) {
		c := &token.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
		require.False(t, c.Expired(now))
	})
}

func TestClaims_GetRole(t *testing.T) {
	require.Equal(t, token.RoleAdmin, (&token.Claims{Role: "admin"}).GetRole())
	require.Equal(t, token.RoleNone, (&token.Claims{Role: "superuser"}).GetRole())
	var c *token.Claims
	require.Equal(t, token.RoleNone, c.GetRole())
}
