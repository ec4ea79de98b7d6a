package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupRequestValidation(t *testing.T) {
	var req = SignupRequest{Name: "  Ada Lovelace ", Email: " Ada@Example.COM ", Password: "correct-horse"}
	req.Normalize()
	require.NoError(t, req.Validate())
	require.Equal(t, "Ada Lovelace", req.Name)
	require.Equal(t, "ada@example.com", req.Email)

	req = SignupRequest{Name: "A", Email: "nope", Password: "short"}
	req.Normalize()
	require.EqualError(t, req.Validate(),
		"name: Name must be at least 2 characters; email: Invalid email address; "+
			"password: Password must be at least 8 characters")

	req = SignupRequest{Name: strings.Repeat("n", 61), Email: "a@b.co", Password: strings.Repeat("p", 73)}
	require.EqualError(t, req.Validate(),
		"name: Name must be at most 60 characters; password: Password must be at most 72 characters")
}

func TestEmailValidation(t *testing.T) {
	for _, ok := range []string{"a@b.co", "first.last+tag@sub.example.org", "o'brien@example.ie"} {
		require.NoError(t, ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "plain", "a@b", ".a@b.co", "a..b@c.co", "a@-b.co", "a.@b.co", "a@b.c"} {
		require.Error(t, ValidateEmail(bad), bad)
	}
}

func TestLoginRequestAndPublicUser(t *testing.T) {
	var req = LoginRequest{Email: " USER@example.com", Password: "12345678"}
	req.Normalize()
	require.NoError(t, req.Validate())
	require.Equal(t, "user@example.com", req.Email)

	var u = User{ID: "507f1f77bcf86cd799439011", Name: "U", Email: "user@example.com", PasswordHash: "secret"}
	require.Equal(t, PublicUser{ID: u.ID, Name: "U", Email: "user@example.com"}, u.Public())
}
