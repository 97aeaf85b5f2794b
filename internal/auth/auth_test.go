package auth

import (
	"testing"
	"time"

	"heart-clinic/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("doctor123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "doctor123"))
	assert.False(t, CheckPassword(hash, "doctor124"))
}

func TestTokenRoundTrip(t *testing.T) {
	raw, err := MakeToken("ann", model.RolePatient, "secret", time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(raw, "secret")
	require.NoError(t, err)
	assert.Equal(t, "ann", c.Subject)
	assert.Equal(t, model.RolePatient, c.Role)
}

func TestParseTokenRejects(t *testing.T) {
	good, err := MakeToken("ann", model.RoleDoctor, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := MakeToken("ann", model.RoleDoctor, "secret", -time.Minute)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ann"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"wrong secret", good + "x"},
		{"expired", expired},
		{"alg none", none},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.raw, "secret")
			assert.Error(t, err)
		})
	}

	_, err = ParseToken(good, "other")
	assert.Error(t, err)
}
