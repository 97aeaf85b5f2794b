package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierOf(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{0, TierLow},
		{50, TierLow},
		{51, TierHigh},
		{100, TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierOf(tt.score), "score %d", tt.score)
	}
	assert.Equal(t, "High Risk", TierHigh.Label())
	assert.Equal(t, "#10B981", TierLow.Color())
}

func TestSessionLoggedIn(t *testing.T) {
	assert.True(t, Session{User: "ann", Role: RolePatient}.LoggedIn())
	assert.False(t, Session{User: "ann"}.LoggedIn())
	assert.False(t, Session{Role: RoleDoctor}.LoggedIn())
	assert.False(t, Session{}.LoggedIn())
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleDoctor, ParseRole("Doctor"))
	assert.Equal(t, RolePatient, ParseRole("Patient"))
	assert.Equal(t, Role(""), ParseRole("doctor"))
	assert.Equal(t, Role(""), ParseRole(""))
}

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/home", RoleDoctor.Home())
	assert.Equal(t, "/dashboard", RolePatient.Home())
}
