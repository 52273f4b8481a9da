package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAtLeast(RoleAdmin, RoleUser))
	assert.True(t, RoleAtLeast(RoleAdmin, RoleAdmin))
	assert.True(t, RoleAtLeast(RoleUser, RoleUser))
	assert.False(t, RoleAtLeast(RoleUser, RoleAdmin))

	for _, pair := range [][2]string{{"owner", RoleUser}, {RoleAdmin, "owner"}, {"", ""}, {"", RoleUser}} {
		assert.False(t, RoleAtLeast(pair[0], pair[1]), "%q vs %q", pair[0], pair[1])
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole("Admin"))
	assert.False(t, ValidRole(""))
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"":                      false,
		"sock":                  false,
		"7-chars":               false,
		"8-chars!":              true,
		"wool-sweater-in-bag-3": true,
		strings.Repeat("x", 72): true,
		strings.Repeat("x", 73): false,
	}
	for password, ok := range cases {
		err := ValidatePassword(password)
		if ok {
			assert.NoError(t, err, "len %d", len(password))
		} else {
			assert.Error(t, err, "len %d", len(password))
		}
	}
}
