package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/errors"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Other string `validate:"required"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Name: "ok", Other: "x"}))

	err := v.Validate(sample{Name: "toolong", Role: "root"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, map[string]string{
		"name":  "must not exceed 5 characters",
		"role":  "must be one of: admin user",
		"Other": "is required",
	}, e.Details)
}
