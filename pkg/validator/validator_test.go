package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorKeepsFirstError(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(false, "amount", "must be greater than zero")
	v.Check(false, "amount", "must be provided")
	v.Check(true, "driver", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"amount": "must be greater than zero"}, v.Errors)
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("OPEN", "OPEN", "CANCELLED"))
	assert.False(t, PermittedValue("open", "OPEN", "CANCELLED"))
	assert.True(t, PermittedValue(2, 1, 2, 3))
}
