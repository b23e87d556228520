package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(fmt.Errorf("amount: %w", ErrInvalidAmount)))
	assert.True(t, IsValidation(ErrInvalidDate))
	assert.False(t, IsValidation(ErrNotFound))
	assert.False(t, IsValidation(errors.New("db down")))
	assert.False(t, IsValidation(nil))
}
