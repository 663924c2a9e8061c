package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicates(t *testing.T) {
	nf := NewNotFound("trip", "u:c")
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", nf)))
	assert.False(t, IsConflict(nf))
	assert.Equal(t, `trip "u:c" not found`, nf.Error())

	c := NewConflict("flight", "abc", "already exists")
	assert.True(t, IsConflict(fmt.Errorf("put: %w", c)))
	assert.False(t, IsNotFound(c))
}
