package feedcheck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	cause := errors.New("bad config")
	err := fmt.Errorf("wrapped: %w", NewRuntimeError(cause))

	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "wrapped: runtime error: bad config", err.Error())
	assert.False(t, IsRuntimeError(nil))
}

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError(2, "details")

	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "2 case(s) did not pass")
	assert.Contains(t, err.Error(), "details")
}
