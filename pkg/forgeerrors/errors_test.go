package forgeerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeInvalidVersion, "invalid version format")

	assert.Equal(t, ErrorTypeInvalidVersion, err.Type)
	assert.Equal(t, "invalid_version: invalid version format", err.Error())
	assert.NotEmpty(t, err.Stack, "stack is captured at creation")
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeConflict, "module %s is both force-enabled and excluded", "chan_dahdi")
	assert.Contains(t, err.Error(), "chan_dahdi")
}

func TestWrap(t *testing.T) {
	t.Run("wraps and preserves cause", func(t *testing.T) {
		cause := errors.New("open failed")
		err := Wrap(cause, ErrorTypeFile, "failed to read layer")

		assert.Equal(t, "file: failed to read layer: open failed", err.Error())
		assert.Equal(t, cause, errors.Unwrap(err))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeFile, "ignored"))
	})

	t.Run("rewrapping keeps the original stack", func(t *testing.T) {
		inner := New(ErrorTypeConfig, "malformed layer")
		outer := Wrap(inner, ErrorTypeInternal, "resolution failed")
		assert.Equal(t, inner.Stack, outer.Stack)
	})
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeFile, "failed to read layer").
		WithDetail("path", "templates/base/asterisk-base.yml").
		WithDetail("layer", "base")

	require.NotNil(t, err.Details)
	assert.Equal(t, "templates/base/asterisk-base.yml", err.Details["path"])
	assert.Equal(t, "base", err.Details["layer"])
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeConflict, "overlap")

	assert.True(t, IsType(err, ErrorTypeConflict))
	assert.False(t, IsType(err, ErrorTypeFile))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeConflict))
	assert.False(t, IsType(nil, ErrorTypeConflict))

	// Type checks see through standard wrapping.
	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeConflict))
}
