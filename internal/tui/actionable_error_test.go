package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wcerrors "github.com/mrz1836/wipecert/internal/errors"
)

func TestFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, FromError(nil))
	})

	t.Run("sentinel with action", func(t *testing.T) {
		err := FromError(wcerrors.ErrKeyNotFound)

		var ae *ActionableError
		require.ErrorAs(t, err, &ae)
		assert.NotEmpty(t, ae.Suggestion)
		assert.Empty(t, ae.Context, "bare sentinel adds no context")
		require.ErrorIs(t, err, wcerrors.ErrKeyNotFound)
	})

	t.Run("wrapped sentinel keeps the original text as context", func(t *testing.T) {
		cause := fmt.Errorf("opening /dev/sdq: %w", wcerrors.ErrResourceNotFound)
		err := FromError(cause)

		var ae *ActionableError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "The device path does not exist.", ae.Message)
		assert.Equal(t, "Run 'wipecert drives' to list available devices.", ae.Suggestion)
		assert.Equal(t, cause.Error(), ae.Context)
		require.ErrorIs(t, err, wcerrors.ErrResourceNotFound)
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		plain := errors.New("something odd")
		assert.Same(t, plain, FromError(plain))
	})

	t.Run("already actionable passes through", func(t *testing.T) {
		ae := NewActionableError("msg", "do this")
		assert.Same(t, ae, FromError(ae))
	})
}

func TestActionableError_Error(t *testing.T) {
	assert.Equal(t, "lock held", NewActionableError("lock held", "wait").Error())
	assert.Equal(t, "lock held (/tmp/x.lock)", NewActionableError("lock held", "wait").WithContext("/tmp/x.lock").Error())
}
