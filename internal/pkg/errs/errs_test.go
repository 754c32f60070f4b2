//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"atelier-backend/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("sentinel")
	other := errs.New("other")

	t.Run("stdlib errors.Is sees both the mark and the cause", func(t *testing.T) {
		cause := errors.New("remote said 410")
		err := errs.Mark(cause, sentinel)

		assert.True(t, errors.Is(err, sentinel))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, other))
		assert.Equal(t, cause.Error(), err.Error())
	})

	t.Run("marks stack", func(t *testing.T) {
		err := errs.Mark(errs.Mark(errors.New("cause"), sentinel), other)

		assert.True(t, errors.Is(err, sentinel))
		assert.True(t, errors.Is(err, other))
	})

	t.Run("wrapping a marked error keeps the mark matchable", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(errors.New("cause"), sentinel), "context")
		assert.True(t, errors.Is(err, sentinel))
	})

	t.Run("nil cause degenerates to the mark itself", func(t *testing.T) {
		err := errs.Mark(nil, sentinel)
		require.NotNil(t, err)
		assert.True(t, errors.Is(err, sentinel))
	})
}
