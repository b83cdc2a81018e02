// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, batching and code lookup

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "mod not found",
			wantStr: "[NOT_FOUND] mod not found",
		},
		{
			name:    "incomplete_selection_error",
			code:    errors.ErrIncompleteSelection,
			message: "select exactly one option",
			wantStr: "[INCOMPLETE_SELECTION] select exactly one option",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrInvalidIndex, "index %d out of range [0, %d)", 7, 3)
	assert.Equal(t, "index 7 out of range [0, 3)", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("permission denied")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrLinkFailure, "cannot link Data/x.esp")

		assert.Equal(t, errors.ErrLinkFailure, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[LINK_FAILURE] cannot link Data/x.esp: permission denied", err.Error())
		assert.True(t, stderrors.Is(err, baseErr))
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestIsMatchesByCode(t *testing.T) {
	err := errors.New(errors.ErrNameConflict, "a mod named x already exists").
		WithDetail("name", "x")

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrNameConflict, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrNotFound, "")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrNameConflict))
	assert.Equal(t, errors.ErrNameConflict, errors.GetErrorCode(err))
	assert.Equal(t, "x", errors.GetErrorDetails(err)["name"])

	plain := stderrors.New("plain")
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(plain))
	assert.Nil(t, errors.GetErrorDetails(plain))
}

func TestMulti(t *testing.T) {
	var batch errors.Multi
	require.NoError(t, batch.Err())

	batch = append(batch,
		errors.New(errors.ErrLinkFailure, "a"),
		errors.New(errors.ErrLinkFailure, "b"),
	)
	err := batch.Err()
	require.Error(t, err)
	assert.Equal(t, "[LINK_FAILURE] a\n[LINK_FAILURE] b", err.Error())
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkFailure))
}
