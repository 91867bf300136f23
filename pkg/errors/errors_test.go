package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsOriginal(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := ErrLoadFailed.WithInternal(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrLoadFailed.Code, err.Code)
	require.Contains(t, err.Error(), "connection refused")
	// the shared sentinel must not be mutated
	require.Nil(t, ErrLoadFailed.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrPostNotFound)
	require.Equal(t, http.StatusNotFound, appErr.StatusCode)

	wrapped := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, wrapped.Code)
	require.EqualError(t, wrapped.Internal, "boom")
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("exactly 5 additional images are required")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "exactly 5 additional images are required", err.Message)
}
