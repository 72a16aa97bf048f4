package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewValidationError("missing"), http.StatusBadRequest},
		{NewConflictError("username taken", nil), http.StatusConflict},
		{NewAuthenticationError("nope"), http.StatusUnauthorized},
		{NewStorageError("db", errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusCode(tc.err), tc.err.Error())
	}
}

func TestFromErrorThroughWrapping(t *testing.T) {
	base := NewConflictError("email taken", errors.New("UNIQUE constraint failed: users.email"))
	wrapped := fmt.Errorf("register: %w", base)

	ae, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ConflictError, ae.Type)
	assert.True(t, Is(wrapped, ConflictError))
	assert.False(t, Is(wrapped, ValidationError))
	assert.Contains(t, wrapped.Error(), "UNIQUE constraint failed")
}

func TestPublicMessageHidesStorageDetails(t *testing.T) {
	err := NewStorageError("insert user", errors.New("connection refused"))
	assert.Equal(t, GenericMessage, PublicMessage(err))
	assert.Equal(t, GenericMessage, PublicMessage(errors.New("boom")))
	assert.Equal(t, "username taken", PublicMessage(NewConflictError("username taken", nil)))
}
