package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/imaging"
	"github.com/mihirk/taskman-api/internal/service/auth"
	userservice "github.com/mihirk/taskman-api/internal/service/user"
	"github.com/mihirk/taskman-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"login failure", userservice.ErrInvalidCredentials, http.StatusBadRequest},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"avatar not found", store.ErrAvatarNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusBadRequest},
		{"validation failure", domain.ErrPasswordTooShort, http.StatusBadRequest},
		{"short description", domain.ErrDescriptionTooShort, http.StatusBadRequest},
		{"invalid sort field", fmt.Errorf("%w: bad sort", store.ErrInvalidEntity), http.StatusBadRequest},
		{"undecodable image", imaging.ErrDecodeFailed, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("loading: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("login failure uses canonical message", func(t *testing.T) {
		assert.Equal(t, LoginErrorMessage, GetSafeErrorMessage(userservice.ErrInvalidCredentials))
	})

	t.Run("validation sentinels surface their text", func(t *testing.T) {
		assert.Equal(t, domain.ErrPasswordTooShort.Error(), GetSafeErrorMessage(domain.ErrPasswordTooShort))
	})

	t.Run("unknown errors never leak details", func(t *testing.T) {
		err := errors.New("pq: duplicate key on users_email_key for mike@example.com")
		got := GetSafeErrorMessage(err)
		assert.NotContains(t, got, "mike@example.com")
		assert.NotContains(t, got, "pq:")
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})
}
