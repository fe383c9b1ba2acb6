package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/mocks"
	"github.com/mihirk/taskman-api/internal/service/auth"
	"github.com/mihirk/taskman-api/internal/store"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	sessionToken := "valid-session-token"

	user := &domain.User{
		ID:    userID,
		Name:  "Mike",
		Email: "mike@example.com",
	}

	newMiddleware := func(validateErr error, storeErr error) *AuthMiddleware {
		jwtService := &mocks.MockJWTService{
			Claims:      &auth.Claims{UserID: userID},
			ValidateErr: validateErr,
		}
		userStore := &mocks.MockUserStore{
			GetByIDAndTokenFn: func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
				if storeErr != nil {
					return nil, storeErr
				}
				if id == userID && token == sessionToken {
					return user, nil
				}
				return nil, store.ErrUserNotFound
			},
		}
		return NewAuthMiddleware(jwtService, userStore)
	}

	okHandler := func(t *testing.T) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := GetUser(r)
			require.True(t, ok, "user should be in context")
			assert.Equal(t, userID, got.ID)

			token, ok := GetSessionToken(r)
			require.True(t, ok, "session token should be in context")
			assert.Equal(t, sessionToken, token)

			w.WriteHeader(http.StatusOK)
		})
	}

	tests := []struct {
		name        string
		authHeader  string
		validateErr error
		storeErr    error
		wantStatus  int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + sessionToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic " + sessionToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token",
			authHeader: "Bearer ",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer " + sessionToken,
			validateErr: auth.ErrInvalidToken,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "expired token",
			authHeader:  "Bearer " + sessionToken,
			validateErr: auth.ErrExpiredToken,
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:       "session revoked",
			authHeader: "Bearer " + sessionToken,
			storeErr:   store.ErrUserNotFound,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMiddleware(tt.validateErr, tt.storeErr)

			r := httptest.NewRequest("GET", "/tasks", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			m.Authenticate(okHandler(t)).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, AuthErrorMessage, body["error"],
					"every auth failure must use the same message")
			}
		})
	}
}

func TestGetUserMissing(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	_, ok := GetUser(r)
	assert.False(t, ok)

	_, ok = GetSessionToken(r)
	assert.False(t, ok)
}
