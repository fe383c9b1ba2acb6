// Package middleware provides the HTTP middleware chain: trace ID injection
// and bearer-token authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mihirk/taskman-api/internal/api/shared"
	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/service/auth"
	"github.com/mihirk/taskman-api/internal/store"
)

// AuthErrorMessage is the single body returned for every authentication
// failure. Missing header, malformed token, expired token and revoked
// session are deliberately indistinguishable to the client.
const AuthErrorMessage = "Please authenticate."

// AuthMiddleware provides bearer-token authentication for routes. A token is
// only accepted when it both validates as a JWT and is still recorded as an
// active session for the user it names; logging out revokes the session row,
// so a structurally valid token alone is not enough.
type AuthMiddleware struct {
	jwtService auth.JWTService
	userStore  store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, userStore store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userStore:  userStore,
	}
}

// Authenticate validates the Authorization header and loads the session's
// user. On success the user and the raw token are attached to the request
// context; every failure responds 401 with AuthErrorMessage.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, AuthErrorMessage)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, AuthErrorMessage, err)
			return
		}

		user, err := m.userStore.GetByIDAndToken(r.Context(), claims.UserID, token)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, AuthErrorMessage, err)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserContextKey, user)
		ctx = context.WithValue(ctx, shared.TokenContextKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUser extracts the authenticated user from the request context.
// Returns the user and a boolean indicating if it was found.
func GetUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(*domain.User)
	return user, ok
}

// GetSessionToken extracts the raw session token the request authenticated
// with. Logout needs it to revoke exactly this session.
func GetSessionToken(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(shared.TokenContextKey).(string)
	return token, ok
}
