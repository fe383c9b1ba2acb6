package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mihirk/taskman-api/internal/domain"
)

// UserStore defines the interface for user data persistence, including the
// server-side session token collection and the avatar blob.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext passwords are never persisted.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByIDAndToken retrieves a user by ID, but only if the exact token
	// string is present in the user's active session tokens.
	// Returns ErrUserNotFound if the user does not exist or the token is
	// not one of their sessions; the two cases are indistinguishable.
	GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)

	// Update modifies an existing user's profile fields (name, age, email,
	// hashed password). Returns ErrUserNotFound if the user does not exist
	// and ErrEmailExists when updating to an email that is already taken.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	// Session tokens are removed with the user; tasks are handled by the
	// caller (see service/user).
	Delete(ctx context.Context, id uuid.UUID) error

	// AddToken appends a session token to the user's token collection.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// RemoveToken removes the exact session token from the user's token
	// collection. Returns ErrTokenNotFound if the token was not present.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens removes every session token for the user, ending all of
	// their sessions.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// UpdateAvatar replaces the user's avatar bytes. Passing nil clears the
	// avatar. Returns ErrUserNotFound if the user does not exist.
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error

	// GetAvatar retrieves the raw avatar bytes for a user.
	// Returns ErrUserNotFound if the user does not exist and
	// ErrAvatarNotFound if the user has no avatar set.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// WithTx returns a new UserStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UserStore
}
