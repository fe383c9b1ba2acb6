package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/logger"
	"github.com/mihirk/taskman-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create
// It saves a new user to the database. The user must carry a hashed
// password; the plaintext Password field is ignored by the store.
// Returns store.ErrEmailExists when the email is already taken.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}
	if user.HashedPassword == "" {
		return domain.ErrEmptyPassword
	}

	query := `
		INSERT INTO users (id, name, age, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Age,
		user.Email,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during user creation",
				slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, name, age, email, hashed_password, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail
// The lookup operates on the normalized (lower-cased, trimmed) email.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, age, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
}

// GetByIDAndToken implements store.UserStore.GetByIDAndToken
// The user is only returned when the exact token string is one of their
// active sessions. A missing user and a revoked token are indistinguishable.
func (s *PostgresUserStore) GetByIDAndToken(
	ctx context.Context,
	id uuid.UUID,
	token string,
) (*domain.User, error) {
	query := `
		SELECT u.id, u.name, u.age, u.email, u.hashed_password, u.created_at, u.updated_at
		FROM users u
		JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = $1 AND t.token = $2
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id, token))
}

// Update implements store.UserStore.Update
// It persists the user's profile fields and refreshes updated_at.
// Returns store.ErrUserNotFound if the user does not exist and
// store.ErrEmailExists when updating to an email that is already taken.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, age = $2, email = $3, hashed_password = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Age,
		user.Email,
		user.HashedPassword,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during user update",
				slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}

		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	return s.expectOneRow(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
// Session tokens are removed alongside the user via the foreign key cascade.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	if err := s.expectOneRow(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted successfully",
		slog.String("user_id", id.String()))
	return nil
}

// AddToken implements store.UserStore.AddToken
func (s *PostgresUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_tokens (user_id, token, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, userID, token, time.Now().UTC())
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}

		log.Error("failed to add session token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return nil
}

// RemoveToken implements store.UserStore.RemoveToken
// Returns store.ErrTokenNotFound if the token was not present.
func (s *PostgresUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`
	result, err := s.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		log.Error("failed to remove session token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return s.expectOneRow(result, store.ErrTokenNotFound)
}

// ClearTokens implements store.UserStore.ClearTokens
// Removing zero tokens is not an error; the end state is the same.
func (s *PostgresUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to clear session tokens",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return nil
}

// UpdateAvatar implements store.UserStore.UpdateAvatar
// Passing nil clears the avatar. Returns store.ErrUserNotFound if the user
// does not exist.
func (s *PostgresUserStore) UpdateAvatar(
	ctx context.Context,
	userID uuid.UUID,
	avatar []byte,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, avatar, time.Now().UTC(), userID)
	if err != nil {
		log.Error("failed to update avatar",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	return s.expectOneRow(result, store.ErrUserNotFound)
}

// GetAvatar implements store.UserStore.GetAvatar
// Returns store.ErrUserNotFound if the user does not exist and
// store.ErrAvatarNotFound if no avatar is set.
func (s *PostgresUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var avatar []byte
	err := s.db.QueryRowContext(ctx, `SELECT avatar FROM users WHERE id = $1`, userID).
		Scan(&avatar)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}

	if len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}

	return avatar, nil
}

// scanUser scans a single user row, mapping sql.ErrNoRows to
// store.ErrUserNotFound.
func (s *PostgresUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Age,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// expectOneRow converts a zero-row result into the given not-found error.
func (s *PostgresUserStore) expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
