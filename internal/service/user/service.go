// Package user implements the account lifecycle: signup, login, session
// management, profile updates, avatar processing and account deletion with
// its cascade.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/imaging"
	"github.com/mihirk/taskman-api/internal/platform/logger"
	"github.com/mihirk/taskman-api/internal/service/auth"
	"github.com/mihirk/taskman-api/internal/service/mail"
	"github.com/mihirk/taskman-api/internal/store"
)

// ErrInvalidCredentials is returned by Login for every failure mode: unknown
// email and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("unable to login")

// Service orchestrates account operations across the stores, the password
// hasher, the token service and the mailer.
type Service struct {
	runTx      func(ctx context.Context, fn store.TxFn) error
	userStore  store.UserStore
	taskStore  store.TaskStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	jwtService auth.JWTService
	mailer     mail.Mailer
	avatars    imaging.Processor
}

// NewService creates a new user Service. All dependencies are required
// except db; without a handle the account-deletion steps run directly
// instead of inside a transaction, which only test wiring does.
func NewService(
	db *sql.DB,
	userStore store.UserStore,
	taskStore store.TaskStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	mailer mail.Mailer,
	avatars imaging.Processor,
) (*Service, error) {
	if userStore == nil {
		return nil, errors.New("userStore cannot be nil")
	}
	if taskStore == nil {
		return nil, errors.New("taskStore cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("verifier cannot be nil")
	}
	if jwtService == nil {
		return nil, errors.New("jwtService cannot be nil")
	}
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	if avatars == nil {
		avatars = imaging.NewAvatarProcessor()
	}

	return &Service{
		runTx:      txRunnerFor(db),
		userStore:  userStore,
		taskStore:  taskStore,
		hasher:     hasher,
		verifier:   verifier,
		jwtService: jwtService,
		mailer:     mailer,
		avatars:    avatars,
	}, nil
}

// txRunnerFor binds the transaction helper to the database handle. With a
// nil handle the function runs against the stores directly; WithTx
// implementations must tolerate a nil *sql.Tx in that case.
func txRunnerFor(db *sql.DB) func(ctx context.Context, fn store.TxFn) error {
	if db == nil {
		return func(ctx context.Context, fn store.TxFn) error {
			return fn(ctx, nil)
		}
	}
	return func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, db, fn)
	}
}

// Signup validates and creates a new account, sends the welcome mail in the
// background, and opens the first session. Returns the created user and the
// session token.
func (s *Service) Signup(ctx context.Context, name, email, password string, age int) (*domain.User, string, error) {
	log := logger.FromContext(ctx)

	user, err := domain.NewUser(name, email, password, age)
	if err != nil {
		return nil, "", err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.sendInBackground(ctx, "welcome", func() error {
		return s.mailer.SendWelcome(user.Email, user.Name)
	})

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login authenticates by email and password and opens a new session.
// Every failure returns ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContext(ctx)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch on login", slog.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Logout ends the single session identified by the exact token string.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	return s.userStore.RemoveToken(ctx, userID, token)
}

// LogoutAll ends every session for the user.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.userStore.ClearTokens(ctx, userID)
}

// UpdateProfile applies field updates to the user. Name and password are
// trimmed the same way signup trims them; a non-nil password is validated
// and re-hashed; emails are normalized. The user struct is mutated in
// place and persisted.
func (s *Service) UpdateProfile(ctx context.Context, user *domain.User, name, email, password *string, age *int) (*domain.User, error) {
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if age != nil {
		user.Age = *age
	}
	if email != nil {
		user.Email = domain.NormalizeEmail(*email)
	}
	if password != nil {
		plain := strings.TrimSpace(*password)
		if err := domain.ValidatePassword(plain); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash(plain)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account and everything it owns: the user's tasks, all
// of their sessions, and the user row itself, in one transaction. The
// cancellation mail goes out in the background after the commit.
func (s *Service) Delete(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		deleted, err := s.taskStore.WithTx(tx).DeleteByOwner(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		log.Debug("deleted tasks for user",
			slog.String("user_id", user.ID.String()),
			slog.Int64("count", deleted))

		txUsers := s.userStore.WithTx(tx)
		if err := txUsers.ClearTokens(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		return txUsers.Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}

	s.sendInBackground(ctx, "cancellation", func() error {
		return s.mailer.SendCancellation(user.Email, user.Name)
	})

	log.Info("user deleted", slog.String("user_id", user.ID.String()))
	return nil
}

// SetAvatar processes the uploaded image into the stored avatar format and
// persists it. Returns imaging.ErrDecodeFailed if data is not a decodable
// image.
func (s *Service) SetAvatar(ctx context.Context, userID uuid.UUID, data []byte) error {
	processed, err := s.avatars.Process(data)
	if err != nil {
		return err
	}
	return s.userStore.UpdateAvatar(ctx, userID, processed)
}

// ClearAvatar removes the user's avatar.
func (s *Service) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	return s.userStore.UpdateAvatar(ctx, userID, nil)
}

// GetAvatar returns the stored avatar bytes for any user, authenticated or
// not. Returns store.ErrAvatarNotFound when the user has no avatar and
// store.ErrUserNotFound when the user does not exist.
func (s *Service) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return s.userStore.GetAvatar(ctx, userID)
}

// openSession generates a token and records it as an active session.
func (s *Service) openSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.userStore.AddToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}
	return token, nil
}

// sendInBackground fires a mail send on its own goroutine. The request does
// not wait on SMTP and delivery failures only get logged.
func (s *Service) sendInBackground(ctx context.Context, kind string, send func() error) {
	log := logger.FromContext(ctx)
	go func() {
		if err := send(); err != nil {
			log.Warn("background mail send failed",
				slog.String("kind", kind),
				slog.String("error", err.Error()))
		}
	}()
}
