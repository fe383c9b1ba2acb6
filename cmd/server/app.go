package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mihirk/taskman-api/internal/config"
	"github.com/mihirk/taskman-api/internal/platform/imaging"
	"github.com/mihirk/taskman-api/internal/platform/postgres"
	"github.com/mihirk/taskman-api/internal/service/auth"
	"github.com/mihirk/taskman-api/internal/service/mail"
	userservice "github.com/mihirk/taskman-api/internal/service/user"
	"github.com/mihirk/taskman-api/internal/store"
)

// application holds every wired dependency of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	userService *userservice.Service
}

// newApplication connects to the database, runs migrations and wires the
// stores and services together.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	hasher := auth.NewBcryptHasher()

	var mailer mail.Mailer = mail.NopMailer{}
	if cfg.Mail.MailEnabled() {
		mailer = mail.NewSMTPMailer(
			cfg.Mail.Host,
			cfg.Mail.Port,
			cfg.Mail.Username,
			cfg.Mail.Password,
			cfg.Mail.Sender,
			logger,
		)
	} else {
		logger.Warn("mail host not configured, transactional email disabled")
	}

	userService, err := userservice.NewService(
		db,
		userStore,
		taskStore,
		hasher,
		hasher,
		jwtService,
		mailer,
		imaging.NewAvatarProcessor(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		userStore:   userStore,
		taskStore:   taskStore,
		jwtService:  jwtService,
		userService: userService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}
