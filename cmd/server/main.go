// Package main implements the entry point for the task manager API server:
// user accounts with bearer-token sessions, owner-scoped task CRUD, avatar
// storage and transactional email.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/mihirk/taskman-api/internal/config"
	"github.com/mihirk/taskman-api/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and wires every
// application dependency. Returns the ready-to-serve application.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("mail_enabled", cfg.Mail.MailEnabled()))

	return newApplication(cfg, appLogger)
}
