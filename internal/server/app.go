package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakif/fittrack/internal/auth"
	sqliteRepo "github.com/sakif/fittrack/internal/repository/sqlite"
	"github.com/sakif/fittrack/internal/service"
)

// Config holds everything needed to assemble the application. cmd/fittrack
// fills it from the resolved viper configuration.
type Config struct {
	Port               int
	DBPath             string
	SessionSecret      string
	SessionTTL         time.Duration
	SecureCookies      bool
	PBKDF2Iterations   int
	LoginRatePerMinute int
	GitHub             auth.GitHubConfig

	// Passwords overrides the hasher built from PBKDF2Iterations.
	Passwords *auth.PasswordService
}

// App is the store plus the services built on it. The HTTP server and the
// CLI subcommands share it.
type App struct {
	DB     *sqliteRepo.DB
	Auth   *service.AuthService
	Stats  *service.StatService
	Routes *service.RouteService
	Export *service.ExportService
}

// NewApp opens the database (creating its directory) and wires the
// services. The caller must Close the App.
func NewApp(cfg Config, logger *slog.Logger) (*App, error) {
	if !strings.Contains(cfg.DBPath, ":memory:") && !strings.Contains(cfg.DBPath, "mode=memory") {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	tokens, err := auth.NewTokenService(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	passwords := cfg.Passwords
	if passwords == nil {
		passwords = auth.NewPasswordService(cfg.PBKDF2Iterations)
	}

	return &App{
		DB: db,
		Auth: service.NewAuthService(service.AuthConfig{
			Users:      db,
			Sessions:   db,
			Tokens:     tokens,
			Passwords:  passwords,
			SessionTTL: cfg.SessionTTL,
			Logger:     logger,
		}),
		Stats:  service.NewStatService(db, nil, logger),
		Routes: service.NewRouteService(db, db, nil, logger),
		Export: service.NewExportService(db, db, db, db, nil),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
