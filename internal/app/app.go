// Package app wires configuration, storage, repositories and services
// into one session context an embedding program drives.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/repository"
	"github.com/campushq/attendly/internal/service"
	"github.com/campushq/attendly/pkg/config"
	"github.com/campushq/attendly/pkg/kvstore"
	"github.com/campushq/attendly/pkg/logger"
	"github.com/campushq/attendly/pkg/storage"
)

// App owns every collaborator for one profile's session.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  kvstore.Store

	Directory    *repository.Directory
	Ledger       *repository.Ledger
	Users        *repository.Users
	RecentLogins *repository.RecentLogins

	Students   *service.StudentService
	Attendance *service.AttendanceService
	Reports    *service.ReportService
	Auth       *service.AuthService
	OTP        *service.OTPService
	Metrics    *service.MetricsService
}

// New builds the full object graph from configuration, loads every
// collection from the blob store, seeds the default admin and starts
// background mail delivery.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	directory := repository.NewDirectory(store, log)
	ledger := repository.NewLedger(store, log)
	users := repository.NewUsers(store, log)
	recents := repository.NewRecentLogins(store, log)

	for name, load := range map[string]func(context.Context) error{
		"students":      directory.Load,
		"attendance":    ledger.Load,
		"users":         users.Load,
		"recent logins": recents.Load,
	} {
		if err := load(ctx); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}

	exports, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return nil, fmt.Errorf("prepare exports: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	a := &App{
		Config:       cfg,
		Logger:       log,
		Store:        store,
		Directory:    directory,
		Ledger:       ledger,
		Users:        users,
		RecentLogins: recents,
		Metrics:      metrics,
		Students:     service.NewStudentService(directory, ledger, validate, log, metrics),
		Attendance:   service.NewAttendanceService(ledger, directory, log, metrics),
		Reports:      service.NewReportService(directory, ledger, exports, log, metrics),
		Auth: service.NewAuthService(users, recents, validate, log, service.AuthConfig{
			SessionSecret: cfg.Session.Secret,
			SessionTTL:    cfg.Session.TTL,
			BcryptCost:    cfg.Session.BcryptCost,
		}),
		OTP: service.NewOTPService(users, nil, log, service.OTPConfig{
			TTL:            cfg.OTP.TTL,
			ResendCooldown: cfg.OTP.ResendCooldown,
			MailWorkers:    cfg.OTP.MailWorkers,
		}),
	}

	if err := a.Auth.EnsureDefaultAdmin(ctx); err != nil {
		return nil, fmt.Errorf("seed default admin: %w", err)
	}

	a.OTP.Start(ctx)
	log.Info("application ready", zap.String("backend", cfg.Storage.Backend))
	return a, nil
}

// Close stops background workers and releases the store.
func (a *App) Close() error {
	a.OTP.Stop()
	if closer, ok := a.Store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	_ = a.Logger.Sync()
	return nil
}

func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kvstore.NewMemory(), nil
	case config.BackendFile:
		return kvstore.NewFile(cfg.Storage.Dir)
	case config.BackendSQLite:
		return kvstore.NewSQLite(cfg.Storage.SQLitePath)
	case config.BackendRedis:
		client, err := kvstore.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return kvstore.NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
