package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habits/internal/adapters/handler/cli"
	"github.com/comitanigiacomo/kanso-habits/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habits/internal/config"
	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habits/internal/core/services"
	"github.com/comitanigiacomo/kanso-habits/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, bootstrap)
	stop()
	os.Exit(code)
}

// bootstrap wires config, logging, storage and the tracker for one command.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, opts); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, opts.Verbose)
	if err != nil {
		return nil, err
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Debug("storage opened", zap.String("driver", cfg.Driver), zap.String("path", cfg.DataPath))

	tracker, err := services.NewHabitTracker(ctx, repo, services.WithLogger(log))
	if err != nil {
		_ = repo.Close()
		_ = log.Sync()
		return nil, err
	}

	return cli.NewApp(tracker, log, repo.Close), nil
}

func applyFlags(cfg *config.Config, opts cli.Options) error {
	if opts.Storage != "" {
		cfg.Driver = strings.ToLower(strings.TrimSpace(opts.Storage))
	}
	if opts.DataPath != "" {
		cfg.DataPath = opts.DataPath
	}
	if cfg.Driver == config.DriverSQLite && cfg.DataPath == config.DefaultDataPath {
		cfg.DataPath = repository.DefaultSQLitePath
	}
	return cfg.Validate()
}

func openRepository(ctx context.Context, cfg *config.Config) (domain.HabitRepository, error) {
	switch cfg.Driver {
	case config.DriverJSON:
		repo, err := repository.NewJSONHabitRepository(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite:
		repo, err := repository.NewSQLiteHabitRepository(ctx, cfg.DataPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return repository.NewInMemoryHabitRepository(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidDriver, cfg.Driver)
	}
}
