package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ilinovom/fido5011-bot/internal/app"
	"github.com/ilinovom/fido5011-bot/internal/config"
	"github.com/ilinovom/fido5011-bot/internal/logger"
	"github.com/ilinovom/fido5011-bot/internal/repository"
	"github.com/ilinovom/fido5011-bot/pkg/telegram"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	repo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("open storage")
	}
	defer repo.Close()

	tgClient, err := telegram.NewClient(cfg.TelegramToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram client")
	}

	application, err := app.New(cfg, repo, tgClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	if err := application.Run(ctx); err != nil {
		log.Error().Err(err).Msg("run")
		repo.Close()
		os.Exit(1)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		return repository.NewPostgresRepository(ctx, cfg.DBConnString)
	case config.StorageSQLite:
		return repository.NewSQLiteRepository(ctx, cfg.SQLitePath)
	case config.StorageFile:
		return repository.NewFileRepository(cfg.SettingsPath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
