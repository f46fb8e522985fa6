package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sistema-nomina/backend-nomina/internal/config"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/database"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/logger"
)

const usage = "usage: migrate up|down|version"

func main() {
	if len(os.Args) != 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.App.Name, cfg.App.Version, cfg.App.Env, cfg.App.LogLevel)

	if err := run(os.Args[1], cfg.DatabaseURL(), log); err != nil {
		log.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(command, databaseURL string, log *slog.Logger) (err error) {
	migrator, err := database.NewMigrator(databaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, migrator.Close())
	}()

	switch command {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		log.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q: %s", command, usage)
	}
}
