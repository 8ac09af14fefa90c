package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/finbooks/backend/internal/infrastructure/config"
	"github.com/finbooks/backend/internal/infrastructure/logger"
	"github.com/finbooks/backend/internal/infrastructure/migration"
)

const usage = `Usage: migrate [flags] <command>

Commands:
  up              Apply all pending migrations
  down            Roll back the last migration
  steps <n>       Apply n migrations (negative rolls back)
  version         Print the current migration version
  force <v>       Set the version without running migrations

Flags:
  -path           Migrations directory (default "migrations")
  -log-level      Log level (default "info")
`

func main() {
	var (
		path     = flag.String("path", "migrations", "migrations directory")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	migrator, err := migration.NewFromURL(cfg.Database.DSN(), *path, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	if err := run(migrator, log, flag.Args()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}

func run(migrator *migration.Migrator, log *zap.Logger, args []string) error {
	switch args[0] {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps requires a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		return migrator.Steps(n)
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		log.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		return migrator.Force(v)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
