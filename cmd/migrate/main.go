// Command migrate manages the kv_entries schema behind the sql document store.
//
//	migrate [flags] up|down|status|redo|to <version>|new <name>|check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/obohub-backend/pkg/config"
	"github.com/angelmondragon/obohub-backend/pkg/db"
	"github.com/angelmondragon/obohub-backend/pkg/logger"
	"github.com/angelmondragon/obohub-backend/pkg/migrate"
)

var errUsage = errors.New("usage: migrate [-dir path] [-disk] up|down|status|redo|to <version>|new <name>|check")

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory used by new, check and -disk")
	disk := flag.Bool("disk", false, "apply migrations from -dir instead of the embedded set")
	flag.Parse()

	if err := run(flag.Args(), *dir, *disk); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(args []string, dir string, disk bool) (err error) {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	switch command {
	case "new":
		if len(rest) != 1 {
			return errUsage
		}
		path, err := migrate.NewFile(dir, rest[0], time.Now())
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "check":
		if err := migrate.Check(os.DirFS(dir), "."); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.DB.EnsureDSN(); err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"command": command,
		"driver":  cfg.DB.Driver,
	})
	if !cfg.Store.UsesSQL() {
		logg.Warn(ctx, "store backend is not sql, migrating the configured database anyway")
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, client.Close()) }()

	sqlDB, err := client.SQLDB()
	if err != nil {
		return err
	}

	src := migrate.EmbeddedSource()
	if disk {
		src = migrate.DiskSource(dir)
	}
	dialect := migrate.DialectFor(cfg.DB)

	switch command {
	case "up", "down", "status", "redo":
		if len(rest) != 0 {
			return errUsage
		}
		err = migrate.Run(ctx, sqlDB, dialect, src, command)
	case "to":
		if len(rest) != 1 {
			return errUsage
		}
		err = migrate.MigrateToVersion(ctx, sqlDB, dialect, src, rest[0])
	default:
		return errUsage
	}
	if err != nil {
		return err
	}

	logg.Info(ctx, "migration command finished")
	return nil
}
