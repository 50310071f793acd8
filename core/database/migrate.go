package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/geeksandijan/hrbot/core/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending up migrations for the configured driver.
// The migrate instance is left open: closing it closes db as well.
func RunMigrations(ctx context.Context, db *sqlx.DB, cfg Config) error {
	driver := cfg.DriverName()
	if driver == DriverPostgres {
		if err := WaitForPostgres(ctx, DSN(cfg), 30*time.Second); err != nil {
			logger.LogEvent(ctx, logger.MIG, slog.LevelError, "db.migrate", logger.Err(err))
			return fmt.Errorf("database not ready: %w", err)
		}
	}

	dir := "migrations/" + driver
	files := listMigrationFiles(dir)
	attrs := []slog.Attr{
		slog.String("driver", driver),
		slog.Int("count", len(files)),
	}
	if preview := logger.Preview(files, 6); preview != "" {
		attrs = append(attrs, slog.String("payload", preview))
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve", attrs...)

	m, err := newMigrator(db, driver, dir)
	if err != nil {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "db.migrate", slog.String("driver", driver), logger.Err(err))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	fromVer, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	took := logger.Took(start)

	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
			slog.String("status", "skip"),
			slog.Uint64("from_ver", uint64(fromVer)),
			slog.Uint64("to_ver", uint64(fromVer)),
			slog.Duration("duration", took),
		)
		return nil
	default:
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "apply",
			slog.String("status", "fail"),
			slog.Duration("duration", took),
			logger.Err(upErr),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	toVer, _, _ := m.Version()
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(fromVer)),
		slog.Uint64("to_ver", uint64(toVer)),
		slog.Int("count", countApplied(files, uint64(fromVer), uint64(toVer))),
		slog.Duration("duration", took),
	)
	return nil
}

func newMigrator(db *sqlx.DB, driver, dir string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	var drv database.Driver
	switch driver {
	case DriverPostgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		drv, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, driver, drv)
}

func listMigrationFiles(dir string) []string {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func parseVersion(name string) uint64 {
	head, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(head, 10, 64)
	return v
}

func countApplied(files []string, from, to uint64) int {
	if to <= from {
		return 0
	}
	c := 0
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			c++
		}
	}
	return c
}
