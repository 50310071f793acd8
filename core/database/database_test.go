package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverName(t *testing.T) {
	assert.Equal(t, DriverSQLite, Config{}.DriverName())
	assert.Equal(t, DriverPostgres, Config{Driver: " PostgreSQL "}.DriverName())
	assert.Equal(t, DriverSQLite, Config{Driver: "mysql"}.DriverName())
	assert.Equal(t, "hr_bot.db", Config{}.SQLitePath())
}

func TestDSN(t *testing.T) {
	pg := Config{Driver: "postgres", User: "hr", Password: "p@ss", Host: "db", Port: "5432", Name: "hr"}
	assert.Equal(t, "postgres://hr:p%40ss@db:5432/hr?sslmode=disable", DSN(pg))

	lite := Config{Path: "/tmp/x.db"}
	assert.Equal(t, "file:/tmp/x.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", DSN(lite))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "hr.db")}

	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(ctx, db, cfg))
	require.NoError(t, RunMigrations(ctx, db, cfg))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations' ORDER BY name`))
	assert.Equal(t, []string{"applicants", "course_leads", "support_tickets"}, tables)
}

func TestCountApplied(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_more.up.sql", "0003_last.up.sql"}
	assert.Equal(t, 2, countApplied(files, 1, 3))
	assert.Equal(t, 0, countApplied(files, 3, 3))
	assert.Equal(t, []string{"0001_init.up.sql"}, listMigrationFiles("migrations/sqlite"))
}
