package database

import "strings"

const (
	// DriverSQLite selects the embedded modernc SQLite engine.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL through lib/pq.
	DriverPostgres = "postgres"
)

// Config holds database connection settings.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the SQLite database file.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// DriverName returns the normalized driver, defaulting to SQLite.
func (c Config) DriverName() string {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres
	default:
		return DriverSQLite
	}
}

// SQLitePath returns the configured file or the default one.
func (c Config) SQLitePath() string {
	if p := strings.TrimSpace(c.Path); p != "" {
		return p
	}
	return "hr_bot.db"
}
