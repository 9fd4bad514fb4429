package flags

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gorm.io/gorm/logger"

	"synthetic-persona/backend/internal/db"
	"synthetic-persona/backend/internal/features/persona/infrastructure"
)

const (
	EnvPersonaDSN  = "PERSONA_DATABASE_DSN"
	EnvDatabaseURL = "DATABASE_URL"
)

// Gorm Log Level Custom Flag Type
type logLevel logger.LogLevel

const (
	LogLevelInfo   = "info"
	LogLevelWarn   = "warn"
	LogLevelError  = "error"
	LogLevelSilent = "silent"
)

func (l *logLevel) String() string {
	switch *l {
	case logLevel(logger.Info):
		return LogLevelInfo
	case logLevel(logger.Warn):
		return LogLevelWarn
	case logLevel(logger.Error):
		return LogLevelError
	case logLevel(logger.Silent):
		return LogLevelSilent
	}

	return LogLevelWarn
}

func (l *logLevel) Set(v string) error {
	switch v {
	case LogLevelInfo:
		*l = logLevel(logger.Info)
	case LogLevelWarn:
		*l = logLevel(logger.Warn)
	case LogLevelError:
		*l = logLevel(logger.Error)
	case LogLevelSilent:
		*l = logLevel(logger.Silent)
	default:
		return fmt.Errorf("unknown gorm log level: %s", v)
	}

	return nil
}

func (l *logLevel) Type() string {
	return "logLevel"
}

// PostgresFlags contains the set of flags needed to connect to the persona
// directory.
type PostgresFlags struct {
	LogLevel logLevel
	DSN      string
}

// NewPostgresDatabaseFlags defaults the DSN from PERSONA_DATABASE_DSN, then
// DATABASE_URL. An empty DSN leaves the directory unavailable.
func NewPostgresDatabaseFlags() *PostgresFlags {
	dsn := os.Getenv(EnvPersonaDSN)
	if dsn == "" {
		dsn = os.Getenv(EnvDatabaseURL)
	}

	return &PostgresFlags{
		LogLevel: logLevel(logger.Warn),
		DSN:      dsn,
	}
}

func (f *PostgresFlags) BindFlags(fs *pflag.FlagSet) {
	fs.Var(&f.LogLevel, "db-log-level", "GORM database log level (info,warn,error,silent)")
	fs.StringVar(&f.DSN, "database-dsn", f.DSN, "Database DSN for the persona directory (Postgres)")
}

func (f *PostgresFlags) GetDBClient() (*db.DB, error) {
	dbc, err := db.New(f.DSN, logger.LogLevel(f.LogLevel))
	if err != nil {
		log.WithError(err).Error("could not connect to db")
		return nil, err
	}

	return dbc, nil
}

// GetPersonaRepository returns a repository over the configured directory, or
// an unavailable one when no DSN is set. The returned closer is never nil.
func (f *PostgresFlags) GetPersonaRepository() (infrastructure.PersonaRepository, func() error, error) {
	if f.DSN == "" {
		log.Warn("no persona database DSN configured, persona directory is unavailable")
		return infrastructure.NewUnavailableRepository(), func() error { return nil }, nil
	}

	dbc, err := f.GetDBClient()
	if err != nil {
		return nil, nil, err
	}
	return infrastructure.NewPersonaRepository(dbc), dbc.Close, nil
}
