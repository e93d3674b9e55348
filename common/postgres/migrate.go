package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/erieironllc/erieiron-public-common/common/log"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrInvalidDatabaseName is returned for names migrate cannot safely use.
var ErrInvalidDatabaseName = errors.New("invalid database name")

var (
	runMigrationsFn = runMigrations
	dbNamePattern   = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)
)

// MigrationConfig configures a Migrator.
type MigrationConfig struct {
	Config
	// MigrationsPath wins over Component when both are set.
	MigrationsPath string
	// Component resolves to components/<component>/migrations.
	Component            string
	AllowMultiStatements bool
}

// Migrator applies file migrations to the primary database.
type Migrator struct {
	cfg MigrationConfig
}

// NewMigrator validates cfg.
func NewMigrator(cfg MigrationConfig) (*Migrator, error) {
	cfg.Config = cfg.Config.withDefaults()

	if err := cfg.Config.validate(); err != nil {
		return nil, err
	}

	if err := validateDBName(cfg.Primary.Database); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.MigrationsPath) == "" && strings.TrimSpace(cfg.Component) == "" {
		return nil, fmt.Errorf("%w: migrations path or component is required", ErrInvalidConfig)
	}

	return &Migrator{cfg: cfg}, nil
}

// Up applies all pending migrations. No pending migrations and a missing
// migrations directory are not errors.
func (m *Migrator) Up(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	path, err := migrationsPath(m.cfg.MigrationsPath, m.cfg.Component)
	if err != nil {
		return err
	}

	client, err := New(m.cfg.Config)
	if err != nil {
		return err
	}

	db, err := client.open(m.cfg.Primary)
	if err != nil {
		return err
	}
	defer db.Close()

	return runMigrationsFn(ctx, db, path, m.cfg.Primary.Database, m.cfg.AllowMultiStatements, m.cfg.Logger)
}

func migrationsPath(path, component string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return sanitizePath(path)
	}

	sanitized := filepath.Base(component)
	if sanitized == "." || sanitized == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid component name %q", ErrInvalidConfig, component)
	}

	return filepath.Abs(filepath.Join("components", sanitized, "migrations"))
}

func sanitizePath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	for _, part := range strings.Split(cleaned, string(filepath.Separator)) {
		if part == ".." {
			return "", fmt.Errorf("%w: invalid migrations path %q", ErrInvalidConfig, path)
		}
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	return absPath, nil
}

func validateDBName(name string) error {
	if !dbNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}

	return nil
}

func runMigrations(ctx context.Context, db *sql.DB, path, dbName string, allowMultiStatements bool, logger log.Logger) error {
	sourceURL := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MultiStatementEnabled: allowMultiStatements,
		DatabaseName:          dbName,
		SchemaName:            "public",
	})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver instance: %w", sanitize(err))
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL.String(), dbName, driver)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Log(ctx, log.LevelWarn, "no migration files found, skipping", log.String("path", path))
			return nil
		}

		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Log(ctx, log.LevelInfo, "no new migrations")
			return nil
		}

		if errors.Is(err, os.ErrNotExist) {
			logger.Log(ctx, log.LevelWarn, "no migration files found, skipping", log.String("path", path))
			return nil
		}

		var dirtyErr migrate.ErrDirty
		if errors.As(err, &dirtyErr) {
			return fmt.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
		}

		return fmt.Errorf("migration failed: %w", sanitize(err))
	}

	logger.Log(ctx, log.LevelInfo, "migrations applied", log.String("path", path))

	return nil
}
