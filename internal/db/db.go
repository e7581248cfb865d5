package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

//go:embed migrations
var migrationsFS embed.FS

// Open connects to the database for driver and brings its schema up to date.
// For sqlite, dsn may be a plain file path.
func Open(driver, dsn string) (*sql.DB, error) {
	var err error
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	case DriverMySQL:
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, driver); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	defer src.Close()

	var target database.Driver
	switch driver {
	case DriverSQLite:
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DriverMySQL:
		target, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		err = fmt.Errorf("no migration driver for %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	// m is not closed: closing it would also close db.
	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "?") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}

// mysqlDSN forces the connection options the table store depends on.
// ClientFoundRows makes UPDATE report matched rather than changed rows, so an
// update that rewrites identical values is not mistaken for a missing record.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql dsn must name a database")
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
