package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	BackendFile = "file"
	BackendSQL  = "sql"

	PhotoBackendLocal = "local"
	PhotoBackendS3    = "s3"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Host     string
	Port     int
	CacheDir string

	Backend  string
	DBDriver string
	DBDSN    string

	PhotoBackend string
	S3Bucket     string
	S3Region     string
	S3Prefix     string

	LogLevel string
	LogFile  string
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DataFile is where the file backend keeps its records.
func (c *Config) DataFile() string {
	return filepath.Join(c.CacheDir, "inventory.json")
}

// PhotoDir is where the local photo backend keeps its blobs.
func (c *Config) PhotoDir() string {
	return filepath.Join(c.CacheDir, "photos")
}

// Load reads an optional .env file, then parses args. Every flag falls back
// to an environment variable, so the .env file and the process environment
// can supply anything the command line leaves out.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	fs := pflag.NewFlagSet("invreg", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var port string
	fs.StringVar(&cfg.Host, "host", getEnv("HOST", ""), "server host (required)")
	fs.StringVar(&port, "port", getEnv("PORT", ""), "server port (required)")
	fs.StringVar(&cfg.CacheDir, "cache", getEnv("CACHE_DIR", ""), "cache directory for data and photos (required)")
	fs.StringVar(&cfg.Backend, "backend", getEnv("STORE_BACKEND", BackendFile), "record store: file or sql")
	fs.StringVar(&cfg.DBDriver, "db-driver", getEnv("DB_DRIVER", DriverSQLite), "sql driver: sqlite or mysql")
	fs.StringVar(&cfg.DBDSN, "db-dsn", getEnv("DB_DSN", ""), "sql data source name")
	fs.StringVar(&cfg.PhotoBackend, "photo-backend", getEnv("PHOTO_BACKEND", PhotoBackendLocal), "photo store: local or s3")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", getEnv("S3_BUCKET", ""), "bucket for the s3 photo store")
	fs.StringVar(&cfg.S3Region, "s3-region", getEnv("S3_REGION", "us-east-1"), "region for the s3 photo store")
	fs.StringVar(&cfg.S3Prefix, "s3-prefix", getEnv("S3_PREFIX", "photos"), "key prefix for the s3 photo store")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&cfg.LogFile, "log-file", getEnv("LOG_FILE", ""), "also write logs to this file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("--host is required")
	}
	if port == "" {
		return nil, fmt.Errorf("--port is required")
	}
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("--cache is required")
	}

	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return nil, fmt.Errorf("invalid port %q", port)
	}
	cfg.Port = p

	if cfg.CacheDir, err = filepath.Abs(cfg.CacheDir); err != nil {
		return nil, fmt.Errorf("invalid cache directory: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	switch c.Backend {
	case BackendFile:
	case BackendSQL:
		if err := c.resolveDSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.PhotoBackend {
	case PhotoBackendLocal:
	case PhotoBackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("--s3-bucket is required for the s3 photo backend")
		}
	default:
		return fmt.Errorf("unknown photo backend %q", c.PhotoBackend)
	}
	return nil
}

// resolveDSN fills DBDSN when it was not given: a database file in the cache
// directory for sqlite, or one assembled from DB_* variables for mysql.
func (c *Config) resolveDSN() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBDSN == "" {
			c.DBDSN = filepath.Join(c.CacheDir, "inventory.db")
		}
	case DriverMySQL:
		if c.DBDSN == "" {
			c.DBDSN = mysqlDSNFromEnv()
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}
	return nil
}

func mysqlDSNFromEnv() string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "3306"))
	mc.User = getEnv("DB_USER", "root")
	mc.Passwd = getEnv("DB_PASSWORD", "")
	mc.DBName = getEnv("DB_NAME", "inventory")
	return mc.FormatDSN()
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
