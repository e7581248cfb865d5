package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/invreg/internal/config"
	"github.com/vbonduro/invreg/internal/db"
	"github.com/vbonduro/invreg/internal/logging"
	"github.com/vbonduro/invreg/internal/photostore"
	"github.com/vbonduro/invreg/internal/photostore/local"
	"github.com/vbonduro/invreg/internal/photostore/s3store"
	"github.com/vbonduro/invreg/internal/service"
	"github.com/vbonduro/invreg/internal/store"
	"github.com/vbonduro/invreg/internal/store/filestore"
	"github.com/vbonduro/invreg/internal/store/sqlstore"
	"github.com/vbonduro/invreg/internal/web"
	"github.com/vbonduro/invreg/internal/web/templates"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	recordStore, closer, err := newRecordStore(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
	}

	photoStg, err := newPhotoStore(cfg, logger)
	if err != nil {
		return err
	}

	svc := service.NewInventoryService(recordStore, photoStg, logger)
	server := web.NewServer(svc, templates.FS, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.ListenAddr()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRecordStore returns the configured store. The closer is non-nil when the
// store holds a database connection.
func newRecordStore(cfg *config.Config, logger *slog.Logger) (store.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQL:
		database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Info("using sql record store", "driver", cfg.DBDriver)
		return sqlstore.NewSQLStore(database), database, nil
	default:
		fs, err := filestore.NewFileStore(cfg.DataFile())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		logger.Info("using file record store", "path", cfg.DataFile())
		return fs, nil, nil
	}
}

func newPhotoStore(cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	switch cfg.PhotoBackend {
	case config.PhotoBackendS3:
		ps, err := s3store.NewS3PhotoStore(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 photo store: %w", err)
		}
		logger.Info("using s3 photo store", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		return ps, nil
	default:
		ps, err := local.NewLocalPhotoStore(cfg.PhotoDir())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize photo store: %w", err)
		}
		logger.Info("using local photo store", "path", cfg.PhotoDir())
		return ps, nil
	}
}
