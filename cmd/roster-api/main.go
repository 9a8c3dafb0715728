package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-roster-ledger/api/swagger"
	"github.com/noah-isme/sma-roster-ledger/internal/handler"
	"github.com/noah-isme/sma-roster-ledger/internal/middleware"
	"github.com/noah-isme/sma-roster-ledger/internal/repository"
	"github.com/noah-isme/sma-roster-ledger/internal/service"
	"github.com/noah-isme/sma-roster-ledger/pkg/cache"
	"github.com/noah-isme/sma-roster-ledger/pkg/config"
	"github.com/noah-isme/sma-roster-ledger/pkg/database"
	"github.com/noah-isme/sma-roster-ledger/pkg/export"
	"github.com/noah-isme/sma-roster-ledger/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-roster-ledger/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-roster-ledger/pkg/middleware/requestid"
	"github.com/noah-isme/sma-roster-ledger/pkg/storage"
	"github.com/noah-isme/sma-roster-ledger/pkg/tabular"
)

// @title SMA Roster Ledger API
// @version 0.1.0
// @description Class rosters with per-student attendance and behaviour ledgers
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openBlobStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open roster storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	snapshots := repository.NewSnapshotRepository(store, cfg.Storage.Key, cfg.Behavior.LegacyBalanceNote, logger.Component(logr, "snapshot"))
	roster := service.NewRosterService(snapshots, validate, metrics, logger.Component(logr, "roster"))
	if err := roster.Load(ctx); err != nil {
		logr.Fatal("failed to load roster", zap.Error(err))
	}

	script, err := tabular.ParseScriptBlock(cfg.Import.ScriptBlock)
	if err != nil {
		logr.Fatal("invalid IMPORT_SCRIPT_BLOCK", zap.Error(err))
	}
	charsets, err := tabular.ParseCharsets(cfg.Import.Charsets)
	if err != nil {
		logr.Fatal("invalid IMPORT_CHARSETS", zap.Error(err))
	}
	decoder := tabular.NewDecoder(tabular.Options{Charsets: charsets, Script: script})
	normalizer := service.NewNameNormalizer(service.NormalizerConfig{
		MinLength:     cfg.Import.MinNameLength,
		HeaderMarkers: cfg.Import.HeaderMarkers,
	})

	vocabulary := service.DefaultVocabulary()
	if cfg.Behavior.VocabularyPath != "" {
		vocabulary, err = service.LoadVocabulary(cfg.Behavior.VocabularyPath)
		if err != nil {
			logr.Warn("vocabulary file unusable, using defaults", zap.String("path", cfg.Behavior.VocabularyPath), zap.Error(err))
		}
	}

	importer := service.NewImportService(roster, decoder, normalizer, metrics, service.ImportConfig{MaxFileSizeBytes: cfg.Import.MaxFileSizeBytes}, logger.Component(logr, "import"))
	attendance := service.NewAttendanceService(roster, validate, logger.Component(logr, "attendance"))
	behavior := service.NewBehaviorService(roster, vocabulary, cfg.Behavior.StrictVocabulary, validate, logger.Component(logr, "behavior"))
	exports := service.NewExportService(roster, export.NewTSVExporter(), export.NewCSVExporter(), export.NewPDFExporter(cfg.Export.PDFFontPath), logger.Component(logr, "export"))

	if cfg.Backup.Enabled {
		backupFiles, err := storage.NewLocalStorage(cfg.Backup.Dir)
		if err != nil {
			logr.Fatal("failed to prepare backup dir", zap.String("dir", cfg.Backup.Dir), zap.Error(err))
		}
		backups := service.NewBackupService(snapshots, backupFiles, service.BackupConfig{
			Schedule:  cfg.Backup.Schedule,
			Retention: cfg.Backup.Retention,
		}, logger.Component(logr, "backup"))
		if err := backups.Start(ctx); err != nil {
			logr.Fatal("failed to schedule backups", zap.String("schedule", cfg.Backup.Schedule), zap.Error(err))
		}
		defer backups.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Roster:  handler.NewRosterHandler(roster),
		Import:  handler.NewImportHandler(importer),
		Ledger:  handler.NewLedgerHandler(attendance, behavior),
		Export:  handler.NewExportHandler(exports),
		Metrics: handler.NewMetricsHandler(metrics),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openBlobStore selects the roster backend named by STORAGE_BACKEND.
func openBlobStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.BlobStore, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		logr.Warn("memory storage selected, roster is lost on exit")
		return repository.NewMemoryBlobStore(), nil, nil
	case config.StorageRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisBlobStore(client, logger.Component(logr, "redis")), client, nil
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresBlobStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db, nil
	case config.StorageFile, "":
		files, err := storage.NewLocalStorage(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFileBlobStore(files), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
