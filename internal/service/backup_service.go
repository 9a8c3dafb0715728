package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/jobs"
)

type rawSnapshotSource interface {
	Raw(ctx context.Context) ([]byte, error)
}

type backupStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(prefix string, ttl time.Duration) ([]string, error)
}

// backupPrefix marks files the backup service owns. Only these are pruned.
const backupPrefix = "roster_"

// BackupConfig schedules snapshot copies.
type BackupConfig struct {
	Schedule   string
	Retention  time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// BackupService copies the stored roster blob to local files on a cron
// schedule and prunes old copies.
type BackupService struct {
	source  rawSnapshotSource
	storage backupStorage
	cfg     BackupConfig
	logger  *zap.Logger
	now     func() time.Time
	cron    *cron.Cron
	runner  *jobs.Runner
}

// NewBackupService constructs the service.
func NewBackupService(source rawSnapshotSource, storage backupStorage, cfg BackupConfig, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	return &BackupService{source: source, storage: storage, cfg: cfg, logger: logger, now: time.Now}
}

// RunOnce writes one backup file and prunes expired ones. It returns the name
// written, or "" when nothing has been stored yet.
func (s *BackupService) RunOnce(ctx context.Context) (string, error) {
	raw, err := s.source.Raw(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrBlobNotFound) {
			s.logger.Info("backup skipped, roster not stored yet")
			return "", nil
		}
		return "", err
	}

	name := fmt.Sprintf("%s%s.json", backupPrefix, s.now().UTC().Format("20060102_150405"))
	if _, err := s.storage.Save(name, raw); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	if s.cfg.Retention > 0 {
		removed, err := s.storage.CleanupOlderThan(backupPrefix, s.cfg.Retention)
		if err != nil {
			s.logger.Warn("backup cleanup failed", zap.Error(err))
		} else if len(removed) > 0 {
			s.logger.Info("expired backups removed", zap.Strings("files", removed))
		}
	}
	s.logger.Info("roster backup written", zap.String("file", name), zap.Int("bytes", len(raw)))
	return name, nil
}

// Start registers the schedule and starts the cron scheduler. Ticks only
// trigger the background runner, so a slow or retrying backup never stacks
// up concurrent copies.
func (s *BackupService) Start(ctx context.Context) error {
	s.runner = jobs.NewRunner("roster-backup", func(ctx context.Context, attempt int) error {
		_, err := s.RunOnce(ctx)
		return err
	}, jobs.RunnerConfig{
		MaxRetries: s.cfg.MaxRetries,
		RetryDelay: s.cfg.RetryDelay,
		Logger:     s.logger,
	})

	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.cfg.Schedule, func() {
		if !s.runner.Trigger() {
			s.logger.Info("backup already pending, tick skipped")
		}
	})
	if err != nil {
		s.runner = nil
		return fmt.Errorf("invalid backup schedule %q: %w", s.cfg.Schedule, err)
	}
	s.runner.Start(ctx)
	s.cron = scheduler
	scheduler.Start()
	s.logger.Info("backup scheduler started", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Trigger requests an immediate backup through the scheduler's runner.
func (s *BackupService) Trigger() bool {
	if s.runner == nil {
		return false
	}
	return s.runner.Trigger()
}

// Stop halts the scheduler and waits for a running backup to finish.
func (s *BackupService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.runner != nil {
		s.runner.Stop()
	}
}
