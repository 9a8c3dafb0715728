package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-roster-ledger/internal/models"
	appErrors "github.com/noah-isme/sma-roster-ledger/pkg/errors"
	"github.com/noah-isme/sma-roster-ledger/pkg/middleware/requestid"
	"github.com/noah-isme/sma-roster-ledger/pkg/tabular"
)

type rowDecoder interface {
	Decode(kind tabular.Kind, r io.Reader) (*tabular.Result, error)
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	MaxFileSizeBytes int64
}

// ImportRequest carries one uploaded roster file.
type ImportRequest struct {
	Class    string
	Filename string
	// Size is the declared size, or 0 when unknown.
	Size   int64
	Source io.Reader
}

// ImportService runs decode, normalize and batch add for roster files. A
// failed decode never touches the roster.
type ImportService struct {
	roster     *RosterService
	decoder    rowDecoder
	normalizer *NameNormalizer
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ImportConfig
}

// NewImportService constructs the service.
func NewImportService(roster *RosterService, decoder rowDecoder, normalizer *NameNormalizer, metrics *MetricsService, cfg ImportConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}
	return &ImportService{roster: roster, decoder: decoder, normalizer: normalizer, metrics: metrics, logger: logger, cfg: cfg}
}

// Import adds every new plausible name found in the file to the class.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*models.ImportReport, error) {
	logger := s.logger.With(
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("class", req.Class),
		zap.String("filename", req.Filename),
	)

	kind, err := tabular.DetectKind(req.Filename)
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeUnsupported, 0, 0, 0)
		return nil, appErrors.WrapAs(err, appErrors.ErrUnsupportedFileType, "only csv, xlsx and xls files can be imported")
	}
	if req.Size > s.cfg.MaxFileSizeBytes {
		s.metrics.RecordImport(ImportOutcomeTooLarge, 0, 0, 0)
		return nil, s.tooLarge()
	}

	existing, err := s.roster.StudentNames(ctx, req.Class)
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeNotFound, 0, 0, 0)
		return nil, err
	}

	if req.Source == nil {
		s.metrics.RecordImport(ImportOutcomeDecodeError, 0, 0, 0)
		return nil, appErrors.Clone(appErrors.ErrDecodeFailure, "file could not be opened")
	}
	raw, err := io.ReadAll(io.LimitReader(req.Source, s.cfg.MaxFileSizeBytes+1))
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeDecodeError, 0, 0, 0)
		return nil, appErrors.WrapAs(err, appErrors.ErrDecodeFailure, "file could not be read")
	}
	if int64(len(raw)) > s.cfg.MaxFileSizeBytes {
		s.metrics.RecordImport(ImportOutcomeTooLarge, 0, 0, 0)
		return nil, s.tooLarge()
	}

	decoded, err := s.decoder.Decode(kind, bytes.NewReader(raw))
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeDecodeError, 0, 0, 0)
		logger.Warn("roster import decode failed", zap.Error(err))
		if errors.Is(err, tabular.ErrUnsupportedKind) {
			return nil, appErrors.WrapAs(err, appErrors.ErrUnsupportedFileType, "")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrDecodeFailure, "")
	}
	if decoded.Fallback {
		logger.Warn("no charset matched the target script, used lossy utf-8")
	}

	normalized := s.normalizer.Normalize(decoded.Rows, existing)
	added, err := s.roster.ImportBatch(ctx, req.Class, normalized.Accepted)
	if err != nil && !errors.Is(err, appErrors.ErrPersistence) {
		s.metrics.RecordImport(ImportOutcomeNotFound, 0, 0, 0)
		return nil, err
	}

	report := &models.ImportReport{
		Class:    req.Class,
		Filename: req.Filename,
		Encoding: decoded.Encoding,
		Fallback: decoded.Fallback,
		Cells:    decoded.Cells(),
		Added:    len(added),
		Skipped:  normalized.Duplicates + len(normalized.Accepted) - len(added),
		Rejected: normalized.Rejected,
		Names:    added,
	}

	if err != nil {
		s.metrics.RecordImport(ImportOutcomePersistence, report.Added, report.Skipped, report.Rejected)
		logger.Error("roster import not persisted", zap.Int("added", report.Added), zap.Error(err))
		return report, err
	}
	s.metrics.RecordImport(ImportOutcomeSuccess, report.Added, report.Skipped, report.Rejected)
	logger.Info("roster import completed",
		zap.String("encoding", report.Encoding),
		zap.Bool("fallback", report.Fallback),
		zap.Int("cells", report.Cells),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("rejected", report.Rejected),
	)
	return report, nil
}

func (s *ImportService) tooLarge() error {
	return appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
}
