package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/config"
	"todoreader/internal/connectors"
	"todoreader/internal/storage"
)

// ErrNoTasks is returned when a source yields no task records.
var ErrNoTasks = errors.New("no task records found")

type Service struct {
	db         *storage.DB
	detector   Detector
	normalizer *Normalizer
	logger     *zap.Logger
}

// NewService wires the processing stages. db may be nil when runs are not
// recorded.
func NewService(db *storage.DB, cfg config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dates, err := cfg.DateParser()
	if err != nil {
		return nil, err
	}
	return &Service{
		db:         db,
		detector:   NewDetector(cfg.TaskMessageClasses, cfg.TaskFolders),
		normalizer: NewNormalizer(dates, logger),
		logger:     logger,
	}, nil
}

type ConvertResult struct {
	Scanned int
	Skipped int
	Batch   *Batch
}

// Convert reads src and normalises every task record in traversal order.
func (s *Service) Convert(ctx context.Context, src connectors.Source) (ConvertResult, error) {
	batches, err := src.Read(ctx)
	if err != nil {
		return ConvertResult{}, err
	}

	res := ConvertResult{Batch: NewBatch()}
	for _, b := range batches {
		headers := CanonicalizeHeaders(b.HeaderNames())
		kept := 0
		for _, rec := range b.Records {
			res.Scanned++
			detect := s.detector.Detect(b, rec)
			if !detect.IsTask {
				res.Skipped++
				continue
			}
			full, simple := s.normalizer.Normalize(rec, headers)
			res.Batch.Append(full, simple)
			kept++
		}
		s.logger.Info("batch converted",
			zap.String("source", string(b.Source)),
			zap.String("folder", b.Folder),
			zap.Int("headers", headers.Len()),
			zap.Int("records", len(b.Records)),
			zap.Int("tasks", kept),
		)
	}
	return res, nil
}

type ExportOptions struct {
	Source     internal.ItemSource
	Input      string
	InputHash  string
	FullPath   string
	SimplePath string
	XLSXPath   string
	Record     bool
}

type ExportResult struct {
	RunID      string
	Scanned    int
	Exported   int
	FullPath   string
	SimplePath string
	XLSXPath   string
}

// Export converts src and writes the full and simple documents. Nothing is
// written when the source holds no tasks.
func (s *Service) Export(ctx context.Context, src connectors.Source, opts ExportOptions) (ExportResult, error) {
	started := time.Now().UTC()
	conv, err := s.Convert(ctx, src)
	if err != nil {
		return ExportResult{}, err
	}
	if conv.Batch.Len() == 0 {
		return ExportResult{Scanned: conv.Scanned}, ErrNoTasks
	}

	full := conv.Batch.Full()
	simple := conv.Batch.Simple()
	res := ExportResult{
		RunID:      uuid.NewString(),
		Scanned:    conv.Scanned,
		Exported:   conv.Batch.Len(),
		FullPath:   opts.FullPath,
		SimplePath: opts.SimplePath,
		XLSXPath:   opts.XLSXPath,
	}

	if opts.FullPath != "" {
		if err := WriteJSON(full, opts.FullPath); err != nil {
			return ExportResult{}, err
		}
	}
	if opts.SimplePath != "" {
		if err := WriteJSON(simple, opts.SimplePath); err != nil {
			return ExportResult{}, err
		}
	}
	if opts.XLSXPath != "" {
		if err := ExportSimpleToXLSX(simple, opts.XLSXPath); err != nil {
			return ExportResult{}, err
		}
	}

	if opts.Record && s.db != nil {
		run := internal.RunRow{
			ID:         res.RunID,
			Source:     string(opts.Source),
			Input:      opts.Input,
			InputHash:  opts.InputHash,
			Scanned:    res.Scanned,
			Exported:   res.Exported,
			FullPath:   opts.FullPath,
			SimplePath: opts.SimplePath,
			StartedAt:  started.Format(time.RFC3339),
			FinishedAt: time.Now().UTC().Format(time.RFC3339),
		}
		rows, err := taskRows(full, simple)
		if err != nil {
			return ExportResult{}, err
		}
		if err := s.db.SaveRun(ctx, run, rows); err != nil {
			return ExportResult{}, fmt.Errorf("record run: %w", err)
		}
	}

	s.logger.Info("export finished",
		zap.String("run", res.RunID),
		zap.Int("scanned", res.Scanned),
		zap.Int("exported", res.Exported),
	)
	return res, nil
}

func taskRows(full []internal.FullRecord, simple []internal.SimpleRecord) ([]internal.TaskRow, error) {
	rows := make([]internal.TaskRow, 0, len(full))
	for i := range full {
		fullJSON, err := marshalCompact(full[i])
		if err != nil {
			return nil, err
		}
		simpleJSON, err := marshalCompact(simple[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, internal.TaskRow{
			Seq:        i,
			Subject:    full[i].Subject,
			TaskID:     full[i].TaskID,
			Folder:     full[i].Folder,
			IsComplete: full[i].IsComplete,
			FullJSON:   fullJSON,
			SimpleJSON: simpleJSON,
		})
	}
	return rows, nil
}

func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
