// Package listener watches a drop directory and converts every new export
// file that appears in it.
package listener

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"todoreader/internal/config"
	"todoreader/internal/connectors"
	"todoreader/internal/pipeline"
	"todoreader/internal/storage"
)

const emptyInputKey = "watch.empty."

type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.Service
	logger    *zap.Logger
}

func NewService(db *storage.DB, cfg config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	processor, err := pipeline.NewService(db, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Service{db: db, cfg: cfg, processor: processor, logger: logger}, nil
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	for {
		if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("watch cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

type CycleResult struct {
	Seen      int
	Converted int
	Skipped   int
}

// RunCycle converts the files of the watch directory that no earlier run has
// seen. Files are identified by content hash.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	entries, err := os.ReadDir(s.cfg.WatchDir)
	if err != nil {
		return CycleResult{}, err
	}

	var res CycleResult
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		path := filepath.Join(s.cfg.WatchDir, name)
		kind, ok := connectors.KindForPath(path)
		if !ok {
			continue
		}
		res.Seen++

		hash, err := fileHash(path)
		if err != nil {
			return res, err
		}
		seen, err := s.alreadySeen(ctx, hash)
		if err != nil {
			return res, err
		}
		if seen {
			res.Skipped++
			continue
		}

		src, err := connectors.New(ctx, s.cfg, kind, path, s.logger)
		if err != nil {
			return res, err
		}
		base := sanitizeName(strings.TrimSuffix(name, filepath.Ext(name)))
		outDir := filepath.Join(s.cfg.OutputDir, "watch")
		export, err := s.processor.Export(ctx, src, pipeline.ExportOptions{
			Source:     kind,
			Input:      path,
			InputHash:  hash,
			FullPath:   filepath.Join(outDir, base+"_full.json"),
			SimplePath: filepath.Join(outDir, base+"_simple.json"),
			Record:     true,
		})
		if errors.Is(err, pipeline.ErrNoTasks) {
			s.logger.Info("no tasks in file", zap.String("path", path))
			if err := s.db.SetMetadata(ctx, emptyInputKey+hash, path); err != nil {
				return res, err
			}
			res.Skipped++
			continue
		}
		if err != nil {
			s.logger.Error("conversion failed", zap.String("path", path), zap.Error(err))
			continue
		}
		res.Converted++
		fmt.Printf("converted %s run=%s tasks=%d\n", name, export.RunID, export.Exported)
	}

	if err := s.db.SetMetadata(ctx, "watch.lastCycle", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) alreadySeen(ctx context.Context, hash string) (bool, error) {
	seen, err := s.db.HasInputHash(ctx, hash)
	if err != nil || seen {
		return seen, err
	}
	empty, err := s.db.GetMetadata(ctx, emptyInputKey+hash)
	if err != nil {
		return false, err
	}
	return empty != nil, nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func sanitizeName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
