package connectors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/config"
	"todoreader/internal/connectors/gtasks"
	"todoreader/internal/connectors/imap"
	"todoreader/internal/connectors/mailfile"
	"todoreader/internal/connectors/propdump"
	"todoreader/internal/connectors/tabular"
)

// Source yields task candidates in traversal order.
type Source interface {
	Read(ctx context.Context) ([]internal.SourceBatch, error)
}

// New builds the source for kind. input is a file or directory path for file
// sources and a mailbox name for imap.
func New(ctx context.Context, cfg config.Config, kind internal.ItemSource, input string, logger *zap.Logger) (Source, error) {
	switch kind {
	case internal.SourceCSV:
		return tabular.CSVSource{Path: input, Encoding: cfg.CSVEncoding, Delimiter: cfg.Delimiter()}, nil
	case internal.SourceXLSX:
		return tabular.XLSXSource{Path: input}, nil
	case internal.SourceEML:
		return mailfile.EMLSource{Root: input, Logger: logger}, nil
	case internal.SourceMbox:
		return mailfile.MboxSource{Path: input, Logger: logger}, nil
	case internal.SourcePropDump:
		return propdump.Source{Path: input, Logger: logger}, nil
	case internal.SourceIMAP:
		return imap.NewSource(cfg, input, logger)
	case internal.SourceGTasks:
		return gtasks.NewSource(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported source: %s", kind)
	}
}

// KindForPath guesses the file source for a path; ok is false when the path
// is not a recognised export.
func KindForPath(path string) (internal.ItemSource, bool) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return internal.SourceEML, true
	}
	if filepath.Base(path) == "mbox" {
		return internal.SourceMbox, true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return internal.SourceCSV, true
	case ".xlsx", ".xlsm":
		return internal.SourceXLSX, true
	case ".eml":
		return internal.SourceEML, true
	case ".mbox", ".mbx":
		return internal.SourceMbox, true
	case ".jsonl", ".ndjson":
		return internal.SourcePropDump, true
	}
	return "", false
}
