package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/config"
	"todoreader/internal/connectors"
	"todoreader/internal/logging"
	"todoreader/internal/pipeline"
	"todoreader/internal/storage"
)

var errUsage = errors.New("unknown command")

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	must(err)

	err = run(context.Background(), cfg, logger, os.Args[1:], os.Stdout)
	_ = logger.Sync()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		usage(os.Stderr)
	}
	must(err)
}

// run executes one subcommand. Resources it opens are released before it
// returns, so callers may exit on the returned error.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "export":
		return runExport(ctx, cfg, logger, rest, out)
	case "headers":
		return runHeaders(ctx, cfg, logger, rest, out)
	case "runs":
		return runList(ctx, cfg, rest, out)
	case "runs:show":
		return runShow(ctx, cfg, rest, out)
	}
	return fmt.Errorf("%w: %s", errUsage, cmd)
}

func runExport(ctx context.Context, cfg config.Config, logger *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	source := fs.String("source", "", "csv|xlsx|eml|mbox|propdump|imap|gtasks (guessed from --input when empty)")
	input := fs.String("input", "", "input file, directory or IMAP mailbox")
	full := fs.String("full", cfg.FullJSONPath, "full records JSON path")
	simple := fs.String("simple", cfg.SimpleJSONPath, "simple records JSON path")
	xlsx := fs.String("xlsx", cfg.SimpleXLSXPath, "optional simple records XLSX path")
	record := fs.Bool("record", cfg.RecordRuns, "record the run in the history database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := resolveSource(*source, *input)
	if err != nil {
		return err
	}

	var db *storage.DB
	if *record {
		db, err = storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	logger.Debug("export", zap.String("source", string(kind)), zap.String("input", *input), zap.Bool("record", *record))
	src, err := connectors.New(ctx, cfg, kind, *input, logger)
	if err != nil {
		return err
	}
	svc, err := pipeline.NewService(db, cfg, logger)
	if err != nil {
		return err
	}
	res, err := svc.Export(ctx, src, pipeline.ExportOptions{
		Source:     kind,
		Input:      *input,
		InputHash:  inputHash(*input),
		FullPath:   *full,
		SimplePath: *simple,
		XLSXPath:   *xlsx,
		Record:     *record,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "export done source=%s scanned=%d tasks=%d\n", kind, res.Scanned, res.Exported)
	fmt.Fprintf(out, "full: %s\nsimple: %s\n", res.FullPath, res.SimplePath)
	if res.XLSXPath != "" {
		fmt.Fprintf(out, "xlsx: %s\n", res.XLSXPath)
	}
	if *record {
		fmt.Fprintf(out, "run: %s\n", res.RunID)
	}
	return nil
}

func runHeaders(ctx context.Context, cfg config.Config, logger *zap.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("headers", flag.ContinueOnError)
	source := fs.String("source", "", "csv|xlsx (guessed from --input when empty)")
	input := fs.String("input", "", "tabular export path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := resolveSource(*source, *input)
	if err != nil {
		return err
	}
	src, err := connectors.New(ctx, cfg, kind, *input, logger)
	if err != nil {
		return err
	}
	batches, err := src.Read(ctx)
	if err != nil {
		return err
	}
	for _, b := range batches {
		headers := pipeline.CanonicalizeHeaders(b.HeaderNames())
		fmt.Fprintf(out, "[%s] %d headers\n", b.Folder, headers.Len())
		for _, h := range headers.Headers() {
			target := headers.Target(h)
			if target == h {
				target = "(custom)"
			}
			fmt.Fprintf(out, "  %-32s -> %s\n", h, target)
		}
	}
	return nil
}

func runList(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	runs, err := db.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-8s scanned=%d tasks=%d  %s\n", r.ID, r.StartedAt, r.Source, r.Scanned, r.Exported, r.Input)
	}
	return nil
}

func runShow(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("runs:show", flag.ContinueOnError)
	id := fs.String("id", "", "run id")
	full := fs.Bool("full", false, "print full records instead of simple ones")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("--id is required")
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	stored, err := db.GetRun(ctx, *id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("run not found: %s", *id)
	}
	tasks, err := db.ListTasks(ctx, *id)
	if err != nil {
		return err
	}
	records := make([]json.RawMessage, 0, len(tasks))
	for _, t := range tasks {
		if *full {
			records = append(records, json.RawMessage(t.FullJSON))
		} else {
			records = append(records, json.RawMessage(t.SimpleJSON))
		}
	}
	data, err := pipeline.MarshalRecords(records)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func resolveSource(source, input string) (internal.ItemSource, error) {
	if s := strings.ToLower(strings.TrimSpace(source)); s != "" {
		return internal.ItemSource(s), nil
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("--input or --source is required")
	}
	kind, ok := connectors.KindForPath(input)
	if !ok {
		return "", fmt.Errorf("cannot guess source type of %s, pass --source", input)
	}
	return kind, nil
}

// inputHash fingerprints file inputs; directories and remote sources get none.
func inputHash(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	if info, err := f.Stat(); err != nil || info.IsDir() {
		return ""
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: todoreader <command> [flags]")
	fmt.Fprintln(w, "commands: export, headers, runs, runs:show")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
