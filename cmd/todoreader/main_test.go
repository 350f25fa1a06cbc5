package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todoreader/internal/config"
	"todoreader/internal/pipeline"
	"todoreader/internal/storage"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		DBPath:       filepath.Join(t.TempDir(), "runs.db"),
		DateLocation: "UTC",
	}
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), testConfig(t), zap.NewNop(), []string{"frobnicate"}, &out)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), testConfig(t), zap.NewNop(), nil, &out)
	assert.ErrorIs(t, err, errUsage)
}

func TestRunExportRecordThenShow(t *testing.T) {
	cfg := testConfig(t)
	input := writeCSV(t, "Subject,Complete,Task ID\nBuy milk,true,T1\nCall Bob,false,T2\n")
	outDir := t.TempDir()
	ctx := context.Background()

	var out bytes.Buffer
	err := run(ctx, cfg, zap.NewNop(), []string{
		"export",
		"--input", input,
		"--full", filepath.Join(outDir, "full.json"),
		"--simple", filepath.Join(outDir, "simple.json"),
		"--record",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "tasks=2")
	assert.FileExists(t, filepath.Join(outDir, "full.json"))

	var runID string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "run: ") {
			runID = strings.TrimPrefix(line, "run: ")
		}
	}
	require.NotEmpty(t, runID)

	// The export closed its database handle before returning.
	db, err := storage.Open(cfg.DBPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out.Reset()
	require.NoError(t, run(ctx, cfg, zap.NewNop(), []string{"runs:show", "--id", runID, "--full"}, &out))
	var records []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Buy milk", records[0]["Subject"])
	assert.Equal(t, "T2", records[1]["TaskId"])

	out.Reset()
	require.NoError(t, run(ctx, cfg, zap.NewNop(), []string{"runs"}, &out))
	assert.Contains(t, out.String(), runID)
}

func TestRunExportWithoutTasks(t *testing.T) {
	cfg := testConfig(t)
	input := writeCSV(t, "Subject,Complete\n")
	fullPath := filepath.Join(t.TempDir(), "full.json")

	var out bytes.Buffer
	err := run(context.Background(), cfg, zap.NewNop(), []string{
		"export", "--input", input, "--full", fullPath, "--simple", "",
	}, &out)
	assert.ErrorIs(t, err, pipeline.ErrNoTasks)
	assert.NoFileExists(t, fullPath)
}

func TestRunShowErrors(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	err := run(context.Background(), cfg, zap.NewNop(), []string{"runs:show"}, &out)
	assert.EqualError(t, err, "--id is required")

	err = run(context.Background(), cfg, zap.NewNop(), []string{"runs:show", "--id", "missing"}, &out)
	assert.EqualError(t, err, "run not found: missing")
}
