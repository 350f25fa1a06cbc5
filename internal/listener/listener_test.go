package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoreader/internal/config"
	"todoreader/internal/storage"
)

func TestRunCycleConvertsNewFilesOnce(t *testing.T) {
	tmp := t.TempDir()
	watchDir := filepath.Join(tmp, "inbox")
	require.NoError(t, os.MkdirAll(watchDir, 0o755))
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(watchDir, name), []byte(content), 0o644))
	}
	write("my tasks.csv", "Subject,Complete\nBuy milk,true\n")
	write("empty.csv", "Subject\n")
	write("notes.pdf", "%PDF")
	write(".partial.csv", "Subject\nx\n")

	db, err := storage.Open(filepath.Join(tmp, "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Config{WatchDir: watchDir, OutputDir: filepath.Join(tmp, "out"), DateLocation: "UTC"}
	svc, err := NewService(db, cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	res, err := svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleResult{Seen: 2, Converted: 1, Skipped: 1}, res)
	assert.FileExists(t, filepath.Join(tmp, "out", "watch", "my_tasks_full.json"))
	assert.FileExists(t, filepath.Join(tmp, "out", "watch", "my_tasks_simple.json"))

	res, err = svc.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleResult{Seen: 2, Converted: 0, Skipped: 2}, res)

	last, err := db.GetMetadata(ctx, "watch.lastCycle")
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestRunCycleMissingDir(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	svc, err := NewService(db, config.Config{WatchDir: "/does/not/exist", DateLocation: "UTC"}, nil)
	require.NoError(t, err)
	_, err = svc.RunCycle(context.Background())
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitizeName("a b:c"))
}
