package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("TASK_FOLDERS", "Tasks, Aufgaben ,,")
	t.Setenv("IMAP_PORT", "nope")
	t.Setenv("DATE_DAY_FIRST", "yes")
	t.Setenv("CSV_DELIMITER", "tab")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out/todos_full.json", cfg.FullJSONPath)
	assert.Equal(t, []string{"Tasks", "Aufgaben"}, cfg.TaskFolders)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.True(t, cfg.DateDayFirst)
	assert.Equal(t, '\t', cfg.Delimiter())
}

func TestDateParserLocation(t *testing.T) {
	cfg := Config{DateLocation: "UTC"}
	p, err := cfg.DateParser()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.Location)

	_, err = Config{DateLocation: "Nowhere/Special"}.DateParser()
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	assert.Error(t, Config{}.Require("IMAP_HOST", " "))
	assert.NoError(t, Config{}.Require("IMAP_HOST", "mail"))
}
