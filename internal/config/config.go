package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"todoreader/internal/util"
)

type Config struct {
	OutputDir      string
	FullJSONPath   string
	SimpleJSONPath string
	SimpleXLSXPath string

	DBPath     string
	RecordRuns bool

	LogLevel  string
	LogFormat string

	DateLocation string
	DateDayFirst bool

	TaskMessageClasses []string
	TaskFolders        []string

	CSVEncoding  string
	CSVDelimiter string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMailbox  string

	GTasksClientID     string
	GTasksClientSecret string
	GTasksRefreshToken string
	GTasksRateLimitRPS int

	WatchDir         string
	WatchIntervalSec int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	outputDir := getEnv("OUTPUT_DIR", filepath.Join(cwd, "out"))
	cfg := Config{
		OutputDir:      outputDir,
		FullJSONPath:   getEnv("FULL_JSON_PATH", filepath.Join(outputDir, "todos_full.json")),
		SimpleJSONPath: getEnv("SIMPLE_JSON_PATH", filepath.Join(outputDir, "todos_simple.json")),
		SimpleXLSXPath: getEnv("SIMPLE_XLSX_PATH", ""),

		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		RecordRuns: getEnvBool("RECORD_RUNS", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DateLocation: getEnv("DATE_LOCATION", "Local"),
		DateDayFirst: getEnvBool("DATE_DAY_FIRST", false),

		TaskMessageClasses: getEnvList("TASK_MESSAGE_CLASSES", nil),
		TaskFolders:        getEnvList("TASK_FOLDERS", nil),

		CSVEncoding:  getEnv("CSV_ENCODING", "utf-8"),
		CSVDelimiter: getEnv("CSV_DELIMITER", ","),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMailbox:  getEnv("IMAP_MAILBOX", "Tasks"),

		GTasksClientID:     getEnv("GTASKS_CLIENT_ID", ""),
		GTasksClientSecret: getEnv("GTASKS_CLIENT_SECRET", ""),
		GTasksRefreshToken: getEnv("GTASKS_REFRESH_TOKEN", ""),
		GTasksRateLimitRPS: getEnvInt("GTASKS_RATE_LIMIT_RPS", 5),

		WatchDir:         getEnv("WATCH_DIR", filepath.Join(cwd, "data", "inbox")),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// DateParser builds the timestamp parser for the configured locale.
func (c Config) DateParser() (util.DateParser, error) {
	loc := time.Local
	if name := strings.TrimSpace(c.DateLocation); name != "" && name != "Local" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return util.DateParser{}, fmt.Errorf("DATE_LOCATION: %w", err)
		}
		loc = l
	}
	return util.DateParser{Location: loc, DayFirst: c.DateDayFirst}, nil
}

// Delimiter returns the first rune of CSV_DELIMITER; "\t" and "tab" select a tab.
func (c Config) Delimiter() rune {
	switch strings.ToLower(c.CSVDelimiter) {
	case "", ",":
		return ','
	case `\t`, "tab":
		return '\t'
	}
	return []rune(c.CSVDelimiter)[0]
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
