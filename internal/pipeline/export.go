package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"todoreader/internal"
)

// MarshalRecords renders records as an indented JSON array without HTML
// escaping. An empty or nil slice renders as [].
func MarshalRecords[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON marshals records and writes them to outputPath, creating parent
// directories.
func WriteJSON[T any](records []T, outputPath string) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", outputPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

var simpleXLSXHeaders = []string{
	"Subject", "ItemClass", "Body", "CreationTime", "LastModificationTime", "IsComplete",
	"Categories", "TaskId", "Status", "Folder", "CreatedTime", "LocalId", "Creator",
}

func ExportSimpleToXLSX(rows []internal.SimpleRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Tasks"); err != nil {
		return err
	}
	sheet = "Tasks"

	for i, h := range simpleXLSXHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Subject)
		set(2, row.ItemClass)
		set(3, row.Body)
		set(4, formatTime(row.CreationTime))
		set(5, formatTime(row.LastModificationTime))
		set(6, row.IsComplete)
		set(7, derefString(row.Categories))
		set(8, derefString(row.TaskID))
		set(9, derefInt(row.Status))
		set(10, row.Folder)
		set(11, row.CreatedTime)
		set(12, derefString(row.LocalID))
		set(13, row.Creator)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
