package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"todoreader/internal"
)

// CSVSource reads one delimited task export. Every row is a task.
type CSVSource struct {
	Path      string
	Encoding  string
	Delimiter rune
}

func (s CSVSource) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers, rows, err := ParseCSV(f, s.Encoding, s.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := internal.SourceBatch{
		Source:   internal.SourceCSV,
		Folder:   strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path)),
		Headers:  headers,
		AllTasks: true,
	}
	for _, row := range rows {
		batch.Records = append(batch.Records, internal.SourceRecord{
			Source:     internal.SourceCSV,
			Properties: internal.BagFromRow(headers, row),
		})
	}
	return []internal.SourceBatch{batch}, nil
}

// ParseCSV returns the header row and the non-blank data rows. Cells beyond
// the header are named "Column N".
func ParseCSV(r io.Reader, charset string, delimiter rune) ([]string, [][]string, error) {
	decoded, err := decodingReader(r, charset)
	if err != nil {
		return nil, nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	if delimiter != 0 {
		cr.Comma = delimiter
	}

	var headers []string
	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if blankRow(record) {
			continue
		}
		if headers == nil {
			headers = headerNames(record)
			continue
		}
		for len(headers) < len(record) {
			headers = append(headers, fmt.Sprintf("Column %d", len(headers)+1))
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}

// decodingReader converts input in the named charset to UTF-8. A leading BOM
// wins over the configured charset.
func decodingReader(r io.Reader, charset string) (io.Reader, error) {
	var enc encoding.Encoding = unicode.UTF8
	name := strings.TrimSpace(charset)
	if name != "" && !strings.EqualFold(name, "utf-8") && !strings.EqualFold(name, "utf8") {
		e, err := htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", charset, err)
		}
		enc = e
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

func headerNames(record []string) []string {
	out := make([]string, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = h
	}
	return out
}

func blankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
