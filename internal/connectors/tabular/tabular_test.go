package tabular

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const outlookCSV = "\"Subject\",\"Notes\",\"Complete\"\r\n" +
	"\"Buy milk\",\"2 litres, \"\"fresh\"\"\",\"True\"\r\n" +
	"\r\n" +
	"\"Call mom\",\"line one\nline two\",\"False\",\"spill\"\r\n"

func TestParseCSVQuoting(t *testing.T) {
	headers, rows, err := ParseCSV(strings.NewReader(outlookCSV), "", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "Notes", "Complete", "Column 4"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, `2 litres, "fresh"`, rows[0][1])
	assert.Equal(t, "line one\nline two", rows[1][1])
	assert.Equal(t, "spill", rows[1][3])
}

func TestParseCSVUTF16BOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Subject;Owner\nTâche;Zoë\n"))
	require.NoError(t, err)

	headers, rows, err := ParseCSV(bytes.NewReader(data), "utf-8", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "Owner"}, headers)
	assert.Equal(t, [][]string{{"Tâche", "Zoë"}}, rows)
}

func TestParseCSVUTF8BOMAndLegacyCharset(t *testing.T) {
	headers, _, err := ParseCSV(strings.NewReader("\xef\xbb\xbfSubject\nx\n"), "", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject"}, headers)

	latin, err := charmap.Windows1252.NewEncoder().String("Subject\nCafé\n")
	require.NoError(t, err)
	_, rows, err := ParseCSV(strings.NewReader(latin), "windows-1252", ',')
	require.NoError(t, err)
	assert.Equal(t, "Café", rows[0][0])

	_, _, err = ParseCSV(strings.NewReader("a"), "klingon", ',')
	assert.Error(t, err)
}

func TestCSVSourceBuildsOneBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(outlookCSV), 0o644))

	batches, err := CSVSource{Path: path}.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	b := batches[0]
	assert.True(t, b.AllTasks)
	assert.Equal(t, "export", b.Folder)
	require.Len(t, b.Records, 2)

	v, ok := b.Records[0].Properties.Get("Column 4")
	require.True(t, ok)
	assert.Equal(t, "", v)
	v, _ = b.Records[1].Properties.Get("complete")
	assert.Equal(t, "False", v)
}

func mkXLSX(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}
	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource(t *testing.T) {
	path := mkXLSX(t, map[string][][]any{
		"Tasks": {
			{},
			{"Subject", "Due Date", "% Complete"},
			{"Renew passport", "3/15/2024", 50},
			{"", "", ""},
			{"Book dentist"},
		},
	})

	batches, err := XLSXSource{Path: path}.Read(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 1)
	b := batches[0]
	assert.Equal(t, "Tasks", b.Folder)
	assert.Equal(t, []string{"Subject", "Due Date", "% Complete"}, b.Headers)
	require.Len(t, b.Records, 2)

	v, _ := b.Records[0].Properties.Get("% Complete")
	assert.Equal(t, "50", v)
	v, _ = b.Records[1].Properties.Get("Due Date")
	assert.Equal(t, "", v)
}
