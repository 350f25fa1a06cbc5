package tabular

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"todoreader/internal"
)

// XLSXSource reads a workbook export; each sheet is one batch.
type XLSXSource struct {
	Path string
}

func (s XLSXSource) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWorkbook(ctx, f)
}

func readWorkbook(ctx context.Context, f *excelize.File) ([]internal.SourceBatch, error) {
	var out []internal.SourceBatch
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}

		batch := internal.SourceBatch{Source: internal.SourceXLSX, Folder: sheet, AllTasks: true}
		for _, row := range rows {
			if blankRow(row) {
				continue
			}
			if batch.Headers == nil {
				batch.Headers = headerNames(row)
				continue
			}
			for len(batch.Headers) < len(row) {
				batch.Headers = append(batch.Headers, fmt.Sprintf("Column %d", len(batch.Headers)+1))
			}
			batch.Records = append(batch.Records, internal.SourceRecord{
				Source:     internal.SourceXLSX,
				Properties: internal.BagFromRow(batch.Headers, row),
			})
		}
		if len(batch.Records) > 0 {
			out = append(out, batch)
		}
	}
	return out, nil
}
