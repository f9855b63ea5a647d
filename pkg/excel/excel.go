package excel

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"
)

// DataSource supplies tabular data for export.
type DataSource interface {
	SheetName() string
	Headers() []string
	// Next returns the next row, or false when the source is exhausted.
	Next(ctx context.Context) ([]any, bool, error)
}

// SliceDataSource exports an in-memory table.
type SliceDataSource struct {
	sheet   string
	headers []string
	rows    [][]any
	pos     int
}

func NewSliceDataSource(sheet string, headers []string, rows [][]any) *SliceDataSource {
	if sheet == "" {
		sheet = "Sheet1"
	}
	if len(sheet) > 31 { // Excel sheet name limit
		sheet = sheet[:31]
	}
	return &SliceDataSource{sheet: sheet, headers: headers, rows: rows}
}

func (s *SliceDataSource) SheetName() string { return s.sheet }
func (s *SliceDataSource) Headers() []string { return s.headers }

func (s *SliceDataSource) Next(ctx context.Context) ([]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true, nil
}

// Exporter renders a DataSource to an xlsx workbook.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(ctx context.Context, ds DataSource) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := ds.SheetName()
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := ds.Headers()
	if len(headers) > 0 {
		cell, err := excelize.CoordinatesToCellName(1, 1)
		if err != nil {
			return nil, err
		}
		hdr := make([]any, len(headers))
		for i, h := range headers {
			hdr[i] = h
		}
		if err := f.SetSheetRow(sheet, cell, &hdr); err != nil {
			return nil, err
		}
	}

	rowNum := 2
	for {
		row, ok, err := ds.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		rowNum++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
