package sources

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/korjavin/dailystudybot/models"
)

const (
	wordColumn    = "word"
	meaningColumn = "meaning"
)

// ErrNoSheetData is returned when the sheet has no rows below its header
var ErrNoSheetData = fmt.Errorf("sheet has no data: %w", models.ErrEmptySource)

// SheetSource reads vocabulary rows from a Google Sheet.
// The first row is a header naming the Word and Meaning columns.
type SheetSource struct {
	service   *sheets.Service
	sheetID   string
	readRange string
}

// NewSheetSource creates a read-only Sheets client. Credentials are passed in opts.
func NewSheetSource(ctx context.Context, sheetID, readRange string, opts ...option.ClientOption) (*SheetSource, error) {
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService > %w", err)
	}

	return &SheetSource{
		service:   service,
		sheetID:   sheetID,
		readRange: readRange,
	}, nil
}

// FetchRows returns the data rows of the configured range in sheet order
func (s *SheetSource) FetchRows(ctx context.Context) ([]models.RawRow, error) {
	result, err := s.service.Spreadsheets.Values.Get(s.sheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("spreadsheets.values.get(%s) > %w", s.readRange, err)
	}
	return RowsFromValues(result.Values)
}

// RowsFromValues maps a header row and data rows to raw pairs.
// Cells missing from a short row are reported as absent.
func RowsFromValues(values [][]interface{}) ([]models.RawRow, error) {
	if len(values) < 2 {
		return nil, ErrNoSheetData
	}

	wordIdx, meaningIdx := -1, -1
	for i, cell := range values[0] {
		switch strings.ToLower(strings.TrimSpace(cellString(cell))) {
		case wordColumn:
			if wordIdx < 0 {
				wordIdx = i
			}
		case meaningColumn:
			if meaningIdx < 0 {
				meaningIdx = i
			}
		}
	}
	if wordIdx < 0 || meaningIdx < 0 {
		return nil, fmt.Errorf("sheet header %v must contain Word and Meaning columns", values[0])
	}

	rows := make([]models.RawRow, 0, len(values)-1)
	for _, row := range values[1:] {
		rows = append(rows, models.RawRow{
			Word:    cellAt(row, wordIdx),
			Meaning: cellAt(row, meaningIdx),
		})
	}
	return rows, nil
}

func cellAt(row []interface{}, idx int) *string {
	if idx >= len(row) || row[idx] == nil {
		return nil
	}
	s := cellString(row[idx])
	return &s
}

func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
