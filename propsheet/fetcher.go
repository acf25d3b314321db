package propsheet

import (
	"context"
	"fmt"

	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

const (
	DefaultCheckboxColumn = "Check Box"
	DefaultAddressColumn  = "Property Address"
)

// RowValues maps column titles to cell values. The representation is sparse:
// a column with an empty cell has no entry at all.
type RowValues map[string]any

func (r RowValues) Text(column string) string {
	v, ok := r[column]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func NewFetcher(client *smartsheet.Client, sheetID int64, checkboxColumn string, addressColumn string) *Fetcher {
	if checkboxColumn == "" {
		checkboxColumn = DefaultCheckboxColumn
	}
	if addressColumn == "" {
		addressColumn = DefaultAddressColumn
	}
	return &Fetcher{
		client:         client,
		sheetID:        sheetID,
		checkboxColumn: checkboxColumn,
		addressColumn:  addressColumn,
	}
}

type Fetcher struct {
	client         *smartsheet.Client
	sheetID        int64
	checkboxColumn string
	addressColumn  string
}

// FetchActiveRows fetches the whole sheet and returns the rows whose checkbox
// column is checked, together with a property address to row id lookup. When
// two active rows share an address the later row wins.
func (f *Fetcher) FetchActiveRows(ctx context.Context) ([]RowValues, map[string]int64, error) {
	sheet, err := f.client.GetSheet(ctx, f.sheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch sheet %d: %w", f.sheetID, err)
	}

	titles := make(map[int64]string, len(sheet.Columns))
	for _, column := range sheet.Columns {
		titles[column.ID] = column.Title
	}

	var rows []RowValues
	rowIDs := make(map[string]int64)
	for _, row := range sheet.Rows {
		values := make(RowValues, len(row.Cells))
		for _, cell := range row.Cells {
			title, ok := titles[cell.ColumnID]
			if !ok || cell.Value == nil || cell.Value == "" {
				continue
			}
			values[title] = cell.Value
		}

		// Strictly boolean true; "TRUE" strings or 1s do not activate a row.
		if checked, ok := values[f.checkboxColumn].(bool); !ok || !checked {
			continue
		}

		rows = append(rows, values)
		if address := values.Text(f.addressColumn); address != "" {
			rowIDs[address] = row.ID
		}
	}

	return rows, rowIDs, nil
}
