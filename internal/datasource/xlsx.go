package datasource

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docfill/pkg/docfill"
	"github.com/xuri/excelize/v2"
)

// RowsKey holds the records of the first sheet.
const RowsKey = "rows"

// decodeXLSX turns every sheet into a list of records keyed by the sheet's
// header row. Each sheet is stored under its name; the first sheet is also
// stored under RowsKey.
func decodeXLSX(r io.Reader) (docfill.Data, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	data := docfill.Data{}
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}

		records := sheetRecords(rows)
		data[sheet] = records
		if i == 0 {
			data[RowsKey] = records
		}
	}
	return data, nil
}

// sheetRecords maps rows after the first to records. Columns with an empty
// header are skipped, as are rows with no values.
func sheetRecords(rows [][]string) []interface{} {
	records := make([]interface{}, 0)
	if len(rows) == 0 {
		return records
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}

	for _, row := range rows[1:] {
		record := make(map[string]interface{}, len(header))
		empty := true
		for col, name := range header {
			if name == "" {
				continue
			}
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			record[name] = cellValue(cell)
		}
		if !empty {
			records = append(records, record)
		}
	}
	return records
}

// cellValue keeps numeric cells as json.Number, matching the JSON loader.
func cellValue(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return cell
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return json.Number(trimmed)
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return cell
}
