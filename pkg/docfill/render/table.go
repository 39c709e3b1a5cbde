package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/copystructure"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// ListMarkerPrefix opens a table row marker.
const ListMarkerPrefix = "${list:"

var listMarkerPattern = regexp.MustCompile(`\$\{list:([^}]*)\}`)

// IsDynamicTable reports whether any cell of the table carries a list marker.
// Markers inside nested tables belong to those tables.
func IsDynamicTable(table *xml.Table) bool {
	for _, row := range table.Rows {
		if strings.Contains(rowText(row), ListMarkerPrefix) {
			return true
		}
	}
	return false
}

// FindTemplateRow returns the index of the first row whose text contains a
// list marker, together with the marker's key. It returns -1 when no row does.
func FindTemplateRow(rows []*xml.TableRow) (int, string) {
	for i, row := range rows {
		if m := listMarkerPattern.FindStringSubmatch(rowText(row)); m != nil {
			return i, strings.TrimSpace(m[1])
		}
	}
	return -1, ""
}

// rowText is the text of the row's own cell paragraphs, nested tables excluded.
func rowText(row *xml.TableRow) string {
	var sb strings.Builder
	for _, cell := range row.Cells {
		for _, para := range cell.Paragraphs() {
			sb.WriteString(para.GetText())
		}
	}
	return sb.String()
}

// StripListMarkers removes every list marker from the row's paragraphs. Only
// paragraphs that contained a marker are rewritten.
func StripListMarkers(row *xml.TableRow) {
	for _, cell := range row.Cells {
		for _, para := range cell.Paragraphs() {
			text := para.GetText()
			if !strings.Contains(text, ListMarkerPrefix) {
				continue
			}
			CollapseRuns(para, listMarkerPattern.ReplaceAllString(text, ""))
		}
	}
}

// CloneRow returns a deep copy of row, including cell properties and run
// formatting.
func CloneRow(row *xml.TableRow) (*xml.TableRow, error) {
	copied, err := copystructure.Copy(row)
	if err != nil {
		return nil, fmt.Errorf("failed to clone table row: %w", err)
	}
	return copied.(*xml.TableRow), nil
}

// RemoveRow returns rows without the row at idx.
func RemoveRow(rows []*xml.TableRow, idx int) []*xml.TableRow {
	if idx < 0 || idx >= len(rows) {
		return rows
	}
	out := make([]*xml.TableRow, 0, len(rows)-1)
	out = append(out, rows[:idx]...)
	return append(out, rows[idx+1:]...)
}

// InsertRows returns rows with extra inserted after position idx.
func InsertRows(rows []*xml.TableRow, idx int, extra []*xml.TableRow) []*xml.TableRow {
	out := make([]*xml.TableRow, 0, len(rows)+len(extra))
	out = append(out, rows[:idx+1]...)
	out = append(out, extra...)
	return append(out, rows[idx+1:]...)
}
