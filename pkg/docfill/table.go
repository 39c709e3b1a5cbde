package docfill

import (
	"fmt"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/render"
	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// TableFiller fills tables, expanding the row marked with ${list:key} into
// one row per element of the list.
type TableFiller struct {
	paragraphs *ParagraphFiller
	resolver   *Resolver
	log        *Logger
}

// NewTableFiller creates a table filler.
func NewTableFiller(paragraphs *ParagraphFiller, resolver *Resolver) *TableFiller {
	return &TableFiller{paragraphs: paragraphs, resolver: resolver}
}

// WithLogger returns a copy of f that logs to log. Renders use it to tag
// table diagnostics with their request id.
func (f *TableFiller) WithLogger(log *Logger) *TableFiller {
	copied := *f
	copied.log = log
	return &copied
}

func (f *TableFiller) logger() *Logger {
	if f.log != nil {
		return f.log
	}
	return GetLogger()
}

// FillElements fills a sequence of block elements, as found in a body, a
// header, a footer or a table cell.
func (f *TableFiller) FillElements(elements []xml.BodyElement, data Data) error {
	for _, elem := range elements {
		switch el := elem.(type) {
		case *xml.Paragraph:
			f.paragraphs.Fill(el, data)
		case *xml.Table:
			if err := f.Fill(el, data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Fill fills table. Only the first marked row is expanded; every other row is
// filled with data as is. A marker that does not resolve to a list leaves the
// table static.
func (f *TableFiller) Fill(table *xml.Table, data Data) error {
	idx, key := render.FindTemplateRow(table.Rows)
	if idx < 0 {
		return f.fillRows(table.Rows, data)
	}

	value, _ := f.resolver.Resolve(data, key)
	items, ok := toSequence(value)
	if !ok {
		f.logger().WithFields(Fields{"key": key, "type": fmt.Sprintf("%T", value)}).Warn("list marker does not resolve to a list, filling table statically")
		return f.fillRows(table.Rows, data)
	}

	template := table.Rows[idx]
	render.StripListMarkers(template)
	pristine, err := render.CloneRow(template)
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i == idx {
			continue
		}
		if err := f.fillRow(row, data); err != nil {
			return err
		}
	}

	if len(items) == 0 {
		table.Rows = render.RemoveRow(table.Rows, idx)
		return nil
	}

	if err := f.fillRow(template, IterationData(data, items[0], 0, len(items))); err != nil {
		return err
	}

	extra := make([]*xml.TableRow, 0, len(items)-1)
	for i := 1; i < len(items); i++ {
		row, err := render.CloneRow(pristine)
		if err != nil {
			return err
		}
		if err := f.fillRow(row, IterationData(data, items[i], i, len(items))); err != nil {
			return err
		}
		extra = append(extra, row)
	}
	table.Rows = render.InsertRows(table.Rows, idx, extra)

	f.logger().WithFields(Fields{"key": key, "rows": len(items)}).Debug("expanded dynamic table row")
	return nil
}

func (f *TableFiller) fillRows(rows []*xml.TableRow, data Data) error {
	for _, row := range rows {
		if err := f.fillRow(row, data); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFiller) fillRow(row *xml.TableRow, data Data) error {
	for _, cell := range row.Cells {
		if err := f.FillElements(cell.Content, data); err != nil {
			return err
		}
	}
	return nil
}
