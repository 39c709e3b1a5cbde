package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Table represents a table in the document
type Table struct {
	Properties *RawXMLElement
	Grid       *RawXMLElement
	Rows       []*TableRow
	// Other holds row-level siblings such as bookmarks, written after the rows
	Other []*RawXMLElement
}

func (*Table) isBodyElement() {}

// TableRow represents a row in a table
type TableRow struct {
	PropertyExceptions *RawXMLElement
	Properties         *RawXMLElement
	Cells              []*TableCell
	Other              []*RawXMLElement
}

// TableCell represents a cell in a table
type TableCell struct {
	Properties *RawXMLElement
	// Content holds the cell's paragraphs, nested tables and preserved blocks
	Content []BodyElement
}

// UnmarshalXML implements custom XML unmarshaling for Table
func (t *Table) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tblPr":
				if t.Properties, err = captureRaw(d, tok); err != nil {
					return err
				}
			case "tblGrid":
				if t.Grid, err = captureRaw(d, tok); err != nil {
					return err
				}
			case "tr":
				var row TableRow
				if err := d.DecodeElement(&row, &tok); err != nil {
					return err
				}
				t.Rows = append(t.Rows, &row)
			default:
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				t.Other = append(t.Other, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Table
func (t Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeRaw(e, t.Properties); err != nil {
		return err
	}
	if err := encodeRaw(e, t.Grid); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := encodeAs(e, row, "w:tr"); err != nil {
			return err
		}
	}
	for _, raw := range t.Other {
		if err := encodeRaw(e, raw); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML implements custom XML unmarshaling for TableRow
func (r *TableRow) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tblPrEx":
				if r.PropertyExceptions, err = captureRaw(d, tok); err != nil {
					return err
				}
			case "trPr":
				if r.Properties, err = captureRaw(d, tok); err != nil {
					return err
				}
			case "tc":
				var cell TableCell
				if err := d.DecodeElement(&cell, &tok); err != nil {
					return err
				}
				r.Cells = append(r.Cells, &cell)
			default:
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				r.Other = append(r.Other, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for TableRow
func (r TableRow) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeRaw(e, r.PropertyExceptions); err != nil {
		return err
	}
	if err := encodeRaw(e, r.Properties); err != nil {
		return err
	}
	for _, cell := range r.Cells {
		if err := encodeAs(e, cell, "w:tc"); err != nil {
			return err
		}
	}
	for _, raw := range r.Other {
		if err := encodeRaw(e, raw); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// GetText returns the concatenated text of every cell in the row.
func (r *TableRow) GetText() string {
	var sb strings.Builder
	for _, cell := range r.Cells {
		sb.WriteString(cell.GetText())
	}
	return sb.String()
}

// UnmarshalXML implements custom XML unmarshaling for TableCell
func (c *TableCell) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	elems, _, err := decodeBlocks(d, start)
	if err != nil {
		return err
	}
	for _, elem := range elems {
		if raw, ok := elem.(*RawXMLElement); ok && raw.Name == "w:tcPr" && c.Properties == nil {
			c.Properties = raw
			continue
		}
		c.Content = append(c.Content, elem)
	}
	return nil
}

// MarshalXML writes the cell. A cell must end with a paragraph, so one is
// added when the content has none.
func (c TableCell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeRaw(e, c.Properties); err != nil {
		return err
	}
	if err := encodeBlocks(e, c.Content); err != nil {
		return err
	}
	if len(c.Paragraphs()) == 0 {
		if err := encodeAs(e, &Paragraph{}, "w:p"); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Paragraphs returns the cell's top-level paragraphs.
func (c *TableCell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, elem := range c.Content {
		if p, ok := elem.(*Paragraph); ok {
			paras = append(paras, p)
		}
	}
	return paras
}

// GetText returns the concatenated text of the cell's paragraphs and nested tables.
func (c *TableCell) GetText() string {
	var sb strings.Builder
	for _, elem := range c.Content {
		switch el := elem.(type) {
		case *Paragraph:
			sb.WriteString(el.GetText())
		case *Table:
			for _, row := range el.Rows {
				sb.WriteString(row.GetText())
			}
		}
	}
	return sb.String()
}
