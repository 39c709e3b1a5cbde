package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// declaration is the XML declaration Word writes at the top of every part.
const declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Document represents a Word document part (word/document.xml).
type Document struct {
	// Name is the prefixed root name, normally "w:document".
	Name string
	// Attrs preserves the root attributes (namespace declarations, mc:Ignorable).
	Attrs []xml.Attr
	// Extra holds root children other than the body, such as w:background.
	Extra []*RawXMLElement
	Body  *Body
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement
	// SectionProperties at the end of the body (required by Word)
	SectionProperties *RawXMLElement
}

// Part represents a header or footer part (w:hdr / w:ftr). Its children follow
// the same block model as the document body.
type Part struct {
	Name     string
	Attrs    []xml.Attr
	Elements []BodyElement
}

// UnmarshalXML implements custom XML unmarshaling to preserve root attributes
// and unknown root children.
func (doc *Document) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	registerNamespaces(start.Attr)
	doc.Name = qualify(start.Name)
	doc.Attrs = qualifyAttrs(start.Attr)

	for {
		token, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "body" {
				elems, sectPr, err := decodeBlocks(d, t)
				if err != nil {
					return err
				}
				doc.Body = &Body{Elements: elems, SectionProperties: sectPr}
				continue
			}
			raw, err := captureRaw(d, t)
			if err != nil {
				return err
			}
			doc.Extra = append(doc.Extra, raw)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML writes the document with its original root attributes.
func (doc Document) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	name := doc.Name
	if name == "" {
		name = "w:document"
	}
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: doc.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, raw := range doc.Extra {
		if err := encodeRaw(e, raw); err != nil {
			return err
		}
	}
	if doc.Body != nil {
		if err := encodeAs(e, doc.Body, "w:body"); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeBlocks(e, b.Elements); err != nil {
		return err
	}
	// Section properties must stay the last child of the body
	if err := encodeRaw(e, b.SectionProperties); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML decodes a header or footer root.
func (p *Part) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	registerNamespaces(start.Attr)
	p.Name = qualify(start.Name)
	p.Attrs = qualifyAttrs(start.Attr)

	elems, sectPr, err := decodeBlocks(d, start)
	if err != nil {
		return err
	}
	if sectPr != nil {
		elems = append(elems, sectPr)
	}
	p.Elements = elems
	return nil
}

// MarshalXML writes the part with its original root name and attributes.
func (p Part) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: p.Name}, Attr: p.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeBlocks(e, p.Elements); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// decodeBlocks reads the block-level children of start until its end element.
// Paragraphs and tables are parsed; a w:sectPr is returned separately and
// everything else is preserved raw.
func decodeBlocks(d *xml.Decoder, start xml.StartElement) ([]BodyElement, *RawXMLElement, error) {
	var (
		elems  []BodyElement
		sectPr *RawXMLElement
	)

	for {
		token, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil, nil, fmt.Errorf("unexpected end of input inside <%s>", qualify(start.Name))
			}
			return nil, nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var para Paragraph
				if err := d.DecodeElement(&para, &t); err != nil {
					return nil, nil, err
				}
				elems = append(elems, &para)
			case "tbl":
				var table Table
				if err := d.DecodeElement(&table, &t); err != nil {
					return nil, nil, err
				}
				elems = append(elems, &table)
			case "sectPr":
				raw, err := captureRaw(d, t)
				if err != nil {
					return nil, nil, err
				}
				sectPr = raw
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return nil, nil, err
				}
				elems = append(elems, raw)
			}
		case xml.EndElement:
			return elems, sectPr, nil
		}
	}
}

func encodeBlocks(e *xml.Encoder, elems []BodyElement) error {
	for _, elem := range elems {
		var err error
		switch el := elem.(type) {
		case *Paragraph:
			err = encodeAs(e, el, "w:p")
		case *Table:
			err = encodeAs(e, el, "w:tbl")
		case *RawXMLElement:
			err = encodeRaw(e, el)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Body == nil {
		doc.Body = &Body{}
	}

	return &doc, nil
}

// ParsePart parses a header or footer XML part.
func ParsePart(r io.Reader) (*Part, error) {
	decoder := xml.NewDecoder(r)

	var part Part
	if err := decoder.Decode(&part); err != nil {
		return nil, fmt.Errorf("failed to parse part: %w", err)
	}

	return &part, nil
}

// MarshalDocument serializes doc with the standalone XML declaration.
func MarshalDocument(doc *Document) ([]byte, error) {
	return marshalRoot(doc)
}

// MarshalPart serializes a header or footer part.
func MarshalPart(part *Part) ([]byte, error) {
	return marshalRoot(part)
}

func marshalRoot(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(declaration)

	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
