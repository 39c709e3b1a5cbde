package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	// Properties is the paragraph's w:pPr, preserved verbatim
	Properties *RawXMLElement
	// Content maintains the order of runs and other inline elements
	// (bookmarks, hyperlinks, proofing marks)
	Content []ParagraphContent
}

func (*Paragraph) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling to preserve content order
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			switch t.Name.Local {
			case "pPr":
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.Properties = raw
			case "r":
				var run Run
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				p.Content = append(p.Content, &run)
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.Content = append(p.Content, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling to preserve content order
func (p Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeRaw(e, p.Properties); err != nil {
		return err
	}
	for _, content := range p.Content {
		var err error
		switch c := content.(type) {
		case *Run:
			err = encodeAs(e, c, "w:r")
		case *RawXMLElement:
			err = encodeRaw(e, c)
		}
		if err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Runs returns the paragraph's runs in document order.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, content := range p.Content {
		if run, ok := content.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, run := range p.Runs() {
		sb.WriteString(run.GetText())
	}
	return sb.String()
}

// AppendRun adds a run at the end of the paragraph.
func (p *Paragraph) AppendRun(run *Run) {
	p.Content = append(p.Content, run)
}

// ReplaceRuns removes every run and puts run where the first one was. Other
// inline content keeps its position. A paragraph without runs gets run appended.
func (p *Paragraph) ReplaceRuns(run *Run) {
	content := make([]ParagraphContent, 0, len(p.Content))
	placed := false
	for _, c := range p.Content {
		if _, ok := c.(*Run); ok {
			if !placed {
				content = append(content, run)
				placed = true
			}
			continue
		}
		content = append(content, c)
	}
	if !placed {
		content = append(content, run)
	}
	p.Content = content
}
