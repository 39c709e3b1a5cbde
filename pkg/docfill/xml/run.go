package xml

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	Properties *RunProperties
	// Content keeps text, breaks, tabs and preserved elements (drawings,
	// field characters) in document order
	Content []RunContent
}

func (*Run) isParagraphContent() {}

// NewRun creates a run carrying props and text. Newlines become line breaks and
// tabs become tab elements.
func NewRun(text string, props *RunProperties) *Run {
	run := &Run{Properties: props}
	run.SetText(text)
	return run
}

// UnmarshalXML implements custom XML unmarshaling to preserve unknown elements
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "rPr":
				var props RunProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Properties = &props
			case "t":
				var text Text
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, &text)
			case "br":
				var br Break
				if err := d.DecodeElement(&br, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, &br)
			case "tab":
				if err := d.Skip(); err != nil {
					return err
				}
				r.Content = append(r.Content, &Tab{})
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				r.Content = append(r.Content, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:r"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := encodeAs(e, r.Properties, "w:rPr"); err != nil {
			return err
		}
	}

	for _, content := range r.Content {
		var err error
		switch c := content.(type) {
		case *Text:
			err = e.Encode(c)
		case *Break:
			err = e.Encode(c)
		case *Tab:
			err = e.Encode(c)
		case *RawXMLElement:
			err = encodeRaw(e, c)
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// GetText returns the text content of a run. Line breaks read as "\n" and tabs
// as "\t"; page and column breaks are ignored.
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, content := range r.Content {
		switch c := content.(type) {
		case *Text:
			sb.WriteString(c.Content)
		case *Break:
			if c.IsLineBreak() {
				sb.WriteByte('\n')
			}
		case *Tab:
			sb.WriteByte('\t')
		}
	}
	return sb.String()
}

// SetText replaces the run's text, breaks and tabs with text. Preserved raw
// elements are kept ahead of the new text.
func (r *Run) SetText(text string) {
	var content []RunContent
	for _, c := range r.Content {
		if raw, ok := c.(*RawXMLElement); ok {
			content = append(content, raw)
		}
	}

	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			content = append(content, &Text{Content: sb.String()})
			sb.Reset()
		}
	}
	for _, ch := range text {
		switch ch {
		case '\n':
			flush()
			content = append(content, &Break{})
		case '\t':
			flush()
			content = append(content, &Tab{})
		case '\r':
		default:
			sb.WriteRune(ch)
		}
	}
	flush()

	r.Content = content
}

// Text represents text content
type Text struct {
	Content string `xml:",chardata"`
}

func (*Text) isRunContent() {}

// MarshalXML always writes xml:space="preserve" so leading and trailing
// whitespace from substituted values survives.
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{
		Name: xml.Name{Local: "w:t"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xml:space"}, Value: "preserve"}},
	}
	return e.EncodeElement(t.Content, start)
}

// Break represents a line, page or column break
type Break struct {
	Type  string `xml:"type,attr,omitempty"`
	Clear string `xml:"clear,attr,omitempty"`
}

func (*Break) isRunContent() {}

// IsLineBreak reports whether the break is a text wrapping break.
func (b *Break) IsLineBreak() bool {
	return b.Type == "" || b.Type == "textWrapping"
}

// MarshalXML implements xml.Marshaler to ensure Break is self-closing
func (b Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{
		Name: xml.Name{Local: "w:br"},
		Attr: wordAttrs("type", b.Type, "clear", b.Clear),
	}
	return e.EncodeElement(struct{}{}, start)
}

// Tab represents a tab character
type Tab struct{}

func (*Tab) isRunContent() {}

// MarshalXML writes an empty w:tab element.
func (Tab) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: "w:tab"}})
}

// RunProperties represents run formatting properties. Properties without a
// typed field are kept in Other and written back in schema order.
type RunProperties struct {
	Style     *ValueProperty
	Fonts     *Fonts
	Bold      *Toggle
	Italic    *Toggle
	Strike    *Toggle
	Color     *Color
	Size      *ValueProperty
	SizeCs    *ValueProperty
	Underline *Underline
	Other     []*RawXMLElement
}

// ValueProperty is a property carrying a single w:val attribute.
type ValueProperty struct {
	Val string `xml:"val,attr"`
}

// Toggle is an on/off property such as w:b. An empty Val means on.
type Toggle struct {
	Val string `xml:"val,attr,omitempty"`
}

// Enabled reports whether the toggle switches the property on.
func (t *Toggle) Enabled() bool {
	if t == nil {
		return false
	}
	switch t.Val {
	case "0", "false", "off":
		return false
	}
	return true
}

// Fonts represents w:rFonts
type Fonts struct {
	ASCII         string `xml:"ascii,attr,omitempty"`
	HAnsi         string `xml:"hAnsi,attr,omitempty"`
	EastAsia      string `xml:"eastAsia,attr,omitempty"`
	CS            string `xml:"cs,attr,omitempty"`
	Hint          string `xml:"hint,attr,omitempty"`
	ASCIITheme    string `xml:"asciiTheme,attr,omitempty"`
	HAnsiTheme    string `xml:"hAnsiTheme,attr,omitempty"`
	EastAsiaTheme string `xml:"eastAsiaTheme,attr,omitempty"`
	CSTheme       string `xml:"cstheme,attr,omitempty"`
}

// Color represents text color
type Color struct {
	Val        string `xml:"val,attr"`
	ThemeColor string `xml:"themeColor,attr,omitempty"`
	ThemeTint  string `xml:"themeTint,attr,omitempty"`
	ThemeShade string `xml:"themeShade,attr,omitempty"`
}

// Underline represents underline formatting
type Underline struct {
	Val   string `xml:"val,attr"`
	Color string `xml:"color,attr,omitempty"`
}

// rPrOrder is the CT_RPr child sequence. Word rejects run properties written
// out of this order.
var rPrOrder = map[string]int{
	"rStyle": 0, "rFonts": 1, "b": 2, "bCs": 3, "i": 4, "iCs": 5, "caps": 6,
	"smallCaps": 7, "strike": 8, "dstrike": 9, "outline": 10, "shadow": 11,
	"emboss": 12, "imprint": 13, "noProof": 14, "snapToGrid": 15, "vanish": 16,
	"webHidden": 17, "color": 18, "spacing": 19, "w": 20, "kern": 21,
	"position": 22, "sz": 23, "szCs": 24, "highlight": 25, "u": 26, "effect": 27,
	"bdr": 28, "shd": 29, "fitText": 30, "vertAlign": 31, "rtl": 32, "cs": 33,
	"em": 34, "lang": 35, "eastAsianLayout": 36, "specVanish": 37, "oMath": 38,
}

func rPrRank(name string) int {
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		name = name[idx+1:]
	}
	if rank, ok := rPrOrder[name]; ok {
		return rank
	}
	return len(rPrOrder)
}

// UnmarshalXML decodes the typed properties and keeps the rest raw.
func (rp *RunProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			var target any
			switch t.Name.Local {
			case "rStyle":
				rp.Style = &ValueProperty{}
				target = rp.Style
			case "rFonts":
				rp.Fonts = &Fonts{}
				target = rp.Fonts
			case "b":
				rp.Bold = &Toggle{}
				target = rp.Bold
			case "i":
				rp.Italic = &Toggle{}
				target = rp.Italic
			case "strike":
				rp.Strike = &Toggle{}
				target = rp.Strike
			case "color":
				rp.Color = &Color{}
				target = rp.Color
			case "sz":
				rp.Size = &ValueProperty{}
				target = rp.Size
			case "szCs":
				rp.SizeCs = &ValueProperty{}
				target = rp.SizeCs
			case "u":
				rp.Underline = &Underline{}
				target = rp.Underline
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				rp.Other = append(rp.Other, raw)
				continue
			}
			if err := d.DecodeElement(target, &t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

type rankedElement struct {
	rank   int
	encode func(*xml.Encoder) error
}

// MarshalXML writes the properties in schema order.
func (rp RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	var elems []rankedElement
	add := func(name string, attrs []xml.Attr) {
		elems = append(elems, rankedElement{
			rank: rPrRank(name),
			encode: func(e *xml.Encoder) error {
				return e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: "w:" + name}, Attr: attrs})
			},
		})
	}

	if rp.Style != nil {
		add("rStyle", wordAttrs("val", rp.Style.Val))
	}
	if f := rp.Fonts; f != nil {
		add("rFonts", wordAttrs(
			"ascii", f.ASCII, "hAnsi", f.HAnsi, "eastAsia", f.EastAsia, "cs", f.CS, "hint", f.Hint,
			"asciiTheme", f.ASCIITheme, "hAnsiTheme", f.HAnsiTheme,
			"eastAsiaTheme", f.EastAsiaTheme, "cstheme", f.CSTheme,
		))
	}
	if rp.Bold != nil {
		add("b", wordAttrs("val", rp.Bold.Val))
	}
	if rp.Italic != nil {
		add("i", wordAttrs("val", rp.Italic.Val))
	}
	if rp.Strike != nil {
		add("strike", wordAttrs("val", rp.Strike.Val))
	}
	if c := rp.Color; c != nil {
		add("color", wordAttrs("val", c.Val, "themeColor", c.ThemeColor, "themeTint", c.ThemeTint, "themeShade", c.ThemeShade))
	}
	if rp.Size != nil {
		add("sz", wordAttrs("val", rp.Size.Val))
	}
	if rp.SizeCs != nil {
		add("szCs", wordAttrs("val", rp.SizeCs.Val))
	}
	if u := rp.Underline; u != nil {
		add("u", wordAttrs("val", u.Val, "color", u.Color))
	}
	for _, raw := range rp.Other {
		raw := raw
		elems = append(elems, rankedElement{
			rank:   rPrRank(raw.Name),
			encode: func(e *xml.Encoder) error { return encodeRaw(e, raw) },
		})
	}

	sort.SliceStable(elems, func(i, j int) bool { return elems[i].rank < elems[j].rank })

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, el := range elems {
		if err := el.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// wordAttrs builds w:-prefixed attributes from name/value pairs, skipping
// empty values.
func wordAttrs(pairs ...string) []xml.Attr {
	var attrs []xml.Attr
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "w:" + pairs[i]}, Value: pairs[i+1]})
	}
	return attrs
}
