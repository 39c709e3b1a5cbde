package xml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
)

// BodyElement represents any element that can appear in a body, a header or
// footer part, or a table cell.
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph.
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent represents any content that can appear in a run.
type RunContent interface {
	isRunContent()
}

// RawXMLElement represents an XML element that is preserved but not parsed.
// Name and attribute names carry their namespace prefix ("w:bookmarkStart").
type RawXMLElement struct {
	Name  string
	Attrs []xml.Attr
	Inner string
}

func (*RawXMLElement) isBodyElement()      {}
func (*RawXMLElement) isParagraphContent() {}
func (*RawXMLElement) isRunContent()       {}

type rawInner struct {
	Inner string `xml:",innerxml"`
}

// MarshalXML writes the element back with its original name, attributes and
// inner markup.
func (r RawXMLElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: r.Name}, Attr: r.Attrs}
	return e.EncodeElement(rawInner{Inner: r.Inner}, start)
}

// Attr returns the value of the attribute with the given local name.
func (r *RawXMLElement) Attr(local string) (string, bool) {
	for _, a := range r.Attrs {
		name := a.Name.Local
		if idx := strings.IndexByte(name, ':'); idx >= 0 {
			name = name[idx+1:]
		}
		if name == local {
			return a.Value, true
		}
	}
	return "", false
}

// wordNamespace is the main WordprocessingML namespace.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

var knownPrefixes = map[string]string{
	wordNamespace: "w",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
	"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
	"http://schemas.microsoft.com/office/drawing/2010/main":                  "a14",
	"urn:schemas-microsoft-com:vml":                                          "v",
	"urn:schemas-microsoft-com:office:office":                                "o",
	"urn:schemas-microsoft-com:office:word":                                  "w10",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":      "wps",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas":     "wpc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":      "wpg",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingInk":        "wpi",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://schemas.microsoft.com/office/word/2012/wordml":                   "w15",
	"http://schemas.microsoft.com/office/word/2015/wordml/symex":             "w16se",
	"http://schemas.microsoft.com/office/word/2016/wordml/cid":               "w16cid",
	"http://schemas.microsoft.com/office/word/2018/wordml":                   "w16",
	"http://schemas.microsoft.com/office/word/2018/wordml/cex":               "w16cex",
	"http://schemas.microsoft.com/office/word/2023/wordml/word16du":          "w16du",
	"http://schemas.microsoft.com/office/word/2006/wordml":                   "wne",
}

// declaredPrefixes holds prefixes learned from root elements whose namespace is
// not in knownPrefixes. It only grows.
var declaredPrefixes sync.Map

// registerNamespaces records the xmlns declarations of a root element.
func registerNamespaces(attrs []xml.Attr) {
	for _, a := range attrs {
		if a.Name.Space == "xmlns" {
			if _, ok := knownPrefixes[a.Value]; !ok {
				declaredPrefixes.LoadOrStore(a.Value, a.Name.Local)
			}
		}
	}
}

// namespacePrefix converts a namespace URI to its conventional prefix.
func namespacePrefix(uri string) string {
	if prefix, ok := knownPrefixes[uri]; ok {
		return prefix
	}
	if prefix, ok := declaredPrefixes.Load(uri); ok {
		return prefix.(string)
	}
	return uri
}

// qualify renders a decoded name with its prefix.
func qualify(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return namespacePrefix(n.Space) + ":" + n.Local
}

// qualifyAttrs converts decoded attributes into prefixed, namespace-free attributes
// that the encoder writes back verbatim.
func qualifyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		switch a.Name.Space {
		case "":
			out = append(out, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
		case "xmlns":
			out = append(out, xml.Attr{Name: xml.Name{Local: "xmlns:" + a.Name.Local}, Value: a.Value})
		default:
			out = append(out, xml.Attr{Name: xml.Name{Local: qualify(a.Name)}, Value: a.Value})
		}
	}
	return out
}

func writeStartTag(buf *strings.Builder, t xml.StartElement) {
	buf.WriteString("<")
	buf.WriteString(qualify(t.Name))
	for _, attr := range qualifyAttrs(t.Attr) {
		buf.WriteString(" ")
		buf.WriteString(attr.Name.Local)
		buf.WriteString(`="`)
		_ = xml.EscapeText(stringWriter{buf}, []byte(attr.Value))
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
}

type stringWriter struct {
	b *strings.Builder
}

func (w stringWriter) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

// captureRaw consumes the element opened by start and returns it verbatim.
func captureRaw(d *xml.Decoder, start xml.StartElement) (*RawXMLElement, error) {
	raw := &RawXMLElement{
		Name:  qualify(start.Name),
		Attrs: qualifyAttrs(start.Attr),
	}

	var buf strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("unexpected end of input inside <%s>", raw.Name)
			}
			return nil, err
		}

		switch tt := tok.(type) {
		case xml.StartElement:
			depth++
			writeStartTag(&buf, tt)
		case xml.EndElement:
			depth--
			if depth > 0 {
				buf.WriteString("</")
				buf.WriteString(qualify(tt.Name))
				buf.WriteString(">")
			}
		case xml.CharData:
			_ = xml.EscapeText(stringWriter{&buf}, tt)
		}
	}

	raw.Inner = buf.String()
	return raw, nil
}

// encodeAs encodes v as an element with the given prefixed name.
func encodeAs(e *xml.Encoder, v any, name string) error {
	return e.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: name}})
}

// encodeRaw encodes a preserved element if present.
func encodeRaw(e *xml.Encoder, raw *RawXMLElement) error {
	if raw == nil {
		return nil
	}
	return raw.MarshalXML(e, xml.StartElement{})
}
