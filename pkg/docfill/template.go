package docfill

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/mitchellh/copystructure"

	"github.com/benjaminschreck/go-docfill/pkg/docfill/render"
	"github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

// PreparedTemplate is a parsed DOCX template ready for rendering. The parsed
// tree is never modified: each Render works on its own copy, so a template may
// be rendered from several goroutines at once.
type PreparedTemplate struct {
	docx     *DocxReader
	document *xml.Document
	parts    map[string]*xml.Part
	tables   *TableFiller
	log      *Logger

	mu     sync.RWMutex
	closed bool
}

// PlaceholderInfo describes one ${...} span found in a template.
type PlaceholderInfo struct {
	Part     string
	Location string
	Body     string
}

func prepare(r io.Reader, tables *TableFiller, log *Logger) (*PreparedTemplate, error) {
	docx, err := readDocx(r)
	if err != nil {
		return nil, err
	}

	content, err := docx.GetPart(DocumentPartName)
	if err != nil {
		return nil, NewDocumentError("extract", DocumentPartName, err)
	}
	doc, err := xml.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, NewDocumentError("parse", DocumentPartName, err)
	}

	parts := make(map[string]*xml.Part)
	for _, name := range docx.HeaderFooterParts() {
		content, err := docx.GetPart(name)
		if err != nil {
			return nil, NewDocumentError("extract", name, err)
		}
		part, err := xml.ParsePart(bytes.NewReader(content))
		if err != nil {
			return nil, NewDocumentError("parse", name, err)
		}
		parts[name] = part
	}

	log.WithField("parts", len(parts)+1).Debug("template prepared")
	return &PreparedTemplate{
		docx:     docx,
		document: doc,
		parts:    parts,
		tables:   tables,
		log:      log,
	}, nil
}

// Render fills the template with data and returns the resulting DOCX
// package. Placeholder problems never fail a render; only package and XML
// errors are returned.
//
// Example:
//
//	output, err := tmpl.Render(docfill.Data{
//	    "user": map[string]interface{}{"name": "Ann", "age": 30},
//	})
func (pt *PreparedTemplate) Render(data Data) (io.Reader, error) {
	var buf bytes.Buffer
	if err := pt.RenderTo(&buf, data); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// RenderTo is Render writing the package to w.
func (pt *PreparedTemplate) RenderTo(w io.Writer, data Data) error {
	if pt == nil || pt.document == nil {
		return NewTemplateError("invalid or nil template", "", "")
	}

	pt.mu.RLock()
	defer pt.mu.RUnlock()
	if pt.closed {
		return NewTemplateError("template is closed", "", "")
	}

	if data == nil {
		data = Data{}
	}

	requestID := uuid.NewString()
	log := pt.log.WithField("request_id", requestID)
	log.Debug("rendering template")
	tables := pt.tables.WithLogger(log)

	replaced := make(map[string][]byte, len(pt.parts)+1)

	doc, err := deepCopy(pt.document)
	if err != nil {
		return WithContext(err, "copying document", map[string]interface{}{"request_id": requestID})
	}
	if doc.Body != nil {
		if err := tables.FillElements(doc.Body.Elements, data); err != nil {
			return WithContext(err, "filling document", map[string]interface{}{"request_id": requestID})
		}
	}
	content, err := xml.MarshalDocument(doc)
	if err != nil {
		return NewDocumentError("marshal", DocumentPartName, err)
	}
	replaced[DocumentPartName] = content

	for name, original := range pt.parts {
		part, err := deepCopy(original)
		if err != nil {
			return WithContext(err, "copying part", map[string]interface{}{"part": name, "request_id": requestID})
		}
		if err := tables.FillElements(part.Elements, data); err != nil {
			return WithContext(err, "filling part", map[string]interface{}{"part": name, "request_id": requestID})
		}
		content, err := xml.MarshalPart(part)
		if err != nil {
			return NewDocumentError("marshal", name, err)
		}
		replaced[name] = content
	}

	if err := pt.docx.WritePackage(w, replaced); err != nil {
		return NewDocumentError("write", "DOCX", err)
	}

	log.Debug("template rendered")
	return nil
}

// Placeholders lists every ${...} span of the template, block markers
// included, in document order: body first, then headers and footers by part
// name.
func (pt *PreparedTemplate) Placeholders() []PlaceholderInfo {
	var out []PlaceholderInfo
	collect := func(part string, elements []xml.BodyElement) {
		render.WalkParagraphs(elements, func(para *xml.Paragraph, location string) {
			for _, body := range Placeholders(para.GetText()) {
				out = append(out, PlaceholderInfo{Part: part, Location: location, Body: body})
			}
		})
	}

	if pt.document.Body != nil {
		collect(DocumentPartName, pt.document.Body.Elements)
	}
	for _, name := range pt.docx.HeaderFooterParts() {
		if part, ok := pt.parts[name]; ok {
			collect(name, part.Elements)
		}
	}
	return out
}

// Close releases the template. Rendering a closed template fails.
func (pt *PreparedTemplate) Close() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.closed = true
	return nil
}

func deepCopy[T any](v *T) (*T, error) {
	copied, err := copystructure.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %T: %w", v, err)
	}
	return copied.(*T), nil
}
