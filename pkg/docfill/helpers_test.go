package docfill

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	docxml "github.com/benjaminschreck/go-docfill/pkg/docfill/xml"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

// escapeText escapes s for use as element content.
func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// para builds a paragraph with one plain run per text.
func para(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, text := range texts {
		sb.WriteString(`<w:r><w:t xml:space="preserve">` + escapeText(text) + `</w:t></w:r>`)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// boldPara builds a paragraph whose first run is bold.
func boldPara(first string, rest ...string) string {
	var sb strings.Builder
	sb.WriteString(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">` + escapeText(first) + `</w:t></w:r>`)
	for _, text := range rest {
		sb.WriteString(`<w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve">` + escapeText(text) + `</w:t></w:r>`)
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// table builds a table with one single-paragraph cell per string.
func table(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr><w:tblGrid><w:gridCol w:w="3000"/><w:gridCol w:w="3000"/></w:tblGrid>`)
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString(`<w:tc><w:tcPr><w:tcW w:w="3000" w:type="dxa"/></w:tcPr>` + boldPara(cell) + `</w:tc>`)
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wordNS + `><w:body>` + body + `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
}

func headerXML(root, body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:` + root + ` ` + wordNS + `>` + body + `</w:` + root + `>`
}

// createDOCXBytes creates a DOCX package with the given body and extra parts.
func createDOCXBytes(t *testing.T, body string, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`},
		{DocumentPartName, documentXML(body)},
	}
	for name, content := range parts {
		files = append(files, struct{ name, content string }{name, content})
	}

	for _, f := range files {
		fw, err := w.Create(f.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// readParts returns every part of a rendered package.
func readParts(t *testing.T, r io.Reader) map[string][]byte {
	t.Helper()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	parts := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[f.Name] = data
	}
	return parts
}

// renderBody renders a template built from body and returns the parsed
// result document.
func renderBody(t *testing.T, body string, data Data) *docxml.Document {
	t.Helper()

	tmpl, err := New(WithConfig(DefaultConfig())).Prepare(bytes.NewReader(createDOCXBytes(t, body, nil)))
	require.NoError(t, err)
	out, err := tmpl.Render(data)
	require.NoError(t, err)

	doc, err := docxml.ParseDocument(bytes.NewReader(readParts(t, out)[DocumentPartName]))
	require.NoError(t, err)
	return doc
}

// parseBody parses body into block elements.
func parseBody(t *testing.T, body string) []docxml.BodyElement {
	t.Helper()
	doc, err := docxml.ParseDocument(strings.NewReader(documentXML(body)))
	require.NoError(t, err)
	return doc.Body.Elements
}

// paragraphTexts returns the text of every top-level paragraph.
func paragraphTexts(elements []docxml.BodyElement) []string {
	var texts []string
	for _, elem := range elements {
		if p, ok := elem.(*docxml.Paragraph); ok {
			texts = append(texts, p.GetText())
		}
	}
	return texts
}

// tables returns the top-level tables.
func tables(elements []docxml.BodyElement) []*docxml.Table {
	var out []*docxml.Table
	for _, elem := range elements {
		if tbl, ok := elem.(*docxml.Table); ok {
			out = append(out, tbl)
		}
	}
	return out
}

// rowTexts returns the cell texts of each row.
func rowTexts(tbl *docxml.Table) [][]string {
	out := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		for _, cell := range row.Cells {
			out[i] = append(out[i], cell.GetText())
		}
	}
	return out
}

// testChain returns the default chain with default resolver and formatter.
func testChain() *Chain {
	return NewDefaultChain(DefaultResolver(), NewFormatter("en"))
}
