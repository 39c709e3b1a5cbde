package docfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
)

// Part names inside a DOCX package.
const (
	DocumentPartName = "word/document.xml"
)

var headerFooterPattern = regexp.MustCompile(`^word/(header|footer)\d+\.xml$`)

// IsHeaderFooterPart reports whether name is a header or footer part.
func IsHeaderFooterPart(name string) bool {
	return headerFooterPattern.MatchString(name)
}

// DocxReader handles reading a DOCX package
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// NewDocxReader opens a DOCX package. It fails unless the package has a main
// document part.
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	if _, ok := dr.Parts[DocumentPartName]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", DocumentPartName)
	}

	return dr, nil
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", partName, err)
	}

	return content, nil
}

// HeaderFooterParts returns the names of the header and footer parts, sorted.
func (dr *DocxReader) HeaderFooterParts() []string {
	var names []string
	for name := range dr.Parts {
		if IsHeaderFooterPart(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// WritePackage writes a copy of the package to w, using replaced content for
// the parts named in replaced. Every other part is copied unchanged, in the
// original order.
func (dr *DocxReader) WritePackage(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)

	for _, file := range dr.reader.File {
		content, ok := replaced[file.Name]
		if !ok {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return nil
}

// readDocx reads a whole package from r.
func readDocx(r io.Reader) (*DocxReader, error) {
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		return nil, NewDocumentError("read", "", err)
	}

	dr, err := NewDocxReader(bytes.NewReader(buf.Bytes()), size)
	if err != nil {
		return nil, NewDocumentError("parse", "DOCX", err)
	}
	return dr, nil
}
