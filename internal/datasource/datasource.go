// Package datasource loads data contexts for templates from JSON, YAML and
// XLSX files.
package datasource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/benjaminschreck/go-docfill/pkg/docfill"
	"gopkg.in/yaml.v3"
)

// Format identifies a data file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file extensions with no loader.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// ParseFormat accepts a format name or file extension, with or without the
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file name.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Load reads the data file at path.
func Load(path string) (docfill.Data, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	data, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	docfill.GetLogger().WithFields(docfill.Fields{
		"source": path,
		"format": string(format),
	}).Debug("loaded %d top-level keys", len(data))
	return data, nil
}

// Decode reads a data context in the given format from r.
func Decode(r io.Reader, format Format) (docfill.Data, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r)
	case FormatYAML:
		return decodeYAML(r)
	case FormatXLSX:
		return decodeXLSX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// decodeJSON keeps numbers as json.Number so integers print without a
// decimal point.
func decodeJSON(r io.Reader) (docfill.Data, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return asData(root)
}

func decodeYAML(r io.Reader) (docfill.Data, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return docfill.Data{}, nil
	}

	var root interface{}
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return asData(normalize(root))
}

func asData(root interface{}) (docfill.Data, error) {
	switch v := root.(type) {
	case nil:
		return docfill.Data{}, nil
	case map[string]interface{}:
		return docfill.Data(v), nil
	}
	return nil, fmt.Errorf("top-level value must be a mapping, got %T", root)
}

// normalize converts the map[interface{}]interface{} values YAML produces for
// non-string keys into string-keyed maps.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []interface{}:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}
