// Package document reads and writes schema documents. A document carries the
// schema together with its dialect and, optionally, the SQL it was extracted
// from so a later edit can be reconciled against it.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ddlsync/internal/core"
)

// Format is a document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// UnsupportedFormatError is returned for a path or format name outside the
// known encodings.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("document: unsupported format %q; use .toml, .json, .yaml or .yml", e.Name)
}

// Document is the on-disk form of a schema.
type Document struct {
	Dialect   core.Dialect     `json:"dialect" toml:"dialect" yaml:"dialect"`
	Source    string           `json:"source,omitempty" toml:"source,omitempty" yaml:"source,omitempty"`
	Tables    []*core.Table    `json:"tables" toml:"tables" yaml:"tables"`
	Relations []*core.Relation `json:"relations" toml:"relations" yaml:"relations"`
}

// New wraps schema into a document.
func New(d core.Dialect, source string, schema *core.Schema) *Document {
	doc := &Document{Dialect: d, Source: source, Tables: []*core.Table{}, Relations: []*core.Relation{}}
	if schema != nil {
		doc.Tables = append(doc.Tables, schema.Tables...)
		doc.Relations = append(doc.Relations, schema.Relations...)
	}
	return doc
}

// Schema returns the document's schema. The slices are shared.
func (d *Document) Schema() *core.Schema {
	return &core.Schema{Tables: d.Tables, Relations: d.Relations}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &UnsupportedFormatError{Name: ext}
	}
}

// ParseFormat resolves a format name such as "yml".
func ParseFormat(name string) (Format, error) {
	return FormatFromPath("." + strings.TrimPrefix(strings.TrimSpace(name), "."))
}

// Load reads the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open file %q: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%w (file %q)", err, path)
	}
	return doc, nil
}

// Save writes doc to path, creating parent directories as needed.
func Save(path string, doc *Document) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, doc); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("document: create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("document: write file %q: %w", path, err)
	}
	return nil
}

// Decode reads one document and checks its dialect and structure.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	default:
		return nil, &UnsupportedFormatError{Name: string(format)}
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("document: decode %s: %w", format, err)
	}

	if doc.Dialect != "" {
		d, err := core.ParseDialect(string(doc.Dialect))
		if err != nil {
			return nil, fmt.Errorf("document: %w", err)
		}
		doc.Dialect = d
	}
	if doc.Tables == nil {
		doc.Tables = []*core.Table{}
	}
	if doc.Relations == nil {
		doc.Relations = []*core.Relation{}
	}
	if err := doc.Schema().Validate(); err != nil {
		return nil, fmt.Errorf("document: invalid schema: %w", err)
	}
	return &doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, format Format, doc *Document) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(doc); err == nil {
			err = enc.Close()
		}
	default:
		return &UnsupportedFormatError{Name: string(format)}
	}
	if err != nil {
		return fmt.Errorf("document: encode %s: %w", format, err)
	}
	return nil
}
