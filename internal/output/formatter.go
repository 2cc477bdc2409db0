// Package output renders CLI results. It is extendable and for now provides
// three formats: human, JSON and YAML.
package output

import (
	"fmt"
	"strings"

	"ddlsync/internal/core"
	"ddlsync/internal/extract"
	"ddlsync/internal/reconcile"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter renders the results of the CLI commands.
type Formatter interface {
	FormatParse(extract.Result) (string, error)
	FormatValidation(extract.Validation) (string, error)
	FormatReconcile(*reconcile.Result) (string, error)
	FormatTypes(core.Dialect, []core.ColumnType) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to human format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman, "text":
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatYAML, "yml":
		return yamlFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human', 'json', or 'yaml'", name)
	}
}

// IsMachineReadable reports whether name selects a structured format whose
// stdout must not be mixed with informational lines.
func IsMachineReadable(name string) bool {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatJSON, FormatYAML, "yml":
		return true
	default:
		return false
	}
}

// ErrorLocation renders a positioned error as line:column: message.
func ErrorLocation(e extract.Error) string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type parseSummary struct {
	Tables    int `json:"tables" yaml:"tables"`
	Columns   int `json:"columns" yaml:"columns"`
	Relations int `json:"relations" yaml:"relations"`
	Errors    int `json:"errors" yaml:"errors"`
}

type parsePayload struct {
	Format    string           `json:"format" yaml:"format"`
	Success   bool             `json:"success" yaml:"success"`
	Summary   parseSummary     `json:"summary" yaml:"summary"`
	Tables    []*core.Table    `json:"tables" yaml:"tables"`
	Relations []*core.Relation `json:"relations" yaml:"relations"`
	Errors    []extract.Error  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type validationPayload struct {
	Format string          `json:"format" yaml:"format"`
	Valid  bool            `json:"valid" yaml:"valid"`
	Errors []extract.Error `json:"errors,omitempty" yaml:"errors,omitempty"`
}

type reconcileSummary struct {
	Tables        int `json:"tables" yaml:"tables"`
	Renamed       int `json:"renamed" yaml:"renamed"`
	AddedTables   int `json:"addedTables" yaml:"addedTables"`
	RemovedTables int `json:"removedTables" yaml:"removedTables"`
	Relations     int `json:"relations" yaml:"relations"`
}

type reconcilePayload struct {
	Format        string                  `json:"format" yaml:"format"`
	Summary       reconcileSummary        `json:"summary" yaml:"summary"`
	Renamed       []reconcile.TableRename `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	AddedTables   []string                `json:"addedTables,omitempty" yaml:"addedTables,omitempty"`
	RemovedTables []string                `json:"removedTables,omitempty" yaml:"removedTables,omitempty"`
	Schema        *core.Schema            `json:"schema" yaml:"schema"`
}

type typeEntry struct {
	Type     core.ColumnType `json:"type" yaml:"type"`
	Spelling string          `json:"spelling" yaml:"spelling"`
}

type typesPayload struct {
	Format  string       `json:"format" yaml:"format"`
	Dialect core.Dialect `json:"dialect" yaml:"dialect"`
	Types   []typeEntry  `json:"types" yaml:"types"`
}

// Payload is the set of structured documents the machine formats emit.
type Payload interface {
	parsePayload | validationPayload | reconcilePayload | typesPayload
}

func newParsePayload(f Format, r extract.Result) parsePayload {
	p := parsePayload{
		Format:    string(f),
		Success:   r.Success,
		Tables:    r.Tables,
		Relations: r.Relations,
		Errors:    r.Errors,
	}
	if p.Tables == nil {
		p.Tables = []*core.Table{}
	}
	if p.Relations == nil {
		p.Relations = []*core.Relation{}
	}
	p.Summary = parseSummary{
		Tables:    len(r.Tables),
		Columns:   countColumns(r.Tables),
		Relations: len(r.Relations),
		Errors:    len(r.Errors),
	}
	return p
}

func newReconcilePayload(f Format, r *reconcile.Result) reconcilePayload {
	p := reconcilePayload{Format: string(f), Schema: &core.Schema{Tables: []*core.Table{}, Relations: []*core.Relation{}}}
	if r == nil {
		return p
	}
	if r.Schema != nil {
		p.Schema = r.Schema
	}
	p.Renamed = r.Renamed
	p.AddedTables = r.AddedTables
	p.RemovedTables = r.RemovedTables
	p.Summary = reconcileSummary{
		Tables:        len(p.Schema.Tables),
		Renamed:       len(r.Renamed),
		AddedTables:   len(r.AddedTables),
		RemovedTables: len(r.RemovedTables),
		Relations:     len(p.Schema.Relations),
	}
	return p
}

func newTypesPayload(f Format, d core.Dialect, types []core.ColumnType) typesPayload {
	p := typesPayload{Format: string(f), Dialect: d, Types: make([]typeEntry, 0, len(types))}
	for _, t := range types {
		p.Types = append(p.Types, typeEntry{Type: t, Spelling: core.ToDialectType(&core.Column{Type: t}, d)})
	}
	return p
}

func countColumns(tables []*core.Table) int {
	n := 0
	for _, t := range tables {
		n += len(t.Columns)
	}
	return n
}
