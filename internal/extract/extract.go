// Package extract builds the dialect-neutral schema from DDL text. It runs a
// grammar front-end, normalizes every statement and resolves foreign keys in
// three passes: tables, in-table references, then ALTER TABLE additions.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/normalize"
	"ddlsync/internal/parser"
)

// Error is a positioned extraction failure. Line and Column are 1-based.
type Error struct {
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

// Result is the outcome of one extraction. On failure Tables and Relations
// are empty; no partial schema is returned.
type Result struct {
	Success   bool             `json:"success" yaml:"success"`
	Tables    []*core.Table    `json:"tables" yaml:"tables"`
	Relations []*core.Relation `json:"relations" yaml:"relations"`
	Errors    []Error          `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Schema returns the extracted tables and relations as a schema.
func (r Result) Schema() *core.Schema {
	return &core.Schema{Tables: r.Tables, Relations: r.Relations}
}

// Extractor turns DDL into a schema using one grammar.
type Extractor struct {
	parser parser.Parser
	ids    core.IDGenerator
}

// New returns an extractor. A nil ids selects UUIDs.
func New(p parser.Parser, ids core.IDGenerator) *Extractor {
	if ids == nil {
		ids = core.UUIDGenerator{}
	}
	return &Extractor{parser: p, ids: ids}
}

// ForDialect returns an extractor for a registered grammar.
func ForDialect(d core.Dialect, ids core.IDGenerator) (*Extractor, error) {
	p, err := parser.ForDialect(d)
	if err != nil {
		return nil, err
	}
	return New(p, ids), nil
}

// Extract parses sql and builds the schema. Blank input succeeds with an
// empty schema. Any grammar error aborts the whole extraction.
func (e *Extractor) Extract(sql string) Result {
	if strings.TrimSpace(sql) == "" {
		return emptyResult()
	}
	nodes, err := e.parser.Parse(sql)
	if err != nil {
		return Result{
			Tables:    []*core.Table{},
			Relations: []*core.Relation{},
			Errors:    []Error{positionOf(err)},
		}
	}
	schema := e.Build(nodes)
	return Result{Success: true, Tables: schema.Tables, Relations: schema.Relations}
}

// Validation is the parse outcome without the extracted schema.
type Validation struct {
	Valid  bool    `json:"valid" yaml:"valid"`
	Errors []Error `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Validate reports whether sql parses, with the same error positioning as
// Extract.
func (e *Extractor) Validate(sql string) Validation {
	res := e.Extract(sql)
	return Validation{Valid: res.Success, Errors: res.Errors}
}

func emptyResult() Result {
	return Result{Success: true, Tables: []*core.Table{}, Relations: []*core.Relation{}}
}

// created is a CREATE TABLE that survived pass one.
type created struct {
	table       *core.Table
	columns     []*normalize.Column
	constraints []*normalize.Constraint
}

// Build runs the three resolution passes over already parsed nodes.
func (e *Extractor) Build(nodes []ast.Node) *core.Schema {
	schema := &core.Schema{Tables: []*core.Table{}, Relations: []*core.Relation{}}
	lookup := make(map[string]*core.Table)

	var tables []created
	var alters []ast.Node
	for _, n := range nodes {
		kind, body := normalize.Classify(n)
		switch kind {
		case normalize.CreateTable:
			c, ok := e.buildTable(body)
			if !ok {
				continue
			}
			key := strings.ToLower(c.table.Name)
			if _, dup := lookup[key]; dup {
				continue
			}
			lookup[key] = c.table
			schema.Tables = append(schema.Tables, c.table)
			tables = append(tables, c)
		case normalize.AlterTable:
			alters = append(alters, body)
		}
	}

	for _, c := range tables {
		for _, col := range c.columns {
			if col.Reference != nil {
				e.relate(schema, lookup, c.table, []string{col.Name}, col.Reference)
			}
		}
		for _, con := range c.constraints {
			if con.Kind == normalize.ForeignKey && con.Reference != nil {
				e.relate(schema, lookup, c.table, con.Columns, con.Reference)
			}
		}
	}

	for _, body := range alters {
		name, ok := normalize.TableName(body)
		if !ok {
			continue
		}
		src := lookup[strings.ToLower(name)]
		if src == nil {
			continue
		}
		for _, con := range normalize.AlterConstraints(body) {
			if con.Kind == normalize.ForeignKey && con.Reference != nil {
				e.relate(schema, lookup, src, con.Columns, con.Reference)
			}
		}
	}
	return schema
}

func (e *Extractor) buildTable(body ast.Node) (created, bool) {
	name, ok := normalize.TableName(body)
	if !ok {
		return created{}, false
	}
	table := core.NewTable(e.ids, name)
	c := created{table: table}
	for _, n := range normalize.ColumnNodes(body) {
		def, ok := normalize.NormalizeColumn(n)
		if !ok || table.FindColumn(def.Name) != nil {
			continue
		}
		table.Columns = append(table.Columns, e.column(def))
		c.columns = append(c.columns, def)
	}
	if len(table.Columns) == 0 {
		return created{}, false
	}

	c.constraints = normalize.NormalizeTableConstraints(body)
	for _, con := range c.constraints {
		switch con.Kind {
		case normalize.PrimaryKey:
			for _, colName := range con.Columns {
				if col := table.FindColumn(colName); col != nil {
					col.SetPrimaryKey()
				}
			}
		case normalize.Unique:
			for _, colName := range con.Columns {
				if col := table.FindColumn(colName); col != nil {
					col.Unique = true
				}
			}
		}
	}
	return c, true
}

// column maps a normalized definition onto the model. Auto-increment
// integers fold into their SERIAL variants.
func (e *Extractor) column(def *normalize.Column) *core.Column {
	typ := core.ToColumnType(def.DataType)
	if def.AutoIncrement {
		typ = core.SerialFor(typ)
	}
	col := &core.Column{
		ID:        e.ids.NewID(),
		Name:      def.Name,
		Type:      typ,
		Length:    def.Length,
		Precision: def.Precision,
		Scale:     def.Scale,
		Dimension: def.Dimension,
		Nullable:  !def.NotNull,
		Unique:    def.Unique,
		Default:   def.Default,
	}
	if def.PrimaryKey {
		col.SetPrimaryKey()
	}
	return col
}

// relate records a foreign key from the first source column to the first
// referenced column. A reference without columns targets the single-column
// primary key. Unresolvable or duplicate references are dropped.
func (e *Extractor) relate(schema *core.Schema, lookup map[string]*core.Table, src *core.Table, cols []string, ref *normalize.Reference) {
	if len(cols) == 0 {
		return
	}
	srcCol := src.FindColumn(cols[0])
	dst := lookup[strings.ToLower(ref.Table)]
	if srcCol == nil || dst == nil {
		return
	}
	var dstCol *core.Column
	if len(ref.Columns) > 0 {
		dstCol = dst.FindColumn(ref.Columns[0])
	} else if pks := dst.PrimaryKeyColumns(); len(pks) == 1 {
		dstCol = pks[0]
	}
	if dstCol == nil {
		return
	}
	schema.AddRelation(&core.Relation{
		ID:             e.ids.NewID(),
		SourceTableID:  src.ID,
		SourceColumnID: srcCol.ID,
		TargetTableID:  dst.ID,
		TargetColumnID: dstCol.ID,
		Cardinality:    core.OneToMany,
		OnDelete:       ref.OnDelete,
		OnUpdate:       ref.OnUpdate,
	})
}

var (
	lineRe   = regexp.MustCompile(`(?i)\bline\s+(\d+)`)
	columnRe = regexp.MustCompile(`(?i)\bcolumn\s+(\d+)`)
)

// positionOf locates a grammar error: an explicit location wins, then
// "line N" and "column M" in the message, then 1:1.
func positionOf(err error) Error {
	out := Error{Message: err.Error(), Line: 1, Column: 1}
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		out.Message = se.Message
		if se.HasLocation() {
			out.Line = se.Line
			if se.Column > 0 {
				out.Column = se.Column
			}
			return out
		}
	}
	if m := lineRe.FindStringSubmatch(out.Message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Line = n
		}
	}
	if m := columnRe.FindStringSubmatch(out.Message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			out.Column = n
		}
	}
	return out
}
