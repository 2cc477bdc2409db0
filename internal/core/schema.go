// Package core contains the dialect-neutral schema model shared by the SQL
// parser, the generator and the reconciler. It provides tables, columns and
// relations together with the type catalog used to move between dialects.
package core

import (
	"fmt"
	"slices"
	"strings"
)

// Dialect identifies a supported SQL dialect.
type Dialect string

const (
	DialectPostgreSQL Dialect = "PostgreSQL"
	DialectMySQL      Dialect = "MySQL"
	DialectSQLite     Dialect = "SQLite"
)

// SupportedDialects returns a slice of all supported dialect values.
func SupportedDialects() []Dialect {
	return []Dialect{
		DialectPostgreSQL,
		DialectMySQL,
		DialectSQLite,
	}
}

var dialectAliases = map[string]Dialect{
	"postgresql": DialectPostgreSQL,
	"postgres":   DialectPostgreSQL,
	"pg":         DialectPostgreSQL,
	"mysql":      DialectMySQL,
	"sqlite":     DialectSQLite,
	"sqlite3":    DialectSQLite,
}

// ParseDialect resolves a dialect name case-insensitively. Unknown names fail
// with an *UnsupportedDialectError instead of falling back to a default.
func ParseDialect(name string) (Dialect, error) {
	if d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return "", &UnsupportedDialectError{Name: name}
}

// IsValidDialect reports whether d is a recognized dialect string.
func IsValidDialect(d string) bool {
	_, err := ParseDialect(d)
	return err == nil
}

// UnsupportedDialectError is returned for a dialect outside the closed set.
type UnsupportedDialectError struct {
	Name string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect %q; supported dialects: %v", e.Name, SupportedDialects())
}

// Schema is the full dialect-neutral model: tables in declaration order plus
// the foreign-key relations between their columns.
type Schema struct {
	Tables    []*Table    `json:"tables" toml:"tables" yaml:"tables"`
	Relations []*Relation `json:"relations" toml:"relations" yaml:"relations"`
}

// Position is canvas placement owned by the presentation layer.
type Position struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
}

// Table represents a table in the schema. Position, Color and ParentID are
// carried opaquely; nothing in this module interprets them.
type Table struct {
	ID       string    `json:"id" toml:"id" yaml:"id"`
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Columns  []*Column `json:"columns" toml:"columns" yaml:"columns"`
	Position Position  `json:"position" toml:"position" yaml:"position"`
	Color    string    `json:"color,omitempty" toml:"color,omitempty" yaml:"color,omitempty"`
	ParentID string    `json:"parentId,omitempty" toml:"parent_id,omitempty" yaml:"parentId,omitempty"`
}

// Column represents a column in a table.
type Column struct {
	ID         string     `json:"id" toml:"id" yaml:"id"`
	Name       string     `json:"name" toml:"name" yaml:"name"`
	Type       ColumnType `json:"type" toml:"type" yaml:"type"`
	Length     *int       `json:"length,omitempty" toml:"length,omitempty" yaml:"length,omitempty"`
	Precision  *int       `json:"precision,omitempty" toml:"precision,omitempty" yaml:"precision,omitempty"`
	Scale      *int       `json:"scale,omitempty" toml:"scale,omitempty" yaml:"scale,omitempty"`
	Dimension  *int       `json:"dimension,omitempty" toml:"dimension,omitempty" yaml:"dimension,omitempty"`
	PrimaryKey bool       `json:"primaryKey" toml:"primary_key" yaml:"primaryKey"`
	Nullable   bool       `json:"nullable" toml:"nullable" yaml:"nullable"`
	Unique     bool       `json:"unique" toml:"unique" yaml:"unique"`
	Default    *string    `json:"default,omitempty" toml:"default,omitempty" yaml:"default,omitempty"`
}

// Cardinality is structural metadata on a relation. It is never enforced.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

// ReferentialAction is the ON DELETE / ON UPDATE behavior of a foreign key.
type ReferentialAction string

const (
	NoAction ReferentialAction = "NO ACTION"
	Cascade  ReferentialAction = "CASCADE"
	SetNull  ReferentialAction = "SET NULL"
	Restrict ReferentialAction = "RESTRICT"
)

// ParseReferentialAction maps free-form action text onto the closed set.
// Unrecognized text falls back to NoAction.
func ParseReferentialAction(s string) ReferentialAction {
	compact := strings.NewReplacer(" ", "", "_", "").Replace(strings.ToUpper(strings.TrimSpace(s)))
	switch compact {
	case "CASCADE":
		return Cascade
	case "SETNULL":
		return SetNull
	case "RESTRICT":
		return Restrict
	default:
		return NoAction
	}
}

// Relation is a single-column foreign key between two tables.
type Relation struct {
	ID             string            `json:"id" toml:"id" yaml:"id"`
	SourceTableID  string            `json:"sourceTableId" toml:"source_table_id" yaml:"sourceTableId"`
	SourceColumnID string            `json:"sourceColumnId" toml:"source_column_id" yaml:"sourceColumnId"`
	TargetTableID  string            `json:"targetTableId" toml:"target_table_id" yaml:"targetTableId"`
	TargetColumnID string            `json:"targetColumnId" toml:"target_column_id" yaml:"targetColumnId"`
	Cardinality    Cardinality       `json:"cardinality" toml:"cardinality" yaml:"cardinality"`
	OnDelete       ReferentialAction `json:"onDelete" toml:"on_delete" yaml:"onDelete"`
	OnUpdate       ReferentialAction `json:"onUpdate" toml:"on_update" yaml:"onUpdate"`
}

// Connects reports whether r joins the two columns in either direction.
func (r *Relation) Connects(columnA, columnB string) bool {
	return (r.SourceColumnID == columnA && r.TargetColumnID == columnB) ||
		(r.SourceColumnID == columnB && r.TargetColumnID == columnA)
}

// FindTable returns the table with the given name (case-insensitive) or nil.
func (s *Schema) FindTable(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// TableByID returns the table carrying id or nil.
func (s *Schema) TableByID(id string) *Table {
	for _, t := range s.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TableNames returns table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// HasRelation reports whether a relation already connects the two columns,
// in either direction.
func (s *Schema) HasRelation(columnA, columnB string) bool {
	return slices.ContainsFunc(s.Relations, func(r *Relation) bool {
		return r.Connects(columnA, columnB)
	})
}

// AddRelation appends r unless the same column pair is already connected.
// A duplicate returns nil so callers can warn instead of failing.
func (s *Schema) AddRelation(r *Relation) *Relation {
	if r == nil || s.HasRelation(r.SourceColumnID, r.TargetColumnID) {
		return nil
	}
	if r.Cardinality == "" {
		r.Cardinality = OneToMany
	}
	if r.OnDelete == "" {
		r.OnDelete = NoAction
	}
	if r.OnUpdate == "" {
		r.OnUpdate = NoAction
	}
	s.Relations = append(s.Relations, r)
	return r
}

// RemoveTable drops the table and every relation touching it.
func (s *Schema) RemoveTable(id string) bool {
	idx := slices.IndexFunc(s.Tables, func(t *Table) bool { return t.ID == id })
	if idx < 0 {
		return false
	}
	s.Tables = slices.Delete(s.Tables, idx, idx+1)
	s.Relations = slices.DeleteFunc(s.Relations, func(r *Relation) bool {
		return r.SourceTableID == id || r.TargetTableID == id
	})
	return true
}

// ResolveRelation returns both endpoints of r, or ok=false when any of them
// is missing from the schema.
func (s *Schema) ResolveRelation(r *Relation) (src *Table, srcCol *Column, dst *Table, dstCol *Column, ok bool) {
	src = s.TableByID(r.SourceTableID)
	dst = s.TableByID(r.TargetTableID)
	if src == nil || dst == nil {
		return nil, nil, nil, nil, false
	}
	srcCol = src.ColumnByID(r.SourceColumnID)
	dstCol = dst.ColumnByID(r.TargetColumnID)
	if srcCol == nil || dstCol == nil {
		return nil, nil, nil, nil, false
	}
	return src, srcCol, dst, dstCol, true
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		Tables:    make([]*Table, 0, len(s.Tables)),
		Relations: make([]*Relation, 0, len(s.Relations)),
	}
	for _, t := range s.Tables {
		out.Tables = append(out.Tables, t.Clone())
	}
	for _, r := range s.Relations {
		rc := *r
		out.Relations = append(out.Relations, &rc)
	}
	return out
}

// FindColumn returns the column with the given name (case-insensitive) or nil.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ColumnByID returns the column carrying id or nil.
func (t *Table) ColumnByID(id string) *Column {
	for _, c := range t.Columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the key columns in column order.
func (t *Table) PrimaryKeyColumns() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// SortColumns moves primary-key columns to the front, keeping relative order
// otherwise.
func (t *Table) SortColumns() {
	slices.SortStableFunc(t.Columns, func(a, b *Column) int {
		switch {
		case a.PrimaryKey == b.PrimaryKey:
			return 0
		case a.PrimaryKey:
			return -1
		default:
			return 1
		}
	})
}

// Clone returns a deep copy of the table and its columns.
func (t *Table) Clone() *Table {
	out := *t
	out.Columns = make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.Clone())
	}
	return &out
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	out := *c
	out.Length = cloneInt(c.Length)
	out.Precision = cloneInt(c.Precision)
	out.Scale = cloneInt(c.Scale)
	out.Dimension = cloneInt(c.Dimension)
	if c.Default != nil {
		d := *c.Default
		out.Default = &d
	}
	return &out
}

// SetPrimaryKey marks the column as part of the primary key, which also
// makes it NOT NULL and UNIQUE.
func (c *Column) SetPrimaryKey() {
	c.PrimaryKey = true
	c.Nullable = false
	c.Unique = true
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IntPtr is a small helper for optional column parameters.
func IntPtr(v int) *int {
	return &v
}

// StringPtr is a small helper for optional defaults.
func StringPtr(s string) *string {
	return &s
}
