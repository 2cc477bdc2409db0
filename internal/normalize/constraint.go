package normalize

import (
	"strings"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
)

// ConstraintKind classifies a table-level constraint.
type ConstraintKind string

const (
	PrimaryKey ConstraintKind = "PRIMARY KEY"
	ForeignKey ConstraintKind = "FOREIGN KEY"
	Unique     ConstraintKind = "UNIQUE"
	Check      ConstraintKind = "CHECK"
	Index      ConstraintKind = "INDEX"
	Unknown    ConstraintKind = "UNKNOWN"
)

// Reference is the target side of a foreign key.
type Reference struct {
	Table    string
	Columns  []string
	OnDelete core.ReferentialAction
	OnUpdate core.ReferentialAction
}

// Constraint is a canonical table-level constraint. Reference is set for
// foreign keys only.
type Constraint struct {
	Kind      ConstraintKind
	Name      string
	Columns   []string
	Reference *Reference
	Extra     map[string]any
}

var recognizedConstraintKeys = map[string]bool{
	"resource":             true,
	"constraint_type":      true,
	"contype":              true,
	"type":                 true,
	"constraint":           true,
	"conname":              true,
	"name":                 true,
	"definition":           true,
	"keys":                 true,
	"columns":              true,
	"fk_attrs":             true,
	"reference_definition": true,
	"references":           true,
	"pktable":              true,
	"pk_attrs":             true,
	"on_action":            true,
	"on_delete":            true,
	"on_update":            true,
	"fk_del_action":        true,
	"fk_upd_action":        true,
}

var constraintColumnExtractors = []ast.Extractor[[]string]{
	nameList("definition"),
	nameList("columns"),
	nameList("keys"),
	nameList("fk_attrs"),
}

var constraintNameExtractors = []ast.Extractor[string]{
	func(n ast.Node) (string, bool) { return ast.String(n, "constraint") },
	func(n ast.Node) (string, bool) { return ast.String(n, "conname") },
	func(n ast.Node) (string, bool) { return ast.String(n, "name") },
}

// classify maps a constraint tag onto a kind. PRIMARY is tested before KEY
// so "primary key" is not taken for an index.
func classify(tag string) ConstraintKind {
	t := compact(tag)
	switch {
	case strings.Contains(t, "PRIMARY"):
		return PrimaryKey
	case strings.Contains(t, "FOREIGN"), strings.Contains(t, "REFERENCES"):
		return ForeignKey
	case strings.Contains(t, "UNIQUE"):
		return Unique
	case strings.Contains(t, "CHECK"):
		return Check
	case strings.Contains(t, "INDEX"), strings.Contains(t, "KEY"):
		return Index
	default:
		return Unknown
	}
}

// NormalizeConstraint converts one table-level constraint node.
func NormalizeConstraint(n ast.Node) *Constraint {
	n = ast.Unwrap(n, "Constraint")
	c := &Constraint{Kind: classify(tagOf(n))}
	c.Name, _ = ast.First(n, constraintNameExtractors...)
	if c.Kind != Check {
		c.Columns, _ = ast.First(n, constraintColumnExtractors...)
	}
	if c.Kind == ForeignKey {
		c.Reference = NormalizeReference(n)
	}
	for k, v := range n {
		if recognizedConstraintKeys[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return c
}

// isColumnNode reports column definitions that some grammars list next to
// table constraints.
func isColumnNode(n ast.Node) bool {
	if r, _ := ast.String(n, "resource"); r == "column" {
		return true
	}
	if _, ok := n["ColumnDef"]; ok {
		return true
	}
	_, ok := n["colname"]
	return ok
}

// NormalizeTableConstraints collects the table-level constraints of a CREATE
// TABLE body from every location a grammar may put them.
func NormalizeTableConstraints(stmt ast.Node) []*Constraint {
	var out []*Constraint
	for _, key := range []string{"create_definitions", "tableElts", "constraints"} {
		for _, n := range ast.Objects(stmt, key) {
			if isColumnNode(n) {
				continue
			}
			out = append(out, NormalizeConstraint(n))
		}
	}
	return out
}

// referenceTargets locates the object holding the referenced table, which is
// nested in some grammars and flat in others.
var referenceTargets = []ast.Extractor[ast.Node]{
	func(n ast.Node) (ast.Node, bool) { return ast.Object(n, "reference_definition") },
	func(n ast.Node) (ast.Node, bool) { return ast.Object(n, "references") },
	func(n ast.Node) (ast.Node, bool) { return n, true },
}

var referenceTableExtractors = []ast.Extractor[string]{
	func(n ast.Node) (string, bool) { return ast.String(n, "table", 0, "table") },
	func(n ast.Node) (string, bool) { return ast.String(n, "table") },
	func(n ast.Node) (string, bool) { return ast.String(n, "pktable", "relname") },
}

var referenceColumnExtractors = []ast.Extractor[[]string]{
	nameList("definition"),
	nameList("columns"),
	nameList("pk_attrs"),
}

// NormalizeReference reads a foreign-key target from a constraint or a
// reference node. It returns nil when no target table is present.
func NormalizeReference(n ast.Node) *Reference {
	target, _ := ast.First(n, referenceTargets...)
	table, ok := ast.First(target, referenceTableExtractors...)
	if !ok {
		table, ok = ast.First(n, referenceTableExtractors...)
		if !ok {
			return nil
		}
		target = n
	}
	ref := &Reference{Table: table, OnDelete: core.NoAction, OnUpdate: core.NoAction}
	ref.Columns, _ = ast.First(target, referenceColumnExtractors...)
	if !readActionList(target, ref) && !readActionList(n, ref) {
		readFlatActions(target, ref)
		readFlatActions(n, ref)
	}
	return ref
}

// readActionList reads [{"type": "on delete", "value": "CASCADE"}, ...].
func readActionList(n ast.Node, ref *Reference) bool {
	actions := ast.Objects(n, "on_action")
	for _, a := range actions {
		tag, _ := ast.String(a, "type")
		value, _ := ast.String(a, "value")
		switch compact(tag) {
		case "ONDELETE":
			ref.OnDelete = core.ParseReferentialAction(value)
		case "ONUPDATE":
			ref.OnUpdate = core.ParseReferentialAction(value)
		}
	}
	return len(actions) > 0
}

func readFlatActions(n ast.Node, ref *Reference) {
	if s, ok := ast.String(n, "on_delete"); ok {
		ref.OnDelete = core.ParseReferentialAction(s)
	}
	if s, ok := ast.String(n, "on_update"); ok {
		ref.OnUpdate = core.ParseReferentialAction(s)
	}
	if s, ok := ast.String(n, "fk_del_action"); ok {
		ref.OnDelete = actionCode(s)
	}
	if s, ok := ast.String(n, "fk_upd_action"); ok {
		ref.OnUpdate = actionCode(s)
	}
}

// actionCode maps the single-letter action codes of the PostgreSQL catalog.
// SET DEFAULT has no equivalent and becomes NO ACTION.
func actionCode(code string) core.ReferentialAction {
	switch code {
	case "c":
		return core.Cascade
	case "n":
		return core.SetNull
	case "r":
		return core.Restrict
	default:
		return core.NoAction
	}
}
