package normalize

import (
	"strings"

	"ddlsync/internal/ast"
)

// StatementKind classifies a top-level statement node.
type StatementKind int

const (
	OtherStatement StatementKind = iota
	CreateTable
	AlterTable
)

// Classify detects CREATE TABLE and ALTER TABLE in every grammar's shape and
// returns the statement body with any wrapper removed.
func Classify(n ast.Node) (StatementKind, ast.Node) {
	if n == nil {
		return OtherStatement, nil
	}
	if body, ok := ast.Object(n, "CreateStmt"); ok {
		return CreateTable, body
	}
	if body, ok := ast.Object(n, "AlterTableStmt"); ok {
		if objType, ok := ast.String(body, "objtype"); ok && objType != "OBJECT_TABLE" {
			return OtherStatement, body
		}
		return AlterTable, body
	}
	typ, _ := ast.String(n, "type")
	keyword, _ := ast.String(n, "keyword")
	switch {
	case strings.EqualFold(typ, "create") && strings.EqualFold(keyword, "table"):
		return CreateTable, n
	case strings.EqualFold(typ, "alter"):
		return AlterTable, n
	}
	if s, _ := ast.String(n, "statement"); s == "create_table" {
		return CreateTable, n
	}
	return OtherStatement, n
}

var tableNameExtractors = []ast.Extractor[string]{
	func(n ast.Node) (string, bool) { return ast.String(n, "table", 0, "table") },
	func(n ast.Node) (string, bool) { return ast.String(n, "table") },
	func(n ast.Node) (string, bool) { return ast.String(n, "relation", "relname") },
	func(n ast.Node) (string, bool) { return ast.String(n, "name") },
}

// TableName returns the unqualified table name of a statement body.
func TableName(body ast.Node) (string, bool) {
	return ast.First(body, tableNameExtractors...)
}

// ColumnNodes returns the column definition nodes of a CREATE TABLE body.
func ColumnNodes(body ast.Node) []ast.Node {
	var out []ast.Node
	for _, n := range ast.Objects(body, "create_definitions") {
		if r, _ := ast.String(n, "resource"); r == "column" {
			out = append(out, n)
		}
	}
	for _, n := range ast.Objects(body, "tableElts") {
		if def, ok := ast.Object(n, "ColumnDef"); ok {
			out = append(out, def)
		}
	}
	out = append(out, ast.Objects(body, "columns")...)
	return out
}

// AlterConstraints returns the constraints added by an ALTER TABLE body.
func AlterConstraints(body ast.Node) []*Constraint {
	var out []*Constraint
	for _, n := range ast.Objects(body, "expr") {
		action, _ := ast.String(n, "action")
		def, ok := ast.Object(n, "create_definitions")
		if ok && strings.EqualFold(action, "add") {
			out = append(out, NormalizeConstraint(def))
		}
	}
	for _, n := range ast.Objects(body, "cmds") {
		n = ast.Unwrap(n, "AlterTableCmd")
		subtype, _ := ast.String(n, "subtype")
		def, ok := ast.Object(n, "def")
		if ok && subtype == "AT_AddConstraint" {
			out = append(out, NormalizeConstraint(def))
		}
	}
	return out
}
