// Package normalize turns the loosely shaped column and constraint nodes of
// every grammar front-end into one canonical form. Each fact is read through
// an ordered chain of extractors, one per shape a grammar is known to emit.
package normalize

import (
	"regexp"
	"strings"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
)

// Column is a canonical column definition. DataType is the upper-cased
// dialect type name with parameters and modifiers removed.
type Column struct {
	Name          string
	DataType      string
	Length        *int
	Precision     *int
	Scale         *int
	Dimension     *int
	AutoIncrement bool
	NotNull       bool
	Unique        bool
	PrimaryKey    bool
	Default       *string
	Check         string
	Reference     *Reference
	Extra         map[string]any
}

// recognizedColumnKeys are consumed by NormalizeColumn. Anything else is
// copied into Column.Extra.
var recognizedColumnKeys = map[string]bool{
	"resource":       true,
	"column":         true,
	"colname":        true,
	"name":           true,
	"definition":     true,
	"typeName":       true,
	"type":           true,
	"data_type":      true,
	"nullable":       true,
	"not_null":       true,
	"is_not_null":    true,
	"unique":         true,
	"primary_key":    true,
	"auto_increment": true,
	"default_val":    true,
	"constraint":     true,
	"constraints":    true,
	"references":     true,
	"check":          true,
}

var columnNameExtractors = []ast.Extractor[string]{
	func(n ast.Node) (string, bool) { return ast.String(n, "column", "column") },
	func(n ast.Node) (string, bool) { return ast.String(n, "column", "column", "expr", "value") },
	func(n ast.Node) (string, bool) { return ast.String(n, "colname") },
	func(n ast.Node) (string, bool) { return ast.String(n, "name") },
	func(n ast.Node) (string, bool) { return ast.String(n, "column") },
}

var dataTypeExtractors = []ast.Extractor[string]{
	func(n ast.Node) (string, bool) { return ast.String(n, "definition", "dataType") },
	postgresTypeName,
	func(n ast.Node) (string, bool) { return ast.String(n, "type") },
	func(n ast.Node) (string, bool) { return ast.String(n, "data_type") },
	func(n ast.Node) (string, bool) { return ast.String(n, "definition") },
}

// postgresTypeName reads typeName.names, skipping the pg_catalog qualifier.
func postgresTypeName(n ast.Node) (string, bool) {
	list, ok := ast.List(n, "typeName", "names")
	if !ok {
		return "", false
	}
	var name string
	for _, v := range list {
		s, ok := nameOf(v)
		if !ok || strings.EqualFold(s, "pg_catalog") {
			continue
		}
		name = s
	}
	return name, name != ""
}

var typeParamExtractors = []ast.Extractor[[]int]{
	scalarLength,
	func(n ast.Node) ([]int, bool) { return intList(n, "definition", "length") },
	func(n ast.Node) ([]int, bool) { return intList(n, "typeName", "typmods") },
	func(n ast.Node) ([]int, bool) { return rawParams(n, "type") },
	func(n ast.Node) ([]int, bool) { return rawParams(n, "data_type") },
}

// scalarLength reads definition.length with an optional definition.scale.
func scalarLength(n ast.Node) ([]int, bool) {
	length, ok := ast.Int(n, "definition", "length")
	if !ok {
		return nil, false
	}
	if scale, ok := ast.Int(n, "definition", "scale"); ok {
		return []int{length, scale}, true
	}
	return []int{length}, true
}

func intList(n ast.Node, keys ...any) ([]int, bool) {
	list, ok := ast.List(n, keys...)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(list))
	for _, v := range list {
		if i, ok := paramInt(v); ok {
			out = append(out, i)
		}
	}
	return out, len(out) > 0
}

// paramInt reads one type parameter: a scalar or a constant node such as
// {"A_Const": {"ival": {"ival": 10}}}.
func paramInt(v any) (int, bool) {
	if i, ok := ast.ToInt(v); ok {
		return i, true
	}
	n, ok := v.(ast.Node)
	if !ok {
		return 0, false
	}
	return ast.First[int](n,
		func(n ast.Node) (int, bool) { return ast.Int(n, "A_Const", "ival", "ival") },
		func(n ast.Node) (int, bool) { return ast.Int(n, "ival", "ival") },
		func(n ast.Node) (int, bool) { return ast.Int(n, "value") },
	)
}

var rawParamRe = regexp.MustCompile(`\(\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*)?\)`)

// rawParams parses "(10,2)" out of a raw type string such as DECIMAL(10,2).
func rawParams(n ast.Node, key string) ([]int, bool) {
	raw, ok := ast.String(n, key)
	if !ok {
		return nil, false
	}
	m := rawParamRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	out := []int{}
	for _, s := range m[1:] {
		if i, ok := ast.ToInt(s); ok && s != "" {
			out = append(out, i)
		}
	}
	return out, len(out) > 0
}

// NormalizeColumn converts a column node from any grammar. Nodes without a
// resolvable name or type are rejected with ok=false.
func NormalizeColumn(n ast.Node) (*Column, bool) {
	n = ast.Unwrap(n, "ColumnDef")
	name, ok := ast.First(n, columnNameExtractors...)
	if !ok {
		return nil, false
	}
	rawType, ok := ast.First(n, dataTypeExtractors...)
	if !ok {
		return nil, false
	}
	base := core.BaseTypeName(rawType)
	if base == "" {
		return nil, false
	}

	col := &Column{Name: name, DataType: base}
	if params, ok := ast.First(n, typeParamExtractors...); ok {
		col.applyParams(params)
	}

	f := &flags{}
	if strings.Contains(base, "SERIAL") {
		f.setSerial()
	}
	scanColumnFlags(n, f)
	if v, ok := n["default_val"]; ok {
		if d, ok := Default(v); ok {
			col.Default = &d
		}
	}
	for _, c := range columnConstraints(n) {
		col.applyConstraint(c, f)
	}
	if ref, ok := ast.Object(n, "references"); ok && col.Reference == nil {
		col.Reference = NormalizeReference(ref)
	}
	if check, ok := ast.Object(n, "check"); ok && col.Check == "" {
		col.Check, _ = checkText(check)
	}

	col.AutoIncrement = f.autoIncrement
	col.NotNull = f.notNull
	col.Unique = f.unique
	col.PrimaryKey = f.primaryKey

	for k, v := range n {
		if recognizedColumnKeys[k] {
			continue
		}
		if col.Extra == nil {
			col.Extra = make(map[string]any)
		}
		col.Extra[k] = v
	}
	return col, true
}

// applyParams assigns type parameters by category: character and bit
// types take a length, exact numerics take precision and scale, vectors
// take a dimension. Parameters on other or unknown types are dropped.
func (c *Column) applyParams(params []int) {
	t, ok := core.LookupColumnType(c.DataType)
	if !ok {
		return
	}
	switch t {
	case core.TypeChar, core.TypeVarchar, core.TypeBit, core.TypeVarbit:
		c.Length = core.IntPtr(params[0])
	case core.TypeDecimal, core.TypeNumeric:
		c.Precision = core.IntPtr(params[0])
		if len(params) > 1 {
			c.Scale = core.IntPtr(params[1])
		}
	case core.TypeVector, core.TypeHalfVec, core.TypeSparseVec:
		c.Dimension = core.IntPtr(params[0])
	}
}

func scanColumnFlags(n ast.Node, f *flags) {
	if v, ok := n["nullable"]; ok {
		switch x := v.(type) {
		case bool:
			if !x {
				f.setNotNull()
			}
		case string:
			if containsFold(x, "not null") {
				f.setNotNull()
			}
		case ast.Node:
			if tag, _ := ast.String(x, "type"); containsFold(tag, "not null") {
				f.setNotNull()
			}
		}
	}
	if truthy(n["not_null"]) || truthy(n["is_not_null"]) {
		f.setNotNull()
	}
	if truthy(n["unique"]) {
		f.setUnique()
	}
	if truthy(n["primary_key"]) {
		f.setPrimaryKey()
	}
	if truthy(n["auto_increment"]) {
		f.setAutoIncrement()
	}
}

// truthy treats true and any non-empty marker string as set.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.TrimSpace(x) != ""
	case ast.Node:
		return len(x) > 0
	default:
		return false
	}
}

// columnConstraints returns the inline constraint entries of a column,
// unwrapping {"Constraint": {...}} wrappers.
func columnConstraints(n ast.Node) []ast.Node {
	var out []ast.Node
	for _, key := range []string{"constraint", "constraints"} {
		for _, c := range ast.Objects(n, key) {
			out = append(out, ast.Unwrap(c, "Constraint"))
		}
	}
	return out
}

func (c *Column) applyConstraint(n ast.Node, f *flags) {
	tag := compact(tagOf(n))
	switch {
	case strings.Contains(tag, "PRIMARY"):
		f.setPrimaryKey()
	case strings.Contains(tag, "NOTNULL"):
		f.setNotNull()
	case strings.Contains(tag, "UNIQUE"):
		f.setUnique()
	case strings.Contains(tag, "AUTOINCREMENT"):
		f.setAutoIncrement()
	case strings.Contains(tag, "IDENTITY"):
		f.setSerial()
	case strings.Contains(tag, "CHECK"):
		if c.Check == "" {
			c.Check, _ = checkText(n)
		}
	case strings.Contains(tag, "REFERENCES"), strings.Contains(tag, "FOREIGN"):
		if c.Reference == nil {
			c.Reference = NormalizeReference(n)
		}
	case strings.Contains(tag, "DEFAULT"):
		if c.Default != nil {
			return
		}
		for _, key := range []string{"raw_expr", "expr", "value"} {
			if v, ok := n[key]; ok {
				if d, ok := Default(v); ok {
					c.Default = &d
					return
				}
			}
		}
	}
}

// checkText returns the textual CHECK expression when the grammar kept one.
func checkText(n ast.Node) (string, bool) {
	return ast.First[string](n,
		func(n ast.Node) (string, bool) { return ast.String(n, "definition", 0) },
		func(n ast.Node) (string, bool) { return ast.String(n, "expr") },
		func(n ast.Node) (string, bool) { return ast.String(n, "check") },
	)
}
