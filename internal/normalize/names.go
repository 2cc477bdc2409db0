package normalize

import (
	"strings"

	"ddlsync/internal/ast"
)

// nameOf reads an identifier from the element shapes grammars use in
// column lists: a bare string, {"column": "x"}, {"column": {"expr":
// {"value": "x"}}}, {"String": {"sval": "x"}} or {"name": "x"}.
func nameOf(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case ast.Node:
		return ast.First[string](x,
			func(n ast.Node) (string, bool) { return ast.String(n, "column") },
			func(n ast.Node) (string, bool) { return ast.String(n, "column", "expr", "value") },
			func(n ast.Node) (string, bool) { return ast.String(n, "String", "sval") },
			func(n ast.Node) (string, bool) { return ast.String(n, "String", "str") },
			func(n ast.Node) (string, bool) { return ast.String(n, "name") },
			func(n ast.Node) (string, bool) { return ast.String(n, "IndexElem", "name") },
		)
	default:
		return "", false
	}
}

// nameList reads the list at key as identifiers. It fails when the key is
// absent or yields no names.
func nameList(key string) ast.Extractor[[]string] {
	return func(n ast.Node) ([]string, bool) {
		list, ok := ast.List(n, key)
		if !ok {
			return nil, false
		}
		names := make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := nameOf(v); ok {
				names = append(names, s)
			}
		}
		return names, len(names) > 0
	}
}

// tagOf returns the type tag of a constraint-like node.
func tagOf(n ast.Node) string {
	tag, _ := ast.First[string](n,
		func(n ast.Node) (string, bool) { return ast.String(n, "constraint_type") },
		func(n ast.Node) (string, bool) { return ast.String(n, "contype") },
		func(n ast.Node) (string, bool) { return ast.String(n, "type") },
	)
	return tag
}

// compact upper-cases s and drops spaces, underscores and hyphens so tags
// like "not null", "CONSTR_NOTNULL" and "NOT_NULL" compare equal.
func compact(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToUpper(s))
}

func containsFold(s, sub string) bool {
	return strings.Contains(compact(s), compact(sub))
}
