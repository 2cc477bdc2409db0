package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ddlsync/internal/ast"
)

// Default renders a default-value node as SQL text. Function calls become
// NAME(args), quoted strings are re-quoted with doubled single quotes, and
// numbers, NULL and booleans become their literal text. Bare strings pass
// through unchanged. ok is false when no known shape matches.
func Default(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return boolLiteral(x), true
	case json.Number:
		return x.String(), true
	case int, int64, float64:
		return fmt.Sprint(x), true
	case ast.Node:
		if kind, ok := ast.Kind(x); ok {
			if s, ok := postgresDefault(kind, x[kind].(ast.Node)); ok {
				return s, true
			}
		}
		return taggedDefault(x)
	default:
		return "", false
	}
}

func taggedDefault(n ast.Node) (string, bool) {
	tag, _ := ast.String(n, "type")
	switch strings.ToLower(tag) {
	case "default":
		return Default(n["value"])
	case "function":
		return functionCall(functionName(n), listOf(n, "args"))
	case "single_quote_string", "string", "natural_string":
		s, _ := n["value"].(string)
		return quote(s), true
	case "number":
		return scalarText(n["value"])
	case "null":
		return "NULL", true
	case "bool", "boolean":
		b, _ := n["value"].(bool)
		return boolLiteral(b), true
	case "expr":
		return ast.String(n, "value")
	}
	if v, ok := n["value"]; ok {
		return Default(v)
	}
	return "", false
}

func postgresDefault(kind string, n ast.Node) (string, bool) {
	switch kind {
	case "A_Const":
		return postgresConst(n)
	case "TypeCast":
		arg, ok := ast.Object(n, "arg")
		if !ok {
			return "", false
		}
		return Default(arg)
	case "FuncCall":
		var name string
		for _, part := range listOf(n, "funcname") {
			if s, ok := nameOf(part); ok && !strings.EqualFold(s, "pg_catalog") {
				name = s
			}
		}
		return functionCall(name, listOf(n, "args"))
	case "SQLValueFunction":
		op, _ := ast.String(n, "op")
		op = strings.TrimSuffix(strings.TrimPrefix(op, "SVFOP_"), "_N")
		return op, op != ""
	}
	return "", false
}

func postgresConst(n ast.Node) (string, bool) {
	if isNull, _ := ast.Bool(n, "isnull"); isNull {
		return "NULL", true
	}
	if s, ok := ast.Object(n, "sval"); ok {
		text, _ := ast.String(s, "sval")
		return quote(text), true
	}
	if v, ok := ast.Object(n, "ival"); ok {
		if i, ok := ast.Int(v, "ival"); ok {
			return strconv.Itoa(i), true
		}
		return "0", true
	}
	if f, ok := ast.String(n, "fval", "fval"); ok {
		return f, true
	}
	if b, ok := ast.Object(n, "boolval"); ok {
		v, _ := ast.Bool(b, "boolval")
		return boolLiteral(v), true
	}
	return "", false
}

func functionName(n ast.Node) string {
	name, _ := ast.First[string](n,
		func(n ast.Node) (string, bool) { return ast.String(n, "name") },
		func(n ast.Node) (string, bool) { return ast.String(n, "name", "name", 0, "value") },
	)
	return name
}

// functionCall renders NAME(args). A bare CURRENT_TIMESTAMP keeps its
// keyword spelling without parentheses.
func functionCall(name string, args []any) (string, bool) {
	if name == "" {
		return "", false
	}
	name = strings.ToUpper(name)
	if len(args) == 0 && isKeywordFunction(name) {
		return name, true
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := Default(a); ok {
			parts = append(parts, s)
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")", true
}

func isKeywordFunction(name string) bool {
	switch name {
	case "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "LOCALTIME", "LOCALTIMESTAMP":
		return true
	}
	return false
}

func listOf(n ast.Node, key string) []any {
	l, _ := ast.List(n, key)
	return l
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case nil:
		return "", false
	default:
		return fmt.Sprint(x), true
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func boolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
