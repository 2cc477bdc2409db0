package mysql

import (
	"regexp"
	"strings"

	tast "github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"

	"ddlsync/internal/ast"
)

var numberRe = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

// exprNode converts a default expression into a tagged literal node.
func exprNode(expr tast.ExprNode) ast.Node {
	if expr == nil {
		return nil
	}
	if fn, ok := expr.(*tast.FuncCallExpr); ok {
		args := make([]any, 0, len(fn.Args))
		for _, a := range fn.Args {
			args = append(args, exprNode(a))
		}
		return ast.Node{"type": "function", "name": strings.ToUpper(fn.FnName.O), "args": args}
	}

	s := restore(expr)
	upper := strings.ToUpper(s)
	switch {
	case upper == "NULL":
		return ast.Node{"type": "null", "value": nil}
	case upper == "TRUE" || upper == "FALSE":
		return ast.Node{"type": "bool", "value": upper == "TRUE"}
	case numberRe.MatchString(s):
		return ast.Node{"type": "number", "value": s}
	}
	if unquoted, ok := tryUnquoteSQLStringLiteral(s); ok {
		return ast.Node{"type": "single_quote_string", "value": unquoted}
	}
	return ast.Node{"type": "expr", "value": s}
}

func restore(expr tast.ExprNode) string {
	if expr == nil {
		return ""
	}
	var sb strings.Builder
	restoreCtx := format.NewRestoreCtx(format.DefaultRestoreFlags|format.RestoreStringWithoutCharset, &sb)
	if err := expr.Restore(restoreCtx); err != nil {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

func tryUnquoteSQLStringLiteral(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[len(s)-1] != '\'' {
		return "", false
	}

	if s[0] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), true
	}

	q := strings.IndexByte(s, '\'')
	if q <= 0 {
		return "", false
	}
	if !isSQLStringIntroducer(strings.TrimSpace(s[:q])) {
		return "", false
	}
	return strings.ReplaceAll(s[q+1:len(s)-1], "''", "'"), true
}

//nolint:revive // Character validation requires checking multiple ranges
func isSQLStringIntroducer(prefix string) bool {
	if prefix == "" {
		return false
	}
	if strings.EqualFold(prefix, "N") {
		return true
	}
	if !strings.HasPrefix(prefix, "_") || len(prefix) == 1 {
		return false
	}
	for _, r := range prefix[1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
