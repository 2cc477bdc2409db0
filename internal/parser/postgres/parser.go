// Package postgres is the PostgreSQL grammar front-end. It runs the real
// PostgreSQL parser through pg_query and hands the JSON parse tree on as ast
// nodes, one {"<StmtKind>": {...}} wrapper per statement.
package postgres

import (
	"errors"
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	pgparser "github.com/pganalyze/pg_query_go/v6/parser"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/parser"
)

func init() {
	parser.Register(core.DialectPostgreSQL, func() parser.Parser {
		return NewParser()
	})
}

// Parser is stateless; pg_query is safe for concurrent use.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(sql string) ([]ast.Node, error) {
	tree, err := pg_query.ParseToJSON(sql)
	if err != nil {
		return nil, syntaxError(sql, err)
	}
	doc, err := ast.Decode([]byte(tree))
	if err != nil {
		return nil, fmt.Errorf("postgres: decode parse tree: %w", err)
	}

	raw := ast.Objects(doc, "stmts")
	nodes := make([]ast.Node, 0, len(raw))
	for _, entry := range raw {
		stmt, ok := ast.First[ast.Node](entry,
			func(n ast.Node) (ast.Node, bool) { return ast.Object(n, "stmt") },
			func(n ast.Node) (ast.Node, bool) { return ast.Object(n, "Stmt") },
		)
		if !ok {
			continue
		}
		nodes = append(nodes, stmt)
	}
	return nodes, nil
}

// syntaxError converts pg_query's 1-based character cursor into a line and
// column within sql.
func syntaxError(sql string, err error) error {
	var pgErr *pgparser.Error
	if !errors.As(err, &pgErr) {
		return &parser.SyntaxError{Message: err.Error()}
	}
	out := &parser.SyntaxError{Message: pgErr.Message}
	if pgErr.Cursorpos > 0 {
		out.Line, out.Column = parser.LineColumn(sql, parser.RuneOffset(sql, pgErr.Cursorpos-1))
	}
	return out
}
