// Package mysql is the MySQL grammar front-end. It parses DDL with the TiDB
// parser and folds the typed TiDB syntax tree into loose ast nodes.
package mysql

import (
	"sync"

	tidb "github.com/pingcap/tidb/pkg/parser"
	tast "github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/parser"
)

func init() {
	parser.Register(core.DialectMySQL, func() parser.Parser {
		return NewParser()
	})
}

// Parser wraps a TiDB parser. The TiDB parser is not safe for concurrent
// use, so calls are serialized.
type Parser struct {
	mu sync.Mutex
	p  *tidb.Parser
}

func NewParser() *Parser {
	return &Parser{
		p: tidb.New(),
	}
}

// Parse returns one node per CREATE TABLE or ALTER TABLE statement. Other
// statements are accepted by the grammar but produce no node.
func (p *Parser) Parse(sql string) ([]ast.Node, error) {
	p.mu.Lock()
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	p.mu.Unlock()
	if err != nil {
		// TiDB reports "line N column M near ..." in the message only.
		return nil, &parser.SyntaxError{Message: err.Error()}
	}

	nodes := make([]ast.Node, 0, len(stmtNodes))
	for _, stmtNode := range stmtNodes {
		switch stmt := stmtNode.(type) {
		case *tast.CreateTableStmt:
			nodes = append(nodes, convertCreateTable(stmt))
		case *tast.AlterTableStmt:
			nodes = append(nodes, convertAlterTable(stmt))
		}
	}
	return nodes, nil
}

func tableRef(name *tast.TableName) []any {
	ref := ast.Node{"table": name.Name.O}
	if name.Schema.O != "" {
		ref["db"] = name.Schema.O
	}
	return []any{ref}
}

func convertCreateTable(stmt *tast.CreateTableStmt) ast.Node {
	defs := make([]any, 0, len(stmt.Cols)+len(stmt.Constraints))
	for _, colDef := range stmt.Cols {
		defs = append(defs, convertColumn(colDef))
	}
	for _, constraint := range stmt.Constraints {
		if c := convertConstraint(constraint); c != nil {
			defs = append(defs, c)
		}
	}
	node := ast.Node{
		"type":               "create",
		"keyword":            "table",
		"table":              tableRef(stmt.Table),
		"create_definitions": defs,
	}
	if stmt.IfNotExists {
		node["if_not_exists"] = "IF NOT EXISTS"
	}
	return node
}

func convertAlterTable(stmt *tast.AlterTableStmt) ast.Node {
	exprs := make([]any, 0, len(stmt.Specs))
	for _, spec := range stmt.Specs {
		switch spec.Tp {
		case tast.AlterTableAddConstraint:
			if c := convertConstraint(spec.Constraint); c != nil {
				exprs = append(exprs, ast.Node{
					"action":             "add",
					"resource":           "constraint",
					"create_definitions": c,
				})
			}
		case tast.AlterTableAddColumns:
			for _, colDef := range spec.NewColumns {
				exprs = append(exprs, ast.Node{
					"action":   "add",
					"resource": "column",
					"column":   convertColumn(colDef),
				})
			}
		}
	}
	return ast.Node{
		"type":  "alter",
		"table": tableRef(stmt.Table),
		"expr":  exprs,
	}
}
