package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlsync/internal/ast"
	"ddlsync/internal/parser"
)

func TestParseCreateStmt(t *testing.T) {
	nodes, err := NewParser().Parse("CREATE TABLE users (id SERIAL PRIMARY KEY, email VARCHAR(255) UNIQUE NOT NULL);")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	kind, ok := ast.Kind(nodes[0])
	require.True(t, ok)
	assert.Equal(t, "CreateStmt", kind)

	stmt := ast.Unwrap(nodes[0], "CreateStmt")
	name, _ := ast.String(stmt, "relation", "relname")
	assert.Equal(t, "users", name)

	elts := ast.Objects(stmt, "tableElts")
	require.Len(t, elts, 2)
	col := ast.Unwrap(elts[1], "ColumnDef")
	assert.Equal(t, "email", col["colname"])
	typmod, ok := ast.Int(col, "typeName", "typmods", 0, "A_Const", "ival", "ival")
	require.True(t, ok)
	assert.Equal(t, 255, typmod)
}

func TestParseAlterTableStmt(t *testing.T) {
	nodes, err := NewParser().Parse("CREATE TABLE a (id INT); ALTER TABLE a ADD CONSTRAINT fk FOREIGN KEY (id) REFERENCES b(id);")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	kind, _ := ast.Kind(nodes[1])
	assert.Equal(t, "AlterTableStmt", kind)
	subtype, _ := ast.String(ast.Unwrap(nodes[1], "AlterTableStmt"), "cmds", 0, "AlterTableCmd", "subtype")
	assert.Equal(t, "AT_AddConstraint", subtype)
}

func TestParseSyntaxErrorLocation(t *testing.T) {
	_, err := NewParser().Parse("CREATE TABLE a (id INT);\nCREATE TABLEX b (id INT);")
	var syntaxErr *parser.SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, syntaxErr.Message, "syntax error")
	assert.Equal(t, 2, syntaxErr.Line)
	assert.Equal(t, 8, syntaxErr.Column)
}

func TestParseEmpty(t *testing.T) {
	nodes, err := NewParser().Parse("")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
