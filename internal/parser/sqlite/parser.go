// Package sqlite is the SQLite grammar front-end. SQLite ships no reusable
// syntax tree, so the DDL is replayed into a private in-memory database and
// the resulting catalog is read back as one table node per table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
	"ddlsync/internal/parser"
)

func init() {
	parser.Register(core.DialectSQLite, func() parser.Parser {
		return NewParser()
	})
}

// Parser opens a fresh :memory: database per call, so calls never share
// state.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// replayed lists the statement keywords executed against the scratch
// database. Everything else (INSERT, PRAGMA, ATTACH, transactions) is
// skipped.
var replayed = map[string]bool{
	"CREATE": true,
	"ALTER":  true,
	"DROP":   true,
}

func (p *Parser) Parse(script string) ([]ast.Node, error) {
	stmts := splitStatements(script)
	if len(stmts) == 0 {
		return nil, nil
	}

	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open scratch database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Every connection to :memory: is its own database; pin one.
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open scratch connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return nil, fmt.Errorf("sqlite: disable foreign keys: %w", err)
	}

	for _, stmt := range stmts {
		if !replayed[leadingKeyword(stmt.text)] {
			continue
		}
		if _, err := conn.ExecContext(ctx, stmt.text); err != nil {
			return nil, syntaxError(ctx, conn, script, stmt, err)
		}
	}
	return readTables(ctx, conn)
}

var (
	nearRe    = regexp.MustCompile(`near "((?:[^"]|"")*)"`)
	prefixRe  = regexp.MustCompile(`^SQL logic error:\s*`)
	errCodeRe = regexp.MustCompile(`\s*\(\d+\)$`)
)

// syntaxError locates the offending token inside the failing statement.
// Without a usable token the statement start is reported.
func syntaxError(ctx context.Context, conn *sql.Conn, script string, stmt statement, err error) error {
	msg := strings.TrimSpace(err.Error())
	msg = errCodeRe.ReplaceAllString(prefixRe.ReplaceAllString(msg, ""), "")

	offset := stmt.offset
	if m := nearRe.FindStringSubmatch(msg); m != nil {
		token := strings.ReplaceAll(m[1], `""`, `"`)
		if i, ok := tokenOffset(ctx, conn, stmt.text, token); ok {
			offset += i
		}
	}
	line, column := parser.LineColumn(script, offset)
	return &parser.SyntaxError{Message: msg, Line: line, Column: column}
}

// tokenOffset finds which occurrence of token SQLite rejected. SQLite only
// names the token, so each occurrence is tried in turn: the rejected one is
// the first where the text cut just after it already fails near that token,
// while shorter cuts are merely incomplete. Cuts are compiled under EXPLAIN
// and never run. Falls back to the last occurrence.
func tokenOffset(ctx context.Context, conn *sql.Conn, text, token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	upper, want := strings.ToUpper(text), strings.ToUpper(token)
	last := -1
	for from := 0; from < len(upper); {
		i := strings.Index(upper[from:], want)
		if i < 0 {
			break
		}
		i += from
		last = i
		if rejectsAt(ctx, conn, text[:i+len(want)], token) {
			return i, true
		}
		from = i + 1
	}
	return last, last >= 0
}

func rejectsAt(ctx context.Context, conn *sql.Conn, prefix, token string) bool {
	rows, err := conn.QueryContext(ctx, "EXPLAIN "+prefix)
	if err == nil {
		_ = rows.Close()
		return false
	}
	m := nearRe.FindStringSubmatch(err.Error())
	return m != nil && strings.EqualFold(strings.ReplaceAll(m[1], `""`, `"`), token)
}
