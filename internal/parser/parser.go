// Package parser defines the grammar front-ends that turn SQL text into
// loosely typed syntax trees. Each dialect registers its own implementation
// from a sub-package.
package parser

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"ddlsync/internal/ast"
	"ddlsync/internal/core"
)

// Parser turns a SQL script into one node per statement, or fails with a
// *SyntaxError.
type Parser interface {
	Parse(sql string) ([]ast.Node, error)
}

// SyntaxError is raised when the grammar rejects the text. Line and Column
// are 1-based; zero means the grammar did not report a location.
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	if e.HasLocation() {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// HasLocation reports whether the grammar supplied a position.
func (e *SyntaxError) HasLocation() bool {
	return e.Line > 0
}

var (
	mu       sync.RWMutex
	registry = map[core.Dialect]func() Parser{}
)

// Register makes a grammar available for the dialect.
func Register(d core.Dialect, ctor func() Parser) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = ctor
}

// ForDialect returns a new parser for d. There is no fallback dialect.
func ForDialect(d core.Dialect) (Parser, error) {
	mu.RLock()
	ctor, ok := registry[d]
	mu.RUnlock()
	if !ok {
		return nil, &core.UnsupportedDialectError{Name: string(d)}
	}
	return ctor(), nil
}

// LineColumn converts a 0-based byte offset into a 1-based line and a
// 1-based column counted in characters.
func LineColumn(text string, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line, column = 1, 1
	for _, r := range text[:offset] {
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

// RuneOffset converts a 0-based character index into a byte offset.
func RuneOffset(text string, chars int) int {
	off := 0
	for i := 0; i < chars && off < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
	}
	return off
}
