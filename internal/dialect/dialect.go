// Package dialect generates DDL from the dialect-neutral schema. The shared
// generator handles table layout and foreign keys; each dialect contributes a
// Flavor with its quoting, type spelling and key placement rules.
package dialect

import (
	"sync"

	"ddlsync/internal/core"
)

// Flavor captures what differs between dialects when emitting DDL.
type Flavor interface {
	Dialect() core.Dialect
	// QuoteIdentifier quotes name only when the dialect requires it.
	QuoteIdentifier(name string) string
	ColumnType(col *core.Column) string
	FormatDefault(col *core.Column) string
	// InlinePrimaryKey returns the inline key clause for a single-column
	// primary key, or ok=false when the key must be a trailing clause.
	InlinePrimaryKey(col *core.Column) (clause string, ok bool)
	// InlineForeignKeys reports whether foreign keys are declared in the
	// table body instead of ALTER TABLE statements.
	InlineForeignKeys() bool
	MaxIdentifierLength() int
}

var (
	mu       sync.RWMutex
	registry = map[core.Dialect]func() Flavor{}
)

// RegisterDialect creates a new registry entry for the specified dialect.
func RegisterDialect(d core.Dialect, ctor func() Flavor) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = ctor
}

// GetDialect returns the flavor registered for d. Unknown dialects fail.
func GetDialect(d core.Dialect) (Flavor, error) {
	mu.RLock()
	ctor, ok := registry[d]
	mu.RUnlock()
	if !ok {
		return nil, &core.UnsupportedDialectError{Name: string(d)}
	}
	return ctor(), nil
}
