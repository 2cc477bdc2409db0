// Package postgres provides the PostgreSQL flavor of the DDL generator.
package postgres

import (
	"regexp"
	"strings"

	"github.com/lib/pq"

	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
)

// NAMEDATALEN - 1.
const maxIdentLen = 63

func init() {
	dialect.RegisterDialect(core.DialectPostgreSQL, func() dialect.Flavor {
		return NewDialect()
	})
}

// Unquoted identifiers fold to lower case, so anything else is quoted.
var bareIdentRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Dialect is the stateless PostgreSQL flavor.
type Dialect struct{}

// NewDialect initializes a new PostgreSQL flavor.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Dialect reports core.DialectPostgreSQL.
func (d *Dialect) Dialect() core.Dialect {
	return core.DialectPostgreSQL
}

// QuoteIdentifier double-quotes name unless it is already lower case and
// bare.
func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if !dialect.NeedsQuoting(name, bareIdentRe) {
		return name
	}
	return pq.QuoteIdentifier(name)
}

// ColumnType spells the column type the PostgreSQL way.
func (d *Dialect) ColumnType(col *core.Column) string {
	return core.ToDialectType(col, core.DialectPostgreSQL)
}

// FormatDefault emits the default as written; PostgreSQL takes any
// expression bare.
func (d *Dialect) FormatDefault(col *core.Column) string {
	v := strings.TrimSpace(*col.Default)
	if v == "" {
		return "''"
	}
	return v
}

// InlinePrimaryKey keeps SERIAL keys out of line: the SERIAL pseudo-type
// creates a sequence but no key.
func (d *Dialect) InlinePrimaryKey(col *core.Column) (string, bool) {
	if col.Type.IsSerial() {
		return "", false
	}
	return "PRIMARY KEY", true
}

// InlineForeignKeys is false: foreign keys are added by ALTER TABLE.
func (d *Dialect) InlineForeignKeys() bool {
	return false
}

// MaxIdentifierLength is the longest name PostgreSQL keeps untruncated.
func (d *Dialect) MaxIdentifierLength() int {
	return maxIdentLen
}
