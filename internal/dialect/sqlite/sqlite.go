// Package sqlite provides the SQLite flavor of the DDL generator. SQLite
// cannot add constraints with ALTER TABLE, so foreign keys are declared in
// the table body.
package sqlite

import (
	"regexp"
	"strings"

	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
)

func init() {
	dialect.RegisterDialect(core.DialectSQLite, func() dialect.Flavor {
		return NewDialect()
	})
}

var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect is the stateless SQLite flavor.
type Dialect struct{}

// NewDialect initializes a new SQLite flavor.
func NewDialect() *Dialect {
	return &Dialect{}
}

// Dialect reports core.DialectSQLite.
func (d *Dialect) Dialect() core.Dialect {
	return core.DialectSQLite
}

// QuoteIdentifier double-quotes name when it is not a plain identifier,
// doubling any embedded quote.
func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if !dialect.NeedsQuoting(name, bareIdentRe) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ColumnType maps the column type onto its SQLite storage affinity.
func (d *Dialect) ColumnType(col *core.Column) string {
	return core.ToDialectType(col, core.DialectSQLite)
}

// FormatDefault parenthesizes function calls, which SQLite only accepts as
// expression defaults.
func (d *Dialect) FormatDefault(col *core.Column) string {
	v := strings.TrimSpace(*col.Default)
	switch {
	case v == "":
		return "''"
	case strings.HasPrefix(v, "("), strings.HasPrefix(v, "'"):
		return v
	case strings.Contains(v, "("):
		return "(" + v + ")"
	default:
		return v
	}
}

// InlinePrimaryKey turns a serial key into SQLite's rowid alias.
func (d *Dialect) InlinePrimaryKey(col *core.Column) (string, bool) {
	if col.Type.IsSerial() {
		return "PRIMARY KEY AUTOINCREMENT", true
	}
	return "PRIMARY KEY", true
}

// InlineForeignKeys is true: SQLite declares foreign keys in the table body.
func (d *Dialect) InlineForeignKeys() bool {
	return true
}

// MaxIdentifierLength is 0 since SQLite has no identifier length limit.
func (d *Dialect) MaxIdentifierLength() int {
	return 0
}
