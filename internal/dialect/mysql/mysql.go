// Package mysql provides the MySQL flavor of the DDL generator.
package mysql

import (
	"regexp"
	"slices"
	"strings"

	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
)

const mysqlMaxIdentLen = 64

func init() {
	dialect.RegisterDialect(core.DialectMySQL, func() dialect.Flavor {
		return NewMySQLDialect()
	})
}

var bareIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Dialect is the stateless MySQL flavor.
type Dialect struct{}

// NewMySQLDialect initializes a new MySQL flavor.
func NewMySQLDialect() *Dialect {
	return &Dialect{}
}

// Dialect reports core.DialectMySQL.
func (d *Dialect) Dialect() core.Dialect {
	return core.DialectMySQL
}

// QuoteIdentifier wraps name in backticks when it is not a plain identifier,
// doubling any embedded backtick.
func (d *Dialect) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	if !dialect.NeedsQuoting(name, bareIdentRe) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *Dialect) ColumnType(col *core.Column) string {
	return core.ToDialectType(col, core.DialectMySQL)
}

var defaultKeywords = []string{"NULL", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW()", "TRUE", "FALSE"}

// FormatDefault keeps literals and the temporal keywords bare. Other
// expressions, and any default on a TEXT, BLOB or JSON column, must be
// parenthesized in MySQL 8.
func (d *Dialect) FormatDefault(col *core.Column) string {
	v := strings.TrimSpace(*col.Default)
	if v == "" {
		return "''"
	}
	if slices.Contains(defaultKeywords, strings.ToUpper(v)) {
		return strings.ToUpper(v)
	}
	if strings.HasPrefix(v, "(") {
		return v
	}
	if needsExpressionDefault(col) || strings.ContainsAny(v, "()") {
		return "(" + v + ")"
	}
	return v
}

func needsExpressionDefault(col *core.Column) bool {
	switch strings.ToUpper(core.ToDialectType(col, core.DialectMySQL)) {
	case "TEXT", "BLOB", "JSON":
		return true
	default:
		return false
	}
}

func (d *Dialect) InlinePrimaryKey(*core.Column) (string, bool) {
	return "PRIMARY KEY", true
}

func (d *Dialect) InlineForeignKeys() bool {
	return false
}

func (d *Dialect) MaxIdentifierLength() int {
	return mysqlMaxIdentLen
}
