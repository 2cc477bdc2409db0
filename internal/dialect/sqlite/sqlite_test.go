package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ddlsync/internal/core"
)

func TestQuoteIdentifier(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, "Users", d.QuoteIdentifier("Users"))
	assert.Equal(t, `"group"`, d.QuoteIdentifier("group"))
	assert.Equal(t, `"a""b"`, d.QuoteIdentifier(`a"b`))
}

func TestFormatDefault(t *testing.T) {
	d := NewDialect()
	for in, want := range map[string]string{
		"0":                 "0",
		"CURRENT_TIMESTAMP": "CURRENT_TIMESTAMP",
		"'a(b)'":            "'a(b)'",
		"NOW()":             "(NOW())",
		"(1 + 2)":           "(1 + 2)",
	} {
		assert.Equal(t, want, d.FormatDefault(&core.Column{Default: core.StringPtr(in)}), in)
	}
}

func TestSerialKeyUsesRowidAlias(t *testing.T) {
	d := NewDialect()
	clause, ok := d.InlinePrimaryKey(&core.Column{Type: core.TypeSerial})
	assert.True(t, ok)
	assert.Equal(t, "PRIMARY KEY AUTOINCREMENT", clause)
	assert.True(t, d.InlineForeignKeys())
}

func TestFlavorTraits(t *testing.T) {
	d := NewDialect()
	assert.Equal(t, core.DialectSQLite, d.Dialect())
	assert.True(t, d.InlineForeignKeys())
	assert.Zero(t, d.MaxIdentifierLength())
}
