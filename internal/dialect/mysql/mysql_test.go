package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ddlsync/internal/core"
)

func TestQuoteIdentifier(t *testing.T) {
	d := NewMySQLDialect()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_identifier", "users", "users"},
		{"identifier_with_spaces", "user table", "`user table`"},
		{"identifier_with_backticks", "user`table", "`user``table`"},
		{"identifier_with_multiple_backticks", "tab`le`name", "`tab``le``name`"},
		{"identifier_with_trailing_spaces", "  users  ", "users"},
		{"identifier_with_numbers", "user123", "user123"},
		{"leading_digit", "1st", "`1st`"},
		{"mixed_case", "UserData", "UserData"},
		{"reserved_word", "order", "`order`"},
		{"reserved_word_upper", "KEY", "`KEY`"},
		{"dollar", "cost$", "cost$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.QuoteIdentifier(tt.input))
		})
	}
}

func TestFormatDefault(t *testing.T) {
	d := NewMySQLDialect()
	tests := []struct {
		typ  core.ColumnType
		in   string
		want string
	}{
		{core.TypeTimestamp, "current_timestamp", "CURRENT_TIMESTAMP"},
		{core.TypeInteger, "0", "0"},
		{core.TypeVarchar, "'x'", "'x'"},
		{core.TypeText, "'x'", "('x')"},
		{core.TypeJSONB, "'{}'", "('{}')"},
		{core.TypeChar, "uuid()", "(uuid())"},
		{core.TypeChar, "(uuid())", "(uuid())"},
		{core.TypeVarchar, " ", "''"},
	}
	for _, tt := range tests {
		col := &core.Column{Type: tt.typ, Default: core.StringPtr(tt.in)}
		assert.Equal(t, tt.want, d.FormatDefault(col), "%s %q", tt.typ, tt.in)
	}
}

func TestKeyPlacement(t *testing.T) {
	d := NewMySQLDialect()
	clause, ok := d.InlinePrimaryKey(&core.Column{Type: core.TypeSerial})
	assert.True(t, ok)
	assert.Equal(t, "PRIMARY KEY", clause)
	assert.False(t, d.InlineForeignKeys())
	assert.Equal(t, 64, d.MaxIdentifierLength())
}
