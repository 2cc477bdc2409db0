package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlsync/internal/core"
)

func sampleSchema() *core.Schema {
	users := &core.Table{ID: "t1", Name: "users", Position: core.Position{X: 40, Y: 80}, Color: "#ffcc00"}
	users.Columns = []*core.Column{
		{ID: "c1", Name: "id", Type: core.TypeSerial, PrimaryKey: true, Unique: true},
		{ID: "c2", Name: "email", Type: core.TypeVarchar, Length: core.IntPtr(255), Unique: true},
		{ID: "c3", Name: "created_at", Type: core.TypeTimestamp, Nullable: true, Default: core.StringPtr("CURRENT_TIMESTAMP")},
	}
	posts := &core.Table{ID: "t2", Name: "posts"}
	posts.Columns = []*core.Column{
		{ID: "c4", Name: "id", Type: core.TypeBigSerial, PrimaryKey: true, Unique: true},
		{ID: "c5", Name: "author_id", Type: core.TypeInteger},
		{ID: "c6", Name: "price", Type: core.TypeDecimal, Precision: core.IntPtr(10), Scale: core.IntPtr(2), Nullable: true},
	}
	s := &core.Schema{Tables: []*core.Table{users, posts}}
	s.AddRelation(&core.Relation{
		ID: "r1", SourceTableID: "t2", SourceColumnID: "c5",
		TargetTableID: "t1", TargetColumnID: "c1", OnDelete: core.Cascade,
	})
	return s
}

func TestSaveLoadEachFormat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"schema.toml", "schema.json", "schema.yaml", "schema.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			doc := New(core.DialectPostgreSQL, "CREATE TABLE users (id SERIAL PRIMARY KEY);", sampleSchema())
			require.NoError(t, Save(path, doc))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, core.DialectPostgreSQL, got.Dialect)
			assert.Equal(t, doc.Source, got.Source)
			assert.Equal(t, sampleSchema().Tables, got.Tables)
			assert.Equal(t, sampleSchema().Relations, got.Relations)
		})
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "schema.json")
	require.NoError(t, Save(path, New(core.DialectSQLite, "", nil)))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Load("schema.xml")
	var ufe *UnsupportedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, ".xml", ufe.Name)

	err = Save(filepath.Join(t.TempDir(), "schema"), New(core.DialectMySQL, "", nil))
	require.True(t, errors.As(err, &ufe))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"toml": FormatTOML, "JSON": FormatJSON, "yml": FormatYAML, ".yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	require.Error(t, err)
}

func TestDecodeNormalizesDialect(t *testing.T) {
	doc, err := Decode(strings.NewReader(`dialect = "postgres"`), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, core.DialectPostgreSQL, doc.Dialect)
	assert.NotNil(t, doc.Tables)
	assert.NotNil(t, doc.Relations)
}

func TestDecodeRejectsUnknownDialect(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"dialect": "oracle"}`), FormatJSON)
	var ude *core.UnsupportedDialectError
	require.True(t, errors.As(err, &ude))
}

func TestDecodeRejectsInvalidSchema(t *testing.T) {
	const src = `
dialect: MySQL
tables:
  - id: t1
    name: users
    columns:
      - {id: c1, name: id, type: INTEGER}
      - {id: c2, name: ID, type: INTEGER}
`
	_, err := Decode(strings.NewReader(src), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column name")
}

func TestDecodeEmptyYAML(t *testing.T) {
	doc, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, doc.Tables)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(strings.NewReader("tables = [[["), FormatTOML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document: decode toml")
}
