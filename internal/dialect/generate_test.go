package dialect_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlsync/internal/core"
	"ddlsync/internal/dialect"
	_ "ddlsync/internal/dialect/mysql"
	_ "ddlsync/internal/dialect/postgres"
	_ "ddlsync/internal/dialect/sqlite"
)

var fixedClock = func() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

type schemaBuilder struct {
	schema *core.Schema
	ids    core.IDGenerator
}

func newSchema() *schemaBuilder {
	return &schemaBuilder{schema: &core.Schema{}, ids: core.UUIDGenerator{}}
}

func (b *schemaBuilder) table(name string, cols ...*core.Column) *core.Table {
	t := core.NewTable(b.ids, name)
	for _, c := range cols {
		c.ID = b.ids.NewID()
		if c.PrimaryKey {
			c.SetPrimaryKey()
		}
		t.Columns = append(t.Columns, c)
	}
	b.schema.Tables = append(b.schema.Tables, t)
	return t
}

func (b *schemaBuilder) relate(src *core.Table, srcCol string, dst *core.Table, dstCol string, onDelete core.ReferentialAction) {
	b.schema.AddRelation(&core.Relation{
		ID:             b.ids.NewID(),
		SourceTableID:  src.ID,
		SourceColumnID: src.FindColumn(srcCol).ID,
		TargetTableID:  dst.ID,
		TargetColumnID: dst.FindColumn(dstCol).ID,
		OnDelete:       onDelete,
	})
}

func generate(t *testing.T, s *core.Schema, d core.Dialect) string {
	t.Helper()
	out, err := dialect.Generate(s, d, dialect.Options{Now: fixedClock})
	require.NoError(t, err)
	return out
}

func blogSchema() *schemaBuilder {
	b := newSchema()
	users := b.table("users",
		&core.Column{Name: "id", Type: core.TypeSerial, PrimaryKey: true},
		&core.Column{Name: "email", Type: core.TypeVarchar, Length: core.IntPtr(255), Unique: true},
		&core.Column{Name: "active", Type: core.TypeBoolean, Nullable: true},
		&core.Column{Name: "created_at", Type: core.TypeTimestamp, Nullable: true, Default: core.StringPtr("CURRENT_TIMESTAMP")},
	)
	posts := b.table("posts",
		&core.Column{Name: "id", Type: core.TypeBigSerial, PrimaryKey: true},
		&core.Column{Name: "author_id", Type: core.TypeInteger},
		&core.Column{Name: "title", Type: core.TypeText, Nullable: true},
	)
	b.relate(posts, "author_id", users, "id", core.Cascade)
	return b
}

func TestGeneratePostgres(t *testing.T) {
	out := generate(t, blogSchema().schema, core.DialectPostgreSQL)

	assert.Equal(t, `-- Generated by ddlsync
-- Dialect: PostgreSQL
-- Generated at: 2026-01-02T03:04:05Z

CREATE TABLE users (
  id SERIAL NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  active BOOLEAN,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id)
);

CREATE TABLE posts (
  id BIGSERIAL NOT NULL,
  author_id INTEGER NOT NULL,
  title TEXT,
  PRIMARY KEY (id)
);

ALTER TABLE posts ADD CONSTRAINT fk_posts_author_id FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE;
`, out)
}

func TestGenerateMySQL(t *testing.T) {
	out := generate(t, blogSchema().schema, core.DialectMySQL)

	assert.Contains(t, out, "  id INT AUTO_INCREMENT PRIMARY KEY,\n")
	assert.Contains(t, out, "  email VARCHAR(255) NOT NULL UNIQUE,\n")
	assert.Contains(t, out, "  active TINYINT(1),\n")
	assert.Contains(t, out, "  id BIGINT AUTO_INCREMENT PRIMARY KEY,\n")
	assert.Contains(t, out, "ALTER TABLE posts ADD CONSTRAINT fk_posts_author_id FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE;")
	assert.NotContains(t, out, "PRIMARY KEY (")
}

func TestGenerateSQLite(t *testing.T) {
	out := generate(t, blogSchema().schema, core.DialectSQLite)

	assert.Contains(t, out, "  id INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	assert.Contains(t, out, "  email TEXT NOT NULL UNIQUE,\n")
	assert.Contains(t, out, "  title TEXT,\n  CONSTRAINT fk_posts_author_id FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE\n);")
	assert.NotContains(t, out, "ALTER TABLE")
}

func TestGenerateCompositePrimaryKey(t *testing.T) {
	b := newSchema()
	b.table("order_items",
		&core.Column{Name: "order_id", Type: core.TypeInteger, PrimaryKey: true},
		&core.Column{Name: "product_id", Type: core.TypeInteger, PrimaryKey: true},
		&core.Column{Name: "qty", Type: core.TypeInteger, Nullable: true, Default: core.StringPtr("1")},
	)
	for _, d := range core.SupportedDialects() {
		t.Run(string(d), func(t *testing.T) {
			out := generate(t, b.schema, d)
			assert.Equal(t, 1, strings.Count(out, "PRIMARY KEY"))
			assert.Contains(t, out, "  PRIMARY KEY (order_id, product_id)\n")
			assert.Regexp(t, `\n  order_id \w+ NOT NULL,\n`, out)
			assert.Contains(t, out, "NOT NULL,\n  qty")
			assert.NotContains(t, out, "UNIQUE")
		})
	}
}

func TestGenerateCompositePrimaryKeyIgnoresStoredNullability(t *testing.T) {
	b := newSchema()
	link := b.table("tag_links",
		&core.Column{Name: "a", Type: core.TypeInteger},
		&core.Column{Name: "b", Type: core.TypeInteger},
	)
	for _, c := range link.Columns {
		c.PrimaryKey = true
		c.Nullable = true
	}
	for _, d := range core.SupportedDialects() {
		t.Run(string(d), func(t *testing.T) {
			out := generate(t, b.schema, d)
			assert.Regexp(t, `\n  a \w+ NOT NULL,\n`, out)
			assert.Regexp(t, `\n  b \w+ NOT NULL,\n`, out)
			assert.Contains(t, out, "  PRIMARY KEY (a, b)\n")
		})
	}
}

func TestGenerateDecimalPerDialect(t *testing.T) {
	b := newSchema()
	b.table("prices",
		&core.Column{Name: "amount", Type: core.TypeDecimal, Precision: core.IntPtr(10), Scale: core.IntPtr(2), Nullable: true},
	)
	assert.Contains(t, generate(t, b.schema, core.DialectSQLite), "  amount REAL\n")
	assert.Contains(t, generate(t, b.schema, core.DialectPostgreSQL), "  amount DECIMAL(10,2)\n")
	assert.Contains(t, generate(t, b.schema, core.DialectMySQL), "  amount DECIMAL(10,2)\n")
}

func TestGenerateIsDeterministicApartFromTimestamp(t *testing.T) {
	s := blogSchema().schema
	stripStamp := func(sql string) string {
		var kept []string
		for _, line := range strings.Split(sql, "\n") {
			if !strings.HasPrefix(line, "-- Generated at:") {
				kept = append(kept, line)
			}
		}
		return strings.Join(kept, "\n")
	}
	for _, d := range core.SupportedDialects() {
		first, err := dialect.Generate(s, d, dialect.Options{Now: fixedClock})
		require.NoError(t, err)
		second, err := dialect.Generate(s, d, dialect.Options{Now: func() time.Time { return fixedClock().Add(time.Hour) }})
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		assert.Equal(t, stripStamp(first), stripStamp(second))
	}
}

func TestGenerateSkipsRelationsWithMissingEndpoints(t *testing.T) {
	b := blogSchema()
	b.schema.Relations = append(b.schema.Relations, &core.Relation{
		ID:             "dangling",
		SourceTableID:  b.schema.Tables[1].ID,
		SourceColumnID: "gone",
		TargetTableID:  b.schema.Tables[0].ID,
		TargetColumnID: b.schema.Tables[0].Columns[0].ID,
	})
	out := generate(t, b.schema, core.DialectPostgreSQL)
	assert.Equal(t, 1, strings.Count(out, "ALTER TABLE"))
}

func TestGenerateQuotesOnlyWhenNeeded(t *testing.T) {
	b := newSchema()
	b.table("user",
		&core.Column{Name: "id", Type: core.TypeInteger, PrimaryKey: true},
		&core.Column{Name: "Display Name", Type: core.TypeText, Nullable: true},
	)
	pg := generate(t, b.schema, core.DialectPostgreSQL)
	assert.Contains(t, pg, `CREATE TABLE "user" (`)
	assert.Contains(t, pg, `  "Display Name" TEXT`)
	assert.Contains(t, pg, "  id INTEGER PRIMARY KEY,")

	my := generate(t, b.schema, core.DialectMySQL)
	assert.Contains(t, my, "CREATE TABLE `user` (")
	assert.Contains(t, my, "  `Display Name` TEXT")

	lite := generate(t, b.schema, core.DialectSQLite)
	assert.Contains(t, lite, `CREATE TABLE "user" (`)
}

func TestGenerateHeaderLines(t *testing.T) {
	out, err := dialect.Generate(&core.Schema{}, core.DialectMySQL, dialect.Options{
		Now:    fixedClock,
		Header: []string{"project: shop", "  owner: data team  "},
	})
	require.NoError(t, err)
	assert.Equal(t, `-- Generated by ddlsync
-- Dialect: MySQL
-- project: shop
-- owner: data team
-- Generated at: 2026-01-02T03:04:05Z
`, out)
}

func TestGenerateUnsupportedDialect(t *testing.T) {
	_, err := dialect.Generate(&core.Schema{}, core.Dialect("Oracle"), dialect.Options{})
	var unsupported *core.UnsupportedDialectError
	assert.ErrorAs(t, err, &unsupported)
}

func TestGenerateDefaults(t *testing.T) {
	b := newSchema()
	b.table("docs",
		&core.Column{Name: "id", Type: core.TypeSerial, PrimaryKey: true, Default: core.StringPtr("nextval('docs_id_seq')")},
		&core.Column{Name: "body", Type: core.TypeText, Nullable: true, Default: core.StringPtr("'draft'")},
		&core.Column{Name: "token", Type: core.TypeVarchar, Length: core.IntPtr(36), Nullable: true, Default: core.StringPtr("uuid()")},
	)

	pg := generate(t, b.schema, core.DialectPostgreSQL)
	assert.NotContains(t, pg, "nextval")
	assert.Contains(t, pg, "  body TEXT DEFAULT 'draft',")
	assert.Contains(t, pg, "  token VARCHAR(36) DEFAULT uuid(),")

	my := generate(t, b.schema, core.DialectMySQL)
	assert.Contains(t, my, "  body TEXT DEFAULT ('draft'),")
	assert.Contains(t, my, "  token VARCHAR(36) DEFAULT (uuid())\n")

	lite := generate(t, b.schema, core.DialectSQLite)
	assert.Contains(t, lite, "  body TEXT DEFAULT 'draft',")
	assert.Contains(t, lite, "  token TEXT DEFAULT (uuid())")
}
