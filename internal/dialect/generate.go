package dialect

import (
	"fmt"
	"strings"
	"time"

	"ddlsync/internal/core"
)

// Options tune generation. Now supplies the header timestamp and defaults to
// time.Now; Header lines are emitted as comments after the banner.
type Options struct {
	Now    func() time.Time
	Header []string
}

// Generator renders schemas for one flavor.
type Generator struct {
	flavor Flavor
	opts   Options
}

// NewGenerator returns a generator for f.
func NewGenerator(f Flavor, opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{flavor: f, opts: opts}
}

// Generate renders schema for dialect d through its registered flavor.
func Generate(schema *core.Schema, d core.Dialect, opts Options) (string, error) {
	f, err := GetDialect(d)
	if err != nil {
		return "", err
	}
	return NewGenerator(f, opts).Generate(schema), nil
}

// foreignKey is a relation whose endpoints all resolved.
type foreignKey struct {
	src, dst       *core.Table
	srcCol, dstCol *core.Column
	rel            *core.Relation
}

// Generate renders every table followed by the foreign keys between them.
// Relations with a missing endpoint are skipped. Output is deterministic
// apart from the timestamp line.
func (g *Generator) Generate(schema *core.Schema) string {
	var b strings.Builder
	b.WriteString(g.header())
	if schema == nil {
		return b.String()
	}

	fksByTable := make(map[string][]foreignKey)
	var fks []foreignKey
	for _, r := range schema.Relations {
		src, srcCol, dst, dstCol, ok := schema.ResolveRelation(r)
		if !ok {
			continue
		}
		fk := foreignKey{src: src, dst: dst, srcCol: srcCol, dstCol: dstCol, rel: r}
		fks = append(fks, fk)
		fksByTable[src.ID] = append(fksByTable[src.ID], fk)
	}

	for _, t := range schema.Tables {
		var inline []foreignKey
		if g.flavor.InlineForeignKeys() {
			inline = fksByTable[t.ID]
		}
		b.WriteString("\n")
		b.WriteString(g.createTable(t, inline))
		b.WriteString("\n")
	}

	if !g.flavor.InlineForeignKeys() && len(fks) > 0 {
		b.WriteString("\n")
		for _, fk := range fks {
			b.WriteString(g.alterForeignKey(fk))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (g *Generator) header() string {
	var b strings.Builder
	b.WriteString("-- Generated by ddlsync\n")
	fmt.Fprintf(&b, "-- Dialect: %s\n", g.flavor.Dialect())
	for _, line := range g.opts.Header {
		fmt.Fprintf(&b, "-- %s\n", strings.TrimSpace(line))
	}
	fmt.Fprintf(&b, "-- Generated at: %s\n", g.opts.Now().UTC().Format(time.RFC3339))
	return b.String()
}

// createTable renders one CREATE TABLE statement, with inline declarations
// of the given foreign keys.
func (g *Generator) createTable(t *core.Table, inline []foreignKey) string {
	pks := t.PrimaryKeyColumns()
	composite := len(pks) > 1

	lines := make([]string, 0, len(t.Columns)+len(inline)+1)
	for _, c := range t.Columns {
		lines = append(lines, "  "+g.columnDefinition(c, composite))
	}

	switch {
	case composite:
		lines = append(lines, "  PRIMARY KEY "+g.formatColumns(pks))
	case len(pks) == 1:
		if _, ok := g.flavor.InlinePrimaryKey(pks[0]); !ok {
			lines = append(lines, "  PRIMARY KEY "+g.formatColumns(pks))
		}
	}

	for _, fk := range inline {
		lines = append(lines, "  "+g.foreignKeyClause(fk))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", g.flavor.QuoteIdentifier(t.Name), strings.Join(lines, ",\n"))
}

func (g *Generator) columnDefinition(c *core.Column, compositeKey bool) string {
	parts := []string{g.flavor.QuoteIdentifier(c.Name), g.flavor.ColumnType(c)}

	pkClause, inlinePK := "", false
	if c.PrimaryKey && !compositeKey {
		pkClause, inlinePK = g.flavor.InlinePrimaryKey(c)
	}

	// Composite key members always get NOT NULL.
	if (!c.Nullable || (compositeKey && c.PrimaryKey)) && !inlinePK {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil && !c.Type.IsSerial() {
		parts = append(parts, "DEFAULT", g.flavor.FormatDefault(c))
	}
	if c.Unique && !c.PrimaryKey {
		parts = append(parts, "UNIQUE")
	}
	if inlinePK {
		parts = append(parts, pkClause)
	}
	return strings.Join(parts, " ")
}

func (g *Generator) formatColumns(cols []*core.Column) string {
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		quoted = append(quoted, g.flavor.QuoteIdentifier(c.Name))
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// foreignKeyClause renders CONSTRAINT ... FOREIGN KEY ... REFERENCES ...
// with the non-default referential actions.
func (g *Generator) foreignKeyClause(fk foreignKey) string {
	name := ConstraintName(fk.src.Name, fk.srcCol.Name, g.flavor.MaxIdentifierLength())
	clause := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		g.flavor.QuoteIdentifier(name),
		g.flavor.QuoteIdentifier(fk.srcCol.Name),
		g.flavor.QuoteIdentifier(fk.dst.Name),
		g.flavor.QuoteIdentifier(fk.dstCol.Name),
	)
	if a := fk.rel.OnDelete; a != "" && a != core.NoAction {
		clause += " ON DELETE " + string(a)
	}
	if a := fk.rel.OnUpdate; a != "" && a != core.NoAction {
		clause += " ON UPDATE " + string(a)
	}
	return clause
}

func (g *Generator) alterForeignKey(fk foreignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s;", g.flavor.QuoteIdentifier(fk.src.Name), g.foreignKeyClause(fk))
}
