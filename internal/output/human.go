package output

import (
	"fmt"
	"strings"

	pluralizer "github.com/gertd/go-pluralize"

	"ddlsync/internal/core"
	"ddlsync/internal/extract"
	"ddlsync/internal/reconcile"
)

var pluralizeClient = pluralizer.NewClient()

func count(word string, n int) string {
	return pluralizeClient.Pluralize(word, n, true)
}

type humanFormatter struct{}

// FormatParse lists tables and relations. Example output:
//
//	Extracted 2 tables, 1 relation
//
//	users (2 columns)
//	  id     SERIAL        PK
//	  email  VARCHAR(255)  NOT NULL UNIQUE
func (humanFormatter) FormatParse(r extract.Result) (string, error) {
	var sb strings.Builder
	if !r.Success {
		sb.WriteString("Parse failed\n")
		writeErrors(&sb, r.Errors)
		return sb.String(), nil
	}
	if len(r.Tables) == 0 {
		return "No tables found.\n", nil
	}
	fmt.Fprintf(&sb, "Extracted %s, %s\n", count("table", len(r.Tables)), count("relation", len(r.Relations)))
	schema := r.Schema()
	for _, t := range schema.Tables {
		sb.WriteString("\n")
		writeTable(&sb, t)
	}
	if len(schema.Relations) > 0 {
		sb.WriteString("\nRelations:\n")
		for _, rel := range schema.Relations {
			fmt.Fprintf(&sb, "  %s\n", describeRelation(schema, rel))
		}
	}
	return sb.String(), nil
}

func (humanFormatter) FormatValidation(v extract.Validation) (string, error) {
	if v.Valid {
		return "SQL is valid.\n", nil
	}
	var sb strings.Builder
	sb.WriteString("SQL is invalid\n")
	writeErrors(&sb, v.Errors)
	return sb.String(), nil
}

// FormatReconcile summarizes which tables kept their identity.
func (humanFormatter) FormatReconcile(r *reconcile.Result) (string, error) {
	if r == nil || r.Schema == nil {
		return "Nothing to reconcile.\n", nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reconciled %s, %s\n", count("table", len(r.Schema.Tables)), count("relation", len(r.Schema.Relations)))
	for _, rn := range r.Renamed {
		fmt.Fprintf(&sb, "  ~ %s -> %s\n", rn.From, rn.To)
	}
	for _, name := range r.AddedTables {
		fmt.Fprintf(&sb, "  + %s\n", name)
	}
	for _, name := range r.RemovedTables {
		fmt.Fprintf(&sb, "  - %s\n", name)
	}
	return sb.String(), nil
}

func (humanFormatter) FormatTypes(d core.Dialect, types []core.ColumnType) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s for %s\n\n", count("type", len(types)), d)
	width := 0
	for _, t := range types {
		width = max(width, len(t))
	}
	for _, t := range types {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, t, core.ToDialectType(&core.Column{Type: t}, d))
	}
	return sb.String(), nil
}

func writeErrors(sb *strings.Builder, errs []extract.Error) {
	for _, e := range errs {
		fmt.Fprintf(sb, "  %s\n", ErrorLocation(e))
	}
}

func writeTable(sb *strings.Builder, t *core.Table) {
	fmt.Fprintf(sb, "%s (%s)\n", t.Name, count("column", len(t.Columns)))
	nameWidth, typeWidth := 0, 0
	for _, c := range t.Columns {
		nameWidth = max(nameWidth, len(c.Name))
		typeWidth = max(typeWidth, len(core.ToDialectType(c, core.DialectPostgreSQL)))
	}
	for _, c := range t.Columns {
		line := fmt.Sprintf("  %-*s  %-*s  %s", nameWidth, c.Name, typeWidth, core.ToDialectType(c, core.DialectPostgreSQL), columnFlags(c))
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
}

func columnFlags(c *core.Column) string {
	var flags []string
	if c.PrimaryKey {
		flags = append(flags, "PK")
	} else {
		if !c.Nullable {
			flags = append(flags, "NOT NULL")
		}
		if c.Unique {
			flags = append(flags, "UNIQUE")
		}
	}
	if c.Default != nil {
		flags = append(flags, "DEFAULT "+*c.Default)
	}
	return strings.Join(flags, " ")
}

func describeRelation(s *core.Schema, r *core.Relation) string {
	src, srcCol, dst, dstCol, ok := s.ResolveRelation(r)
	if !ok {
		return fmt.Sprintf("%s (unresolved)", r.ID)
	}
	out := fmt.Sprintf("%s.%s -> %s.%s (%s", src.Name, srcCol.Name, dst.Name, dstCol.Name, r.Cardinality)
	if r.OnDelete != "" && r.OnDelete != core.NoAction {
		out += ", ON DELETE " + string(r.OnDelete)
	}
	if r.OnUpdate != "" && r.OnUpdate != core.NoAction {
		out += ", ON UPDATE " + string(r.OnUpdate)
	}
	return out + ")"
}
