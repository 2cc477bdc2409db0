package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"

	"ddlsync/internal/ast"
)

var autoincrementRe = regexp.MustCompile(`(?i)\bAUTOINCREMENT\b`)

type columnInfo struct {
	name    string
	typ     string
	notNull bool
	dflt    sql.NullString
	pk      int
}

// readTables introspects every user table in creation order.
func readTables(ctx context.Context, conn *sql.Conn) ([]ast.Node, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name, COALESCE(sql, '') FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}
	type tableRow struct{ name, sql string }
	var tables []tableRow
	for rows.Next() {
		var tr tableRow
		if err := rows.Scan(&tr.name, &tr.sql); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scan table: %w", err)
		}
		tables = append(tables, tr)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list tables: %w", err)
	}

	nodes := make([]ast.Node, 0, len(tables))
	for _, tr := range tables {
		node, err := readTable(ctx, conn, tr.name, tr.sql)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func readTable(ctx context.Context, conn *sql.Conn, name, createSQL string) (ast.Node, error) {
	cols, err := readColumns(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	uniques, err := readUniqueIndexes(ctx, conn, name)
	if err != nil {
		return nil, err
	}
	fks, err := readForeignKeys(ctx, conn, name)
	if err != nil {
		return nil, err
	}

	var pkCols []columnInfo
	for _, c := range cols {
		if c.pk > 0 {
			pkCols = append(pkCols, c)
		}
	}
	sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].pk < pkCols[j].pk })

	uniqueCols := map[string]bool{}
	var constraints []any
	for _, idx := range uniques {
		if len(idx) == 1 {
			uniqueCols[idx[0]] = true
			continue
		}
		constraints = append(constraints, ast.Node{"type": "UNIQUE", "columns": stringList(idx)})
	}
	if len(pkCols) > 1 {
		names := make([]string, 0, len(pkCols))
		for _, c := range pkCols {
			names = append(names, c.name)
		}
		constraints = append(constraints, ast.Node{"type": "PRIMARY KEY", "columns": stringList(names)})
	}
	constraints = append(constraints, fks...)

	columns := make([]any, 0, len(cols))
	for _, c := range cols {
		col := ast.Node{
			"name":     c.name,
			"type":     c.typ,
			"not_null": c.notNull,
			"unique":   uniqueCols[c.name],
		}
		if len(pkCols) == 1 && c.pk == 1 {
			col["primary_key"] = true
			col["auto_increment"] = autoincrementRe.MatchString(createSQL)
		}
		if c.dflt.Valid {
			col["default_val"] = c.dflt.String
		}
		columns = append(columns, col)
	}

	return ast.Node{
		"statement":   "create_table",
		"name":        name,
		"columns":     columns,
		"constraints": constraints,
		"sql":         createSQL,
	}, nil
}

func readColumns(ctx context.Context, conn *sql.Conn, table string) ([]columnInfo, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: table info %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []columnInfo
	for rows.Next() {
		var c columnInfo
		if err := rows.Scan(&c.name, &c.typ, &c.notNull, &c.dflt, &c.pk); err != nil {
			return nil, fmt.Errorf("sqlite: scan column of %q: %w", table, err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// readUniqueIndexes returns the column lists of UNIQUE constraints and
// unique indexes, excluding the primary-key index.
func readUniqueIndexes(ctx context.Context, conn *sql.Conn, table string) ([][]string, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name FROM pragma_index_list(?) WHERE "unique" = 1 AND origin IN ('u', 'c') ORDER BY seq DESC`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: index list %q: %w", table, err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scan index of %q: %w", table, err)
		}
		names = append(names, name)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(names))
	for _, name := range names {
		cols, err := indexColumns(ctx, conn, name)
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			out = append(out, cols)
		}
	}
	return out, nil
}

func indexColumns(ctx context.Context, conn *sql.Conn, index string) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name FROM pragma_index_info(?) WHERE name IS NOT NULL ORDER BY seqno`, index)
	if err != nil {
		return nil, fmt.Errorf("sqlite: index info %q: %w", index, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

type fkRow struct {
	id       int
	target   string
	from     string
	to       sql.NullString
	onUpdate string
	onDelete string
}

// readForeignKeys returns one FOREIGN KEY constraint node per key id. A
// missing "to" column means the key references the target's primary key.
func readForeignKeys(ctx context.Context, conn *sql.Conn, table string) ([]any, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT id, "table", "from", "to", on_update, on_delete FROM pragma_foreign_key_list(?) ORDER BY id DESC, seq`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: foreign keys %q: %w", table, err)
	}
	var fkRows []fkRow
	for rows.Next() {
		var r fkRow
		if err := rows.Scan(&r.id, &r.target, &r.from, &r.to, &r.onUpdate, &r.onDelete); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("sqlite: scan foreign key of %q: %w", table, err)
		}
		fkRows = append(fkRows, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var (
		out   []any
		order []int
		byID  = map[int][]fkRow{}
	)
	for _, r := range fkRows {
		if _, seen := byID[r.id]; !seen {
			order = append(order, r.id)
		}
		byID[r.id] = append(byID[r.id], r)
	}
	for _, id := range order {
		group := byID[id]
		from := make([]string, 0, len(group))
		to := make([]string, 0, len(group))
		for _, r := range group {
			from = append(from, r.from)
			if r.to.Valid && r.to.String != "" {
				to = append(to, r.to.String)
			}
		}
		if len(to) == 0 {
			pk, err := primaryKeyColumns(ctx, conn, group[0].target)
			if err != nil {
				return nil, err
			}
			to = pk
		}
		out = append(out, ast.Node{
			"type":    "FOREIGN KEY",
			"columns": stringList(from),
			"references": ast.Node{
				"table":   group[0].target,
				"columns": stringList(to),
			},
			"on_delete": group[0].onDelete,
			"on_update": group[0].onUpdate,
		})
	}
	return out, nil
}

func primaryKeyColumns(ctx context.Context, conn *sql.Conn, table string) ([]string, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, table)
	if err != nil {
		return nil, fmt.Errorf("sqlite: primary key of %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
