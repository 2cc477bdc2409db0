package mysql

import (
	tast "github.com/pingcap/tidb/pkg/parser/ast"

	"ddlsync/internal/ast"
)

var constraintTypes = map[tast.ConstraintType]string{
	tast.ConstraintPrimaryKey: "primary key",
	tast.ConstraintUniq:       "unique",
	tast.ConstraintUniqKey:    "unique key",
	tast.ConstraintUniqIndex:  "unique index",
	tast.ConstraintForeignKey: "FOREIGN KEY",
	tast.ConstraintIndex:      "index",
	tast.ConstraintKey:        "key",
	tast.ConstraintFulltext:   "fulltext index",
	tast.ConstraintCheck:      "check",
}

func convertConstraint(constraint *tast.Constraint) ast.Node {
	if constraint == nil {
		return nil
	}
	kind, ok := constraintTypes[constraint.Tp]
	if !ok {
		return nil
	}

	node := ast.Node{
		"resource":        "constraint",
		"constraint_type": kind,
	}
	if constraint.Name != "" {
		node["constraint"] = constraint.Name
	}

	switch constraint.Tp {
	case tast.ConstraintCheck:
		node["definition"] = []any{restore(constraint.Expr)}
	default:
		node["definition"] = keyColumns(constraint.Keys)
	}
	if constraint.Tp == tast.ConstraintForeignKey && constraint.Refer != nil {
		node["reference_definition"] = referenceNode(constraint.Refer)
	}
	return node
}

func keyColumns(keys []*tast.IndexPartSpecification) []any {
	cols := make([]any, 0, len(keys))
	for _, key := range keys {
		if key == nil || key.Column == nil {
			continue
		}
		cols = append(cols, ast.Node{"type": "column_ref", "column": key.Column.Name.O})
	}
	return cols
}

func referenceNode(refer *tast.ReferenceDef) ast.Node {
	if refer == nil || refer.Table == nil {
		return nil
	}
	var actions []any
	if refer.OnDelete != nil && refer.OnDelete.ReferOpt != tast.ReferOptionNoOption {
		actions = append(actions, ast.Node{"type": "on delete", "value": refer.OnDelete.ReferOpt.String()})
	}
	if refer.OnUpdate != nil && refer.OnUpdate.ReferOpt != tast.ReferOptionNoOption {
		actions = append(actions, ast.Node{"type": "on update", "value": refer.OnUpdate.ReferOpt.String()})
	}
	node := ast.Node{
		"table":      tableRef(refer.Table),
		"definition": keyColumns(refer.IndexPartSpecifications),
	}
	if len(actions) > 0 {
		node["on_action"] = actions
	}
	return node
}
