package mysql

import (
	"strings"

	tast "github.com/pingcap/tidb/pkg/parser/ast"
	pmysql "github.com/pingcap/tidb/pkg/parser/mysql"
	"github.com/pingcap/tidb/pkg/parser/types"

	"ddlsync/internal/ast"
)

func convertColumn(colDef *tast.ColumnDef) ast.Node {
	col := ast.Node{
		"resource":   "column",
		"column":     ast.Node{"type": "column_ref", "column": colDef.Name.Name.O},
		"definition": dataType(colDef.Tp),
	}
	for _, opt := range colDef.Options {
		applyColumnOption(col, opt)
	}
	return col
}

// dataType renders a TiDB field type in the {dataType, length, scale} shape.
func dataType(tp *types.FieldType) ast.Node {
	if tp == nil {
		return nil
	}
	name := strings.ToUpper(types.TypeToStr(tp.GetType(), tp.GetCharset()))
	def := ast.Node{"dataType": name}

	flen, decimal := tp.GetFlen(), tp.GetDecimal()
	switch {
	case tp.GetType() == pmysql.TypeTiny && flen == 1:
		def["dataType"] = "BOOLEAN"
	case tp.GetType() == pmysql.TypeNewDecimal:
		if flen != types.UnspecifiedLength {
			def["length"] = flen
		}
		if decimal != types.UnspecifiedLength && flen != types.UnspecifiedLength {
			def["scale"] = decimal
		}
	case name == "VECTOR":
		if flen != types.UnspecifiedLength {
			def["length"] = flen
		}
	case hasLength(tp.GetType()):
		if flen != types.UnspecifiedLength {
			def["length"] = flen
		}
	}
	if pmysql.HasUnsignedFlag(tp.GetFlag()) {
		def["suffix"] = []any{"UNSIGNED"}
	}
	return def
}

func hasLength(tp byte) bool {
	switch tp {
	case pmysql.TypeVarchar, pmysql.TypeVarString, pmysql.TypeString, pmysql.TypeBit:
		return true
	default:
		return false
	}
}

//nolint:revive // Large switch needed for AST option mapping
func applyColumnOption(col ast.Node, opt *tast.ColumnOption) {
	if opt == nil {
		return
	}

	switch opt.Tp {
	case tast.ColumnOptionNotNull:
		col["nullable"] = ast.Node{"type": "not null", "value": "not null"}
	case tast.ColumnOptionNull:
		col["nullable"] = ast.Node{"type": "null", "value": "null"}
	case tast.ColumnOptionPrimaryKey:
		col["primary_key"] = "primary key"
	case tast.ColumnOptionAutoIncrement:
		col["auto_increment"] = "auto_increment"
	case tast.ColumnOptionUniqKey:
		col["unique"] = "unique"
	case tast.ColumnOptionDefaultValue:
		col["default_val"] = ast.Node{"type": "default", "value": exprNode(opt.Expr)}
	case tast.ColumnOptionOnUpdate:
		col["on_update"] = restore(opt.Expr)
	case tast.ColumnOptionComment:
		col["comment"] = restore(opt.Expr)
	case tast.ColumnOptionCollate:
		col["collate"] = opt.StrValue
	case tast.ColumnOptionCheck:
		col["check"] = ast.Node{"type": "check", "definition": []any{restore(opt.Expr)}}
	case tast.ColumnOptionReference:
		col["references"] = referenceNode(opt.Refer)
	case tast.ColumnOptionGenerated:
		gen := ast.Node{"type": "generated", "expr": restore(opt.Expr), "storage_type": "virtual"}
		if opt.Stored {
			gen["storage_type"] = "stored"
		}
		col["generated"] = gen
	case tast.ColumnOptionNoOption:
	}
}
