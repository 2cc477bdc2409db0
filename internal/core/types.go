package core

import (
	"fmt"
	"regexp"
	"strings"
)

// ColumnType is the closed, dialect-neutral set of scalar column types.
type ColumnType string

const (
	TypeSmallInt        ColumnType = "SMALLINT"
	TypeInteger         ColumnType = "INTEGER"
	TypeBigInt          ColumnType = "BIGINT"
	TypeDecimal         ColumnType = "DECIMAL"
	TypeNumeric         ColumnType = "NUMERIC"
	TypeReal            ColumnType = "REAL"
	TypeDoublePrecision ColumnType = "DOUBLE PRECISION"
	TypeMoney           ColumnType = "MONEY"
	TypeSmallSerial     ColumnType = "SMALLSERIAL"
	TypeSerial          ColumnType = "SERIAL"
	TypeBigSerial       ColumnType = "BIGSERIAL"
	TypeChar            ColumnType = "CHAR"
	TypeVarchar         ColumnType = "VARCHAR"
	TypeText            ColumnType = "TEXT"
	TypeBytea           ColumnType = "BYTEA"
	TypeDate            ColumnType = "DATE"
	TypeTime            ColumnType = "TIME"
	TypeTimeTZ          ColumnType = "TIMETZ"
	TypeTimestamp       ColumnType = "TIMESTAMP"
	TypeTimestampTZ     ColumnType = "TIMESTAMPTZ"
	TypeInterval        ColumnType = "INTERVAL"
	TypeBoolean         ColumnType = "BOOLEAN"
	TypePoint           ColumnType = "POINT"
	TypeLine            ColumnType = "LINE"
	TypeLseg            ColumnType = "LSEG"
	TypeBox             ColumnType = "BOX"
	TypePath            ColumnType = "PATH"
	TypePolygon         ColumnType = "POLYGON"
	TypeCircle          ColumnType = "CIRCLE"
	TypeCIDR            ColumnType = "CIDR"
	TypeInet            ColumnType = "INET"
	TypeMacAddr         ColumnType = "MACADDR"
	TypeMacAddr8        ColumnType = "MACADDR8"
	TypeBit             ColumnType = "BIT"
	TypeVarbit          ColumnType = "VARBIT"
	TypeTSVector        ColumnType = "TSVECTOR"
	TypeTSQuery         ColumnType = "TSQUERY"
	TypeJSON            ColumnType = "JSON"
	TypeJSONB           ColumnType = "JSONB"
	TypeUUID            ColumnType = "UUID"
	TypeXML             ColumnType = "XML"
	TypeVector          ColumnType = "VECTOR"
	TypeHalfVec         ColumnType = "HALFVEC"
	TypeSparseVec       ColumnType = "SPARSEVEC"
)

// AllColumnTypes returns every ColumnType in catalog order.
func AllColumnTypes() []ColumnType {
	out := make([]ColumnType, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.typ)
	}
	return out
}

type catalogEntry struct {
	typ     ColumnType
	aliases []string
}

// catalog lists the spellings each ColumnType is recognized under. Aliases
// are upper-cased base names with parameters already stripped.
var catalog = []catalogEntry{
	{TypeSmallInt, []string{"INT2", "TINYINT", "YEAR"}},
	{TypeInteger, []string{"INT", "INT4", "MEDIUMINT"}},
	{TypeBigInt, []string{"INT8"}},
	{TypeDecimal, []string{"DEC", "FIXED"}},
	{TypeNumeric, []string{"NUMBER"}},
	{TypeReal, []string{"FLOAT4", "FLOAT"}},
	{TypeDoublePrecision, []string{"DOUBLE", "FLOAT8"}},
	{TypeMoney, nil},
	{TypeSmallSerial, []string{"SERIAL2"}},
	{TypeSerial, []string{"SERIAL4"}},
	{TypeBigSerial, []string{"SERIAL8"}},
	{TypeChar, []string{"CHARACTER", "NCHAR", "BPCHAR"}},
	{TypeVarchar, []string{"CHARACTER VARYING", "NVARCHAR", "VARCHAR2", "NATIONAL VARCHAR"}},
	{TypeText, []string{"TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "CLOB", "STRING", "ENUM", "SET"}},
	{TypeBytea, []string{"BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY"}},
	{TypeDate, nil},
	{TypeTime, []string{"TIME WITHOUT TIME ZONE"}},
	{TypeTimeTZ, []string{"TIME WITH TIME ZONE"}},
	{TypeTimestamp, []string{"DATETIME", "TIMESTAMP WITHOUT TIME ZONE"}},
	{TypeTimestampTZ, []string{"TIMESTAMP WITH TIME ZONE"}},
	{TypeInterval, nil},
	{TypeBoolean, []string{"BOOL"}},
	{TypePoint, nil},
	{TypeLine, []string{"LINESTRING"}},
	{TypeLseg, nil},
	{TypeBox, nil},
	{TypePath, nil},
	{TypePolygon, nil},
	{TypeCircle, nil},
	{TypeCIDR, nil},
	{TypeInet, nil},
	{TypeMacAddr, nil},
	{TypeMacAddr8, nil},
	{TypeBit, nil},
	{TypeVarbit, []string{"BIT VARYING"}},
	{TypeTSVector, nil},
	{TypeTSQuery, nil},
	{TypeJSON, nil},
	{TypeJSONB, nil},
	{TypeUUID, nil},
	{TypeXML, nil},
	{TypeVector, nil},
	{TypeHalfVec, nil},
	{TypeSparseVec, nil},
}

var typeLookup = buildTypeLookup()

func buildTypeLookup() map[string]ColumnType {
	m := make(map[string]ColumnType)
	for _, e := range catalog {
		m[string(e.typ)] = e.typ
		for _, a := range e.aliases {
			m[a] = e.typ
		}
	}
	return m
}

// parenRe matches parenthesized parameters so we can extract the base type
// name. Example: "VARCHAR(255)" -> "VARCHAR".
var parenRe = regexp.MustCompile(`\([^)]*\)`)

// wsRe collapses runs of whitespace after the parameters have been removed.
var wsRe = regexp.MustCompile(`\s+`)

var modifierRe = regexp.MustCompile(`(?i)\b(UNSIGNED|SIGNED|ZEROFILL)\b`)

// BaseTypeName strips parameters, array brackets, schema qualification and
// numeric modifiers, and upper-cases the result.
//
//	"varchar(255)"                -> "VARCHAR"
//	"TIMESTAMP(6) WITH TIME ZONE" -> "TIMESTAMP WITH TIME ZONE"
//	"pg_catalog.int4"             -> "INT4"
//	"INT UNSIGNED"                -> "INT"
func BaseTypeName(raw string) string {
	base := parenRe.ReplaceAllString(raw, "")
	base = strings.ReplaceAll(base, "[]", "")
	base = modifierRe.ReplaceAllString(base, "")
	base = wsRe.ReplaceAllString(strings.TrimSpace(base), " ")
	base = strings.ToUpper(base)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	return strings.Trim(base, `"`)
}

// ToColumnType maps a dialect type name onto the catalog. It is total:
// unknown names resolve to TypeVarchar.
func ToColumnType(dialectTypeName string) ColumnType {
	if t, ok := LookupColumnType(dialectTypeName); ok {
		return t
	}
	return TypeVarchar
}

// LookupColumnType is ToColumnType without the fallback.
func LookupColumnType(dialectTypeName string) (ColumnType, bool) {
	t, ok := typeLookup[BaseTypeName(dialectTypeName)]
	return t, ok
}

// IsSerial reports whether t is one of the auto-increment types.
func (t ColumnType) IsSerial() bool {
	return t == TypeSmallSerial || t == TypeSerial || t == TypeBigSerial
}

// IsVector reports whether t is an embedding type carrying a dimension.
func (t ColumnType) IsVector() bool {
	return t == TypeVector || t == TypeHalfVec || t == TypeSparseVec
}

// SerialFor returns the auto-increment variant of an integer type, or t
// unchanged when no such variant exists.
func SerialFor(t ColumnType) ColumnType {
	switch t {
	case TypeSmallInt:
		return TypeSmallSerial
	case TypeInteger:
		return TypeSerial
	case TypeBigInt:
		return TypeBigSerial
	default:
		return t
	}
}

// ToDialectType renders the column's type for the given dialect, including
// parameters where the dialect supports them.
func ToDialectType(col *Column, d Dialect) string {
	switch d {
	case DialectSQLite:
		return sqliteType(col.Type)
	case DialectMySQL:
		return mysqlType(col)
	default:
		return postgresType(col)
	}
}

// sqliteType collapses every type into one of SQLite's storage affinities.
func sqliteType(t ColumnType) string {
	switch t {
	case TypeSmallInt, TypeInteger, TypeBigInt,
		TypeSmallSerial, TypeSerial, TypeBigSerial,
		TypeBoolean:
		return "INTEGER"
	case TypeDecimal, TypeNumeric, TypeReal, TypeDoublePrecision, TypeMoney:
		return "REAL"
	case TypeBytea:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func postgresType(col *Column) string {
	switch col.Type {
	case TypeChar, TypeVarchar, TypeBit, TypeVarbit:
		return withLength(string(col.Type), col.Length)
	case TypeDecimal, TypeNumeric:
		return withPrecision(string(col.Type), col.Precision, col.Scale)
	case TypeVector, TypeHalfVec, TypeSparseVec:
		return withLength(string(col.Type), col.Dimension)
	default:
		return string(col.Type)
	}
}

// mysqlSpelling covers the types MySQL lacks or spells differently. The
// geometric types are stored as JSON since the MySQL grammar has no spatial
// types to read them back with.
var mysqlSpelling = map[ColumnType]string{
	TypeInteger:         "INT",
	TypeSmallSerial:     "SMALLINT AUTO_INCREMENT",
	TypeSerial:          "INT AUTO_INCREMENT",
	TypeBigSerial:       "BIGINT AUTO_INCREMENT",
	TypeBoolean:         "TINYINT(1)",
	TypeReal:            "FLOAT",
	TypeDoublePrecision: "DOUBLE",
	TypeMoney:           "DECIMAL(19,4)",
	TypeBytea:           "BLOB",
	TypeTimestampTZ:     "TIMESTAMP",
	TypeTimeTZ:          "TIME",
	TypeInterval:        "VARCHAR(255)",
	TypeUUID:            "CHAR(36)",
	TypeJSONB:           "JSON",
	TypeVector:          "JSON",
	TypeHalfVec:         "JSON",
	TypeSparseVec:       "JSON",
	TypeTSVector:        "TEXT",
	TypeTSQuery:         "TEXT",
	TypeXML:             "TEXT",
	TypeCIDR:            "VARCHAR(43)",
	TypeInet:            "VARCHAR(43)",
	TypeMacAddr:         "VARCHAR(17)",
	TypeMacAddr8:        "VARCHAR(23)",
	TypePoint:           "JSON",
	TypeLine:            "JSON",
	TypeLseg:            "JSON",
	TypePath:            "JSON",
	TypeBox:             "JSON",
	TypePolygon:         "JSON",
	TypeCircle:          "JSON",
}

func mysqlType(col *Column) string {
	switch col.Type {
	case TypeVarchar:
		if col.Length == nil {
			return "VARCHAR(255)"
		}
		return withLength("VARCHAR", col.Length)
	case TypeChar, TypeBit:
		return withLength(string(col.Type), col.Length)
	case TypeVarbit:
		return withLength("BIT", col.Length)
	case TypeDecimal, TypeNumeric:
		return withPrecision("DECIMAL", col.Precision, col.Scale)
	}
	if s, ok := mysqlSpelling[col.Type]; ok {
		return s
	}
	return string(col.Type)
}

func withLength(name string, n *int) string {
	if n == nil {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, *n)
}

func withPrecision(name string, precision, scale *int) string {
	switch {
	case precision == nil:
		return name
	case scale == nil:
		return fmt.Sprintf("%s(%d)", name, *precision)
	default:
		return fmt.Sprintf("%s(%d,%d)", name, *precision, *scale)
	}
}
