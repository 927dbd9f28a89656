package ccdb

// ColumnType is the declared scalar type of a type table column.
type ColumnType string

// Column types understood by the database.
const (
	ColumnInt    ColumnType = "int"
	ColumnUInt   ColumnType = "uint"
	ColumnLong   ColumnType = "long"
	ColumnULong  ColumnType = "ulong"
	ColumnDouble ColumnType = "double"
	ColumnBool   ColumnType = "bool"
	ColumnString ColumnType = "string"
)

// ParseColumnType maps a declared type string to a ColumnType. Unknown
// or empty type names map to double, matching the historical behavior
// of table creation ("px" with no type becomes a double column).
func ParseColumnType(s string) ColumnType {
	switch s {
	case "int", "integer":
		return ColumnInt
	case "uint", "unsigned int", "unsigned integer":
		return ColumnUInt
	case "long":
		return ColumnLong
	case "ulong", "unsigned long":
		return ColumnULong
	case "bool", "boolean":
		return ColumnBool
	case "string":
		return ColumnString
	default:
		return ColumnDouble
	}
}
