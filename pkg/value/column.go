package value

// ColumnType is the declared relational type of a projection column.
// Identifiers follow the usual SQL spellings.
type ColumnType string

const (
	ColumnTypeBool      ColumnType = "bool"
	ColumnTypeChar      ColumnType = "char" // 8-bit signed integer
	ColumnTypeInt2      ColumnType = "int2"
	ColumnTypeInt4      ColumnType = "int4"
	ColumnTypeInt8      ColumnType = "int8"
	ColumnTypeFloat4    ColumnType = "float4"
	ColumnTypeFloat8    ColumnType = "float8"
	ColumnTypeNumeric   ColumnType = "numeric"
	ColumnTypeText      ColumnType = "text"
	ColumnTypeDate      ColumnType = "date"
	ColumnTypeTimestamp ColumnType = "timestamp"
)

// Column is a projection descriptor supplied by the caller for every
// scan. It is immutable for the duration of a scan.
type Column struct {
	// Name is the projected column name.
	Name string
	// Type is the declared type identifier.
	Type ColumnType
	// Elem carries element type information for composite or array
	// columns; empty for scalar columns.
	Elem ColumnType
}

// Qual is an advisory predicate pushdown hint. A wrapper may ignore it
// and rely on post-filtering by the caller.
type Qual struct {
	Field    string
	Operator string
	Value    interface{}
}

// Sort is an advisory ordering pushdown hint.
type Sort struct {
	Field    string
	Reversed bool
}

// Limit is an advisory row-cap pushdown hint.
type Limit struct {
	Count  int64
	Offset int64
}
