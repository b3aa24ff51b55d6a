// Package value defines the relational value model shared by all
// wrappers: typed cells, ordered rows, projection columns and the
// advisory pushdown descriptors (quals, sorts, limit).
//
// A Cell is a tagged union over every relational value a wrapper can
// produce. Construction is infallible and no implicit cross-variant
// conversion is ever performed here; all coercion logic lives in the
// coerce package, keeping this type a pure data carrier.
package value

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Cell.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindNumeric
	KindString
	KindDate
	KindTimestamp
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	default:
		return "invalid"
	}
}

// Cell is one typed relational value. The zero Cell has KindInvalid
// and compares equal only to another zero Cell.
type Cell struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	n    decimal.Decimal
	s    string
	t    time.Time
}

// NewBool returns a boolean cell.
func NewBool(v bool) Cell { return Cell{kind: KindBool, b: v} }

// NewInt8 returns an 8-bit signed integer cell.
func NewInt8(v int8) Cell { return Cell{kind: KindInt8, i: int64(v)} }

// NewInt16 returns a 16-bit signed integer cell.
func NewInt16(v int16) Cell { return Cell{kind: KindInt16, i: int64(v)} }

// NewInt32 returns a 32-bit signed integer cell.
func NewInt32(v int32) Cell { return Cell{kind: KindInt32, i: int64(v)} }

// NewInt64 returns a 64-bit signed integer cell.
func NewInt64(v int64) Cell { return Cell{kind: KindInt64, i: v} }

// NewFloat32 returns a single-precision float cell.
func NewFloat32(v float32) Cell { return Cell{kind: KindFloat32, f: float64(v)} }

// NewFloat64 returns a double-precision float cell.
func NewFloat64(v float64) Cell { return Cell{kind: KindFloat64, f: v} }

// NewNumeric returns an arbitrary-precision numeric cell.
func NewNumeric(v decimal.Decimal) Cell { return Cell{kind: KindNumeric, n: v} }

// NewString returns a string cell.
func NewString(v string) Cell { return Cell{kind: KindString, s: v} }

// NewDate returns a date cell. The time component is truncated to UTC midnight.
func NewDate(v time.Time) Cell {
	y, m, d := v.Date()
	return Cell{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewTimestamp returns a timestamp cell.
func NewTimestamp(v time.Time) Cell { return Cell{kind: KindTimestamp, t: v} }

// Kind returns the variant tag of the cell.
func (c Cell) Kind() Kind { return c.kind }

// Bool returns the boolean value; false if the cell is not a bool.
func (c Cell) Bool() bool { return c.b }

// Int returns the integer value regardless of declared width.
func (c Cell) Int() int64 { return c.i }

// Float returns the floating point value regardless of precision.
func (c Cell) Float() float64 { return c.f }

// Numeric returns the arbitrary-precision value.
func (c Cell) Numeric() decimal.Decimal { return c.n }

// Str returns the string value.
func (c Cell) Str() string { return c.s }

// Time returns the date or timestamp value.
func (c Cell) Time() time.Time { return c.t }

// Equal reports value-wise equality. Cells of different kinds are
// never equal.
func (c Cell) Equal(other Cell) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case KindBool:
		return c.b == other.b
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return c.i == other.i
	case KindFloat32, KindFloat64:
		return c.f == other.f
	case KindNumeric:
		return c.n.Equal(other.n)
	case KindString:
		return c.s == other.s
	case KindDate, KindTimestamp:
		return c.t.Equal(other.t)
	default:
		return true
	}
}

// Less reports value-wise ordering within the same kind. The second
// return value is false when the kinds differ or the kind has no
// natural order.
func (c Cell) Less(other Cell) (bool, bool) {
	if c.kind != other.kind {
		return false, false
	}
	switch c.kind {
	case KindBool:
		return !c.b && other.b, true
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return c.i < other.i, true
	case KindFloat32, KindFloat64:
		return c.f < other.f, true
	case KindNumeric:
		return c.n.LessThan(other.n), true
	case KindString:
		return c.s < other.s, true
	case KindDate, KindTimestamp:
		return c.t.Before(other.t), true
	default:
		return false, false
	}
}

// String renders the cell value for display and CLI output.
func (c Cell) String() string {
	switch c.kind {
	case KindBool:
		return fmt.Sprintf("%t", c.b)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fmt.Sprintf("%d", c.i)
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%g", c.f)
	case KindNumeric:
		return c.n.String()
	case KindString:
		return c.s
	case KindDate:
		return c.t.Format("2006-01-02")
	case KindTimestamp:
		return c.t.Format(time.RFC3339)
	default:
		return "<invalid>"
	}
}

// Interface returns the cell value as a plain Go value, suitable for
// JSON encoding of query output.
func (c Cell) Interface() interface{} {
	switch c.kind {
	case KindBool:
		return c.b
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return c.i
	case KindFloat32, KindFloat64:
		return c.f
	case KindNumeric:
		return c.n.String()
	case KindString:
		return c.s
	case KindDate:
		return c.t.Format("2006-01-02")
	case KindTimestamp:
		return c.t.Format(time.RFC3339)
	default:
		return nil
	}
}
