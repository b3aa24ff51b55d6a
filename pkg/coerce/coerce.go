// Package coerce converts untyped source records into typed rows
// according to the target schema's declared column types.
//
// Conversion is strict and single-direction: a source value must
// already have the shape the target column declares, and integer
// targets require the value to fit exactly in the target's bit width.
// A missing field is treated identically to a wrong-typed field; both
// mean the target schema does not match what the source is actually
// delivering. Coercion failures are fatal to the whole scan call, not
// per-row skips, so a query never silently returns partially-typed or
// wrong-typed data.
package coerce

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/openfdw/openfdw/pkg/errors"
	"github.com/openfdw/openfdw/pkg/value"
)

// AttrsColumn is the reserved pseudo-column name. A target column with
// this name bypasses coercion and yields a string cell containing the
// verbatim serialized form of the whole source record.
const AttrsColumn = "_attrs"

// Record is one schemaless source record: a JSON-like tree of
// null/bool/number/string/array/map values. Numbers are expected as
// gojson.Number so integral values survive undamaged; DecodeObject and
// DecodeRecords produce records in this form.
type Record = map[string]interface{}

// DecodeObject decodes one JSON object into a Record, preserving
// numbers as gojson.Number.
func DecodeObject(data []byte) (Record, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "failed to decode source record")
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of objects into Records,
// preserving numbers as gojson.Number.
func DecodeRecords(data []byte) ([]Record, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var recs []Record
	if err := dec.Decode(&recs); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeRequest, "failed to decode source records")
	}
	return recs, nil
}

// RecordToRow converts one source record into a typed row following
// the target columns in order.
//
// A data-shape mismatch (missing field or wrong-typed field) aborts
// immediately. An unsupported target type substitutes a placeholder
// cell so the remaining columns are still processed, but the
// invalid-data-type error is returned as the authoritative outcome.
func RecordToRow(record Record, columns []value.Column) (*value.Row, error) {
	row := value.NewRow()
	var typeErr error

	for _, col := range columns {
		if col.Name == AttrsColumn {
			raw, err := gojson.Marshal(record)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to serialize record for _attrs")
			}
			cell := value.NewString(string(raw))
			row.Push(col.Name, &cell)
			continue
		}

		src, ok := record[col.Name]
		if !ok {
			return nil, mismatch(col)
		}

		cell, err := coerceValue(src, col)
		if err != nil {
			if errors.IsType(err, errors.ErrorTypeValidation) {
				// unsupported target type: keep going with a
				// placeholder cell, surface the error at the end
				if typeErr == nil {
					typeErr = err
				}
				placeholder := value.NewBool(false)
				row.Push(col.Name, &placeholder)
				continue
			}
			return nil, err
		}
		row.Push(col.Name, &cell)
	}

	if typeErr != nil {
		return row, typeErr
	}
	return row, nil
}

// RecordsToRows converts a slice of source records, aborting on the
// first failure.
func RecordsToRows(records []Record, columns []value.Column) ([]*value.Row, error) {
	rows := make([]*value.Row, 0, len(records))
	for _, rec := range records {
		row, err := RecordToRow(rec, columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func coerceValue(src interface{}, col value.Column) (value.Cell, error) {
	switch col.Type {
	case value.ColumnTypeBool:
		b, ok := src.(bool)
		if !ok {
			return value.Cell{}, mismatch(col)
		}
		return value.NewBool(b), nil

	case value.ColumnTypeChar:
		i, err := asInt(src, math.MinInt8, math.MaxInt8)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewInt8(int8(i)), nil

	case value.ColumnTypeInt2:
		i, err := asInt(src, math.MinInt16, math.MaxInt16)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewInt16(int16(i)), nil

	case value.ColumnTypeInt4:
		i, err := asInt(src, math.MinInt32, math.MaxInt32)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewInt32(int32(i)), nil

	case value.ColumnTypeInt8:
		i, err := asInt(src, math.MinInt64, math.MaxInt64)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewInt64(i), nil

	case value.ColumnTypeFloat4:
		f, err := asFloat(src)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		// single precision converts via lossy cast
		return value.NewFloat32(float32(f)), nil

	case value.ColumnTypeFloat8:
		f, err := asFloat(src)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewFloat64(f), nil

	case value.ColumnTypeNumeric:
		f, err := asFloat(src)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewNumeric(decimal.NewFromFloat(f)), nil

	case value.ColumnTypeText:
		s, ok := src.(string)
		if !ok {
			return value.Cell{}, mismatch(col)
		}
		return value.NewString(s), nil

	case value.ColumnTypeDate:
		s, ok := src.(string)
		if !ok {
			return value.Cell{}, mismatch(col)
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewDate(t), nil

	case value.ColumnTypeTimestamp:
		s, ok := src.(string)
		if !ok {
			return value.Cell{}, mismatch(col)
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return value.Cell{}, mismatch(col)
		}
		return value.NewTimestamp(t), nil

	default:
		return value.Cell{}, errors.Newf(errors.ErrorTypeValidation,
			"column '%s' data type '%s' is not supported", col.Name, col.Type)
	}
}

func mismatch(col value.Column) *errors.Error {
	return errors.Newf(errors.ErrorTypeData,
		"column '%s' data type does not match", col.Name).
		WithDetail("column", col.Name).
		WithDetail("type", string(col.Type))
}

// asInt extracts an integral value, failing when the source is not a
// number, not integral, or does not fit the target range exactly.
func asInt(src interface{}, min, max int64) (int64, error) {
	var i int64
	switch v := src.(type) {
	case gojson.Number:
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		i = parsed
	case int64:
		i = v
	case int:
		i = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.New(errors.ErrorTypeData, "not an integral value")
		}
		i = int64(v)
	default:
		return 0, errors.New(errors.ErrorTypeData, "not a numeric value")
	}
	if i < min || i > max {
		return 0, errors.New(errors.ErrorTypeData, "value does not fit target width")
	}
	return i, nil
}

func asFloat(src interface{}) (float64, error) {
	switch v := src.(type) {
	case gojson.Number:
		return strconv.ParseFloat(v.String(), 64)
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.New(errors.ErrorTypeData, "not a numeric value")
	}
}

// parseTimestamp accepts the ISO-8601-like spellings commonly produced
// by JSON APIs.
func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if strings.TrimSpace(s) == "" {
		return time.Time{}, errors.New(errors.ErrorTypeData, "empty timestamp")
	}
	return time.Time{}, lastErr
}
