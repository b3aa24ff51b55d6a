package base

import "github.com/openfdw/openfdw/pkg/value"

// RowSet is the buffered, fully materialized result of one scan,
// drained front to back one row per call. It is owned exclusively by
// one wrapper instance and replaced on each scan.
type RowSet struct {
	rows []*value.Row
	next int
}

// Replace installs a new result set, discarding any previous one.
func (rs *RowSet) Replace(rows []*value.Row) {
	rs.rows = rows
	rs.next = 0
}

// Pop removes and returns the front row. It reports ok=false once the
// set is exhausted or was never populated, and stays that way.
func (rs *RowSet) Pop() (*value.Row, bool) {
	if rs.next >= len(rs.rows) {
		return nil, false
	}
	row := rs.rows[rs.next]
	rs.rows[rs.next] = nil
	rs.next++
	return row, true
}

// Len returns the number of rows not yet drained.
func (rs *RowSet) Len() int {
	return len(rs.rows) - rs.next
}

// Clear releases the buffer. Safe to call at any time, repeatedly.
func (rs *RowSet) Clear() {
	rs.rows = nil
	rs.next = 0
}
