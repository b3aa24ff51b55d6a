package value

// Field is one named slot in a row. A nil Cell represents SQL NULL.
type Field struct {
	Name string
	Cell *Cell
}

// Row is an ordered sequence of named cells representing one source
// record after coercion. Field order follows the projection order
// requested by the caller, not source order. Name uniqueness is the
// caller's responsibility; the row itself does not enforce it.
type Row struct {
	fields []Field
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{}
}

// Push appends a named cell to the row. A nil cell records a NULL.
func (r *Row) Push(name string, cell *Cell) {
	r.fields = append(r.fields, Field{Name: name, Cell: cell})
}

// Len returns the number of fields in the row.
func (r *Row) Len() int {
	return len(r.fields)
}

// Field returns the field at position i.
func (r *Row) Field(i int) Field {
	return r.fields[i]
}

// Get returns the first cell with the given name, or nil and false if
// no such field exists.
func (r *Row) Get(name string) (*Cell, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Cell, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r *Row) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// ReplaceWith swaps this row's contents for those of other.
func (r *Row) ReplaceWith(other *Row) {
	r.fields = other.fields
}

// Interface returns the row as an ordered name->value map for JSON
// encoding of query output. NULL cells map to nil.
func (r *Row) Interface() map[string]interface{} {
	out := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		if f.Cell == nil {
			out[f.Name] = nil
			continue
		}
		out[f.Name] = f.Cell.Interface()
	}
	return out
}
