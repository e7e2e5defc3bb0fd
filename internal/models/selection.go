package models

// FieldSelection is one user-chosen field: a source path in the document
// and the name it should carry in the output. Selections are built once
// per extraction call and passed by value; they are never shared or
// mutated across calls.
type FieldSelection struct {
	SourcePath string
	OutputName string
}

// Record is one flat output row: an ordered mapping of output name to
// value. Values are native JSON values; the CSV exporter stringifies them
// at write time.
type Record struct {
	names  []string
	values map[string]JSONValue
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{
		names:  make([]string, 0),
		values: make(map[string]JSONValue),
	}
}

// Set stores a value under name. The first Set of a name fixes its position.
func (r *Record) Set(name string, value JSONValue) {
	if _, exists := r.values[name]; !exists {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value stored under name and whether the name is present.
func (r *Record) Get(name string) (JSONValue, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the record's field names in insertion order.
func (r *Record) Names() []string {
	return r.names
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.names)
}

// MarshalJSON emits the record with its fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	obj := NewJSONObject()
	for _, n := range r.names {
		obj.Set(n, r.values[n])
	}
	return obj.MarshalJSON()
}

// ExtractionResult is the ordered sequence of records produced by one
// extraction call, plus the output names in selection order (before
// deduplication, so the exporter can detect duplicate names).
type ExtractionResult struct {
	Columns []string
	Records []*Record
}
