package form

import (
	"fmt"
	"time"
)

// Column projects one field onto a named record column.
type Column struct {
	Name  string `json:"column" yaml:"column"`
	Field string `json:"field" yaml:"field"`
}

// Record is what a validated form becomes: a handful of indexed columns and
// the full snapshot of every field.
type Record struct {
	Columns     map[string]string `json:"columns"`
	Snapshot    map[string]string `json:"snapshot"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// Column returns the value of a projected column.
func (r *Record) Column(name string) string {
	return r.Columns[name]
}

// Mapper turns validated states into records.
type Mapper struct {
	schema  *Schema
	columns []Column
}

// NewMapper checks that every column reads an existing field and that column
// names are unique.
func NewMapper(schema *Schema, columns []Column) (*Mapper, error) {
	var problems []string
	seen := map[string]bool{}
	for _, c := range columns {
		if c.Name == "" {
			problems = append(problems, fmt.Sprintf("column for field %q has no name", c.Field))
		}
		if seen[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate column %q", c.Name))
		}
		seen[c.Name] = true
		if !schema.Has(c.Field) {
			problems = append(problems, fmt.Sprintf("column %q reads unknown field %q", c.Name, c.Field))
		}
	}
	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}
	return &Mapper{schema: schema, columns: append([]Column(nil), columns...)}, nil
}

// Columns returns the projection list.
func (m *Mapper) Columns() []Column {
	return append([]Column(nil), m.columns...)
}

// Map validates the state and builds its record. Columns are projected
// regardless of visibility; the snapshot holds every field.
func (m *Mapper) Map(s *State) (*Record, error) {
	if s.schema != m.schema {
		return nil, fmt.Errorf("state was built from a different schema")
	}
	if err := Validate(s).Err(); err != nil {
		return nil, err
	}
	rec := &Record{
		Columns:     make(map[string]string, len(m.columns)),
		Snapshot:    s.Snapshot(),
		SubmittedAt: s.now(),
	}
	for _, c := range m.columns {
		rec.Columns[c.Name] = s.values[c.Field]
	}
	return rec, nil
}
