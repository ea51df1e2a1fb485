package vellum

import (
	"fmt"
	"strings"
)

// Field describes one named column or nested sub-column.
type Field struct {
	Name     string
	Type     *DataType
	Nullable bool
	Metadata map[string]string
}

// Schema is an ordered set of top-level fields plus schema-level metadata.
type Schema struct {
	Fields   []Field
	Metadata map[string]string
}

// NewSchema returns a schema over the given fields.
func NewSchema(fields []Field, metadata map[string]string) *Schema {
	return &Schema{Fields: fields, Metadata: metadata}
}

// FieldIndex returns the position of the column with the given name, or -1.
func (s *Schema) FieldIndex(name string) int {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Projection resolves column names to positions against the schema.
//
// The returned slice preserves the order of names. A nil names slice means
// "no projection" and returns nil; an empty non-nil slice is a valid empty
// projection and returns an empty non-nil slice, so callers can distinguish
// the two.
func (s *Schema) Projection(names []string) ([]int, error) {
	if names == nil {
		return nil, nil
	}
	positions := make([]int, 0, len(names))
	for _, name := range names {
		i := s.FieldIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("vellum: column %q not found in schema", name)
		}
		positions = append(positions, i)
	}
	return positions, nil
}

// Select returns the schema restricted to the given column positions, in
// projection order.
func (s *Schema) Select(projection []int) *Schema {
	if projection == nil {
		return s
	}
	fields := make([]Field, len(projection))
	for i, p := range projection {
		fields[i] = s.Fields[p]
	}
	return &Schema{Fields: fields, Metadata: s.Metadata}
}

// Equal reports whether both schemas have identical fields. Metadata is not
// compared.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	return fieldsEqual(s.Fields, o.Fields)
}

// String renders the schema one field per line, suitable for diffing in
// tests and for the inspect tool.
func (s *Schema) String() string {
	b := new(strings.Builder)
	b.WriteString("schema {\n")
	for _, f := range s.Fields {
		nullable := ""
		if f.Nullable {
			nullable = " nullable"
		}
		fmt.Fprintf(b, "  %s: %s%s\n", f.Name, f.Type, nullable)
	}
	b.WriteString("}\n")
	return b.String()
}
