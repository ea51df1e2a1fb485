package vellum

import "fmt"

// Batch is a decoded set of equal-length columns. A batch may be column-less
// and still carry a height, which is how empty projections preserve row
// counts for downstream column injection.
type Batch struct {
	schema  *Schema
	columns []Array
	height  int
}

// NewBatch assembles a batch from a schema and matching columns.
func NewBatch(schema *Schema, columns []Array) (*Batch, error) {
	if len(columns) != len(schema.Fields) {
		return nil, fmt.Errorf("vellum: batch has %d columns for %d schema fields", len(columns), len(schema.Fields))
	}
	height := 0
	for i, c := range columns {
		if i == 0 {
			height = c.Len()
		} else if c.Len() != height {
			return nil, fmt.Errorf("vellum: column %q has length %d, want %d", schema.Fields[i].Name, c.Len(), height)
		}
	}
	return &Batch{schema: schema, columns: columns, height: height}, nil
}

// EmptyBatch returns a column-less batch of the given height.
func EmptyBatch(height int) *Batch {
	return &Batch{schema: &Schema{}, columns: nil, height: height}
}

// Schema returns the batch schema.
func (b *Batch) Schema() *Schema { return b.schema }

// NumCols returns the number of columns.
func (b *Batch) NumCols() int { return len(b.columns) }

// Height returns the number of rows.
func (b *Batch) Height() int { return b.height }

// Column returns column i.
func (b *Batch) Column(i int) Array { return b.columns[i] }

// ColumnByName returns the named column, or nil.
func (b *Batch) ColumnByName(name string) Array {
	i := b.schema.FieldIndex(name)
	if i < 0 {
		return nil
	}
	return b.columns[i]
}

// Equal reports whether both batches have equal schemas and columns.
func (b *Batch) Equal(o *Batch) bool {
	if b.height != o.height || !b.schema.Equal(o.schema) {
		return false
	}
	for i := range b.columns {
		if !b.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}

func (b *Batch) appendColumn(f Field, col Array) *Batch {
	fields := append(append([]Field{}, b.schema.Fields...), f)
	return &Batch{
		schema:  &Schema{Fields: fields, Metadata: b.schema.Metadata},
		columns: append(append([]Array{}, b.columns...), col),
		height:  b.height,
	}
}

func (b *Batch) prependColumn(f Field, col Array) *Batch {
	fields := append([]Field{f}, b.schema.Fields...)
	return &Batch{
		schema:  &Schema{Fields: fields, Metadata: b.schema.Metadata},
		columns: append([]Array{col}, b.columns...),
		height:  b.height,
	}
}

// WithRowIndex returns the batch with an int64 row-index column prepended,
// counting from offset.
func (b *Batch) WithRowIndex(name string, offset int64) *Batch {
	values := make([]int64, b.height)
	for i := range values {
		values[i] = offset + int64(i)
	}
	col := PrimitivesOf(TypeInt64, values, nil)
	return b.prependColumn(Field{Name: name, Type: TypeInt64}, col)
}

// WithFilePath returns the batch with a constant utf8 column appended
// holding the source path of every row.
func (b *Batch) WithFilePath(name, path string) *Batch {
	return b.WithConstantColumn(name, path)
}

// WithConstantColumn returns the batch with a constant-valued utf8 column
// appended. This is the injection point for externally computed values such
// as hive partition columns.
func (b *Batch) WithConstantColumn(name, value string) *Batch {
	values := make([]string, b.height)
	for i := range values {
		values[i] = value
	}
	return b.appendColumn(Field{Name: name, Type: TypeUtf8}, StringsOf(values, nil))
}
