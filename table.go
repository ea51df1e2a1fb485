package vellum

import "io"

// Table is an ordered sequence of batches sharing one schema, as produced by
// reading a whole file. Batches are kept separate rather than concatenated,
// so zero-copy columns keep aliasing their source buffers.
//
// A table may own an underlying resource such as a memory mapping; Close
// releases it, after which zero-copy columns must not be used.
type Table struct {
	schema  *Schema
	batches []*Batch
	height  int
	closer  io.Closer
}

// NewTable assembles a table. Every batch must carry a schema equal to the
// given one. closer may be nil.
func NewTable(schema *Schema, batches []*Batch, closer io.Closer) (*Table, error) {
	height := 0
	for _, b := range batches {
		if !b.Schema().Equal(schema) {
			return nil, Integrityf("table batches carry unequal schemas")
		}
		height += b.Height()
	}
	return &Table{schema: schema, batches: batches, height: height, closer: closer}, nil
}

// Schema returns the shared schema.
func (t *Table) Schema() *Schema { return t.schema }

// NumBatches returns the number of batches.
func (t *Table) NumBatches() int { return len(t.batches) }

// Batch returns batch i.
func (t *Table) Batch(i int) *Batch { return t.batches[i] }

// Height returns the total number of rows across batches.
func (t *Table) Height() int { return t.height }

// Close releases the resource backing the table's columns, if any. It is
// safe to call more than once.
func (t *Table) Close() error {
	if t.closer == nil {
		return nil
	}
	c := t.closer
	t.closer = nil
	return c.Close()
}

// Equal reports whether both tables hold the same rows in the same batch
// boundaries.
func (t *Table) Equal(o *Table) bool {
	if t.height != o.height || len(t.batches) != len(o.batches) || !t.schema.Equal(o.schema) {
		return false
	}
	for i := range t.batches {
		if !t.batches[i].Equal(o.batches[i]) {
			return false
		}
	}
	return true
}
