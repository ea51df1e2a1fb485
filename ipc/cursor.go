package ipc

import (
	"math"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// cursor tracks the shared position in the flat pre-order field-node,
// buffer-descriptor and variadic-count sequences of one record batch. One
// cursor is threaded by pointer through the whole recursive decode (or skip)
// of a batch; decoding and skipping a column consume exactly the same
// entries, which is what keeps projections aligned.
type cursor struct {
	nodes    []format.FieldNode
	buffers  []format.Buffer
	variadic []int64

	node int
	buf  int
	vc   int
}

func newCursor(rec *format.RecordBatch) *cursor {
	return &cursor{nodes: rec.Nodes, buffers: rec.Buffers, variadic: rec.VariadicCounts}
}

// nextNode pops the field node of the column being decoded. Exhaustion means
// the header disagrees with the schema, which is corruption, not a bug.
func (c *cursor) nextNode(dtype *vellum.DataType) (format.FieldNode, error) {
	if c.node >= len(c.nodes) {
		return format.FieldNode{}, vellum.Corruptf("no field node left for %s column (consumed %d)", dtype, c.node)
	}
	n := c.nodes[c.node]
	c.node++
	// The wire varint reinterpreted as int64 can be negative or larger than
	// any addressable array; either way the header lies about its shape.
	if n.Length < 0 || n.Length > math.MaxInt-7 || n.NullCount < 0 {
		return format.FieldNode{}, vellum.Corruptf("field node for %s column declares %d rows and %d nulls", dtype, n.Length, n.NullCount)
	}
	return n, nil
}

// nextBuffer pops the next buffer descriptor.
func (c *cursor) nextBuffer(dtype *vellum.DataType) (format.Buffer, error) {
	if c.buf >= len(c.buffers) {
		return format.Buffer{}, vellum.Corruptf("no buffer descriptor left for %s column (consumed %d)", dtype, c.buf)
	}
	b := c.buffers[c.buf]
	c.buf++
	return b, nil
}

// nextVariadicCount pops the data-buffer count of a view column.
func (c *cursor) nextVariadicCount(dtype *vellum.DataType) (int64, error) {
	if c.vc >= len(c.variadic) {
		return 0, vellum.Corruptf("no variadic buffer count left for %s column (consumed %d)", dtype, c.vc)
	}
	n := c.variadic[c.vc]
	c.vc++
	if n < 0 {
		return 0, vellum.Corruptf("negative variadic buffer count %d for %s column", n, dtype)
	}
	return n, nil
}
