package ipc

import (
	"encoding/binary"
	"math"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/compress"
	"github.com/vellum-data/vellum/format"
	"github.com/vellum-data/vellum/internal/unsafecast"
)

// decodeContext carries the state shared by the recursive decode of one
// record batch: the queue cursor, the message body, the dictionary registry
// and the buffer transformations implied by the stream (decompression and
// byte-order correction).
//
// Uncompressed buffers are aliased from the body rather than copied, so the
// decoded arrays borrow the body's lifetime. For heap bodies the arrays
// simply keep the allocation alive; for memory-mapped bodies they are valid
// until the mapping is closed.
type decodeContext struct {
	cur   *cursor
	body  []byte
	dicts Dictionaries
	codec compress.Codec
	swap  bool // stream stores fixed-width values big-endian
}

// rows clamps a node's declared length to the row limit. A limit of noLimit
// disables clamping.
func rows(node format.FieldNode, limit int) int {
	n := int(node.Length)
	if limit != noLimit && limit < n {
		n = limit
	}
	return n
}

// scaleLimit multiplies a row limit by the slot width of a fixed-size list,
// saturating instead of overflowing.
func scaleLimit(limit, size int) int {
	if limit == noLimit {
		return noLimit
	}
	if limit > math.MaxInt/size {
		return math.MaxInt
	}
	return limit * size
}

// bufferBytes pops the next buffer descriptor and returns the buffer's
// bytes, undoing per-buffer compression framing when the batch is
// compressed: an int64 uncompressed length followed by the codec frame, with
// a length of -1 meaning the bytes are stored as-is.
func (d *decodeContext) bufferBytes(dtype *vellum.DataType) ([]byte, error) {
	buf, err := d.cur.nextBuffer(dtype)
	if err != nil {
		return nil, err
	}
	// The bounds are checked separately so that a descriptor near the int64
	// ceiling cannot wrap the sum negative and slip past the comparison.
	if buf.Offset < 0 || buf.Length < 0 ||
		buf.Offset > int64(len(d.body)) || buf.Length > int64(len(d.body))-buf.Offset {
		return nil, vellum.Corruptf("%s buffer [%d, +%d) lies outside the %d byte body", dtype, buf.Offset, buf.Length, len(d.body))
	}
	data := d.body[buf.Offset : buf.Offset+buf.Length]
	if d.codec == nil || len(data) == 0 {
		return data, nil
	}
	if len(data) < 8 {
		return nil, vellum.Corruptf("compressed %s buffer of %d bytes is shorter than its length prefix", dtype, len(data))
	}
	n := int64(binary.LittleEndian.Uint64(data))
	frame := data[8:]
	if n == -1 {
		return frame, nil
	}
	if n < 0 {
		return nil, vellum.Corruptf("compressed %s buffer declares uncompressed length %d", dtype, n)
	}
	out, err := d.codec.Decode(make([]byte, 0, n), frame)
	if err != nil {
		return nil, vellum.Corruptf("decompressing %s buffer: %v", dtype, err)
	}
	if int64(len(out)) != n {
		return nil, vellum.Corruptf("compressed %s buffer declares %d uncompressed bytes but decodes to %d", dtype, n, len(out))
	}
	return out, nil
}

// readValidity consumes the validity buffer slot of a column. The slot is
// popped even when the node declares zero nulls, to stay aligned with the
// buffer queue, but in that case the bytes are not touched and a nil
// (all-valid) bitmap is returned.
func (d *decodeContext) readValidity(dtype *vellum.DataType, node format.FieldNode, limit int) (*vellum.Bitmap, error) {
	n := rows(node, limit)
	if node.NullCount == 0 {
		_, err := d.cur.nextBuffer(dtype)
		return nil, err
	}
	data, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	if len(data) < (n+7)/8 {
		return nil, vellum.Corruptf("%s validity bitmap has %d bytes for %d rows", dtype, len(data), n)
	}
	return vellum.NewBitmap(data, n), nil
}

// fixedData truncates a value buffer to n values of the given width,
// byte-swapping into a copy when the stream byte order is not the host's.
// Fixed-size binary values are opaque bytes and are never swapped.
func (d *decodeContext) fixedData(dtype *vellum.DataType, data []byte, n, width int) ([]byte, error) {
	if n > math.MaxInt/width {
		return nil, vellum.Corruptf("%s declares %d values of width %d", dtype, n, width)
	}
	need := n * width
	if len(data) < need {
		return nil, vellum.Corruptf("%s value buffer has %d bytes for %d values of width %d", dtype, len(data), n, width)
	}
	data = data[:need]
	if d.swap && width > 1 && dtype.Kind != vellum.FixedSizeBinary {
		data = swapCopy(data, width)
	}
	return data, nil
}

// offsets32 pops and validates the int32 offsets buffer of a list-like
// column with n rows.
func (d *decodeContext) offsets32(dtype *vellum.DataType, n int) ([]int32, error) {
	data, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	if n >= math.MaxInt/4 {
		return nil, vellum.Corruptf("%s declares %d offsets", dtype, n)
	}
	need := (n + 1) * 4
	if len(data) < need {
		return nil, vellum.Corruptf("%s offsets buffer has %d bytes for %d rows", dtype, len(data), n)
	}
	data = data[:need]
	if d.swap {
		data = swapCopy(data, 4)
	}
	offsets := unsafecast.Slice[int32](data)[: n+1 : n+1]
	if offsets[0] < 0 {
		return nil, vellum.Corruptf("%s offsets start at %d", dtype, offsets[0])
	}
	for i := 0; i < n; i++ {
		if offsets[i+1] < offsets[i] {
			return nil, vellum.Corruptf("%s offsets decrease at row %d (%d -> %d)", dtype, i, offsets[i], offsets[i+1])
		}
	}
	return offsets, nil
}

// swapCopy returns a copy of data with the byte order of each width-sized
// value reversed.
func swapCopy(data []byte, width int) []byte {
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += width {
		for j := 0; j < width; j++ {
			out[i+j] = data[i+width-1-j]
		}
	}
	return out
}
