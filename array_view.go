package vellum

import (
	"bytes"
	"encoding/binary"

	"github.com/vellum-data/vellum/internal/unsafecast"
)

// viewWidth is the size of one view entry: int32 length, then either up to
// 12 inline bytes, or a 4-byte prefix, an int32 data-buffer index and an
// int32 offset into that buffer.
const viewWidth = 16

// viewInlineMax is the largest value stored inline in the view entry.
const viewInlineMax = 12

// ViewArray stores variable-length values as fixed-width view entries plus a
// variadic number of shared data buffers. It backs the BinaryView and
// Utf8View logical types.
type ViewArray struct {
	validity
	dtype   *DataType
	views   []byte   // n * viewWidth bytes
	buffers [][]byte // variadic data buffers referenced by long views
}

// NewViewArray wraps raw view entries and their data buffers. len(views)
// must be a multiple of viewWidth.
func NewViewArray(dtype *DataType, views []byte, buffers [][]byte, valid *Bitmap) (*ViewArray, error) {
	if len(views)%viewWidth != 0 {
		return nil, Integrityf("view buffer length %d is not a multiple of %d", len(views), viewWidth)
	}
	return &ViewArray{validity: validity{valid}, dtype: dtype, views: views, buffers: buffers}, nil
}

// ViewStringsOf builds a Utf8View array from Go strings, inlining short
// values and packing long ones into a single data buffer.
func ViewStringsOf(values []string, valid []bool) *ViewArray {
	views := make([]byte, len(values)*viewWidth)
	var data []byte
	long := false
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		entry := views[i*viewWidth:]
		binary.LittleEndian.PutUint32(entry, uint32(len(v)))
		if len(v) <= viewInlineMax {
			copy(entry[4:], v)
			continue
		}
		copy(entry[4:8], v[:4])
		binary.LittleEndian.PutUint32(entry[8:], 0)
		binary.LittleEndian.PutUint32(entry[12:], uint32(len(data)))
		data = append(data, v...)
		long = true
	}
	var buffers [][]byte
	if long {
		buffers = [][]byte{data}
	}
	var vb *Bitmap
	if valid != nil {
		vb = BitmapFromBools(valid)
	}
	a, _ := NewViewArray(&DataType{Kind: Utf8View}, views, buffers, vb)
	return a
}

func (a *ViewArray) DataType() *DataType { return a.dtype }
func (a *ViewArray) Len() int            { return len(a.views) / viewWidth }

// Views returns the raw view entries.
func (a *ViewArray) Views() []byte { return a.views }

// DataBuffers returns the variadic data buffers.
func (a *ViewArray) DataBuffers() [][]byte { return a.buffers }

// Value returns the bytes of row i, resolving inline or buffered storage.
func (a *ViewArray) Value(i int) []byte {
	entry := a.views[i*viewWidth : (i+1)*viewWidth]
	n := int(binary.LittleEndian.Uint32(entry))
	if n <= viewInlineMax {
		return entry[4 : 4+n]
	}
	buf := int(binary.LittleEndian.Uint32(entry[8:]))
	off := int(binary.LittleEndian.Uint32(entry[12:]))
	return a.buffers[buf][off : off+n]
}

// String returns row i as a string sharing the underlying storage.
func (a *ViewArray) String(i int) string { return unsafecast.BytesToString(a.Value(i)) }

func (a *ViewArray) Equal(other Array) bool {
	o, ok := other.(*ViewArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsValid(i) && !bytes.Equal(a.Value(i), o.Value(i)) {
			return false
		}
	}
	return true
}
