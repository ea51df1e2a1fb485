package vellum

import (
	"bytes"

	"github.com/vellum-data/vellum/internal/unsafecast"
)

// BinaryArray stores variable-length byte values through an int32 offsets
// buffer: value i spans values[offsets[i]:offsets[i+1]]. It backs both the
// Binary and Utf8 logical types.
type BinaryArray struct {
	validity
	dtype   *DataType
	offsets []int32
	values  []byte
}

// NewBinaryArray wraps offsets and values buffers. len(offsets) must be one
// greater than the array length, and offsets must be non-decreasing.
func NewBinaryArray(dtype *DataType, offsets []int32, values []byte, valid *Bitmap) *BinaryArray {
	return &BinaryArray{validity: validity{valid}, dtype: dtype, offsets: offsets, values: values}
}

// StringsOf builds a Utf8 array from Go strings. valid may be nil.
func StringsOf(values []string, valid []bool) *BinaryArray {
	offsets := make([]int32, len(values)+1)
	var data []byte
	for i, v := range values {
		if valid == nil || valid[i] {
			data = append(data, v...)
		}
		offsets[i+1] = int32(len(data))
	}
	var vb *Bitmap
	if valid != nil {
		vb = BitmapFromBools(valid)
	}
	return NewBinaryArray(TypeUtf8, offsets, data, vb)
}

func (a *BinaryArray) DataType() *DataType { return a.dtype }
func (a *BinaryArray) Len() int            { return len(a.offsets) - 1 }

// Value returns the bytes of row i without copying.
func (a *BinaryArray) Value(i int) []byte {
	return a.values[a.offsets[i]:a.offsets[i+1]]
}

// String returns row i as a string sharing the value buffer.
func (a *BinaryArray) String(i int) string {
	return unsafecast.BytesToString(a.Value(i))
}

// Offsets returns the offsets buffer.
func (a *BinaryArray) Offsets() []int32 { return a.offsets }

// ValueBytes returns the contiguous value buffer.
func (a *BinaryArray) ValueBytes() []byte { return a.values }

func (a *BinaryArray) Equal(other Array) bool {
	o, ok := other.(*BinaryArray)
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
