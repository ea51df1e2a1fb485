package vellum

import (
	"bytes"

	"github.com/vellum-data/vellum/internal/unsafecast"
)

// PrimitiveArray stores fixed-width values (integers, floats, fixed-size
// binary) contiguously in host byte order. The typed views are obtained with
// the generic PrimitiveValues function.
type PrimitiveArray struct {
	validity
	dtype *DataType
	data  []byte
	n     int
}

// NewPrimitiveArray wraps a raw value buffer holding n values of the given
// fixed-width type. data must hold at least n * dtype.FixedWidth() bytes.
func NewPrimitiveArray(dtype *DataType, data []byte, n int, valid *Bitmap) *PrimitiveArray {
	return &PrimitiveArray{validity: validity{valid}, dtype: dtype, data: data, n: n}
}

// primitiveValue is the constraint on Go types stored in primitive arrays.
type primitiveValue interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// PrimitivesOf builds a primitive array of the given type from a Go slice.
// valid may be nil for an all-valid array. Values in null slots are written
// as given; use zero values to match the writer's fill policy.
func PrimitivesOf[T primitiveValue](dtype *DataType, values []T, valid []bool) *PrimitiveArray {
	data := make([]byte, len(values)*dtype.FixedWidth())
	copy(data, unsafecast.Slice[byte](values))
	var vb *Bitmap
	if valid != nil {
		vb = BitmapFromBools(valid)
	}
	return NewPrimitiveArray(dtype, data, len(values), vb)
}

// PrimitiveValues returns the values of a as a typed slice sharing the
// array's buffer. The size of T must match the array's fixed width.
func PrimitiveValues[T primitiveValue](a *PrimitiveArray) []T {
	return unsafecast.Slice[T](a.data)[:a.n]
}

func (a *PrimitiveArray) DataType() *DataType { return a.dtype }
func (a *PrimitiveArray) Len() int            { return a.n }

// ValueBytes returns the raw value buffer, truncated to the array length.
func (a *PrimitiveArray) ValueBytes() []byte { return a.data[:a.n*a.dtype.FixedWidth()] }

// FixedValue returns the bytes of the fixed-width value at row i.
func (a *PrimitiveArray) FixedValue(i int) []byte {
	w := a.dtype.FixedWidth()
	return a.data[i*w : (i+1)*w]
}

func (a *PrimitiveArray) Equal(other Array) bool {
	o, ok := other.(*PrimitiveArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	for i := 0; i < a.n; i++ {
		if a.IsValid(i) && !bytes.Equal(a.FixedValue(i), o.FixedValue(i)) {
			return false
		}
	}
	return true
}
