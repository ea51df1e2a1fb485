package vellum

// ListArray is a nested array of variable-length lists: row i spans child
// rows [offsets[i], offsets[i+1]).
type ListArray struct {
	validity
	dtype   *DataType
	offsets []int32
	child   Array
}

// NewListArray builds a list array. len(offsets) must be one greater than
// the array length; offsets must be non-decreasing and end within the child.
func NewListArray(dtype *DataType, offsets []int32, child Array, valid *Bitmap) (*ListArray, error) {
	if len(offsets) == 0 {
		return nil, Integrityf("list offsets buffer is empty")
	}
	last := offsets[len(offsets)-1]
	if int(last) > child.Len() {
		return nil, Integrityf("list offsets end at %d past child length %d", last, child.Len())
	}
	return &ListArray{validity: validity{valid}, dtype: dtype, offsets: offsets, child: child}, nil
}

func (a *ListArray) DataType() *DataType { return a.dtype }
func (a *ListArray) Len() int            { return len(a.offsets) - 1 }

// Offsets returns the offsets buffer.
func (a *ListArray) Offsets() []int32 { return a.offsets }

// Elems returns the child array.
func (a *ListArray) Elems() Array { return a.child }

func (a *ListArray) Equal(other Array) bool {
	o, ok := other.(*ListArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !a.IsValid(i) {
			continue
		}
		an := int(a.offsets[i+1] - a.offsets[i])
		on := int(o.offsets[i+1] - o.offsets[i])
		if an != on {
			return false
		}
		for j := 0; j < an; j++ {
			if !elemEqual(a.child, int(a.offsets[i])+j, o.child, int(o.offsets[i])+j) {
				return false
			}
		}
	}
	return true
}
