package vellum

// UnionArray stores one of several variant types per row. In sparse mode
// every child has the full array length and row i of the union is row i of
// the selected child; in dense mode each child only holds its own rows and
// an offsets buffer locates them.
//
// Unions carry no validity bitmap of their own; nullability lives in the
// children.
type UnionArray struct {
	dtype    *DataType
	typeIDs  []int8
	offsets  []int32 // dense mode only
	children []Array
}

// NewUnionArray builds a union array. offsets must be nil in sparse mode and
// have the same length as typeIDs in dense mode.
func NewUnionArray(dtype *DataType, typeIDs []int8, offsets []int32, children []Array) (*UnionArray, error) {
	if len(children) != len(dtype.Fields) {
		return nil, Integrityf("union has %d children for %d variants", len(children), len(dtype.Fields))
	}
	if dtype.Mode == DenseUnion {
		if len(offsets) != len(typeIDs) {
			return nil, Integrityf("dense union has %d offsets for %d type ids", len(offsets), len(typeIDs))
		}
	} else if offsets != nil {
		return nil, Integrityf("sparse union must not carry offsets")
	}
	return &UnionArray{dtype: dtype, typeIDs: typeIDs, offsets: offsets, children: children}, nil
}

func (a *UnionArray) DataType() *DataType { return a.dtype }
func (a *UnionArray) Len() int            { return len(a.typeIDs) }
func (a *UnionArray) Validity() *Bitmap   { return nil }
func (a *UnionArray) NullCount() int      { return 0 }
func (a *UnionArray) IsValid(i int) bool {
	child, row := a.resolve(i)
	return a.children[child].IsValid(row)
}

// TypeIDs returns the per-row variant ids.
func (a *UnionArray) TypeIDs() []int8 { return a.typeIDs }

// Offsets returns the dense-mode offsets, or nil in sparse mode.
func (a *UnionArray) Offsets() []int32 { return a.offsets }

// Child returns the array of variant i (by position, not type id).
func (a *UnionArray) Child(i int) Array { return a.children[i] }

// resolve maps row i to (child position, child row).
func (a *UnionArray) resolve(i int) (int, int) {
	id := a.typeIDs[i]
	child := 0
	for j, tid := range a.dtype.TypeIDs {
		if tid == id {
			child = j
			break
		}
	}
	if a.dtype.Mode == DenseUnion {
		return child, int(a.offsets[i])
	}
	return child, i
}

func (a *UnionArray) Equal(other Array) bool {
	o, ok := other.(*UnionArray)
	if !ok || !a.dtype.Equal(o.dtype) || a.Len() != o.Len() {
		return false
	}
	for i := range a.typeIDs {
		if a.typeIDs[i] != o.typeIDs[i] {
			return false
		}
		ac, ar := a.resolve(i)
		oc, or := o.resolve(i)
		if ac != oc || !elemEqual(a.children[ac], ar, o.children[oc], or) {
			return false
		}
	}
	return true
}
