package vellum

// FixedSizeListArray is a nested array where every row holds exactly
// dtype.Size contiguous elements of the child array: row i spans child rows
// [i*Size, (i+1)*Size).
type FixedSizeListArray struct {
	validity
	dtype *DataType
	child Array
	n     int
}

// NewFixedSizeListArray builds a fixed-size list of the given logical length
// over child. The child length must equal n * dtype.Size and n must match
// what the child can represent; violations return ErrIntegrity.
func NewFixedSizeListArray(dtype *DataType, n int, child Array, valid *Bitmap) (*FixedSizeListArray, error) {
	size := dtype.Size
	if size <= 0 {
		return nil, Unsupportedf("fixed_size_list width must be positive, got %d", size)
	}
	if child.Len()%size != 0 {
		return nil, Integrityf("fixed_size_list child length %d is not a multiple of width %d", child.Len(), size)
	}
	if child.Len()/size != n {
		return nil, Integrityf("fixed_size_list length %d disagrees with child length %d / width %d", n, child.Len(), size)
	}
	if valid != nil && valid.Len() < n {
		return nil, Integrityf("fixed_size_list validity has %d bits for %d rows", valid.Len(), n)
	}
	return &FixedSizeListArray{validity: validity{valid}, dtype: dtype, child: child, n: n}, nil
}

func (a *FixedSizeListArray) DataType() *DataType { return a.dtype }
func (a *FixedSizeListArray) Len() int            { return a.n }

// Elems returns the child array. Its length is Len() * Size.
func (a *FixedSizeListArray) Elems() Array { return a.child }

// Size returns the fixed number of elements per row.
func (a *FixedSizeListArray) Size() int { return a.dtype.Size }

func (a *FixedSizeListArray) Equal(other Array) bool {
	o, ok := other.(*FixedSizeListArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	// Null rows mask their element range, so compare element-wise rather
	// than delegating to the whole child.
	size := a.Size()
	for i := 0; i < a.n; i++ {
		if !a.IsValid(i) {
			continue
		}
		for j := i * size; j < (i+1)*size; j++ {
			if !elemEqual(a.child, j, o.child, j) {
				return false
			}
		}
	}
	return true
}

// elemEqual compares row ai of a against row bi of b, for arrays of the same
// type.
func elemEqual(a Array, ai int, b Array, bi int) bool {
	if a.IsValid(ai) != b.IsValid(bi) {
		return false
	}
	if !a.IsValid(ai) {
		return true
	}
	switch x := a.(type) {
	case *PrimitiveArray:
		y := b.(*PrimitiveArray)
		return string(x.FixedValue(ai)) == string(y.FixedValue(bi))
	case *BooleanArray:
		return x.Value(ai) == b.(*BooleanArray).Value(bi)
	case *BinaryArray:
		return string(x.Value(ai)) == string(b.(*BinaryArray).Value(bi))
	case *ViewArray:
		return string(x.Value(ai)) == string(b.(*ViewArray).Value(bi))
	default:
		// Nested children: fall back to whole-array comparison.
		return ai == bi && a.Equal(b)
	}
}
