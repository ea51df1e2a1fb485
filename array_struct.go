package vellum

// StructArray is a nested array whose children hold one column per struct
// member, all of the same length.
type StructArray struct {
	validity
	dtype    *DataType
	children []Array
	n        int
}

// NewStructArray builds a struct array of length n. Every child must have
// length n and there must be one child per member of the struct type.
func NewStructArray(dtype *DataType, n int, children []Array, valid *Bitmap) (*StructArray, error) {
	if len(children) != len(dtype.Fields) {
		return nil, Integrityf("struct has %d children for %d fields", len(children), len(dtype.Fields))
	}
	for i, c := range children {
		if c.Len() != n {
			return nil, Integrityf("struct child %q has length %d, want %d", dtype.Fields[i].Name, c.Len(), n)
		}
	}
	return &StructArray{validity: validity{valid}, dtype: dtype, children: children, n: n}, nil
}

func (a *StructArray) DataType() *DataType { return a.dtype }
func (a *StructArray) Len() int            { return a.n }

// Field returns the child array of member i.
func (a *StructArray) Field(i int) Array { return a.children[i] }

// NumFields returns the number of members.
func (a *StructArray) NumFields() int { return len(a.children) }

func (a *StructArray) Equal(other Array) bool {
	o, ok := other.(*StructArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	for f := range a.children {
		for i := 0; i < a.n; i++ {
			if a.IsValid(i) && !elemEqual(a.children[f], i, o.children[f], i) {
				return false
			}
		}
	}
	return true
}
