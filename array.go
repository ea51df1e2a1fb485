package vellum

// Array is a fully decoded, immutable columnar array.
//
// Arrays own their validity bitmap and value buffers; nested arrays
// additionally own their child arrays. None of these are mutated after
// construction, which makes read-only sharing across goroutines safe.
type Array interface {
	// DataType returns the logical type of the array.
	DataType() *DataType

	// Len returns the number of logical rows.
	Len() int

	// Validity returns the validity bitmap, or nil when every row is valid.
	Validity() *Bitmap

	// NullCount returns the number of null rows.
	NullCount() int

	// IsValid reports whether row i is non-null.
	IsValid(i int) bool

	// Equal reports whether the other array has the same type and the same
	// logical values. Bytes masked out by validity are not compared.
	Equal(Array) bool
}

type validity struct {
	bitmap *Bitmap
}

func (v validity) Validity() *Bitmap { return v.bitmap }

func (v validity) IsValid(i int) bool { return v.bitmap.Get(i) }

func (v validity) NullCount() int {
	if v.bitmap == nil {
		return 0
	}
	return v.bitmap.Len() - v.bitmap.CountSet()
}

func validityEqual(a, b Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsValid(i) != b.IsValid(i) {
			return false
		}
	}
	return true
}

// NullArray is an array of n untyped nulls. It has no physical buffers.
type NullArray struct {
	n int
}

// NewNullArray returns an all-null array of length n.
func NewNullArray(n int) *NullArray { return &NullArray{n: n} }

func (a *NullArray) DataType() *DataType { return TypeNull }
func (a *NullArray) Len() int            { return a.n }
func (a *NullArray) Validity() *Bitmap   { return nil }
func (a *NullArray) NullCount() int      { return a.n }
func (a *NullArray) IsValid(int) bool    { return false }

func (a *NullArray) Equal(other Array) bool {
	o, ok := other.(*NullArray)
	return ok && o.n == a.n
}
