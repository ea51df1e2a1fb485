package vellum

// BooleanArray stores boolean values bit-packed in LSB order, like the
// validity bitmap.
type BooleanArray struct {
	validity
	values *Bitmap
}

// NewBooleanArray wraps a bit-packed value bitmap and an optional validity
// bitmap. values must not be nil; its length is the array length.
func NewBooleanArray(values, valid *Bitmap) *BooleanArray {
	return &BooleanArray{validity: validity{valid}, values: values}
}

// BooleansOf builds a boolean array from Go slices. valid may be nil for an
// all-valid array.
func BooleansOf(values []bool, valid []bool) *BooleanArray {
	bm := BitmapFromBools(values)
	var vb *Bitmap
	if valid != nil {
		vb = BitmapFromBools(valid)
	}
	return NewBooleanArray(bm, vb)
}

func (a *BooleanArray) DataType() *DataType { return TypeBoolean }
func (a *BooleanArray) Len() int            { return a.values.Len() }

// Value returns the boolean at row i. The result for null rows is
// unspecified.
func (a *BooleanArray) Value(i int) bool { return a.values.Get(i) }

// ValueBits returns the bit-packed value bitmap.
func (a *BooleanArray) ValueBits() *Bitmap { return a.values }

func (a *BooleanArray) Equal(other Array) bool {
	o, ok := other.(*BooleanArray)
	if !ok || !validityEqual(a, o) {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsValid(i) && a.Value(i) != o.Value(i) {
			return false
		}
	}
	return true
}
