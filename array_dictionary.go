package vellum

// DictionaryArray stores row values as integer indices into a shared
// dictionary of distinct values. The dictionary array is materialized by a
// dictionary batch and owned by the process-scoped registry; the indices are
// owned by this array.
type DictionaryArray struct {
	dtype   *DataType
	indices *PrimitiveArray
	dict    Array
}

// NewDictionaryArray pairs an index array with its resolved dictionary.
func NewDictionaryArray(dtype *DataType, indices *PrimitiveArray, dict Array) (*DictionaryArray, error) {
	if !dtype.Index.Equal(indices.DataType()) {
		return nil, Integrityf("dictionary index type %s disagrees with declared %s", indices.DataType(), dtype.Index)
	}
	return &DictionaryArray{dtype: dtype, indices: indices, dict: dict}, nil
}

func (a *DictionaryArray) DataType() *DataType { return a.dtype }
func (a *DictionaryArray) Len() int            { return a.indices.Len() }
func (a *DictionaryArray) Validity() *Bitmap   { return a.indices.Validity() }
func (a *DictionaryArray) NullCount() int      { return a.indices.NullCount() }
func (a *DictionaryArray) IsValid(i int) bool  { return a.indices.IsValid(i) }

// Indices returns the index array.
func (a *DictionaryArray) Indices() *PrimitiveArray { return a.indices }

// Dictionary returns the shared value array.
func (a *DictionaryArray) Dictionary() Array { return a.dict }

// Index returns the dictionary position referenced by row i.
func (a *DictionaryArray) Index(i int) int {
	switch a.dtype.Index.Kind {
	case Int8:
		return int(PrimitiveValues[int8](a.indices)[i])
	case Int16:
		return int(PrimitiveValues[int16](a.indices)[i])
	case Int32:
		return int(PrimitiveValues[int32](a.indices)[i])
	case Int64:
		return int(PrimitiveValues[int64](a.indices)[i])
	case Uint8:
		return int(PrimitiveValues[uint8](a.indices)[i])
	case Uint16:
		return int(PrimitiveValues[uint16](a.indices)[i])
	case Uint32:
		return int(PrimitiveValues[uint32](a.indices)[i])
	case Uint64:
		return int(PrimitiveValues[uint64](a.indices)[i])
	default:
		panic("vellum: dictionary index type is not an integer")
	}
}

func (a *DictionaryArray) Equal(other Array) bool {
	o, ok := other.(*DictionaryArray)
	if !ok || !a.dtype.Equal(o.dtype) || !validityEqual(a, o) {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsValid(i) && !elemEqual(a.dict, a.Index(i), o.dict, o.Index(i)) {
			return false
		}
	}
	return true
}
