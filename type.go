// Package vellum implements the in-memory columnar data model of the vellum
// engine: logical types, schemas, validity bitmaps, typed arrays, and decoded
// row batches.
//
// The wire representation of these values is defined in the format
// subpackage, and the decoding/encoding of record batches is implemented in
// the ipc subpackage.
package vellum

import "fmt"

// Kind enumerates the logical type variants understood by the engine.
//
// The set is closed: every decoder, skip walker and writer dispatches
// exhaustively over these values.
type Kind int8

const (
	Null Kind = iota
	Boolean
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Binary
	Utf8
	FixedSizeBinary
	FixedSizeList
	List
	Struct
	Dictionary
	Union
	BinaryView
	Utf8View
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Binary:
		return "binary"
	case Utf8:
		return "utf8"
	case FixedSizeBinary:
		return "fixed_size_binary"
	case FixedSizeList:
		return "fixed_size_list"
	case List:
		return "list"
	case Struct:
		return "struct"
	case Dictionary:
		return "dictionary"
	case Union:
		return "union"
	case BinaryView:
		return "binary_view"
	case Utf8View:
		return "utf8_view"
	default:
		return fmt.Sprintf("Kind(%d)", int8(k))
	}
}

// UnionMode selects the physical layout of a union type.
type UnionMode int8

const (
	SparseUnion UnionMode = iota
	DenseUnion
)

// DataType is one node of a logical type tree.
//
// Which fields are meaningful depends on Kind: Size for FixedSizeBinary and
// FixedSizeList, Elem for FixedSizeList and List, Fields for Struct and
// Union, Index/Values/DictID/Ordered for Dictionary, Mode and TypeIDs for
// Union. DataType values are never mutated after construction.
type DataType struct {
	Kind Kind

	Size   int       // FixedSizeBinary byte width, FixedSizeList slot width
	Elem   *DataType // list element type
	Fields []Field   // struct members or union variants

	Index   *DataType // dictionary index type (an integer kind)
	Values  *DataType // dictionary value type
	DictID  int64
	Ordered bool

	Mode    UnionMode
	TypeIDs []int8 // union type id per variant, same order as Fields
}

// Primitive types are interned since they carry no parameters.
var (
	TypeNull    = &DataType{Kind: Null}
	TypeBoolean = &DataType{Kind: Boolean}
	TypeInt8    = &DataType{Kind: Int8}
	TypeInt16   = &DataType{Kind: Int16}
	TypeInt32   = &DataType{Kind: Int32}
	TypeInt64   = &DataType{Kind: Int64}
	TypeUint8   = &DataType{Kind: Uint8}
	TypeUint16  = &DataType{Kind: Uint16}
	TypeUint32  = &DataType{Kind: Uint32}
	TypeUint64  = &DataType{Kind: Uint64}
	TypeFloat32 = &DataType{Kind: Float32}
	TypeFloat64 = &DataType{Kind: Float64}
	TypeBinary  = &DataType{Kind: Binary}
	TypeUtf8    = &DataType{Kind: Utf8}
)

// FixedSizeListOf returns the type of lists holding exactly size elements of
// type elem per row. A size of zero is representable but rejected by the
// decoder.
func FixedSizeListOf(size int, elem *DataType) *DataType {
	return &DataType{Kind: FixedSizeList, Size: size, Elem: elem}
}

// ListOf returns the type of variable-length lists of elem.
func ListOf(elem *DataType) *DataType {
	return &DataType{Kind: List, Elem: elem}
}

// FixedSizeBinaryOf returns the type of opaque byte values of width bytes.
func FixedSizeBinaryOf(width int) *DataType {
	return &DataType{Kind: FixedSizeBinary, Size: width}
}

// StructOf returns the struct type with the given members.
func StructOf(fields ...Field) *DataType {
	return &DataType{Kind: Struct, Fields: fields}
}

// DictionaryOf returns a dictionary-encoded type with the given id, integer
// index type and value type.
func DictionaryOf(id int64, index, values *DataType) *DataType {
	return &DataType{Kind: Dictionary, DictID: id, Index: index, Values: values}
}

// UnionOf returns a union type over the given variants. typeIDs assigns the
// wire type id of each variant; it must have the same length as fields.
func UnionOf(mode UnionMode, typeIDs []int8, fields ...Field) *DataType {
	return &DataType{Kind: Union, Mode: mode, TypeIDs: typeIDs, Fields: fields}
}

// FixedWidth returns the value byte width of fixed-width kinds, and 0 for
// kinds without a fixed-width value buffer.
func (t *DataType) FixedWidth() int {
	switch t.Kind {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	case FixedSizeBinary:
		return t.Size
	default:
		return 0
	}
}

func (t *DataType) String() string {
	switch t.Kind {
	case FixedSizeBinary:
		return fmt.Sprintf("fixed_size_binary[%d]", t.Size)
	case FixedSizeList:
		return fmt.Sprintf("fixed_size_list[%d]<%s>", t.Size, t.Elem)
	case List:
		return fmt.Sprintf("list<%s>", t.Elem)
	case Struct:
		s := "struct<"
		for i, f := range t.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + f.Type.String()
		}
		return s + ">"
	case Dictionary:
		return fmt.Sprintf("dictionary<id=%d, %s -> %s>", t.DictID, t.Index, t.Values)
	case Union:
		mode := "sparse"
		if t.Mode == DenseUnion {
			mode = "dense"
		}
		s := "union[" + mode + "]<"
		for i, f := range t.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.Name + ": " + f.Type.String()
		}
		return s + ">"
	default:
		return t.Kind.String()
	}
}

// Equal reports whether two type trees are structurally identical.
func (t *DataType) Equal(u *DataType) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil || t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case FixedSizeBinary:
		return t.Size == u.Size
	case FixedSizeList:
		return t.Size == u.Size && t.Elem.Equal(u.Elem)
	case List:
		return t.Elem.Equal(u.Elem)
	case Struct:
		return fieldsEqual(t.Fields, u.Fields)
	case Dictionary:
		return t.DictID == u.DictID && t.Ordered == u.Ordered &&
			t.Index.Equal(u.Index) && t.Values.Equal(u.Values)
	case Union:
		if t.Mode != u.Mode || len(t.TypeIDs) != len(u.TypeIDs) {
			return false
		}
		for i := range t.TypeIDs {
			if t.TypeIDs[i] != u.TypeIDs[i] {
				return false
			}
		}
		return fieldsEqual(t.Fields, u.Fields)
	default:
		return true
	}
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Nullable != b[i].Nullable || !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}
