package ipc

import (
	"github.com/vellum-data/vellum"
)

// decode decodes the next column of the batch as dtype, consuming its field
// nodes and buffers from the cursor. A limit of noLimit decodes every row;
// otherwise at most limit rows are materialized, though the queue entries of
// the full column are consumed either way.
func (d *decodeContext) decode(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	switch dtype.Kind {
	case vellum.Null:
		return d.decodeNull(dtype, limit)
	case vellum.Boolean:
		return d.decodeBoolean(dtype, limit)
	case vellum.Int8, vellum.Int16, vellum.Int32, vellum.Int64,
		vellum.Uint8, vellum.Uint16, vellum.Uint32, vellum.Uint64,
		vellum.Float32, vellum.Float64, vellum.FixedSizeBinary:
		return d.decodePrimitive(dtype, limit)
	case vellum.Binary, vellum.Utf8:
		return d.decodeBinary(dtype, limit)
	case vellum.BinaryView, vellum.Utf8View:
		return d.decodeView(dtype, limit)
	case vellum.FixedSizeList:
		return d.decodeFixedSizeList(dtype, limit)
	case vellum.List:
		return d.decodeList(dtype, limit)
	case vellum.Struct:
		return d.decodeStruct(dtype, limit)
	case vellum.Dictionary:
		return d.decodeDictionary(dtype, limit)
	case vellum.Union:
		return d.decodeUnion(dtype, limit)
	default:
		return nil, vellum.Unsupportedf("cannot decode %s column", dtype)
	}
}

// skip consumes the queue entries of the next column without reading any
// buffer bytes. It must pop exactly the same nodes, buffers and variadic
// counts that decode would, so that the columns after a projected-out one
// stay aligned.
func (d *decodeContext) skip(dtype *vellum.DataType) error {
	switch dtype.Kind {
	case vellum.Null:
		return d.skipNull(dtype)
	case vellum.Boolean:
		return d.skipBoolean(dtype)
	case vellum.Int8, vellum.Int16, vellum.Int32, vellum.Int64,
		vellum.Uint8, vellum.Uint16, vellum.Uint32, vellum.Uint64,
		vellum.Float32, vellum.Float64, vellum.FixedSizeBinary:
		return d.skipPrimitive(dtype)
	case vellum.Binary, vellum.Utf8:
		return d.skipBinary(dtype)
	case vellum.BinaryView, vellum.Utf8View:
		return d.skipView(dtype)
	case vellum.FixedSizeList:
		return d.skipFixedSizeList(dtype)
	case vellum.List:
		return d.skipList(dtype)
	case vellum.Struct:
		return d.skipStruct(dtype)
	case vellum.Dictionary:
		return d.skipDictionary(dtype)
	case vellum.Union:
		return d.skipUnion(dtype)
	default:
		return vellum.Unsupportedf("cannot skip %s column", dtype)
	}
}

// skipBuffers pops n buffer descriptors.
func (d *decodeContext) skipBuffers(dtype *vellum.DataType, n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.cur.nextBuffer(dtype); err != nil {
			return err
		}
	}
	return nil
}
