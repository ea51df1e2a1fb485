package format

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// The decoders below walk the tagged fields of one struct, dispatch on the
// field number, and skip unknown fields, so metadata written by newer
// writers is tolerated. They are hand-rolled rather than generated so that
// decoding stays allocation-light and zero-copy for byte fields.

type decoder struct {
	data []byte
}

func (d *decoder) next() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(d.data)
	if n < 0 {
		return 0, 0, fmt.Errorf("format: invalid field tag: %w", protowire.ParseError(n))
	}
	d.data = d.data[n:]
	return num, typ, nil
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.data)
	if n < 0 {
		return fmt.Errorf("format: cannot skip field %d: %w", num, protowire.ParseError(n))
	}
	d.data = d.data[n:]
	return nil
}

func (d *decoder) uint(num protowire.Number) (uint64, error) {
	v, n := protowire.ConsumeVarint(d.data)
	if n < 0 {
		return 0, fmt.Errorf("format: invalid varint in field %d: %w", num, protowire.ParseError(n))
	}
	d.data = d.data[n:]
	return v, nil
}

func (d *decoder) bytes(num protowire.Number) ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.data)
	if n < 0 {
		return nil, fmt.Errorf("format: invalid bytes in field %d: %w", num, protowire.ParseError(n))
	}
	d.data = d.data[n:]
	return v, nil
}

func (d *decoder) string(num protowire.Number) (string, error) {
	v, err := d.bytes(num)
	return string(v), err
}

func decodeKeyValue(data []byte) (KeyValue, error) {
	d := decoder{data}
	var kv KeyValue
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return kv, err
		}
		switch num {
		case kvKey:
			kv.Key, err = d.string(num)
		case kvValue:
			kv.Value, err = d.string(num)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return kv, err
		}
	}
	return kv, nil
}

// DecodeField decodes one wire schema field.
func DecodeField(data []byte, f *Field) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case fieldName:
			f.Name, err = d.string(num)
		case fieldKind:
			var v uint64
			v, err = d.uint(num)
			f.Kind = TypeKind(v)
		case fieldNullable:
			var v uint64
			v, err = d.uint(num)
			f.Nullable = v != 0
		case fieldSize:
			var v uint64
			v, err = d.uint(num)
			f.Size = int32(v)
		case fieldDictID:
			var v uint64
			v, err = d.uint(num)
			f.DictID = int64(v)
		case fieldIndexKind:
			var v uint64
			v, err = d.uint(num)
			f.IndexKind = TypeKind(v)
		case fieldOrdered:
			var v uint64
			v, err = d.uint(num)
			f.Ordered = v != 0
		case fieldUnionMode:
			var v uint64
			v, err = d.uint(num)
			f.UnionMode = int8(v)
		case fieldTypeIDs:
			var raw []byte
			raw, err = d.bytes(num)
			f.TypeIDs = make([]int8, len(raw))
			for i, b := range raw {
				f.TypeIDs[i] = int8(b)
			}
		case fieldChildren:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var child Field
				err = DecodeField(raw, &child)
				f.Children = append(f.Children, child)
			}
		case fieldMetadata:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var kv KeyValue
				kv, err = decodeKeyValue(raw)
				f.Metadata = append(f.Metadata, kv)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DecodeSchema decodes a wire schema payload.
func DecodeSchema(data []byte, s *Schema) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case schemaEndianness:
			var v uint64
			v, err = d.uint(num)
			s.Endianness = Endianness(v)
		case schemaFields:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var f Field
				err = DecodeField(raw, &f)
				s.Fields = append(s.Fields, f)
			}
		case schemaMetadata:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var kv KeyValue
				kv, err = decodeKeyValue(raw)
				s.Metadata = append(s.Metadata, kv)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeFieldNode(data []byte) (FieldNode, error) {
	d := decoder{data}
	var fn FieldNode
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return fn, err
		}
		switch num {
		case nodeLength:
			var v uint64
			v, err = d.uint(num)
			fn.Length = int64(v)
		case nodeNullCount:
			var v uint64
			v, err = d.uint(num)
			fn.NullCount = int64(v)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return fn, err
		}
	}
	return fn, nil
}

func decodeBuffer(data []byte) (Buffer, error) {
	d := decoder{data}
	var b Buffer
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return b, err
		}
		switch num {
		case bufferOffset:
			var v uint64
			v, err = d.uint(num)
			b.Offset = int64(v)
		case bufferLength:
			var v uint64
			v, err = d.uint(num)
			b.Length = int64(v)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

// DecodeRecordBatch decodes a record-batch header payload.
func DecodeRecordBatch(data []byte, r *RecordBatch) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case batchLength:
			var v uint64
			v, err = d.uint(num)
			r.Length = int64(v)
		case batchNodes:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var fn FieldNode
				fn, err = decodeFieldNode(raw)
				r.Nodes = append(r.Nodes, fn)
			}
		case batchBuffers:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var b Buffer
				b, err = decodeBuffer(raw)
				r.Buffers = append(r.Buffers, b)
			}
		case batchVariadicCounts:
			var v uint64
			v, err = d.uint(num)
			r.VariadicCounts = append(r.VariadicCounts, int64(v))
		case batchCompression:
			var v uint64
			v, err = d.uint(num)
			r.Compression = Compression(v)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DecodeDictionaryBatch decodes a dictionary-batch header payload.
func DecodeDictionaryBatch(data []byte, b *DictionaryBatch) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case dictID:
			var v uint64
			v, err = d.uint(num)
			b.ID = int64(v)
		case dictIsDelta:
			var v uint64
			v, err = d.uint(num)
			b.IsDelta = v != 0
		case dictData:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				err = DecodeRecordBatch(raw, &b.Data)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// DecodeMessage decodes the metadata part of one encapsulated message.
func DecodeMessage(data []byte, m *Message) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case msgVersion:
			var v uint64
			v, err = d.uint(num)
			m.Version = Version(v)
		case msgBodyLength:
			var v uint64
			v, err = d.uint(num)
			m.BodyLength = int64(v)
		case msgSchema:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				m.Schema = new(Schema)
				err = DecodeSchema(raw, m.Schema)
			}
		case msgDictionary:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				m.Dictionary = new(DictionaryBatch)
				err = DecodeDictionaryBatch(raw, m.Dictionary)
			}
		case msgRecord:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				m.Record = new(RecordBatch)
				err = DecodeRecordBatch(raw, m.Record)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeBlock(data []byte) (Block, error) {
	d := decoder{data}
	var blk Block
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return blk, err
		}
		switch num {
		case blockOffset:
			var v uint64
			v, err = d.uint(num)
			blk.Offset = int64(v)
		case blockMetaLength:
			var v uint64
			v, err = d.uint(num)
			blk.MetaLength = int32(v)
		case blockBodyLength:
			var v uint64
			v, err = d.uint(num)
			blk.BodyLength = int64(v)
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return blk, err
		}
	}
	return blk, nil
}

// DecodeFooter decodes the file footer payload.
func DecodeFooter(data []byte, f *Footer) error {
	d := decoder{data}
	for len(d.data) > 0 {
		num, typ, err := d.next()
		if err != nil {
			return err
		}
		switch num {
		case footerVersion:
			var v uint64
			v, err = d.uint(num)
			f.Version = Version(v)
		case footerSchema:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				err = DecodeSchema(raw, &f.Schema)
			}
		case footerDictionaries:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var blk Block
				blk, err = decodeBlock(raw)
				f.Dictionaries = append(f.Dictionaries, blk)
			}
		case footerRecords:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var blk Block
				blk, err = decodeBlock(raw)
				f.Records = append(f.Records, blk)
			}
		case footerMetadata:
			var raw []byte
			raw, err = d.bytes(num)
			if err == nil {
				var kv KeyValue
				kv, err = decodeKeyValue(raw)
				f.Metadata = append(f.Metadata, kv)
			}
		default:
			err = d.skip(num, typ)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
