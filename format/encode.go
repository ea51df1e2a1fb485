package format

import "google.golang.org/protobuf/encoding/protowire"

// Field numbers of the wire structs. Numbers are part of the format and must
// not be reused.
const (
	fieldName      = 1
	fieldKind      = 2
	fieldNullable  = 3
	fieldSize      = 4
	fieldDictID    = 5
	fieldIndexKind = 6
	fieldOrdered   = 7
	fieldUnionMode = 8
	fieldTypeIDs   = 9
	fieldChildren  = 10
	fieldMetadata  = 11

	kvKey   = 1
	kvValue = 2

	schemaEndianness = 1
	schemaFields     = 2
	schemaMetadata   = 3

	nodeLength    = 1
	nodeNullCount = 2

	bufferOffset = 1
	bufferLength = 2

	batchLength         = 1
	batchNodes          = 2
	batchBuffers        = 3
	batchVariadicCounts = 4
	batchCompression    = 5

	dictID      = 1
	dictIsDelta = 2
	dictData    = 3

	msgVersion    = 1
	msgBodyLength = 2
	msgSchema     = 3
	msgDictionary = 4
	msgRecord     = 5

	blockOffset     = 1
	blockMetaLength = 2
	blockBodyLength = 3

	footerVersion      = 1
	footerSchema       = 2
	footerDictionaries = 3
	footerRecords      = 4
	footerMetadata     = 5
)

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendUint(b, num, 1)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendKeyValues(b []byte, num protowire.Number, kvs []KeyValue) []byte {
	for _, kv := range kvs {
		var body []byte
		body = appendString(body, kvKey, kv.Key)
		body = appendString(body, kvValue, kv.Value)
		b = appendMessage(b, num, body)
	}
	return b
}

// AppendField appends the encoding of f to b.
func AppendField(b []byte, f *Field) []byte {
	var body []byte
	body = appendString(body, fieldName, f.Name)
	if f.Kind != KindNull {
		body = appendUint(body, fieldKind, uint64(f.Kind))
	}
	body = appendBool(body, fieldNullable, f.Nullable)
	if f.Size != 0 {
		body = appendUint(body, fieldSize, uint64(f.Size))
	}
	if f.DictID != 0 {
		body = appendUint(body, fieldDictID, uint64(f.DictID))
	}
	if f.IndexKind != KindNull {
		body = appendUint(body, fieldIndexKind, uint64(f.IndexKind))
	}
	body = appendBool(body, fieldOrdered, f.Ordered)
	if f.UnionMode != 0 {
		body = appendUint(body, fieldUnionMode, uint64(f.UnionMode))
	}
	if len(f.TypeIDs) != 0 {
		ids := make([]byte, len(f.TypeIDs))
		for i, id := range f.TypeIDs {
			ids[i] = byte(id)
		}
		body = protowire.AppendTag(body, fieldTypeIDs, protowire.BytesType)
		body = protowire.AppendBytes(body, ids)
	}
	for i := range f.Children {
		body = appendMessage(body, fieldChildren, AppendField(nil, &f.Children[i]))
	}
	body = appendKeyValues(body, fieldMetadata, f.Metadata)
	return append(b, body...)
}

// AppendSchema appends the encoding of s to b.
func AppendSchema(b []byte, s *Schema) []byte {
	if s.Endianness != LittleEndian {
		b = appendUint(b, schemaEndianness, uint64(s.Endianness))
	}
	for i := range s.Fields {
		b = appendMessage(b, schemaFields, AppendField(nil, &s.Fields[i]))
	}
	return appendKeyValues(b, schemaMetadata, s.Metadata)
}

func appendFieldNode(b []byte, num protowire.Number, n *FieldNode) []byte {
	var body []byte
	if n.Length != 0 {
		body = appendUint(body, nodeLength, uint64(n.Length))
	}
	if n.NullCount != 0 {
		body = appendUint(body, nodeNullCount, uint64(n.NullCount))
	}
	return appendMessage(b, num, body)
}

func appendBuffer(b []byte, num protowire.Number, buf *Buffer) []byte {
	var body []byte
	if buf.Offset != 0 {
		body = appendUint(body, bufferOffset, uint64(buf.Offset))
	}
	if buf.Length != 0 {
		body = appendUint(body, bufferLength, uint64(buf.Length))
	}
	return appendMessage(b, num, body)
}

// AppendRecordBatch appends the encoding of r to b.
func AppendRecordBatch(b []byte, r *RecordBatch) []byte {
	if r.Length != 0 {
		b = appendUint(b, batchLength, uint64(r.Length))
	}
	for i := range r.Nodes {
		b = appendFieldNode(b, batchNodes, &r.Nodes[i])
	}
	for i := range r.Buffers {
		b = appendBuffer(b, batchBuffers, &r.Buffers[i])
	}
	for _, c := range r.VariadicCounts {
		b = appendUint(b, batchVariadicCounts, uint64(c))
	}
	if r.Compression != CompressionNone {
		b = appendUint(b, batchCompression, uint64(r.Compression))
	}
	return b
}

// AppendDictionaryBatch appends the encoding of d to b.
func AppendDictionaryBatch(b []byte, d *DictionaryBatch) []byte {
	if d.ID != 0 {
		b = appendUint(b, dictID, uint64(d.ID))
	}
	b = appendBool(b, dictIsDelta, d.IsDelta)
	return appendMessage(b, dictData, AppendRecordBatch(nil, &d.Data))
}

// AppendMessage appends the encoding of the message metadata to b.
func AppendMessage(b []byte, m *Message) []byte {
	b = appendUint(b, msgVersion, uint64(m.Version))
	if m.BodyLength != 0 {
		b = appendUint(b, msgBodyLength, uint64(m.BodyLength))
	}
	switch {
	case m.Schema != nil:
		b = appendMessage(b, msgSchema, AppendSchema(nil, m.Schema))
	case m.Dictionary != nil:
		b = appendMessage(b, msgDictionary, AppendDictionaryBatch(nil, m.Dictionary))
	case m.Record != nil:
		b = appendMessage(b, msgRecord, AppendRecordBatch(nil, m.Record))
	}
	return b
}

func appendBlock(b []byte, num protowire.Number, blk *Block) []byte {
	var body []byte
	if blk.Offset != 0 {
		body = appendUint(body, blockOffset, uint64(blk.Offset))
	}
	if blk.MetaLength != 0 {
		body = appendUint(body, blockMetaLength, uint64(blk.MetaLength))
	}
	if blk.BodyLength != 0 {
		body = appendUint(body, blockBodyLength, uint64(blk.BodyLength))
	}
	return appendMessage(b, num, body)
}

// AppendFooter appends the encoding of f to b.
func AppendFooter(b []byte, f *Footer) []byte {
	b = appendUint(b, footerVersion, uint64(f.Version))
	b = appendMessage(b, footerSchema, AppendSchema(nil, &f.Schema))
	for i := range f.Dictionaries {
		b = appendBlock(b, footerDictionaries, &f.Dictionaries[i])
	}
	for i := range f.Records {
		b = appendBlock(b, footerRecords, &f.Records[i])
	}
	return appendKeyValues(b, footerMetadata, f.Metadata)
}
