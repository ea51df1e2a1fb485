// Package format defines the wire representation of the vellum IPC format:
// message envelopes, record-batch headers, field nodes, buffer descriptors,
// the file footer, and their binary codec.
//
// The metadata codec is a tagged varint encoding built on the protowire
// primitives. Decoders skip unknown fields, so readers stay compatible with
// writers that add metadata. Structs in this package mirror the bytes on the
// wire; the translation to the in-memory data model lives in the ipc
// package.
package format

import "fmt"

// Version identifies the stream format version. It affects only how
// validity-bitmap layout corrections are applied by readers.
type Version int16

const (
	// V1 is the current and only version.
	V1 Version = 1
)

// Endianness is the byte order of fixed-width values in a stream.
type Endianness int8

const (
	LittleEndian Endianness = 0
	BigEndian    Endianness = 1
)

// Compression identifies the optional block codec applied to the buffers of
// a record batch.
type Compression int8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLz4
	CompressionSnappy
	CompressionGzip
	CompressionBrotli
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLz4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	case CompressionGzip:
		return "gzip"
	case CompressionBrotli:
		return "brotli"
	default:
		return fmt.Sprintf("Compression(%d)", int8(c))
	}
}

// TypeKind enumerates the wire type codes of the logical type tree. The
// values are fixed by the format and must not be renumbered.
type TypeKind int8

const (
	KindNull TypeKind = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBinary
	KindUtf8
	KindFixedSizeBinary
	KindFixedSizeList
	KindList
	KindStruct
	KindDictionary
	KindUnion
	KindBinaryView
	KindUtf8View
)

// KeyValue is one entry of custom metadata.
type KeyValue struct {
	Key   string
	Value string
}

// Field is one node of the wire schema tree, in the same nesting as the
// logical types: lists hold one child, structs and unions one child per
// member, dictionaries one child holding the value type.
type Field struct {
	Name      string
	Kind      TypeKind
	Nullable  bool
	Size      int32 // FixedSizeBinary width, FixedSizeList slot count
	DictID    int64
	IndexKind TypeKind // dictionary index type
	Ordered   bool
	UnionMode int8 // 0 sparse, 1 dense
	TypeIDs   []int8
	Children  []Field
	Metadata  []KeyValue
}

// Schema is the wire schema message payload.
type Schema struct {
	Endianness Endianness
	Fields     []Field
	Metadata   []KeyValue
}

// FieldNode declares the row count and null count of one column or nested
// sub-column, in pre-order.
type FieldNode struct {
	Length    int64
	NullCount int64
}

// Buffer locates one physical byte buffer within a record batch body.
type Buffer struct {
	Offset int64
	Length int64
}

// RecordBatch is the record-batch message payload: a flat pre-order list of
// field nodes and buffer descriptors.
//
// When Compression is not CompressionNone, each buffer body is framed with
// an int64 uncompressed length (-1 meaning the buffer bytes are stored
// uncompressed) followed by the codec frame.
type RecordBatch struct {
	Length         int64
	Nodes          []FieldNode
	Buffers        []Buffer
	VariadicCounts []int64
	Compression    Compression
}

// DictionaryBatch binds a dictionary id to the value array carried in the
// embedded record batch.
type DictionaryBatch struct {
	ID      int64
	IsDelta bool
	Data    RecordBatch
}

// Message is the metadata part of one encapsulated IPC message. Exactly one
// of Schema, Dictionary and Record is set.
type Message struct {
	Version    Version
	BodyLength int64
	Schema     *Schema
	Dictionary *DictionaryBatch
	Record     *RecordBatch
}

// Block locates one encapsulated message within a file.
type Block struct {
	Offset     int64
	MetaLength int32
	BodyLength int64
}

// Footer is the file-level index: a copy of the schema, the positions of
// every dictionary and record batch, and file-level custom metadata.
type Footer struct {
	Version      Version
	Schema       Schema
	Dictionaries []Block
	Records      []Block
	Metadata     []KeyValue
}
