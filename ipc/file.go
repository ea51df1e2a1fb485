package ipc

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
	"github.com/vellum-data/vellum/internal/mmap"
)

// FileReader reads the file layout through an io.ReaderAt. The footer is
// read and validated lazily on first use, then cached, so opening a file and
// asking for its schema does not touch the record batches.
//
// When the reader is backed by a memory mapping, message bodies are sliced
// from the mapping instead of copied, and decoded arrays borrow the mapping
// until Close. Compressed files cannot be decoded that way; their batches
// return a FallbackError so the caller can retry with a buffered reader.
type FileReader struct {
	r    io.ReaderAt
	size int64
	data []byte // non-nil when memory-mapped
	owns io.Closer

	footer    *format.Footer
	schema    *vellum.Schema
	dictTypes map[int64]*vellum.DataType
	dicts     Dictionaries
}

// NewFileReader reads a file from an io.ReaderAt of the given size.
func NewFileReader(r io.ReaderAt, size int64) *FileReader {
	return &FileReader{r: r, size: size, dicts: make(Dictionaries)}
}

// OpenFile opens a file for buffered reading. The returned reader owns the
// file handle; Close releases it.
func OpenFile(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	fr := NewFileReader(f, info.Size())
	fr.owns = f
	return fr, nil
}

// OpenMapped memory-maps a file for zero-copy reading. Arrays decoded from
// the returned reader alias the mapping and must not be used after Close.
func OpenMapped(path string) (*FileReader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	fr := NewFileReader(bytes.NewReader(m.Data), int64(len(m.Data)))
	fr.data = m.Data
	fr.owns = m
	return fr, nil
}

// Mapped reports whether the reader decodes zero-copy from a memory mapping.
func (f *FileReader) Mapped() bool { return f.data != nil }

// Close releases the file handle or mapping, if the reader owns one.
func (f *FileReader) Close() error {
	if f.owns == nil {
		return nil
	}
	c := f.owns
	f.owns = nil
	return c.Close()
}

func (f *FileReader) bytesAt(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > f.size {
		return nil, vellum.Corruptf("read [%d, +%d) lies outside the %d byte file", off, n, f.size)
	}
	if f.data != nil {
		return f.data[off : off+n], nil
	}
	buf := make([]byte, n)
	if _, err := f.r.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// Footer returns the decoded file footer, reading it on first call.
func (f *FileReader) Footer() (*format.Footer, error) {
	if f.footer != nil {
		return f.footer, nil
	}
	minSize := int64(2*len(Magic)) + 4
	if f.size < minSize {
		return nil, vellum.Corruptf("file of %d bytes is too small to hold the magic and footer", f.size)
	}
	head, err := f.bytesAt(0, int64(len(Magic)))
	if err != nil {
		return nil, err
	}
	tail, err := f.bytesAt(f.size-int64(len(Magic)), int64(len(Magic)))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(head, Magic[:]) || !bytes.Equal(tail, Magic[:]) {
		return nil, vellum.Corruptf("file magic not found")
	}
	lenBytes, err := f.bytesAt(f.size-int64(len(Magic))-4, 4)
	if err != nil {
		return nil, err
	}
	footerLen := int64(binary.LittleEndian.Uint32(lenBytes))
	start := f.size - int64(len(Magic)) - 4 - footerLen
	if start < int64(len(Magic)) {
		return nil, vellum.Corruptf("footer of %d bytes overlaps the file head", footerLen)
	}
	payload, err := f.bytesAt(start, footerLen)
	if err != nil {
		return nil, err
	}
	footer := new(format.Footer)
	if err := format.DecodeFooter(payload, footer); err != nil {
		return nil, err
	}
	schema, err := schemaFromWire(&footer.Schema)
	if err != nil {
		return nil, err
	}
	f.footer = footer
	f.schema = schema
	f.dictTypes = collectDictionaryTypes(schema)
	return footer, nil
}

// Schema returns the file schema.
func (f *FileReader) Schema() (*vellum.Schema, error) {
	if _, err := f.Footer(); err != nil {
		return nil, err
	}
	return f.schema, nil
}

// Metadata returns the file-level custom metadata.
func (f *FileReader) Metadata() (map[string]string, error) {
	footer, err := f.Footer()
	if err != nil {
		return nil, err
	}
	return metadataFromWire(footer.Metadata), nil
}

// NumBatches returns the number of record batches in the file.
func (f *FileReader) NumBatches() (int, error) {
	footer, err := f.Footer()
	if err != nil {
		return 0, err
	}
	return len(footer.Records), nil
}

// readBlockMessage reads and decodes the message a footer block points at.
// The body is returned separately; for mapped readers it aliases the
// mapping.
func (f *FileReader) readBlockMessage(blk format.Block) (*format.Message, []byte, error) {
	head, err := f.bytesAt(blk.Offset, 8)
	if err != nil {
		return nil, nil, err
	}
	if binary.LittleEndian.Uint32(head[:4]) != continuationMarker {
		return nil, nil, vellum.Corruptf("block at offset %d has no continuation marker", blk.Offset)
	}
	if int32(binary.LittleEndian.Uint32(head[4:])) != blk.MetaLength {
		return nil, nil, vellum.Corruptf("block at offset %d declares metadata length %d but the footer says %d",
			blk.Offset, int32(binary.LittleEndian.Uint32(head[4:])), blk.MetaLength)
	}
	meta, err := f.bytesAt(blk.Offset+8, int64(blk.MetaLength))
	if err != nil {
		return nil, nil, err
	}
	m := new(format.Message)
	if err := format.DecodeMessage(meta, m); err != nil {
		return nil, nil, err
	}
	if m.BodyLength != blk.BodyLength {
		return nil, nil, vellum.Corruptf("message declares a %d byte body but the footer says %d", m.BodyLength, blk.BodyLength)
	}
	body, err := f.bytesAt(blk.Offset+messageBodyOffset(blk.MetaLength), m.BodyLength)
	if err != nil {
		return nil, nil, err
	}
	return m, body, nil
}

// RowCount sums the row counts of every record batch. Only the batch
// headers are read.
func (f *FileReader) RowCount() (int64, error) {
	footer, err := f.Footer()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, blk := range footer.Records {
		meta, err := f.bytesAt(blk.Offset+8, int64(blk.MetaLength))
		if err != nil {
			return 0, err
		}
		m := new(format.Message)
		if err := format.DecodeMessage(meta, m); err != nil {
			return 0, err
		}
		if m.Record == nil {
			return 0, vellum.Corruptf("footer record block at offset %d is not a record batch", blk.Offset)
		}
		total += m.Record.Length
	}
	return total, nil
}

// BatchInfo describes one record batch from its header alone.
type BatchInfo struct {
	Rows        int64
	Compression format.Compression
	BodyLength  int64
}

// Info reads the header of record batch i without decoding its body.
func (f *FileReader) Info(i int) (BatchInfo, error) {
	footer, err := f.Footer()
	if err != nil {
		return BatchInfo{}, err
	}
	if i < 0 || i >= len(footer.Records) {
		return BatchInfo{}, vellum.Corruptf("record batch %d requested from a file holding %d", i, len(footer.Records))
	}
	blk := footer.Records[i]
	meta, err := f.bytesAt(blk.Offset+8, int64(blk.MetaLength))
	if err != nil {
		return BatchInfo{}, err
	}
	m := new(format.Message)
	if err := format.DecodeMessage(meta, m); err != nil {
		return BatchInfo{}, err
	}
	if m.Record == nil {
		return BatchInfo{}, vellum.Corruptf("footer record block at offset %d is not a record batch", blk.Offset)
	}
	return BatchInfo{
		Rows:        m.Record.Length,
		Compression: m.Record.Compression,
		BodyLength:  m.BodyLength,
	}, nil
}

// loadDictionaries decodes every dictionary batch the footer indexes. It is
// idempotent and runs before the first record batch decode.
func (f *FileReader) loadDictionaries() error {
	footer, err := f.Footer()
	if err != nil {
		return err
	}
	if len(f.dicts) == len(footer.Dictionaries) {
		return nil
	}
	for _, blk := range footer.Dictionaries {
		m, body, err := f.readBlockMessage(blk)
		if err != nil {
			return err
		}
		if m.Dictionary == nil {
			return vellum.Corruptf("footer dictionary block at offset %d is not a dictionary batch", blk.Offset)
		}
		if f.data != nil && m.Dictionary.Data.Compression != format.CompressionNone {
			return &FallbackError{Reason: FallbackCompressed}
		}
		if err := registerDictionary(f.dicts, f.dictTypes, m.Dictionary, body, footer.Schema.Endianness); err != nil {
			return err
		}
	}
	return nil
}

// Batch decodes record batch i. projection lists the schema positions to
// materialize in output order, nil meaning all. limit caps the decoded rows
// when non-negative.
func (f *FileReader) Batch(i int, projection []int, limit int) (*vellum.Batch, error) {
	footer, err := f.Footer()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(footer.Records) {
		return nil, vellum.Corruptf("record batch %d requested from a file holding %d", i, len(footer.Records))
	}
	if err := f.loadDictionaries(); err != nil {
		return nil, err
	}
	m, body, err := f.readBlockMessage(footer.Records[i])
	if err != nil {
		return nil, err
	}
	if m.Record == nil {
		return nil, vellum.Corruptf("footer record block at offset %d is not a record batch", footer.Records[i].Offset)
	}
	if f.data != nil && m.Record.Compression != format.CompressionNone {
		return nil, &FallbackError{Reason: FallbackCompressed}
	}
	if limit < 0 {
		limit = noLimit
	}
	return decodeBatch(f.schema, m.Record, body, f.dicts, footer.Schema.Endianness, projection, limit)
}
