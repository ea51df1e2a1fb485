package ipc

import (
	"encoding/binary"
	"io"
	"runtime"

	"github.com/google/uuid"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// FileIDKey is the footer metadata key under which FileWriter records a
// random identifier for the file, so copies of the same file can be told
// apart from files that merely share a schema.
const FileIDKey = "vellum.file_id"

// WriterOptions configures FileWriter and StreamWriter. The zero value
// writes uncompressed batches.
type WriterOptions struct {
	// Compression selects the per-buffer block codec.
	Compression format.Compression

	// Concurrency bounds the number of buffers compressed in parallel per
	// batch. Zero means GOMAXPROCS.
	Concurrency int

	// Metadata is recorded in the file footer.
	Metadata map[string]string
}

func (o *WriterOptions) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// FileWriter writes the file layout: opening magic, a schema message,
// dictionary and record batch messages, and a footer indexing every batch.
type FileWriter struct {
	w      io.Writer
	schema *vellum.Schema
	opts   WriterOptions

	off     int64
	started bool

	dictsSeen  map[int64]bool
	dictBlocks []format.Block
	recBlocks  []format.Block
}

// NewFileWriter begins writing a file holding batches of the given schema.
// Nothing is written until the first Write or Close call.
func NewFileWriter(w io.Writer, schema *vellum.Schema, opts WriterOptions) *FileWriter {
	return &FileWriter{w: w, schema: schema, opts: opts, dictsSeen: make(map[int64]bool)}
}

func (fw *FileWriter) start() error {
	if fw.started {
		return nil
	}
	fw.started = true
	if _, err := fw.w.Write(Magic[:]); err != nil {
		return err
	}
	fw.off = int64(len(Magic))
	meta := format.AppendMessage(nil, &format.Message{
		Version: format.V1,
		Schema:  schemaToWire(fw.schema, format.LittleEndian),
	})
	n, err := writeMessageMeta(fw.w, meta)
	fw.off += n
	return err
}

// writeMessage writes one complete message and returns its block.
func (fw *FileWriter) writeMessage(meta []byte, body []byte) (format.Block, error) {
	blk := format.Block{
		Offset:     fw.off,
		MetaLength: int32(len(meta)),
		BodyLength: int64(len(body)),
	}
	n, err := writeMessageMeta(fw.w, meta)
	fw.off += n
	if err != nil {
		return blk, err
	}
	if len(body) > 0 {
		if _, err := fw.w.Write(body); err != nil {
			return blk, err
		}
		fw.off += int64(len(body))
	}
	return blk, nil
}

// Write appends one record batch, first emitting a dictionary batch for
// every dictionary id in the batch that has not been written yet.
func (fw *FileWriter) Write(batch *vellum.Batch) error {
	if !batch.Schema().Equal(fw.schema) {
		return vellum.Integrityf("batch schema disagrees with the writer schema")
	}
	if err := fw.start(); err != nil {
		return err
	}

	dicts := make(map[int64]vellum.Array)
	for i := 0; i < batch.NumCols(); i++ {
		collectDictionaryArrays(batch.Column(i), dicts)
	}
	for id, values := range dicts {
		if fw.dictsSeen[id] {
			continue
		}
		if err := fw.writeDictionary(id, values); err != nil {
			return err
		}
		fw.dictsSeen[id] = true
	}

	columns := make([]vellum.Array, batch.NumCols())
	for i := range columns {
		columns[i] = batch.Column(i)
	}
	rec, body, err := encodeColumns(columns, batch.Height(), fw.opts.Compression, fw.opts.concurrency())
	if err != nil {
		return err
	}
	meta := format.AppendMessage(nil, &format.Message{
		Version:    format.V1,
		BodyLength: int64(len(body)),
		Record:     rec,
	})
	blk, err := fw.writeMessage(meta, body)
	if err != nil {
		return err
	}
	fw.recBlocks = append(fw.recBlocks, blk)
	return nil
}

func (fw *FileWriter) writeDictionary(id int64, values vellum.Array) error {
	rec, body, err := encodeColumns([]vellum.Array{values}, values.Len(), fw.opts.Compression, fw.opts.concurrency())
	if err != nil {
		return err
	}
	meta := format.AppendMessage(nil, &format.Message{
		Version:    format.V1,
		BodyLength: int64(len(body)),
		Dictionary: &format.DictionaryBatch{ID: id, Data: *rec},
	})
	blk, err := fw.writeMessage(meta, body)
	if err != nil {
		return err
	}
	fw.dictBlocks = append(fw.dictBlocks, blk)
	return nil
}

// Close writes the end-of-stream marker, the footer, the footer length and
// the closing magic. It does not close the underlying writer.
func (fw *FileWriter) Close() error {
	if err := fw.start(); err != nil {
		return err
	}
	if _, err := writeEndOfStream(fw.w); err != nil {
		return err
	}
	footer := &format.Footer{
		Version:      format.V1,
		Schema:       *schemaToWire(fw.schema, format.LittleEndian),
		Dictionaries: fw.dictBlocks,
		Records:      fw.recBlocks,
	}
	footer.Metadata = append(metadataToWire(fw.opts.Metadata), format.KeyValue{
		Key:   FileIDKey,
		Value: uuid.NewString(),
	})
	payload := format.AppendFooter(nil, footer)
	if _, err := fw.w.Write(payload); err != nil {
		return err
	}
	var tail [4]byte
	binary.LittleEndian.PutUint32(tail[:], uint32(len(payload)))
	if _, err := fw.w.Write(tail[:]); err != nil {
		return err
	}
	_, err := fw.w.Write(Magic[:])
	return err
}

// StreamWriter writes the bare message stream: a schema message, then
// dictionary and record batches, then the end-of-stream marker. Streams have
// no footer and can only be read front to back.
type StreamWriter struct {
	w         io.Writer
	schema    *vellum.Schema
	opts      WriterOptions
	started   bool
	dictsSeen map[int64]bool
}

// NewStreamWriter begins writing a message stream of the given schema.
func NewStreamWriter(w io.Writer, schema *vellum.Schema, opts WriterOptions) *StreamWriter {
	return &StreamWriter{w: w, schema: schema, opts: opts, dictsSeen: make(map[int64]bool)}
}

func (sw *StreamWriter) start() error {
	if sw.started {
		return nil
	}
	sw.started = true
	meta := format.AppendMessage(nil, &format.Message{
		Version: format.V1,
		Schema:  schemaToWire(sw.schema, format.LittleEndian),
	})
	_, err := writeMessageMeta(sw.w, meta)
	return err
}

// Write appends one record batch to the stream.
func (sw *StreamWriter) Write(batch *vellum.Batch) error {
	if !batch.Schema().Equal(sw.schema) {
		return vellum.Integrityf("batch schema disagrees with the writer schema")
	}
	if err := sw.start(); err != nil {
		return err
	}

	dicts := make(map[int64]vellum.Array)
	for i := 0; i < batch.NumCols(); i++ {
		collectDictionaryArrays(batch.Column(i), dicts)
	}
	for id, values := range dicts {
		if sw.dictsSeen[id] {
			continue
		}
		rec, body, err := encodeColumns([]vellum.Array{values}, values.Len(), sw.opts.Compression, sw.opts.concurrency())
		if err != nil {
			return err
		}
		meta := format.AppendMessage(nil, &format.Message{
			Version:    format.V1,
			BodyLength: int64(len(body)),
			Dictionary: &format.DictionaryBatch{ID: id, Data: *rec},
		})
		if _, err := writeMessageMeta(sw.w, meta); err != nil {
			return err
		}
		if len(body) > 0 {
			if _, err := sw.w.Write(body); err != nil {
				return err
			}
		}
		sw.dictsSeen[id] = true
	}

	columns := make([]vellum.Array, batch.NumCols())
	for i := range columns {
		columns[i] = batch.Column(i)
	}
	rec, body, err := encodeColumns(columns, batch.Height(), sw.opts.Compression, sw.opts.concurrency())
	if err != nil {
		return err
	}
	meta := format.AppendMessage(nil, &format.Message{
		Version:    format.V1,
		BodyLength: int64(len(body)),
		Record:     rec,
	})
	if _, err := writeMessageMeta(sw.w, meta); err != nil {
		return err
	}
	if len(body) > 0 {
		_, err = sw.w.Write(body)
	}
	return err
}

// Close writes the end-of-stream marker. It does not close the underlying
// writer.
func (sw *StreamWriter) Close() error {
	if err := sw.start(); err != nil {
		return err
	}
	_, err := writeEndOfStream(sw.w)
	return err
}

// collectDictionaryArrays gathers the dictionary value arrays referenced
// anywhere in an array tree, keyed by dictionary id.
func collectDictionaryArrays(a vellum.Array, out map[int64]vellum.Array) {
	switch x := a.(type) {
	case *vellum.DictionaryArray:
		out[x.DataType().DictID] = x.Dictionary()
		collectDictionaryArrays(x.Dictionary(), out)
	case *vellum.FixedSizeListArray:
		collectDictionaryArrays(x.Elems(), out)
	case *vellum.ListArray:
		collectDictionaryArrays(x.Elems(), out)
	case *vellum.StructArray:
		for i := 0; i < x.NumFields(); i++ {
			collectDictionaryArrays(x.Field(i), out)
		}
	case *vellum.UnionArray:
		for i := range x.DataType().Fields {
			collectDictionaryArrays(x.Child(i), out)
		}
	}
}
