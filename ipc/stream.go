package ipc

import (
	"bufio"
	"io"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// StreamReader reads the bare message stream front to back: a schema
// message, then dictionary and record batches in the order the writer
// emitted them. Streams have no footer, so there is no random access and no
// up-front row count.
type StreamReader struct {
	r          *bufio.Reader
	schema     *vellum.Schema
	endianness format.Endianness
	dictTypes  map[int64]*vellum.DataType
	dicts      Dictionaries
}

// NewStreamReader reads a message stream from r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r), dicts: make(Dictionaries)}
}

// Schema reads the schema message if it has not been read yet and returns
// the stream schema.
func (s *StreamReader) Schema() (*vellum.Schema, error) {
	if s.schema != nil {
		return s.schema, nil
	}
	m, _, err := readMessage(s.r)
	if err != nil {
		if err == io.EOF {
			return nil, vellum.Corruptf("stream ends before the schema message")
		}
		return nil, err
	}
	if m.Schema == nil {
		return nil, vellum.Corruptf("stream does not start with a schema message")
	}
	schema, err := schemaFromWire(m.Schema)
	if err != nil {
		return nil, err
	}
	s.schema = schema
	s.endianness = m.Schema.Endianness
	s.dictTypes = collectDictionaryTypes(schema)
	return schema, nil
}

// Next decodes the next record batch, registering any dictionary batches
// that precede it. It returns io.EOF when the stream ends. projection and
// limit behave as in FileReader.Batch.
func (s *StreamReader) Next(projection []int, limit int) (*vellum.Batch, error) {
	if _, err := s.Schema(); err != nil {
		return nil, err
	}
	if limit < 0 {
		limit = noLimit
	}
	for {
		m, body, err := readMessage(s.r)
		if err != nil {
			return nil, err
		}
		switch {
		case m.Dictionary != nil:
			if err := registerDictionary(s.dicts, s.dictTypes, m.Dictionary, body, s.endianness); err != nil {
				return nil, err
			}
		case m.Record != nil:
			return decodeBatch(s.schema, m.Record, body, s.dicts, s.endianness, projection, limit)
		default:
			return nil, vellum.Corruptf("message carries neither a dictionary nor a record batch")
		}
	}
}
