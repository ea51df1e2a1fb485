package ipc

import (
	"encoding/binary"
	"io"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// Encapsulated message framing: a 4-byte continuation marker, a uint32
// little-endian metadata length, the metadata bytes, zero padding up to
// 8-byte alignment of the whole prefix, then the 8-aligned body.

var zeros [alignment]byte

// messageBodyOffset returns the distance from the start of a message to its
// body, given the unpadded metadata length.
func messageBodyOffset(metaLen int32) int64 {
	return paddedLen(8 + int64(metaLen))
}

// readMessage reads one encapsulated message and its body from a stream. It
// returns io.EOF on the end-of-stream marker (a zero metadata length) and on
// a clean end of input.
func readMessage(r io.Reader) (*format.Message, []byte, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, nil, vellum.Corruptf("truncated message header")
		}
		return nil, nil, err
	}
	if binary.LittleEndian.Uint32(head[:4]) != continuationMarker {
		return nil, nil, vellum.Corruptf("bad continuation marker %#x", binary.LittleEndian.Uint32(head[:4]))
	}
	metaLen := int32(binary.LittleEndian.Uint32(head[4:]))
	if metaLen == 0 {
		return nil, nil, io.EOF
	}
	if metaLen < 0 {
		return nil, nil, vellum.Corruptf("negative metadata length %d", metaLen)
	}
	buf := make([]byte, messageBodyOffset(metaLen)-8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, vellum.Corruptf("truncated message metadata: %v", err)
	}
	m := new(format.Message)
	if err := format.DecodeMessage(buf[:metaLen], m); err != nil {
		return nil, nil, err
	}
	if m.BodyLength < 0 {
		return nil, nil, vellum.Corruptf("negative body length %d", m.BodyLength)
	}
	var body []byte
	if m.BodyLength > 0 {
		body = make([]byte, m.BodyLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, vellum.Corruptf("truncated message body: %v", err)
		}
	}
	return m, body, nil
}

// writeMessageMeta writes the framing and padded metadata of one message,
// returning the number of bytes written. The caller writes the body next.
func writeMessageMeta(w io.Writer, meta []byte) (int64, error) {
	var head [8]byte
	binary.LittleEndian.PutUint32(head[:4], continuationMarker)
	binary.LittleEndian.PutUint32(head[4:], uint32(len(meta)))
	if _, err := w.Write(head[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(meta); err != nil {
		return 0, err
	}
	total := messageBodyOffset(int32(len(meta)))
	if pad := total - 8 - int64(len(meta)); pad > 0 {
		if _, err := w.Write(zeros[:pad]); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// writeEndOfStream writes the end-of-stream marker.
func writeEndOfStream(w io.Writer) (int64, error) {
	var head [8]byte
	binary.LittleEndian.PutUint32(head[:4], continuationMarker)
	if _, err := w.Write(head[:]); err != nil {
		return 0, err
	}
	return int64(len(head)), nil
}
