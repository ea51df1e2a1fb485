// Package ipc implements reading and writing of the vellum IPC interchange
// format: a self-describing message stream carrying a schema, dictionary
// batches, and record batches encoded as flat pre-order field-node and
// buffer sequences.
//
// Decoding a single record batch is synchronous and single-threaded: the
// node and buffer queues are local to one decode call and shared by the
// whole recursive decoder tree. Independent batches or files may be decoded
// concurrently by separate readers.
package ipc

import (
	"fmt"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/compress"
	"github.com/vellum-data/vellum/compress/brotli"
	"github.com/vellum-data/vellum/compress/gzip"
	"github.com/vellum-data/vellum/compress/lz4"
	"github.com/vellum-data/vellum/compress/snappy"
	"github.com/vellum-data/vellum/compress/zstd"
	"github.com/vellum-data/vellum/format"
)

// Magic opens and closes vellum IPC files. The 8-byte length keeps message
// bodies naturally aligned.
var Magic = [8]byte{'V', 'E', 'L', 'L', 'U', 'M', '1', 0}

// continuationMarker prefixes every encapsulated message.
const continuationMarker = 0xFFFFFFFF

// alignment is the byte alignment of message bodies and of each buffer
// within a body.
const alignment = 8

// noLimit disables row limiting when passed as a limit argument.
const noLimit = -1

// Dictionaries is the process-scoped registry mapping dictionary ids to
// materialized dictionary arrays. It is populated by dictionary-batch
// messages before any dependent record batch is decoded.
type Dictionaries map[int64]vellum.Array

// Lookup returns the dictionary registered under id, or ErrDictionaryMissing.
func (d Dictionaries) Lookup(id int64) (vellum.Array, error) {
	a, ok := d[id]
	if !ok {
		return nil, fmt.Errorf("%w: record batch references dictionary id %d but no dictionary batch defined it", vellum.ErrDictionaryMissing, id)
	}
	return a, nil
}

var codecs = map[format.Compression]compress.Codec{
	format.CompressionZstd:   new(zstd.Codec),
	format.CompressionLz4:    new(lz4.Codec),
	format.CompressionSnappy: new(snappy.Codec),
	format.CompressionGzip:   new(gzip.Codec),
	format.CompressionBrotli: new(brotli.Codec),
}

// codecFor maps a wire compression id to its codec. CompressionNone maps to
// a nil codec.
func codecFor(c format.Compression) (compress.Codec, error) {
	if c == format.CompressionNone {
		return nil, nil
	}
	codec, ok := codecs[c]
	if !ok {
		return nil, vellum.Unsupportedf("unknown compression codec %d", c)
	}
	return codec, nil
}

// FallbackReason classifies errors that the orchestrator may recover from by
// switching execution strategy, so that the decision is made on a structured
// code rather than on error text.
type FallbackReason int8

const (
	// FallbackCompressed means the memory-mapped path was rejected because
	// the file holds compressed buffers, which cannot be viewed zero-copy.
	FallbackCompressed FallbackReason = iota + 1
)

// FallbackError reports that the memory-mapped strategy cannot decode this
// file but the streaming strategy can. Any other error on the mapped path is
// fatal.
type FallbackError struct {
	Reason FallbackReason
}

func (e *FallbackError) Error() string {
	switch e.Reason {
	case FallbackCompressed:
		return "ipc: cannot memory-map a file with compressed record batches"
	default:
		return fmt.Sprintf("ipc: memory-mapped read unavailable (reason %d)", e.Reason)
	}
}

// paddedLen rounds n up to the body alignment.
func paddedLen(n int64) int64 {
	return (n + alignment - 1) &^ (alignment - 1)
}
