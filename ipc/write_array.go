package ipc

import (
	"context"
	"encoding/binary"

	"golang.org/x/sync/errgroup"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/compress"
	"github.com/vellum-data/vellum/format"
	"github.com/vellum-data/vellum/internal/unsafecast"
)

// bodyWriter flattens an array tree into the pre-order node, buffer and
// variadic-count sequences of a record batch, collecting the raw payload of
// every buffer. Compression and body assembly happen afterwards so that the
// walk stays independent of the codec.
type bodyWriter struct {
	nodes    []format.FieldNode
	variadic []int64
	raw      [][]byte
}

func (b *bodyWriter) addNode(a vellum.Array) {
	b.nodes = append(b.nodes, format.FieldNode{
		Length:    int64(a.Len()),
		NullCount: int64(a.NullCount()),
	})
}

func (b *bodyWriter) addBuffer(data []byte) {
	b.raw = append(b.raw, data)
}

// addValidity emits the validity buffer slot. All-valid columns emit an
// empty buffer, matching the reader, which ignores the slot's bytes when the
// node declares zero nulls.
func (b *bodyWriter) addValidity(a vellum.Array) {
	if a.NullCount() == 0 {
		b.addBuffer(nil)
		return
	}
	b.addBuffer(a.Validity().Bytes()[:(a.Len()+7)/8])
}

func (b *bodyWriter) writeArray(a vellum.Array) error {
	switch x := a.(type) {
	case *vellum.NullArray:
		b.addNode(x)
		return nil
	case *vellum.BooleanArray:
		b.addNode(x)
		b.addValidity(x)
		b.addBuffer(x.ValueBits().Bytes()[:(x.Len()+7)/8])
		return nil
	case *vellum.PrimitiveArray:
		b.addNode(x)
		b.addValidity(x)
		b.addBuffer(x.ValueBytes())
		return nil
	case *vellum.BinaryArray:
		b.addNode(x)
		b.addValidity(x)
		b.addBuffer(unsafecast.Slice[byte](x.Offsets()))
		b.addBuffer(x.ValueBytes())
		return nil
	case *vellum.ViewArray:
		b.addNode(x)
		b.addValidity(x)
		b.addBuffer(x.Views())
		buffers := x.DataBuffers()
		b.variadic = append(b.variadic, int64(len(buffers)))
		for _, data := range buffers {
			b.addBuffer(data)
		}
		return nil
	case *vellum.FixedSizeListArray:
		b.addNode(x)
		b.addValidity(x)
		return b.writeArray(x.Elems())
	case *vellum.ListArray:
		b.addNode(x)
		b.addValidity(x)
		b.addBuffer(unsafecast.Slice[byte](x.Offsets()))
		return b.writeArray(x.Elems())
	case *vellum.StructArray:
		b.addNode(x)
		b.addValidity(x)
		for i := 0; i < x.NumFields(); i++ {
			if err := b.writeArray(x.Field(i)); err != nil {
				return err
			}
		}
		return nil
	case *vellum.DictionaryArray:
		// Only the indices travel in the record batch; the values were
		// written by a dictionary batch.
		return b.writeArray(x.Indices())
	case *vellum.UnionArray:
		b.addNode(x)
		b.addBuffer(unsafecast.Slice[byte](x.TypeIDs()))
		if x.DataType().Mode == vellum.DenseUnion {
			b.addBuffer(unsafecast.Slice[byte](x.Offsets()))
		}
		for i := range x.DataType().Fields {
			if err := b.writeArray(x.Child(i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return vellum.Unsupportedf("cannot encode %T column", a)
	}
}

// assembleBody lays the raw buffers out into one 8-aligned body, compressing
// each buffer when a codec is set. Buffers whose compressed frame would not
// be smaller than the raw bytes are stored uncompressed inside the framing,
// flagged with an uncompressed length of -1.
//
// Buffers are independent, so compression fans out over an errgroup bounded
// by concurrency.
func assembleBody(raw [][]byte, codec compress.Codec, concurrency int) ([]byte, []format.Buffer, error) {
	payloads := make([][]byte, len(raw))
	if codec == nil {
		copy(payloads, raw)
	} else {
		if concurrency < 1 {
			concurrency = 1
		}
		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(concurrency)
		for i, data := range raw {
			i, data := i, data
			g.Go(func() error {
				frame, err := codec.Encode(nil, data)
				if err != nil {
					return err
				}
				payload := make([]byte, 8, 8+len(frame))
				if len(frame) < len(data) {
					binary.LittleEndian.PutUint64(payload, uint64(len(data)))
					payload = append(payload, frame...)
				} else {
					binary.LittleEndian.PutUint64(payload, ^uint64(0))
					payload = append(payload, data...)
				}
				payloads[i] = payload
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	var body []byte
	buffers := make([]format.Buffer, len(payloads))
	for i, payload := range payloads {
		buffers[i] = format.Buffer{
			Offset: int64(len(body)),
			Length: int64(len(payload)),
		}
		body = append(body, payload...)
		if pad := paddedLen(int64(len(body))) - int64(len(body)); pad > 0 {
			body = append(body, zeros[:pad]...)
		}
	}
	return body, buffers, nil
}

// encodeColumns flattens and assembles the columns of one record batch.
func encodeColumns(columns []vellum.Array, length int, compression format.Compression, concurrency int) (*format.RecordBatch, []byte, error) {
	codec, err := codecFor(compression)
	if err != nil {
		return nil, nil, err
	}
	bw := new(bodyWriter)
	for _, col := range columns {
		if err := bw.writeArray(col); err != nil {
			return nil, nil, err
		}
	}
	body, buffers, err := assembleBody(bw.raw, codec, concurrency)
	if err != nil {
		return nil, nil, err
	}
	rec := &format.RecordBatch{
		Length:         int64(length),
		Nodes:          bw.nodes,
		Buffers:        buffers,
		VariadicCounts: bw.variadic,
		Compression:    compression,
	}
	return rec, body, nil
}
