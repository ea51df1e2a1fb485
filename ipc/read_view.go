package ipc

import (
	"encoding/binary"
	"math"

	"github.com/vellum-data/vellum"
)

// View columns carry a validity buffer, a fixed-width view-entry buffer, and
// a variadic number of shared data buffers announced in the batch header's
// variadic-count sequence.

const (
	viewWidth     = 16
	viewInlineMax = 12
)

func (d *decodeContext) decodeView(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	views, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt/viewWidth {
		return nil, vellum.Corruptf("%s declares %d view entries", dtype, n)
	}
	if len(views) < n*viewWidth {
		return nil, vellum.Corruptf("%s view buffer has %d bytes for %d rows", dtype, len(views), n)
	}
	count, err := d.cur.nextVariadicCount(dtype)
	if err != nil {
		return nil, err
	}
	// Long views index into the data buffers by position, so every announced
	// buffer is kept even under a row limit.
	buffers := make([][]byte, count)
	for i := range buffers {
		if buffers[i], err = d.bufferBytes(dtype); err != nil {
			return nil, err
		}
	}
	views = views[:n*viewWidth]
	// Long view entries address the data buffers by position, so each one is
	// validated here the way binary offsets are, instead of trusting it at
	// access time.
	for i := 0; i < n; i++ {
		entry := views[i*viewWidth:]
		length := int64(binary.LittleEndian.Uint32(entry))
		if length <= viewInlineMax {
			continue
		}
		bufIdx := int64(binary.LittleEndian.Uint32(entry[8:12]))
		off := int64(binary.LittleEndian.Uint32(entry[12:16]))
		if bufIdx >= int64(len(buffers)) {
			return nil, vellum.Corruptf("%s view %d references data buffer %d of %d", dtype, i, bufIdx, len(buffers))
		}
		if off+length > int64(len(buffers[bufIdx])) {
			return nil, vellum.Corruptf("%s view %d spans [%d, +%d) past its %d byte data buffer", dtype, i, off, length, len(buffers[bufIdx]))
		}
	}
	return vellum.NewViewArray(dtype, views, buffers, valid)
}

func (d *decodeContext) skipView(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	if err := d.skipBuffers(dtype, 2); err != nil {
		return err
	}
	count, err := d.cur.nextVariadicCount(dtype)
	if err != nil {
		return err
	}
	return d.skipBuffers(dtype, int(count))
}
