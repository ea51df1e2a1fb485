package ipc

import (
	"github.com/vellum-data/vellum"
)

// Binary and Utf8 columns carry a validity buffer, an int32 offsets buffer
// and a contiguous value buffer. The value buffer is truncated at the last
// kept offset, so a row limit never reads value bytes past the kept rows.

func (d *decodeContext) decodeBinary(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	offsets, err := d.offsets32(dtype, n)
	if err != nil {
		return nil, err
	}
	values, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	end := int(offsets[n])
	if end > len(values) {
		return nil, vellum.Corruptf("%s value buffer has %d bytes but offsets end at %d", dtype, len(values), end)
	}
	return vellum.NewBinaryArray(dtype, offsets, values[:end], valid), nil
}

func (d *decodeContext) skipBinary(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	return d.skipBuffers(dtype, 3)
}
