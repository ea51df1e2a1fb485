package ipc

import (
	"github.com/vellum-data/vellum"
)

// Null columns carry a field node but no buffers.

func (d *decodeContext) decodeNull(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	return vellum.NewNullArray(rows(node, limit)), nil
}

func (d *decodeContext) skipNull(dtype *vellum.DataType) error {
	_, err := d.cur.nextNode(dtype)
	return err
}

// Boolean columns carry a validity buffer and a bit-packed value buffer.

func (d *decodeContext) decodeBoolean(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	data, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	if len(data) < (n+7)/8 {
		return nil, vellum.Corruptf("boolean value buffer has %d bytes for %d rows", len(data), n)
	}
	return vellum.NewBooleanArray(vellum.NewBitmap(data, n), valid), nil
}

func (d *decodeContext) skipBoolean(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	return d.skipBuffers(dtype, 2)
}

// Fixed-width columns (integers, floats, fixed-size binary) carry a validity
// buffer and one contiguous value buffer.

func (d *decodeContext) decodePrimitive(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	width := dtype.FixedWidth()
	if width <= 0 {
		return nil, vellum.Unsupportedf("%s has no fixed value width", dtype)
	}
	data, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	data, err = d.fixedData(dtype, data, n, width)
	if err != nil {
		return nil, err
	}
	return vellum.NewPrimitiveArray(dtype, data, n, valid), nil
}

func (d *decodeContext) skipPrimitive(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	return d.skipBuffers(dtype, 2)
}
