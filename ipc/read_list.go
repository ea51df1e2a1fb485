package ipc

import (
	"github.com/vellum-data/vellum"
)

// Fixed-size list columns carry a validity buffer and a child column whose
// length is the list length times the slot width. A row limit on the list
// scales to a limit of limit*width on the child, saturating on overflow.
// Zero-width lists would make the child limit vacuous and cannot locate
// their rows, so they are rejected outright.

func (d *decodeContext) decodeFixedSizeList(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	size := dtype.Size
	if size <= 0 {
		return nil, vellum.Unsupportedf("cannot decode fixed_size_list of width %d", size)
	}
	child, err := d.decode(dtype.Elem, scaleLimit(limit, size))
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	return vellum.NewFixedSizeListArray(dtype, n, child, valid)
}

func (d *decodeContext) skipFixedSizeList(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	if err := d.skipBuffers(dtype, 1); err != nil {
		return err
	}
	if dtype.Size <= 0 {
		return vellum.Unsupportedf("cannot skip fixed_size_list of width %d", dtype.Size)
	}
	return d.skip(dtype.Elem)
}

// List columns carry a validity buffer, an int32 offsets buffer and a child
// column. Under a row limit the child is limited to the rows the kept
// offsets can reach.

func (d *decodeContext) decodeList(dtype *vellum.DataType, limit int) (vellum.Array, error) {
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
	child, err := d.decode(dtype.Elem, int(offsets[n]))
	if err != nil {
		return nil, err
	}
	return vellum.NewListArray(dtype, offsets, child, valid)
}

func (d *decodeContext) skipList(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	if err := d.skipBuffers(dtype, 2); err != nil {
		return err
	}
	return d.skip(dtype.Elem)
}
