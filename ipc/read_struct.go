package ipc

import (
	"github.com/vellum-data/vellum"
)

// Struct columns carry a validity buffer and one child column per member,
// all limited to the same row count as the struct itself.

func (d *decodeContext) decodeStruct(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	valid, err := d.readValidity(dtype, node, limit)
	if err != nil {
		return nil, err
	}
	children := make([]vellum.Array, len(dtype.Fields))
	for i := range dtype.Fields {
		if children[i], err = d.decode(dtype.Fields[i].Type, limit); err != nil {
			return nil, err
		}
	}
	return vellum.NewStructArray(dtype, rows(node, limit), children, valid)
}

func (d *decodeContext) skipStruct(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	if err := d.skipBuffers(dtype, 1); err != nil {
		return err
	}
	for i := range dtype.Fields {
		if err := d.skip(dtype.Fields[i].Type); err != nil {
			return err
		}
	}
	return nil
}
