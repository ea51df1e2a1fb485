package ipc

import (
	"github.com/vellum-data/vellum"
)

// Dictionary columns carry only their index column in the record batch; the
// values were materialized by an earlier dictionary batch and are resolved
// through the registry.

func (d *decodeContext) decodeDictionary(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	dict, err := d.dicts.Lookup(dtype.DictID)
	if err != nil {
		return nil, err
	}
	indices, err := d.decodePrimitive(dtype.Index, limit)
	if err != nil {
		return nil, err
	}
	return vellum.NewDictionaryArray(dtype, indices.(*vellum.PrimitiveArray), dict)
}

func (d *decodeContext) skipDictionary(dtype *vellum.DataType) error {
	return d.skipPrimitive(dtype.Index)
}
