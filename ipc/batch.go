package ipc

import (
	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// decodeBatch decodes one record batch body into a batch of columns.
//
// projection lists the schema positions to materialize, in output order; nil
// means every column. Projected-out columns are skipped, which consumes
// their queue entries without touching their bytes. limit caps the number of
// rows; pass noLimit for all rows.
func decodeBatch(schema *vellum.Schema, rec *format.RecordBatch, body []byte, dicts Dictionaries, endianness format.Endianness, projection []int, limit int) (*vellum.Batch, error) {
	codec, err := codecFor(rec.Compression)
	if err != nil {
		return nil, err
	}
	d := &decodeContext{
		cur:   newCursor(rec),
		body:  body,
		dicts: dicts,
		codec: codec,
		swap:  endianness == format.BigEndian,
	}

	var keep map[int]bool
	if projection != nil {
		keep = make(map[int]bool, len(projection))
		for _, p := range projection {
			keep[p] = true
		}
	}

	decoded := make(map[int]vellum.Array)
	for i := range schema.Fields {
		dtype := schema.Fields[i].Type
		if keep != nil && !keep[i] {
			if err := d.skip(dtype); err != nil {
				return nil, err
			}
			continue
		}
		col, err := d.decode(dtype, limit)
		if err != nil {
			return nil, err
		}
		decoded[i] = col
	}

	if projection == nil {
		columns := make([]vellum.Array, len(schema.Fields))
		for i := range columns {
			columns[i] = decoded[i]
		}
		return vellum.NewBatch(schema, columns)
	}
	columns := make([]vellum.Array, len(projection))
	for i, p := range projection {
		columns[i] = decoded[p]
	}
	return vellum.NewBatch(schema.Select(projection), columns)
}

// collectDictionaryTypes walks the schema's type trees and maps every
// dictionary id to its value type, so dictionary batches can be decoded
// without repeating the type in their header.
func collectDictionaryTypes(schema *vellum.Schema) map[int64]*vellum.DataType {
	types := make(map[int64]*vellum.DataType)
	for i := range schema.Fields {
		collectDictionaryType(schema.Fields[i].Type, types)
	}
	return types
}

func collectDictionaryType(t *vellum.DataType, types map[int64]*vellum.DataType) {
	switch t.Kind {
	case vellum.FixedSizeList, vellum.List:
		collectDictionaryType(t.Elem, types)
	case vellum.Struct, vellum.Union:
		for i := range t.Fields {
			collectDictionaryType(t.Fields[i].Type, types)
		}
	case vellum.Dictionary:
		types[t.DictID] = t.Values
		collectDictionaryType(t.Values, types)
	}
}

// registerDictionary decodes a dictionary batch body and stores the value
// array in the registry under its id.
func registerDictionary(dicts Dictionaries, types map[int64]*vellum.DataType, db *format.DictionaryBatch, body []byte, endianness format.Endianness) error {
	if db.IsDelta {
		return vellum.Unsupportedf("delta dictionary batches")
	}
	valueType, ok := types[db.ID]
	if !ok {
		return vellum.Corruptf("dictionary batch carries id %d which no schema field declares", db.ID)
	}
	codec, err := codecFor(db.Data.Compression)
	if err != nil {
		return err
	}
	d := &decodeContext{
		cur:   newCursor(&db.Data),
		body:  body,
		dicts: dicts,
		codec: codec,
		swap:  endianness == format.BigEndian,
	}
	values, err := d.decode(valueType, noLimit)
	if err != nil {
		return err
	}
	dicts[db.ID] = values
	return nil
}
