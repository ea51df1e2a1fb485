package ipc

import (
	"sort"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/format"
)

// This file translates between the in-memory schema model and its wire
// representation. The two type trees have the same shape; translation is a
// structural walk in both directions, with the decoding direction validating
// child counts since wire schemas come from untrusted bytes.

var kindToWire = map[vellum.Kind]format.TypeKind{
	vellum.Null:            format.KindNull,
	vellum.Boolean:         format.KindBoolean,
	vellum.Int8:            format.KindInt8,
	vellum.Int16:           format.KindInt16,
	vellum.Int32:           format.KindInt32,
	vellum.Int64:           format.KindInt64,
	vellum.Uint8:           format.KindUint8,
	vellum.Uint16:          format.KindUint16,
	vellum.Uint32:          format.KindUint32,
	vellum.Uint64:          format.KindUint64,
	vellum.Float32:         format.KindFloat32,
	vellum.Float64:         format.KindFloat64,
	vellum.Binary:          format.KindBinary,
	vellum.Utf8:            format.KindUtf8,
	vellum.FixedSizeBinary: format.KindFixedSizeBinary,
	vellum.FixedSizeList:   format.KindFixedSizeList,
	vellum.List:            format.KindList,
	vellum.Struct:          format.KindStruct,
	vellum.Dictionary:      format.KindDictionary,
	vellum.Union:           format.KindUnion,
	vellum.BinaryView:      format.KindBinaryView,
	vellum.Utf8View:        format.KindUtf8View,
}

var wireToKind = func() map[format.TypeKind]vellum.Kind {
	m := make(map[format.TypeKind]vellum.Kind, len(kindToWire))
	for k, w := range kindToWire {
		m[w] = k
	}
	return m
}()

var primitiveTypes = map[vellum.Kind]*vellum.DataType{
	vellum.Null:    vellum.TypeNull,
	vellum.Boolean: vellum.TypeBoolean,
	vellum.Int8:    vellum.TypeInt8,
	vellum.Int16:   vellum.TypeInt16,
	vellum.Int32:   vellum.TypeInt32,
	vellum.Int64:   vellum.TypeInt64,
	vellum.Uint8:   vellum.TypeUint8,
	vellum.Uint16:  vellum.TypeUint16,
	vellum.Uint32:  vellum.TypeUint32,
	vellum.Uint64:  vellum.TypeUint64,
	vellum.Float32: vellum.TypeFloat32,
	vellum.Float64: vellum.TypeFloat64,
	vellum.Binary:  vellum.TypeBinary,
	vellum.Utf8:    vellum.TypeUtf8,
}

func integerKind(k vellum.Kind) bool {
	switch k {
	case vellum.Int8, vellum.Int16, vellum.Int32, vellum.Int64,
		vellum.Uint8, vellum.Uint16, vellum.Uint32, vellum.Uint64:
		return true
	default:
		return false
	}
}

func metadataToWire(m map[string]string) []format.KeyValue {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]format.KeyValue, len(keys))
	for i, k := range keys {
		kvs[i] = format.KeyValue{Key: k, Value: m[k]}
	}
	return kvs
}

func metadataFromWire(kvs []format.KeyValue) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func fieldToWire(f *vellum.Field) format.Field {
	wf := format.Field{
		Name:     f.Name,
		Kind:     kindToWire[f.Type.Kind],
		Nullable: f.Nullable,
		Metadata: metadataToWire(f.Metadata),
	}
	t := f.Type
	switch t.Kind {
	case vellum.FixedSizeBinary:
		wf.Size = int32(t.Size)
	case vellum.FixedSizeList, vellum.List:
		if t.Kind == vellum.FixedSizeList {
			wf.Size = int32(t.Size)
		}
		item := vellum.Field{Name: "item", Type: t.Elem, Nullable: true}
		wf.Children = []format.Field{fieldToWire(&item)}
	case vellum.Struct:
		wf.Children = make([]format.Field, len(t.Fields))
		for i := range t.Fields {
			wf.Children[i] = fieldToWire(&t.Fields[i])
		}
	case vellum.Dictionary:
		wf.DictID = t.DictID
		wf.IndexKind = kindToWire[t.Index.Kind]
		wf.Ordered = t.Ordered
		values := vellum.Field{Name: "values", Type: t.Values, Nullable: true}
		wf.Children = []format.Field{fieldToWire(&values)}
	case vellum.Union:
		wf.UnionMode = int8(t.Mode)
		wf.TypeIDs = t.TypeIDs
		wf.Children = make([]format.Field, len(t.Fields))
		for i := range t.Fields {
			wf.Children[i] = fieldToWire(&t.Fields[i])
		}
	}
	return wf
}

func fieldFromWire(wf *format.Field) (vellum.Field, error) {
	kind, ok := wireToKind[wf.Kind]
	if !ok {
		return vellum.Field{}, vellum.Unsupportedf("unknown wire type kind %d for field %q", wf.Kind, wf.Name)
	}
	f := vellum.Field{
		Name:     wf.Name,
		Nullable: wf.Nullable,
		Metadata: metadataFromWire(wf.Metadata),
	}
	switch kind {
	case vellum.FixedSizeBinary:
		f.Type = vellum.FixedSizeBinaryOf(int(wf.Size))
	case vellum.FixedSizeList, vellum.List:
		if len(wf.Children) != 1 {
			return f, vellum.Corruptf("%s field %q has %d children, want 1", kind, wf.Name, len(wf.Children))
		}
		elem, err := fieldFromWire(&wf.Children[0])
		if err != nil {
			return f, err
		}
		if kind == vellum.FixedSizeList {
			f.Type = vellum.FixedSizeListOf(int(wf.Size), elem.Type)
		} else {
			f.Type = vellum.ListOf(elem.Type)
		}
	case vellum.Struct:
		fields := make([]vellum.Field, len(wf.Children))
		for i := range wf.Children {
			child, err := fieldFromWire(&wf.Children[i])
			if err != nil {
				return f, err
			}
			fields[i] = child
		}
		f.Type = vellum.StructOf(fields...)
	case vellum.Dictionary:
		if len(wf.Children) != 1 {
			return f, vellum.Corruptf("dictionary field %q has %d children, want 1", wf.Name, len(wf.Children))
		}
		index, ok := wireToKind[wf.IndexKind]
		if !ok {
			return f, vellum.Unsupportedf("unknown dictionary index kind %d for field %q", wf.IndexKind, wf.Name)
		}
		indexType, ok := primitiveTypes[index]
		if !ok || !integerKind(index) {
			return f, vellum.Unsupportedf("dictionary index type %s for field %q is not an integer", index, wf.Name)
		}
		values, err := fieldFromWire(&wf.Children[0])
		if err != nil {
			return f, err
		}
		t := vellum.DictionaryOf(wf.DictID, indexType, values.Type)
		t.Ordered = wf.Ordered
		f.Type = t
	case vellum.Union:
		if len(wf.TypeIDs) != len(wf.Children) {
			return f, vellum.Corruptf("union field %q has %d type ids for %d children", wf.Name, len(wf.TypeIDs), len(wf.Children))
		}
		fields := make([]vellum.Field, len(wf.Children))
		for i := range wf.Children {
			child, err := fieldFromWire(&wf.Children[i])
			if err != nil {
				return f, err
			}
			fields[i] = child
		}
		f.Type = vellum.UnionOf(vellum.UnionMode(wf.UnionMode), wf.TypeIDs, fields...)
	case vellum.BinaryView, vellum.Utf8View:
		f.Type = &vellum.DataType{Kind: kind}
	default:
		f.Type = primitiveTypes[kind]
	}
	return f, nil
}

// schemaToWire renders a schema for the wire, declaring the given byte order
// for fixed-width buffers.
func schemaToWire(s *vellum.Schema, endianness format.Endianness) *format.Schema {
	ws := &format.Schema{
		Endianness: endianness,
		Fields:     make([]format.Field, len(s.Fields)),
		Metadata:   metadataToWire(s.Metadata),
	}
	for i := range s.Fields {
		ws.Fields[i] = fieldToWire(&s.Fields[i])
	}
	return ws
}

// schemaFromWire validates and translates a wire schema.
func schemaFromWire(ws *format.Schema) (*vellum.Schema, error) {
	fields := make([]vellum.Field, len(ws.Fields))
	for i := range ws.Fields {
		f, err := fieldFromWire(&ws.Fields[i])
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return vellum.NewSchema(fields, metadataFromWire(ws.Metadata)), nil
}
