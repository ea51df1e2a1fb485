package ipc

import (
	"math"

	"github.com/vellum-data/vellum"
	"github.com/vellum-data/vellum/internal/unsafecast"
)

// Union columns carry a type-id buffer, an offsets buffer in dense mode, and
// one child column per variant. Sparse children share the union's length and
// its row limit. Dense children are indexed through the offsets buffer,
// whose values a row limit does not bound, so dense children are always
// decoded in full.

func (d *decodeContext) decodeUnion(dtype *vellum.DataType, limit int) (vellum.Array, error) {
	node, err := d.cur.nextNode(dtype)
	if err != nil {
		return nil, err
	}
	n := rows(node, limit)
	data, err := d.bufferBytes(dtype)
	if err != nil {
		return nil, err
	}
	if len(data) < n {
		return nil, vellum.Corruptf("union type-id buffer has %d bytes for %d rows", len(data), n)
	}
	typeIDs := unsafecast.Slice[int8](data)[:n:n]

	var offsets []int32
	childLimit := limit
	if dtype.Mode == vellum.DenseUnion {
		odata, err := d.bufferBytes(dtype)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt/4 {
			return nil, vellum.Corruptf("dense union declares %d offsets", n)
		}
		if len(odata) < n*4 {
			return nil, vellum.Corruptf("dense union offsets buffer has %d bytes for %d rows", len(odata), n)
		}
		odata = odata[: n*4 : n*4]
		if d.swap {
			odata = swapCopy(odata, 4)
		}
		offsets = unsafecast.Slice[int32](odata)[:n:n]
		childLimit = noLimit
	}

	children := make([]vellum.Array, len(dtype.Fields))
	for i := range dtype.Fields {
		if children[i], err = d.decode(dtype.Fields[i].Type, childLimit); err != nil {
			return nil, err
		}
	}
	return vellum.NewUnionArray(dtype, typeIDs, offsets, children)
}

func (d *decodeContext) skipUnion(dtype *vellum.DataType) error {
	if _, err := d.cur.nextNode(dtype); err != nil {
		return err
	}
	nbuf := 1
	if dtype.Mode == vellum.DenseUnion {
		nbuf = 2
	}
	if err := d.skipBuffers(dtype, nbuf); err != nil {
		return err
	}
	for i := range dtype.Fields {
		if err := d.skip(dtype.Fields[i].Type); err != nil {
			return err
		}
	}
	return nil
}
