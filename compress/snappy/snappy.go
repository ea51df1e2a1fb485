// Package snappy implements the snappy block compression codec on top of
// github.com/klauspost/compress/snappy.
package snappy

import "github.com/klauspost/compress/snappy"

type Codec struct{}

func (c *Codec) String() string { return "SNAPPY" }

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:0], src), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return snappy.Decode(dst[:0], src)
}
