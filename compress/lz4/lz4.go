// Package lz4 implements the LZ4 frame compression codec on top of
// github.com/pierrec/lz4/v4.
package lz4

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

type Level = lz4.CompressionLevel

const (
	Fastest = lz4.Fast
	Level1  = lz4.Level1
	Level5  = lz4.Level5
	Level9  = lz4.Level9
)

type Codec struct {
	Level Level
}

var writerPool = sync.Pool{
	New: func() any { return lz4.NewWriter(nil) },
}

var readerPool = sync.Pool{
	New: func() any { return lz4.NewReader(nil) },
}

func (c *Codec) String() string { return "LZ4" }

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w := writerPool.Get().(*lz4.Writer)
	defer writerPool.Put(w)
	w.Reset(buf)
	if err := w.Apply(lz4.CompressionLevelOption(c.Level)); err != nil {
		return dst, err
	}
	if _, err := w.Write(src); err != nil {
		return dst, err
	}
	if err := w.Close(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	r := readerPool.Get().(*lz4.Reader)
	defer readerPool.Put(r)
	r.Reset(bytes.NewReader(src))
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, r); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
