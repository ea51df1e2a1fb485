// Package brotli implements the brotli compression codec on top of
// github.com/andybalholm/brotli.
package brotli

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

const (
	DefaultQuality = brotli.DefaultCompression
)

type Codec struct {
	Quality int
}

func (c *Codec) String() string { return "BROTLI" }

func (c *Codec) quality() int {
	if c.Quality == 0 {
		return DefaultQuality
	}
	return c.Quality
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	w := brotli.NewWriterLevel(buf, c.quality())
	if _, err := w.Write(src); err != nil {
		return dst, err
	}
	if err := w.Close(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, brotli.NewReader(bytes.NewReader(src))); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
