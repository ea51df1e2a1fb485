// Package zstd implements the zstd compression codec on top of
// github.com/klauspost/compress/zstd.
package zstd

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

type Level = zstd.EncoderLevel

const (
	SpeedFastest           = zstd.SpeedFastest
	SpeedDefault           = zstd.SpeedDefault
	SpeedBetterCompression = zstd.SpeedBetterCompression
	SpeedBestCompression   = zstd.SpeedBestCompression

	DefaultLevel = SpeedDefault
)

type Codec struct {
	Level Level

	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
}

func (c *Codec) String() string { return "ZSTD" }

func (c *Codec) level() Level {
	if c.Level != 0 {
		return c.Level
	}
	return DefaultLevel
}

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	c.encOnce.Do(func() {
		c.enc, c.encErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(c.level()),
			zstd.WithEncoderConcurrency(1),
		)
	})
	if c.encErr != nil {
		return dst, c.encErr
	}
	return c.enc.EncodeAll(src, dst[:0]), nil
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	c.decOnce.Do(func() {
		c.dec, c.decErr = zstd.NewReader(nil)
	})
	if c.decErr != nil {
		return dst, c.decErr
	}
	return c.dec.DecodeAll(src, dst[:0])
}
