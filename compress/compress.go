// Package compress provides the block-compression codecs orchestrated by the
// ipc package.
//
// Codecs transform whole byte blocks; buffer-level framing (which buffers
// are compressed, uncompressed lengths) is the caller's concern.
package compress

// Codec is the interface implemented by the per-algorithm subpackages.
//
// Encode and Decode append to dst (which may be nil or recycled from a
// previous call) and return the resulting slice. Implementations must be
// safe for concurrent use.
type Codec interface {
	// String returns the codec name.
	String() string

	// Encode compresses src and appends the result to dst[:0].
	Encode(dst, src []byte) ([]byte, error)

	// Decode decompresses src and appends the result to dst[:0].
	Decode(dst, src []byte) ([]byte, error)
}
