package vellum

import "math/bits"

// Bitmap is a validity bitmap in LSB bit order: bit i of the bitmap is bit
// (i % 8) of byte (i / 8). A nil *Bitmap means all values are valid.
type Bitmap struct {
	bytes []byte
	n     int
}

// NewBitmap wraps the given bytes as a bitmap of n bits. The bytes must hold
// at least (n+7)/8 bytes.
func NewBitmap(b []byte, n int) *Bitmap {
	return &Bitmap{bytes: b, n: n}
}

// MakeBitmap allocates an all-zero bitmap of n bits.
func MakeBitmap(n int) *Bitmap {
	return &Bitmap{bytes: make([]byte, (n+7)/8), n: n}
}

// BitmapFromBools builds a bitmap with bit i set when valid[i] is true.
func BitmapFromBools(valid []bool) *Bitmap {
	m := MakeBitmap(len(valid))
	for i, v := range valid {
		if v {
			m.Set(i)
		}
	}
	return m
}

// Len returns the number of bits.
func (m *Bitmap) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}

// Get reports whether bit i is set. A nil bitmap is all-set.
func (m *Bitmap) Get(i int) bool {
	if m == nil {
		return true
	}
	return m.bytes[i>>3]&(1<<(i&7)) != 0
}

// Set sets bit i.
func (m *Bitmap) Set(i int) { m.bytes[i>>3] |= 1 << (i & 7) }

// Bytes returns the backing bytes. The trailing bits of the last byte beyond
// Len are unspecified.
func (m *Bitmap) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.bytes
}

// CountSet returns the number of set bits among the first Len bits.
func (m *Bitmap) CountSet() int {
	if m == nil {
		return 0
	}
	full := m.n / 8
	count := 0
	for _, b := range m.bytes[:full] {
		count += bits.OnesCount8(b)
	}
	if rem := m.n & 7; rem != 0 {
		count += bits.OnesCount8(m.bytes[full] & (1<<rem - 1))
	}
	return count
}

// Truncate returns a bitmap limited to the first n bits. It shares the
// backing bytes. Truncating beyond Len returns the receiver unchanged.
func (m *Bitmap) Truncate(n int) *Bitmap {
	if m == nil || n >= m.n {
		return m
	}
	return &Bitmap{bytes: m.bytes[:(n+7)/8], n: n}
}

// Equal reports whether both bitmaps have the same length and bits. Two nil
// bitmaps are equal; a nil bitmap only equals an all-set bitmap of length 0.
func (m *Bitmap) Equal(o *Bitmap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		if m.Get(i) != o.Get(i) {
			return false
		}
	}
	return true
}
