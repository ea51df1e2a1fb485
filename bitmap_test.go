package vellum

import "testing"

func TestBitmap(t *testing.T) {
	m := MakeBitmap(19)
	for _, i := range []int{0, 3, 7, 8, 15, 18} {
		m.Set(i)
	}

	if got, want := m.Len(), 19; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
	if got, want := m.CountSet(), 6; got != want {
		t.Errorf("CountSet() = %d, want %d", got, want)
	}
	for i := 0; i < m.Len(); i++ {
		want := i == 0 || i == 3 || i == 7 || i == 8 || i == 15 || i == 18
		if m.Get(i) != want {
			t.Errorf("Get(%d) = %t, want %t", i, m.Get(i), want)
		}
	}
}

func TestBitmapNil(t *testing.T) {
	var m *Bitmap
	if !m.Get(0) || !m.Get(1000) {
		t.Error("nil bitmap must read as all-valid")
	}
	if m.Len() != 0 {
		t.Errorf("nil bitmap Len() = %d", m.Len())
	}
	if m.CountSet() != 0 {
		t.Errorf("nil bitmap CountSet() = %d", m.CountSet())
	}
	if m.Truncate(4) != nil {
		t.Error("truncating a nil bitmap must stay nil")
	}
}

func TestBitmapTruncate(t *testing.T) {
	m := BitmapFromBools([]bool{true, false, true, true, false, true, true, true, true, false})

	short := m.Truncate(4)
	if got, want := short.Len(), 4; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := short.CountSet(), 3; got != want {
		t.Errorf("CountSet() = %d, want %d", got, want)
	}

	// Truncation shares the backing bytes rather than copying.
	if &short.Bytes()[0] != &m.Bytes()[0] {
		t.Error("Truncate must not copy the backing bytes")
	}

	if m.Truncate(100) != m {
		t.Error("truncating past Len must return the receiver")
	}
}

func TestBitmapCountSetPartialByte(t *testing.T) {
	// Trailing bits of the last byte must not leak into the count.
	m := NewBitmap([]byte{0xFF, 0xFF}, 9)
	if got, want := m.CountSet(), 9; got != want {
		t.Errorf("CountSet() = %d, want %d", got, want)
	}
}

func TestBitmapEqual(t *testing.T) {
	a := BitmapFromBools([]bool{true, false, true})
	b := BitmapFromBools([]bool{true, false, true})
	c := BitmapFromBools([]bool{true, true, true})

	if !a.Equal(b) {
		t.Error("equal bitmaps reported unequal")
	}
	if a.Equal(c) {
		t.Error("unequal bitmaps reported equal")
	}
	if a.Equal(a.Truncate(2)) {
		t.Error("bitmaps of different lengths reported equal")
	}
}
