// Package unsafecast converts between compatible memory layouts without
// copying.
//
// The decoders use it to expose raw value buffers as typed slices; callers
// are responsible for keeping the backing memory alive and immutable for the
// lifetime of the converted view.
package unsafecast

import "unsafe"

// The slice type mirrors the runtime layout of Go slices, using an
// unsafe.Pointer for the backing array so the garbage collector keeps
// tracking the reference.
type slice struct {
	ptr unsafe.Pointer
	len int
	cap int
}

// Slice converts a []From into a []To sharing the same backing array. The
// length and capacity are rescaled by the size ratio of the two element
// types. The caller must guarantee the layouts are compatible.
func Slice[To, From any](data []From) []To {
	var zf From
	var zt To
	s := slice{
		ptr: *(*unsafe.Pointer)(unsafe.Pointer(&data)),
		len: int((uintptr(len(data)) * unsafe.Sizeof(zf)) / unsafe.Sizeof(zt)),
		cap: int((uintptr(cap(data)) * unsafe.Sizeof(zf)) / unsafe.Sizeof(zt)),
	}
	return *(*[]To)(unsafe.Pointer(&s))
}

// BytesToString returns a string sharing the backing array of data. The
// slice must not be modified while the string is in use.
func BytesToString(data []byte) string {
	return unsafe.String(unsafe.SliceData(data), len(data))
}

// StringToBytes applies the inverse conversion of BytesToString.
func StringToBytes(data string) []byte {
	return unsafe.Slice(unsafe.StringData(data), len(data))
}
