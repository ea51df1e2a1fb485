package vellum

import (
	"errors"
	"fmt"
)

// Error categories shared by the array constructors and the ipc decoders.
// Callers test them with errors.Is.
var (
	// ErrCorrupt indicates that a stream does not match its own schema:
	// a field node or buffer was expected and the queue was exhausted, or a
	// buffer is shorter than its declared contents.
	ErrCorrupt = errors.New("vellum: corrupt stream")

	// ErrUnsupported indicates a well-formed input using a feature this
	// implementation rejects, such as zero-width fixed-size lists.
	ErrUnsupported = errors.New("vellum: unsupported feature")

	// ErrIntegrity indicates decoded data disagreeing with its declared
	// shape, such as a child length that is not a multiple of the list width.
	ErrIntegrity = errors.New("vellum: integrity mismatch")

	// ErrDictionaryMissing indicates a record batch referencing a dictionary
	// id that no dictionary batch has populated.
	ErrDictionaryMissing = errors.New("vellum: dictionary missing")
)

// Corruptf returns an ErrCorrupt wrapping error with a formatted detail
// message.
func Corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// Unsupportedf returns an ErrUnsupported wrapping error.
func Unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// Integrityf returns an ErrIntegrity wrapping error.
func Integrityf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}
