package k4

import (
	"errors"
	"fmt"
)

var (
	ErrChecksum            = errors.New("k4: checksum mismatch")
	ErrWrongKind           = errors.New("k4: record kind mismatch")
	ErrWrongSize           = errors.New("k4: record size mismatch")
	ErrTruncated           = errors.New("k4: dump payload truncated")
	ErrTrailingData        = errors.New("k4: trailing bytes after dump payload")
	ErrUnknownField        = errors.New("k4: unknown field")
	ErrUnknownKind         = errors.New("k4: unknown record kind")
	ErrUnsupportedFunction = errors.New("k4: unsupported dump function")
	ErrNoSlot              = errors.New("k4: no such record slot")
	ErrUnknownFormat       = errors.New("k4: unknown file format")
)

// RecordError attaches the record kind and slot index to a per-record
// failure.
type RecordError struct {
	Kind  Kind
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s #%d (%s): %v", e.Kind, e.Index, e.Kind.SlotName(e.Index), e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
