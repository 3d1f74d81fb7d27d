package bson

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSize = errors.New("invalid size")
	ErrTruncated   = errors.New("insufficient bytes")
	ErrMaxDepth    = errors.New("maximum recursion depth reached")
)

// DataError reports malformed or out-of-bounds input data. Off is the offset
// within Data where the problem was detected.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// AssertionError is the panic value for broken API contracts: appending an
// EOO element, reading past the terminator, an unknown type tag reaching the
// comparator. Correct callers never see one.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return "bson: assertion failed: " + e.Msg
}

func invariantf(format string, args ...any) {
	panic(&AssertionError{fmt.Sprintf(format, args...)})
}
