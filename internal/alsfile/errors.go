package alsfile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies decode failures.
type ErrorKind int

const (
	// KindCompression means the gzip stream could not be decompressed.
	KindCompression ErrorKind = iota + 1
	// KindMalformed means the bytes did not parse as a single XML element tree.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindCompression:
		return "compression"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

var (
	ErrCompression = errors.New("container decompression failed")
	ErrMalformed   = errors.New("container is not a well-formed document")
)

// DecodeError reports why a container could not be decoded.
type DecodeError struct {
	Kind ErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	base := ErrMalformed
	if e.Kind == KindCompression {
		base = ErrCompression
	}
	if e.Err == nil {
		return base.Error()
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	sentinel := ErrMalformed
	if e.Kind == KindCompression {
		sentinel = ErrCompression
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

func compressionError(err error) error {
	return &DecodeError{Kind: KindCompression, Err: err}
}

func malformedError(format string, args ...any) error {
	return &DecodeError{Kind: KindMalformed, Err: fmt.Errorf(format, args...)}
}
