package export

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal export failure. Every error crossing the
// pipeline boundary carries exactly one kind; no raw low-level error
// escapes uncategorized.
type Kind int

const (
	// KindAssetLoad: image or audio failed to decode, was empty, or
	// exceeded size limits. Not retried.
	KindAssetLoad Kind = iota + 1
	// KindCapability: the host lacks a required encode capability.
	// Raised before any encoding starts.
	KindCapability
	// KindEncoding: the encoder failed mid-export.
	KindEncoding
	// KindPlayback: the audio stream failed during playback.
	KindPlayback
)

func (k Kind) String() string {
	switch k {
	case KindAssetLoad:
		return "asset_load"
	case KindCapability:
		return "capability"
	case KindEncoding:
		return "encoding"
	case KindPlayback:
		return "playback"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified export failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an export Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == kind
}

// ErrExportInFlight is returned when Export is called while another export
// on the same pipeline is still running. The running export is unaffected.
var ErrExportInFlight = errors.New("an export is already in flight")

// ErrCancelled is returned when the caller cancels an export mid-flight.
var ErrCancelled = errors.New("export cancelled")

func classify(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
