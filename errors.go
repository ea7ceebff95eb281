package bytepatch

import (
	"errors"
	"fmt"
)

// Each stage of a patch fails with one of these, possibly wrapping the
// underlying cause.
var (
	ErrFileNotFound          = errors.New("file not found")
	ErrReadFailed            = errors.New("read failed")
	ErrMalformedSignature    = errors.New("malformed signature")
	ErrEmptyPattern          = errors.New("empty pattern")
	ErrPatternNotFound       = errors.New("pattern not found")
	ErrAmbiguousMatch        = errors.New("pattern matched more than once")
	ErrOffsetOutOfBounds     = errors.New("patch offset out of bounds")
	ErrWritePermissionDenied = errors.New("write permission denied")
	ErrWriteFailed           = errors.New("write failed")
	ErrLocked                = errors.New("file is locked by another patcher")
)

// MalformedSignatureError reports a \x escape that isn't followed by two hex
// digits. Pos is the byte index of the backslash in the signature.
type MalformedSignatureError struct {
	Pos    int
	Reason string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature at position %d: %s", e.Pos, e.Reason)
}

func (e *MalformedSignatureError) Is(target error) bool {
	return target == ErrMalformedSignature
}

// AmbiguousMatchError is returned in MatchUnique mode when the pattern occurs
// more than once.
type AmbiguousMatchError struct {
	Offsets []int
}

func (e *AmbiguousMatchError) Error() string {
	if len(e.Offsets) < 2 {
		return ErrAmbiguousMatch.Error()
	}
	return fmt.Sprintf("%v: %d matches (first at 0x%X, second at 0x%X)",
		ErrAmbiguousMatch, len(e.Offsets), e.Offsets[0], e.Offsets[1])
}

func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}
