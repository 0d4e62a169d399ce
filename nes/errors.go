package nes

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the fatal conditions the core can raise. Every kind
// but UnmappedRead aborts the current Step immediately; UnmappedRead is
// logged and recovered from by returning 0.
type ErrorKind int

const (
	ErrCartridgeInvalid ErrorKind = iota
	ErrUndefinedOpcode
	ErrUnmappedWrite
	ErrInvalidRomWrite
	ErrUnmappedRead
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCartridgeInvalid:
		return "CartridgeInvalid"
	case ErrUndefinedOpcode:
		return "UndefinedOpcode"
	case ErrUnmappedWrite:
		return "UnmappedWrite"
	case ErrInvalidRomWrite:
		return "InvalidRomWrite"
	case ErrUnmappedRead:
		return "UnmappedRead"
	default:
		return "Unknown"
	}
}

// Error is the typed fatal error every core error kind boils down to. Wrap
// it with errors.WithStack at the point of construction so a diagnostic
// dump can print where it originated.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// KindOf unwraps err down to a *Error and returns its Kind, ok=false if err
// isn't one of ours.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
