package proc

import (
	"errors"
	"fmt"
)

// ErrUnknownRegister is returned when a register number that the
// architecture does not define is requested.
var ErrUnknownRegister = errors.New("unknown register")

// RegisterAccessKind identifies which kernel request failed during a
// register transfer.
type RegisterAccessKind uint8

const (
	GeneralRead RegisterAccessKind = iota
	GeneralWrite
	FloatRead
	FloatWrite
)

func (k RegisterAccessKind) String() string {
	switch k {
	case GeneralRead:
		return "GeneralRead"
	case GeneralWrite:
		return "GeneralWrite"
	case FloatRead:
		return "FloatRead"
	case FloatWrite:
		return "FloatWrite"
	}
	return fmt.Sprintf("RegisterAccessKind(%d)", uint8(k))
}

func (k RegisterAccessKind) message() string {
	switch k {
	case GeneralRead:
		return "couldn't get registers"
	case GeneralWrite:
		return "couldn't write registers"
	case FloatRead:
		return "couldn't get floating point status"
	case FloatWrite:
		return "couldn't write floating point status"
	}
	return "register access failed"
}

// RegisterAccessError is returned when the kernel refuses to read or write
// a register bank of a traced process.
type RegisterAccessError struct {
	Kind RegisterAccessKind
	Pid  int
	Err  error
}

func (e *RegisterAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind.message(), e.Err)
}

func (e *RegisterAccessError) Unwrap() error {
	return e.Err
}

// TraceToggleKind identifies which direction of a qtrace toggle failed.
type TraceToggleKind uint8

const (
	EnableFailed TraceToggleKind = iota
	DisableFailed
)

func (k TraceToggleKind) String() string {
	if k == EnableFailed {
		return "EnableFailed"
	}
	return "DisableFailed"
}

// TraceToggleError is returned when enabling or disabling qtrace fails.
type TraceToggleError struct {
	Kind TraceToggleKind
	Pid  int
	Err  error
}

func (e *TraceToggleError) Error() string {
	if e.Kind == EnableFailed {
		return fmt.Sprintf("couldn't enable qtrace: %v", e.Err)
	}
	return fmt.Sprintf("couldn't disable qtrace: %v", e.Err)
}

func (e *TraceToggleError) Unwrap() error {
	return e.Err
}

// IsRegisterAccessError returns true if err is a RegisterAccessError of
// kind k.
func IsRegisterAccessError(err error, k RegisterAccessKind) bool {
	var rerr *RegisterAccessError
	return errors.As(err, &rerr) && rerr.Kind == k
}
