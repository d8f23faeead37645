package proc

import (
	"errors"
)

// ErrQtraceNotSupported is returned when qtrace is requested on a backend
// whose kernel does not provide it.
var ErrQtraceNotSupported = errors.New("qtrace is not supported by this backend")

// TraceController is implemented by backends whose kernel can record a
// low overhead execution trace (qtrace) of a traced process. The enabled
// state is kept by the kernel: asking for the state the process is already
// in succeeds without effect.
type TraceController interface {
	SetQtrace(pid int, enable bool) error
}

// QtraceController returns the TraceController implemented by io, if any.
func QtraceController(io ProcessRegisterIO) (TraceController, bool) {
	tc, ok := io.(TraceController)
	return tc, ok
}

// StartQtrace enables qtrace for process pid.
func StartQtrace(tc TraceController, pid int) error {
	if tc == nil {
		return ErrQtraceNotSupported
	}
	if err := tc.SetQtrace(pid, true); err != nil {
		return &TraceToggleError{Kind: EnableFailed, Pid: pid, Err: err}
	}
	return nil
}

// StopQtrace disables qtrace for process pid.
func StopQtrace(tc TraceController, pid int) error {
	if tc == nil {
		return ErrQtraceNotSupported
	}
	if err := tc.SetQtrace(pid, false); err != nil {
		return &TraceToggleError{Kind: DisableFailed, Pid: pid, Err: err}
	}
	return nil
}
