package proc

import (
	"errors"
	"fmt"
)

// Target is a handle to one traced process. It carries everything the
// register commands need (the process id, its architecture, the register
// cache and the backend used to reach the kernel) so that none of it has
// to be looked up from global state.
type Target struct {
	Pid int

	arch     *Arch
	transfer *RegisterTransfer
	tracer   TraceController
	regs     *RegisterCache
}

// NewTarget returns a handle to process pid, which must already be traced
// and stopped, whose registers are laid out as described by arch and
// accessed through io. If io also implements TraceController qtrace
// becomes available on the target.
func NewTarget(pid int, arch *Arch, io ProcessRegisterIO) (*Target, error) {
	if err := arch.Validate(); err != nil {
		return nil, err
	}
	t := &Target{
		Pid:      pid,
		arch:     arch,
		transfer: NewRegisterTransfer(io),
		regs:     NewRegisterCache(arch),
	}
	if tc, ok := QtraceController(io); ok {
		t.tracer = tc
	}
	return t, nil
}

// Arch returns the architecture of the target.
func (t *Target) Arch() *Arch {
	return t.arch
}

// Cache returns the register cache of the target.
func (t *Target) Cache() *RegisterCache {
	return t.regs
}

// Registers fetches every register of the target and returns them in
// printable form. If floatingPoint is false a failure to read the floating
// point bank is not reported, since the general purpose bank has already
// been read by then.
func (t *Target) Registers(floatingPoint bool) ([]Register, error) {
	t.regs.Invalidate(AllRegisters)
	err := t.transfer.Fetch(t.Pid, t.regs, AllRegisters)
	if err != nil && (floatingPoint || !IsRegisterAccessError(err, FloatRead)) {
		return nil, err
	}
	return t.regs.Slice(floatingPoint), nil
}

// ReadRegister fetches register regnum from the target and returns its
// value.
func (t *Target) ReadRegister(regnum int) ([]byte, error) {
	if err := t.transfer.Fetch(t.Pid, t.regs, regnum); err != nil {
		return nil, err
	}
	b := t.regs.Bytes(regnum)
	if b == nil {
		return nil, fmt.Errorf("register %s unavailable", t.arch.RegisterName(regnum))
	}
	return b, nil
}

// ReadSubRegister fetches the register containing the partial view called
// name (for example eax on amd64) and returns the view.
func (t *Target) ReadSubRegister(name string) (Register, error) {
	if t.arch.SubRegister == nil {
		return Register{}, ErrUnknownRegister
	}
	sub, ok := t.arch.SubRegister(name)
	if !ok {
		return Register{}, ErrUnknownRegister
	}
	if _, err := t.ReadRegister(sub.Regnum); err != nil {
		return Register{}, err
	}
	return t.regs.SubRegister(sub), nil
}

// SetRegister changes the value of register regnum of the target. The
// other registers of the same bank keep their values. If the store fails
// the cached value of regnum is discarded.
func (t *Target) SetRegister(regnum int, value []byte) error {
	if err := t.regs.SetBytes(regnum, value); err != nil {
		return err
	}
	if err := t.transfer.Store(t.Pid, t.regs, regnum); err != nil {
		t.regs.Invalidate(regnum)
		return err
	}
	return nil
}

// SetRegisterUint64 is like SetRegister for integer values.
func (t *Target) SetRegisterUint64(regnum int, value uint64) error {
	if !t.arch.ValidRegnum(regnum) {
		return ErrUnknownRegister
	}
	if size := t.arch.RegisterSize(regnum); size < 8 && value>>(8*uint(size)) != 0 {
		return fmt.Errorf("value %#x too large for register %s", value, t.arch.RegisterName(regnum))
	}
	if err := t.regs.SetUint64(regnum, value); err != nil {
		return err
	}
	if err := t.transfer.Store(t.Pid, t.regs, regnum); err != nil {
		t.regs.Invalidate(regnum)
		return err
	}
	return nil
}

// QtraceSupported returns true if the backend of the target can record
// qtrace execution traces.
func (t *Target) QtraceSupported() bool {
	return t.tracer != nil
}

// Qtrace enables or disables qtrace on the target.
func (t *Target) Qtrace(enable bool) error {
	if t.tracer == nil {
		return ErrQtraceNotSupported
	}
	if enable {
		return StartQtrace(t.tracer, t.Pid)
	}
	return StopQtrace(t.tracer, t.Pid)
}

// ErrNoTarget is returned by commands that need a traced process when none
// is attached.
var ErrNoTarget = errors.New("no process attached")
