package proc

import (
	"github.com/go-delve/regxfer/pkg/logflags"
)

// ProcessRegisterIO is the kernel facility used to read and write the
// register banks of a traced process. Every call transfers a whole bank:
// regs and fpregs are buffers of exactly Arch.GregsSize and
// Arch.FpregsSize bytes laid out the way the kernel lays out its register
// structs.
type ProcessRegisterIO interface {
	GetRegs(pid int, regs []byte) error
	SetRegs(pid int, regs []byte) error
	GetFpRegs(pid int, fpregs []byte) error
	SetFpRegs(pid int, fpregs []byte) error
}

// RegisterTransfer moves registers between a RegisterCache and a traced
// process. It holds no state about the processes it operates on and does
// no locking: callers must not issue concurrent transfers for the same
// process.
type RegisterTransfer struct {
	io  ProcessRegisterIO
	log logflags.Logger
}

// NewRegisterTransfer returns a RegisterTransfer that talks to the kernel
// through io.
func NewRegisterTransfer(io ProcessRegisterIO) *RegisterTransfer {
	return &RegisterTransfer{io: io, log: logflags.RegsLogger()}
}

// IO returns the kernel facility used by rt.
func (rt *RegisterTransfer) IO() ProcessRegisterIO {
	return rt.io
}

// Fetch reads register regnum of process pid into cache. If regnum is
// AllRegisters both banks are read, general purpose registers first; a
// failure reading the general purpose bank aborts the fetch before the
// floating point bank is requested.
func (rt *RegisterTransfer) Fetch(pid int, cache *RegisterCache, regnum int) error {
	arch := cache.Arch()
	if regnum != AllRegisters && !arch.ValidRegnum(regnum) {
		return ErrUnknownRegister
	}

	if regnum == AllRegisters || GeneralRegsSupplies(arch, regnum) {
		regs := make([]byte, arch.GregsSize)
		if err := rt.io.GetRegs(pid, regs); err != nil {
			return &RegisterAccessError{Kind: GeneralRead, Pid: pid, Err: err}
		}
		arch.SupplyGregs(cache, regnum, regs, arch.GregSize)
		rt.trace("fetch", "general", pid, arch, regnum)
		if regnum != AllRegisters {
			return nil
		}
	}

	if FloatRegsSupplies(arch, regnum) {
		fpregs := make([]byte, arch.FpregsSize)
		if err := rt.io.GetFpRegs(pid, fpregs); err != nil {
			return &RegisterAccessError{Kind: FloatRead, Pid: pid, Err: err}
		}
		arch.SupplyFpregs(cache, regnum, fpregs, arch.FpregSize)
		rt.trace("fetch", "float", pid, arch, regnum)
	}
	return nil
}

// Store writes register regnum from cache into process pid. Because the
// kernel only accepts whole banks each bank is read first, the selected
// registers are overlaid on it and the result is written back, so that the
// other registers of the bank keep their current values.
func (rt *RegisterTransfer) Store(pid int, cache *RegisterCache, regnum int) error {
	arch := cache.Arch()
	if regnum != AllRegisters && !arch.ValidRegnum(regnum) {
		return ErrUnknownRegister
	}

	if regnum == AllRegisters || GeneralRegsSupplies(arch, regnum) {
		regs := make([]byte, arch.GregsSize)
		if err := rt.io.GetRegs(pid, regs); err != nil {
			return &RegisterAccessError{Kind: GeneralRead, Pid: pid, Err: err}
		}
		arch.CollectGregs(cache, regnum, regs, arch.GregSize)
		if err := rt.io.SetRegs(pid, regs); err != nil {
			return &RegisterAccessError{Kind: GeneralWrite, Pid: pid, Err: err}
		}
		rt.trace("store", "general", pid, arch, regnum)
		if regnum != AllRegisters {
			return nil
		}
	}

	if FloatRegsSupplies(arch, regnum) {
		fpregs := make([]byte, arch.FpregsSize)
		if err := rt.io.GetFpRegs(pid, fpregs); err != nil {
			return &RegisterAccessError{Kind: FloatRead, Pid: pid, Err: err}
		}
		arch.CollectFpregs(cache, regnum, fpregs, arch.FpregSize)
		if err := rt.io.SetFpRegs(pid, fpregs); err != nil {
			return &RegisterAccessError{Kind: FloatWrite, Pid: pid, Err: err}
		}
		rt.trace("store", "float", pid, arch, regnum)
	}
	return nil
}

func (rt *RegisterTransfer) trace(op, bank string, pid int, arch *Arch, regnum int) {
	if !logflags.Regs() {
		return
	}
	reg := "all"
	if regnum != AllRegisters {
		reg = arch.RegisterName(regnum)
	}
	rt.log.WithFields(logflags.Fields{"pid": pid, "bank": bank, "reg": reg}).Debugf("%s", op)
}
