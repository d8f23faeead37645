package fbsdutil

import (
	"encoding/binary"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/regnum"
)

const (
	// MIPS64NumSaveRegs is the number of slots of struct reg: the 32
	// integer registers, sr, mullo, mulhi, badvaddr, cause, pc, ic and a
	// padding slot.
	MIPS64NumSaveRegs = 40
	// MIPS64NumFPRegs is the number of slots of struct fpreg: f0-f31, fsr
	// and fir.
	MIPS64NumFPRegs = 34

	// MIPS64RegSize is sizeof(register_t) and sizeof(f_register_t).
	MIPS64RegSize = 8
)

// MIPS64PtraceRegs is the struct used by the freebsd kernel to return the
// general purpose registers for MIPS64 CPUs.
// source: sys/mips/include/reg.h
type MIPS64PtraceRegs struct {
	Regs [MIPS64NumSaveRegs]uint64
}

// MIPS64PtraceFpRegs is the struct used by the freebsd kernel to return
// the floating point registers for MIPS64 CPUs.
// source: sys/mips/include/reg.h
type MIPS64PtraceFpRegs struct {
	Regs [MIPS64NumFPRegs]uint64
}

// Encode returns the registers laid out as the kernel expects them.
func (r *MIPS64PtraceRegs) Encode(order binary.ByteOrder) []byte {
	return encodeSlots(r.Regs[:], order)
}

// Decode fills r from a raw block.
func (r *MIPS64PtraceRegs) Decode(raw []byte, order binary.ByteOrder) {
	decodeSlots(r.Regs[:], raw, order)
}

// Encode returns the registers laid out as the kernel expects them.
func (r *MIPS64PtraceFpRegs) Encode(order binary.ByteOrder) []byte {
	return encodeSlots(r.Regs[:], order)
}

// Decode fills r from a raw block.
func (r *MIPS64PtraceFpRegs) Decode(raw []byte, order binary.ByteOrder) {
	decodeSlots(r.Regs[:], raw, order)
}

func encodeSlots(slots []uint64, order binary.ByteOrder) []byte {
	raw := make([]byte, len(slots)*8)
	for i, v := range slots {
		order.PutUint64(raw[i*8:], v)
	}
	return raw
}

func decodeSlots(slots []uint64, raw []byte, order binary.ByteOrder) {
	for i := range slots {
		if (i+1)*8 > len(raw) {
			return
		}
		slots[i] = order.Uint64(raw[i*8:])
	}
}

// MIPS64SupplyGregs supplies the general purpose registers stored in
// regs to cache. Register i is stored at offset i*regsize.
func MIPS64SupplyGregs(cache *proc.RegisterCache, regno int, regs []byte, regsize int) {
	proc.SupplyRegs(cache, regno, regs, regsize, regnum.MIPS64_Zero, regnum.MIPS64_PC, nil)
}

// MIPS64CollectGregs collects the general purpose registers from cache
// into regs.
func MIPS64CollectGregs(cache *proc.RegisterCache, regno int, regs []byte, regsize int) {
	proc.CollectRegs(cache, regno, regs, regsize, regnum.MIPS64_Zero, regnum.MIPS64_PC, nil)
}

// MIPS64SupplyFpregs supplies the floating point registers, including
// fsr and fir, stored in fpregs to cache.
func MIPS64SupplyFpregs(cache *proc.RegisterCache, regno int, fpregs []byte, regsize int) {
	proc.SupplyRegs(cache, regno, fpregs, regsize, regnum.MIPS64_F0, regnum.MIPS64_FIR, nil)
}

// MIPS64CollectFpregs collects the floating point registers from cache
// into fpregs.
func MIPS64CollectFpregs(cache *proc.RegisterCache, regno int, fpregs []byte, regsize int) {
	proc.CollectRegs(cache, regno, fpregs, regsize, regnum.MIPS64_F0, regnum.MIPS64_FIR, nil)
}

// MIPS64Arch returns the description of FreeBSD/mips64 registers for the
// given byte order (big endian for mips64, little endian for mips64el).
func MIPS64Arch(order binary.ByteOrder) *proc.Arch {
	name := "mips64"
	if order == binary.LittleEndian {
		name = "mips64el"
	}
	return &proc.Arch{
		Name:      name,
		ByteOrder: order,

		ZeroRegNum: regnum.MIPS64_Zero,
		PCRegNum:   regnum.MIPS64_PC,
		FP0RegNum:  regnum.MIPS64_F0,
		NumRegs:    regnum.MIPS64_NumRegs,

		GregSize:   MIPS64RegSize,
		FpregSize:  MIPS64RegSize,
		GregsSize:  MIPS64NumSaveRegs * MIPS64RegSize,
		FpregsSize: MIPS64NumFPRegs * MIPS64RegSize,

		RegisterName: regnum.MIPS64ToName,
		NameToRegnum: regnum.MIPS64NameToRegnum,
		RegisterSize: func(int) int { return MIPS64RegSize },
		FormatRegister: func(regno int, value []byte) string {
			if regno >= regnum.MIPS64_F0 && regno < regnum.MIPS64_FSR {
				return proc.FormatFloatReg(order, value)
			}
			return proc.FormatIntReg(order, value)
		},

		SupplyGregs:   MIPS64SupplyGregs,
		CollectGregs:  MIPS64CollectGregs,
		SupplyFpregs:  MIPS64SupplyFpregs,
		CollectFpregs: MIPS64CollectFpregs,
	}
}
