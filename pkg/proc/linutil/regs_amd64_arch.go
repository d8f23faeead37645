package linutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/regnum"
)

// AMD64PtraceRegs is the struct used by the linux kernel to return the
// general purpose registers for AMD64 CPUs.
// source: arch/x86/include/asm/user_64.h (struct user_regs_struct)
type AMD64PtraceRegs struct {
	R15      uint64
	R14      uint64
	R13      uint64
	R12      uint64
	Rbp      uint64
	Rbx      uint64
	R11      uint64
	R10      uint64
	R9       uint64
	R8       uint64
	Rax      uint64
	Rcx      uint64
	Rdx      uint64
	Rsi      uint64
	Rdi      uint64
	Orig_rax uint64
	Rip      uint64
	Cs       uint64
	Eflags   uint64
	Rsp      uint64
	Ss       uint64
	Fs_base  uint64
	Gs_base  uint64
	Ds       uint64
	Es       uint64
	Fs       uint64
	Gs       uint64
}

// AMD64PtraceFpRegs is the struct used by the linux kernel to return the
// floating point registers for AMD64 CPUs, the legacy FXSAVE area.
// source: arch/x86/include/asm/user_64.h (struct user_i387_struct)
type AMD64PtraceFpRegs struct {
	Cwd      uint16
	Swd      uint16
	Ftw      uint16
	Fop      uint16
	Rip      uint64
	Rdp      uint64
	Mxcsr    uint32
	MxcrMask uint32
	StSpace  [32]uint32
	XmmSpace [256]byte
	Padding  [24]uint32
}

const (
	AMD64GregSize   = 8
	AMD64FpregSize  = 16
	AMD64GregsSize  = 27 * AMD64GregSize
	AMD64FpregsSize = 512
)

// Encode returns the registers laid out as the kernel expects them.
func (r *AMD64PtraceRegs) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, r)
	return buf.Bytes()
}

// Decode fills r from a raw block.
func (r *AMD64PtraceRegs) Decode(raw []byte) error {
	return binary.Read(bytes.NewReader(raw), binary.LittleEndian, r)
}

// Encode returns the registers laid out as the kernel expects them.
func (r *AMD64PtraceFpRegs) Encode() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, r)
	return buf.Bytes()
}

// Decode fills r from a raw block.
func (r *AMD64PtraceFpRegs) Decode(raw []byte) error {
	return binary.Read(bytes.NewReader(raw), binary.LittleEndian, r)
}

// amd64GregSlots maps register numbers of the general purpose bank to
// their slot in AMD64PtraceRegs.
var amd64GregSlots = [...]int{
	regnum.AMD64_Rax:      10,
	regnum.AMD64_Rdx:      12,
	regnum.AMD64_Rcx:      11,
	regnum.AMD64_Rbx:      5,
	regnum.AMD64_Rsi:      13,
	regnum.AMD64_Rdi:      14,
	regnum.AMD64_Rbp:      4,
	regnum.AMD64_Rsp:      19,
	regnum.AMD64_R8:       9,
	regnum.AMD64_R9:       8,
	regnum.AMD64_R10:      7,
	regnum.AMD64_R11:      6,
	regnum.AMD64_R12:      3,
	regnum.AMD64_R13:      2,
	regnum.AMD64_R14:      1,
	regnum.AMD64_R15:      0,
	regnum.AMD64_Rflags:   18,
	regnum.AMD64_Cs:       17,
	regnum.AMD64_Ss:       20,
	regnum.AMD64_Ds:       23,
	regnum.AMD64_Es:       24,
	regnum.AMD64_Fs:       25,
	regnum.AMD64_Gs:       26,
	regnum.AMD64_Fs_base:  21,
	regnum.AMD64_Gs_base:  22,
	regnum.AMD64_Orig_rax: 15,
	regnum.AMD64_Rip:      16,
}

func amd64GregSlot(regno int) int {
	return amd64GregSlots[regno]
}

// AMD64SupplyGregs supplies the general purpose registers stored in regs
// to cache.
func AMD64SupplyGregs(cache *proc.RegisterCache, regno int, regs []byte, regsize int) {
	proc.SupplyRegs(cache, regno, regs, regsize, regnum.AMD64_Rax, regnum.AMD64_Rip, amd64GregSlot)
}

// AMD64CollectGregs collects the general purpose registers from cache
// into regs.
func AMD64CollectGregs(cache *proc.RegisterCache, regno int, regs []byte, regsize int) {
	proc.CollectRegs(cache, regno, regs, regsize, regnum.AMD64_Rax, regnum.AMD64_Rip, amd64GregSlot)
}

// AMD64SupplyFpregs supplies the FXSAVE area stored in fpregs to cache,
// one 16 byte slot per register.
func AMD64SupplyFpregs(cache *proc.RegisterCache, regno int, fpregs []byte, regsize int) {
	proc.SupplyRegs(cache, regno, fpregs, regsize, regnum.AMD64_FPCtl, regnum.AMD64_NumRegs-1, nil)
}

// AMD64CollectFpregs collects the FXSAVE area from cache into fpregs.
func AMD64CollectFpregs(cache *proc.RegisterCache, regno int, fpregs []byte, regsize int) {
	proc.CollectRegs(cache, regno, fpregs, regsize, regnum.AMD64_FPCtl, regnum.AMD64_NumRegs-1, nil)
}

func amd64RegisterSize(regno int) int {
	if regno >= regnum.AMD64_FPCtl {
		return AMD64FpregSize
	}
	return AMD64GregSize
}

func amd64FormatRegister(regno int, value []byte) string {
	le := binary.LittleEndian
	switch {
	case regno == regnum.AMD64_Rflags:
		return proc.FormatEflags(le.Uint64(value))
	case regno == regnum.AMD64_FPCtl:
		return fmt.Sprintf("CW=%#04x SW=%#04x TW=%#04x FOP=%#04x FIP=%#016x",
			le.Uint16(value[0:]), le.Uint16(value[2:]), le.Uint16(value[4:]), le.Uint16(value[6:]), le.Uint64(value[8:]))
	case regno == regnum.AMD64_SSECtl:
		return fmt.Sprintf("FDP=%#016x MXCSR=%s MXCSR_MASK=%#08x",
			le.Uint64(value[0:]), proc.FormatMxcsr(uint64(le.Uint32(value[8:]))), le.Uint32(value[12:]))
	case regno >= regnum.AMD64_ST0 && regno < regnum.AMD64_XMM0:
		return proc.FormatX87Reg(value)
	case regno >= regnum.AMD64_XMM0:
		return proc.FormatSSEReg(value)
	}
	return proc.FormatIntReg(le, value)
}

// AMD64Arch returns the description of linux/amd64 registers.
func AMD64Arch() *proc.Arch {
	return &proc.Arch{
		Name:      "amd64",
		ByteOrder: binary.LittleEndian,

		ZeroRegNum: regnum.AMD64_Rax,
		PCRegNum:   regnum.AMD64_Rip,
		FP0RegNum:  regnum.AMD64_FPCtl,
		NumRegs:    regnum.AMD64_NumRegs,

		GregSize:   AMD64GregSize,
		FpregSize:  AMD64FpregSize,
		GregsSize:  AMD64GregsSize,
		FpregsSize: AMD64FpregsSize,

		RegisterName:   regnum.AMD64ToName,
		NameToRegnum:   regnum.AMD64NameToRegnum,
		RegisterSize:   amd64RegisterSize,
		FormatRegister: amd64FormatRegister,

		SupplyGregs:   AMD64SupplyGregs,
		CollectGregs:  AMD64CollectGregs,
		SupplyFpregs:  AMD64SupplyFpregs,
		CollectFpregs: AMD64CollectFpregs,

		SubRegister: AMD64SubRegister,
	}
}

var amd64AsmRegs = map[x86asm.Reg]int{
	x86asm.RAX: regnum.AMD64_Rax,
	x86asm.RCX: regnum.AMD64_Rcx,
	x86asm.RDX: regnum.AMD64_Rdx,
	x86asm.RBX: regnum.AMD64_Rbx,
	x86asm.RSP: regnum.AMD64_Rsp,
	x86asm.RBP: regnum.AMD64_Rbp,
	x86asm.RSI: regnum.AMD64_Rsi,
	x86asm.RDI: regnum.AMD64_Rdi,
	x86asm.R8:  regnum.AMD64_R8,
	x86asm.R9:  regnum.AMD64_R9,
	x86asm.R10: regnum.AMD64_R10,
	x86asm.R11: regnum.AMD64_R11,
	x86asm.R12: regnum.AMD64_R12,
	x86asm.R13: regnum.AMD64_R13,
	x86asm.R14: regnum.AMD64_R14,
	x86asm.R15: regnum.AMD64_R15,
	x86asm.RIP: regnum.AMD64_Rip,
}

// asmView returns the register number containing reg and the position of
// reg inside it.
func asmView(reg x86asm.Reg) (proc.SubRegister, bool) {
	var (
		full  x86asm.Reg
		shift uint
		size  int
	)
	switch {
	case reg >= x86asm.AL && reg <= x86asm.BL:
		full, size = x86asm.RAX+(reg-x86asm.AL), 1
	case reg >= x86asm.AH && reg <= x86asm.BH:
		full, shift, size = x86asm.RAX+(reg-x86asm.AH), 8, 1
	case reg >= x86asm.SPB && reg <= x86asm.R15B:
		full, size = x86asm.RSP+(reg-x86asm.SPB), 1
	case reg >= x86asm.AX && reg <= x86asm.R15W:
		full, size = x86asm.RAX+(reg-x86asm.AX), 2
	case reg >= x86asm.EAX && reg <= x86asm.R15L:
		full, size = x86asm.RAX+(reg-x86asm.EAX), 4
	case reg >= x86asm.RAX && reg <= x86asm.R15:
		full, size = reg, 8
	case reg == x86asm.IP:
		full, size = x86asm.RIP, 2
	case reg == x86asm.EIP:
		full, size = x86asm.RIP, 4
	case reg == x86asm.RIP:
		full, size = x86asm.RIP, 8
	default:
		return proc.SubRegister{}, false
	}
	n, ok := amd64AsmRegs[full]
	if !ok {
		return proc.SubRegister{}, false
	}
	return proc.SubRegister{Name: strings.ToLower(reg.String()), Regnum: n, Shift: shift, Size: size}, true
}

// amd64AsmNames maps the lower case x86asm names of the integer registers
// and their views (al, ah, r8b, ax, eax, r8l, rax, eip...) to x86asm
// registers.
var amd64AsmNames = func() map[string]x86asm.Reg {
	m := make(map[string]x86asm.Reg)
	for reg := x86asm.AL; reg <= x86asm.RIP; reg++ {
		m[strings.ToLower(reg.String())] = reg
	}
	return m
}()

// AMD64SubRegister resolves name as an x86asm register view of one of the
// amd64 integer registers.
func AMD64SubRegister(name string) (proc.SubRegister, bool) {
	reg, ok := amd64AsmNames[strings.ToLower(name)]
	if !ok {
		return proc.SubRegister{}, false
	}
	return asmView(reg)
}

// AMD64AsmRegnum returns the register number of the 64 bit register that
// contains the x86asm register reg.
func AMD64AsmRegnum(reg x86asm.Reg) (int, bool) {
	sub, ok := asmView(reg)
	return sub.Regnum, ok
}

// AMD64AsmRegister returns the value of the x86asm register reg (for
// example AL, AX, EAX or RAX) from a cache holding amd64 registers.
func AMD64AsmRegister(cache *proc.RegisterCache, reg x86asm.Reg) (uint64, error) {
	sub, ok := asmView(reg)
	if !ok {
		return 0, proc.ErrUnknownRegister
	}
	v, ok := cache.SubRegisterUint64(sub)
	if !ok {
		return 0, fmt.Errorf("register %s unavailable", regnum.AMD64ToName(sub.Regnum))
	}
	return v, nil
}
