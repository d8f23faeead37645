package proc

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// RegsetFunc moves the registers of one bank between a RegisterCache and
// the raw block the kernel uses for that bank. If regnum is AllRegisters
// every register of the bank is moved, otherwise only regnum. regsize is
// the width of one slot of the raw block.
type RegsetFunc func(cache *RegisterCache, regnum int, raw []byte, regsize int)

// Arch describes the register numbering of a CPU architecture and how its
// two register banks are laid out in the structs exchanged with the
// kernel.
type Arch struct {
	Name      string
	ByteOrder binary.ByteOrder

	// ZeroRegNum is the first general purpose register, PCRegNum the last
	// one. Floating point registers start at FP0RegNum and end at
	// NumRegs-1.
	ZeroRegNum int
	PCRegNum   int
	FP0RegNum  int
	NumRegs    int

	// GregSize and FpregSize are the widths of one slot of the general
	// purpose and floating point raw blocks, GregsSize and FpregsSize the
	// sizes of the blocks themselves.
	GregSize   int
	FpregSize  int
	GregsSize  int
	FpregsSize int

	RegisterName   func(regnum int) string
	NameToRegnum   map[string]int
	RegisterSize   func(regnum int) int
	FormatRegister func(regnum int, value []byte) string

	SupplyGregs   RegsetFunc
	CollectGregs  RegsetFunc
	SupplyFpregs  RegsetFunc
	CollectFpregs RegsetFunc

	// SubRegister, if set, resolves names of partial views of a register
	// that have no register number of their own (eax on amd64).
	SubRegister func(name string) (SubRegister, bool)
}

// SubRegister is the low Size bytes of register Regnum after shifting it
// right by Shift bits.
type SubRegister struct {
	Name   string
	Regnum int
	Shift  uint
	Size   int
}

// Validate checks that the architecture description is internally
// consistent.
func (a *Arch) Validate() error {
	switch {
	case a.ByteOrder == nil:
		return fmt.Errorf("%s: missing byte order", a.Name)
	case a.ZeroRegNum < 0 || a.ZeroRegNum > a.PCRegNum:
		return fmt.Errorf("%s: bad general purpose range %d-%d", a.Name, a.ZeroRegNum, a.PCRegNum)
	case a.PCRegNum+1 != a.FP0RegNum:
		return fmt.Errorf("%s: floating point bank must start right after pc (pc %d, fp0 %d)", a.Name, a.PCRegNum, a.FP0RegNum)
	case a.FP0RegNum >= a.NumRegs:
		return fmt.Errorf("%s: empty floating point bank", a.Name)
	case a.GregSize <= 0 || a.FpregSize <= 0 || a.GregsSize <= 0 || a.FpregsSize <= 0:
		return fmt.Errorf("%s: bad register block sizes", a.Name)
	case (a.PCRegNum-a.ZeroRegNum+1)*a.GregSize > a.GregsSize:
		return fmt.Errorf("%s: general purpose block too small", a.Name)
	case (a.NumRegs-a.FP0RegNum)*a.FpregSize > a.FpregsSize:
		return fmt.Errorf("%s: floating point block too small", a.Name)
	case a.SupplyGregs == nil || a.CollectGregs == nil || a.SupplyFpregs == nil || a.CollectFpregs == nil:
		return fmt.Errorf("%s: missing register set functions", a.Name)
	case a.RegisterName == nil || a.RegisterSize == nil:
		return fmt.Errorf("%s: missing register metadata", a.Name)
	}
	return nil
}

// RegnumByName returns the number of the register called name.
func (a *Arch) RegnumByName(name string) (int, bool) {
	n, ok := a.NameToRegnum[strings.ToLower(name)]
	return n, ok
}

// ValidRegnum returns true if regnum is a register of this architecture.
func (a *Arch) ValidRegnum(regnum int) bool {
	return regnum >= a.ZeroRegNum && regnum < a.NumRegs
}
