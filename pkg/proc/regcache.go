package proc

import (
	"encoding/binary"
	"fmt"
)

type regStatus uint8

const (
	regUnknown regStatus = iota
	regValid
)

// RegisterCache holds the last known value of every register of a traced
// process, indexed by register number. Slots start out unknown and become
// valid when a register set function supplies them.
type RegisterCache struct {
	arch   *Arch
	regs   [][]byte
	status []regStatus
}

// NewRegisterCache returns an empty register cache for arch.
func NewRegisterCache(arch *Arch) *RegisterCache {
	c := &RegisterCache{
		arch:   arch,
		regs:   make([][]byte, arch.NumRegs),
		status: make([]regStatus, arch.NumRegs),
	}
	for i := range c.regs {
		c.regs[i] = make([]byte, arch.RegisterSize(i))
	}
	return c
}

// Arch returns the architecture of the cache.
func (c *RegisterCache) Arch() *Arch {
	return c.arch
}

func (c *RegisterCache) bigEndian() bool {
	return c.arch.ByteOrder == binary.BigEndian
}

// Valid returns true if register regnum holds a value.
func (c *RegisterCache) Valid(regnum int) bool {
	if !c.arch.ValidRegnum(regnum) {
		return false
	}
	return c.status[regnum] == regValid
}

// RawSupply sets register regnum to src and marks it valid. A nil src marks
// the register unknown instead. If src is shorter than the register it is
// zero extended, if it is longer it is truncated, in both cases following
// the byte order of the architecture.
func (c *RegisterCache) RawSupply(regnum int, src []byte) {
	if src == nil {
		c.Invalidate(regnum)
		return
	}
	resize(c.regs[regnum], src, c.bigEndian())
	c.status[regnum] = regValid
}

// RawCollect copies register regnum into dst, resized the same way
// RawSupply resizes its argument.
func (c *RegisterCache) RawCollect(regnum int, dst []byte) {
	resize(dst, c.regs[regnum], c.bigEndian())
}

// Bytes returns a copy of the value of register regnum, or nil if the
// register is not valid.
func (c *RegisterCache) Bytes(regnum int) []byte {
	if !c.Valid(regnum) {
		return nil
	}
	r := make([]byte, len(c.regs[regnum]))
	copy(r, c.regs[regnum])
	return r
}

// Uint64 returns the value of register regnum as an integer. Registers
// wider than 8 bytes return their low 8 bytes.
func (c *RegisterCache) Uint64(regnum int) (uint64, bool) {
	if !c.Valid(regnum) {
		return 0, false
	}
	var buf [8]byte
	resize(buf[:], c.regs[regnum], c.bigEndian())
	return c.arch.ByteOrder.Uint64(buf[:]), true
}

// SetBytes sets the value of register regnum, without writing it to the
// target process.
func (c *RegisterCache) SetBytes(regnum int, value []byte) error {
	if !c.arch.ValidRegnum(regnum) {
		return ErrUnknownRegister
	}
	if len(value) > len(c.regs[regnum]) {
		return fmt.Errorf("value too large for register %s (%d > %d bytes)", c.arch.RegisterName(regnum), len(value), len(c.regs[regnum]))
	}
	c.RawSupply(regnum, value)
	return nil
}

// SetUint64 sets the value of register regnum to v.
func (c *RegisterCache) SetUint64(regnum int, v uint64) error {
	if !c.arch.ValidRegnum(regnum) {
		return ErrUnknownRegister
	}
	var buf [8]byte
	c.arch.ByteOrder.PutUint64(buf[:], v)
	c.RawSupply(regnum, buf[:])
	return nil
}

// Invalidate marks register regnum unknown, or every register if regnum
// is AllRegisters.
func (c *RegisterCache) Invalidate(regnum int) {
	if regnum == AllRegisters {
		for i := range c.status {
			c.status[i] = regUnknown
		}
		return
	}
	if c.arch.ValidRegnum(regnum) {
		c.status[regnum] = regUnknown
	}
}

// SupplyRegs copies registers first through last out of raw, register i
// living in slot slot(i) of width regsize. A nil slot function means
// register first lives in slot 0 and the others follow in order.
// If regnum is not AllRegisters only that register is copied.
func SupplyRegs(cache *RegisterCache, regnum int, raw []byte, regsize, first, last int, slot func(int) int) {
	for i := first; i <= last; i++ {
		if regnum != AllRegisters && regnum != i {
			continue
		}
		off := slotOffset(i, first, regsize, slot)
		cache.RawSupply(i, raw[off:off+regsize])
	}
}

// CollectRegs is the inverse of SupplyRegs: it copies registers first
// through last from the cache into raw. Registers the cache does not hold
// are left untouched in raw.
func CollectRegs(cache *RegisterCache, regnum int, raw []byte, regsize, first, last int, slot func(int) int) {
	for i := first; i <= last; i++ {
		if regnum != AllRegisters && regnum != i {
			continue
		}
		if !cache.Valid(i) {
			continue
		}
		off := slotOffset(i, first, regsize, slot)
		cache.RawCollect(i, raw[off:off+regsize])
	}
}

func slotOffset(regnum, first, regsize int, slot func(int) int) int {
	if slot == nil {
		return (regnum - first) * regsize
	}
	return slot(regnum) * regsize
}

// resize copies src into dst. When the lengths differ the value is zero
// extended or truncated at its most significant end.
func resize(dst, src []byte, big bool) {
	if len(dst) == len(src) {
		copy(dst, src)
		return
	}
	for i := range dst {
		dst[i] = 0
	}
	if big {
		if len(src) > len(dst) {
			copy(dst, src[len(src)-len(dst):])
		} else {
			copy(dst[len(dst)-len(src):], src)
		}
		return
	}
	copy(dst, src)
}
