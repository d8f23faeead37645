package proc_test

import (
	"encoding/binary"
	"testing"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/fbsdutil"
	"github.com/go-delve/regxfer/pkg/proc/linutil"
	"github.com/go-delve/regxfer/pkg/regnum"
)

func TestRawSupplyResize(t *testing.T) {
	be := proc.NewRegisterCache(fbsdutil.MIPS64Arch(binary.BigEndian))
	be.RawSupply(regnum.MIPS64_SP, []byte{0x12, 0x34})
	if v, _ := be.Uint64(regnum.MIPS64_SP); v != 0x1234 {
		t.Fatalf("big endian zero extension: got %#x", v)
	}
	dst := make([]byte, 4)
	be.RawCollect(regnum.MIPS64_SP, dst)
	if binary.BigEndian.Uint32(dst) != 0x1234 {
		t.Fatalf("big endian truncation: got % x", dst)
	}

	le := proc.NewRegisterCache(fbsdutil.MIPS64Arch(binary.LittleEndian))
	le.RawSupply(regnum.MIPS64_SP, []byte{0x34, 0x12})
	if v, _ := le.Uint64(regnum.MIPS64_SP); v != 0x1234 {
		t.Fatalf("little endian zero extension: got %#x", v)
	}

	le.RawSupply(regnum.MIPS64_SP, nil)
	if le.Valid(regnum.MIPS64_SP) {
		t.Fatal("nil supply must invalidate")
	}
}

func TestInvalidate(t *testing.T) {
	c := proc.NewRegisterCache(linutil.AMD64Arch())
	c.SetUint64(regnum.AMD64_Rax, 1)
	c.SetUint64(regnum.AMD64_Rip, 2)
	c.Invalidate(regnum.AMD64_Rax)
	if c.Valid(regnum.AMD64_Rax) || !c.Valid(regnum.AMD64_Rip) {
		t.Fatal("single invalidate")
	}
	c.Invalidate(proc.AllRegisters)
	if c.Valid(regnum.AMD64_Rip) {
		t.Fatal("invalidate all")
	}
	if c.Bytes(regnum.AMD64_Rip) != nil {
		t.Fatal("invalid register must have no bytes")
	}
}

func TestSetBytes(t *testing.T) {
	c := proc.NewRegisterCache(linutil.AMD64Arch())
	if err := c.SetBytes(regnum.AMD64_XMM0, make([]byte, 16)); err != nil {
		t.Fatal(err)
	}
	if err := c.SetBytes(regnum.AMD64_Rax, make([]byte, 16)); err == nil {
		t.Fatal("expected error for oversized value")
	}
	if err := c.SetBytes(regnum.AMD64_NumRegs, []byte{1}); err != proc.ErrUnknownRegister {
		t.Fatalf("expected ErrUnknownRegister, got %v", err)
	}
}
