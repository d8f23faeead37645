package proc_test

import (
	"encoding/binary"
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/fbsdutil"
	"github.com/go-delve/regxfer/pkg/proc/sim"
	"github.com/go-delve/regxfer/pkg/regnum"
)

func newMIPS64Target(t *testing.T) (*proc.Target, *sim.IO) {
	t.Helper()
	s, arch := newMIPS64Process(t)
	tgt, err := proc.NewTarget(testPid, arch, s)
	require.NoError(t, err)
	return tgt, s
}

func TestNewTargetInvalidArch(t *testing.T) {
	arch := fbsdutil.MIPS64Arch(binary.BigEndian)
	arch.FP0RegNum++
	_, err := proc.NewTarget(1, arch, sim.New(arch))
	require.Error(t, err)
}

func TestTargetRegisters(t *testing.T) {
	tgt, _ := newMIPS64Target(t)

	regs, err := tgt.Registers(false)
	require.NoError(t, err)
	require.Len(t, regs, regnum.MIPS64_PC+1)
	require.Equal(t, "zero", regs[0].Name)
	require.Equal(t, "pc", regs[regnum.MIPS64_PC].Name)

	regs, err = tgt.Registers(true)
	require.NoError(t, err)
	require.Len(t, regs, regnum.MIPS64_NumRegs)
}

func TestTargetRegistersFloatFailure(t *testing.T) {
	tgt, s := newMIPS64Target(t)
	s.Fail(sim.GetFpRegs, syscall.EIO)

	regs, err := tgt.Registers(false)
	require.NoError(t, err)
	require.Len(t, regs, regnum.MIPS64_PC+1)

	_, err = tgt.Registers(true)
	require.True(t, proc.IsRegisterAccessError(err, proc.FloatRead))
}

func TestTargetReadRegister(t *testing.T) {
	tgt, s := newMIPS64Target(t)

	b, err := tgt.ReadRegister(regnum.MIPS64_RA)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1000+31), binary.BigEndian.Uint64(b))
	require.Equal(t, []sim.Call{{Op: sim.GetRegs, Pid: testPid}}, s.Calls())

	_, err = tgt.ReadRegister(regnum.MIPS64_NumRegs)
	require.ErrorIs(t, err, proc.ErrUnknownRegister)
}

func TestTargetSetRegister(t *testing.T) {
	tgt, _ := newMIPS64Target(t)

	require.NoError(t, tgt.SetRegisterUint64(regnum.MIPS64_PC, 0x120001000))
	b, err := tgt.ReadRegister(regnum.MIPS64_PC)
	require.NoError(t, err)
	require.Equal(t, uint64(0x120001000), binary.BigEndian.Uint64(b))

	require.NoError(t, tgt.SetRegister(regnum.MIPS64_F0, []byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0}))
	b, err = tgt.ReadRegister(regnum.MIPS64_F0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x3ff0000000000000), binary.BigEndian.Uint64(b))

	require.Error(t, tgt.SetRegister(regnum.MIPS64_F0, make([]byte, 9)))
}

func TestTargetSetRegisterFailure(t *testing.T) {
	tgt, s := newMIPS64Target(t)
	s.Fail(sim.SetRegs, syscall.EPERM)

	err := tgt.SetRegisterUint64(regnum.MIPS64_SP, 42)
	require.True(t, proc.IsRegisterAccessError(err, proc.GeneralWrite))
	require.False(t, tgt.Cache().Valid(regnum.MIPS64_SP), "failed store must not leave the new value cached")

	s.Fail(sim.SetRegs, nil)
	b, err := tgt.ReadRegister(regnum.MIPS64_SP)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1000+29), binary.BigEndian.Uint64(b))
}

func TestTargetQtrace(t *testing.T) {
	tgt, s := newMIPS64Target(t)
	require.True(t, tgt.QtraceSupported())
	require.NoError(t, tgt.Qtrace(true))
	require.True(t, s.Qtraced(testPid))
	require.NoError(t, tgt.Qtrace(false))
	require.False(t, s.Qtraced(testPid))

	plain, err := proc.NewTarget(testPid, tgt.Arch(), s.WithoutQtrace())
	require.NoError(t, err)
	require.False(t, plain.QtraceSupported())
	require.True(t, errors.Is(plain.Qtrace(true), proc.ErrQtraceNotSupported))
}
