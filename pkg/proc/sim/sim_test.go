package sim

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-delve/regxfer/pkg/proc/fbsdutil"
)

func TestBlocks(t *testing.T) {
	s := New(fbsdutil.MIPS64Arch(binary.BigEndian))
	s.AddProcess(7)

	var regs fbsdutil.MIPS64PtraceRegs
	regs.Regs[3] = 0xdead
	require.NoError(t, s.SetBlocks(7, regs.Encode(binary.BigEndian), nil))

	buf := make([]byte, fbsdutil.MIPS64NumSaveRegs*fbsdutil.MIPS64RegSize)
	require.NoError(t, s.GetRegs(7, buf))
	var got fbsdutil.MIPS64PtraceRegs
	got.Decode(buf, binary.BigEndian)
	require.Equal(t, uint64(0xdead), got.Regs[3])

	require.ErrorIs(t, s.GetRegs(8, buf), ErrNoSuchProcess)
	require.Error(t, s.GetRegs(7, buf[:8]))
	require.Error(t, s.SetBlocks(7, []byte{1}, nil))

	require.Equal(t, []Call{{GetRegs, 7}, {GetRegs, 8}, {GetRegs, 7}}, s.Calls())
}

func TestFail(t *testing.T) {
	s := New(fbsdutil.MIPS64Arch(binary.LittleEndian))
	s.AddProcess(1)
	boom := errors.New("boom")

	s.Fail(GetFpRegs, boom)
	fp := make([]byte, fbsdutil.MIPS64NumFPRegs*fbsdutil.MIPS64RegSize)
	require.ErrorIs(t, s.GetFpRegs(1, fp), boom)
	require.ErrorIs(t, s.GetFpRegs(1, fp), boom)

	s.Fail(GetFpRegs, nil)
	require.NoError(t, s.GetFpRegs(1, fp))

	s.Fail(SetRegs, boom)
	s.Reset()
	require.Empty(t, s.Calls())
	require.NoError(t, s.SetRegs(1, make([]byte, fbsdutil.MIPS64NumSaveRegs*fbsdutil.MIPS64RegSize)))
}

func TestQtraceIdempotent(t *testing.T) {
	s := New(fbsdutil.MIPS64Arch(binary.BigEndian))
	s.AddProcess(3)

	require.NoError(t, s.SetQtrace(3, true))
	require.True(t, s.Qtraced(3))
	require.NoError(t, s.SetQtrace(3, true))
	require.True(t, s.Qtraced(3))
	require.NoError(t, s.SetQtrace(3, false))
	require.NoError(t, s.SetQtrace(3, false))
	require.False(t, s.Qtraced(3))

	require.ErrorIs(t, s.SetQtrace(4, true), ErrNoSuchProcess)
}

func TestWithoutQtrace(t *testing.T) {
	s := New(fbsdutil.MIPS64Arch(binary.BigEndian))
	_, ok := s.WithoutQtrace().(interface {
		SetQtrace(int, bool) error
	})
	require.False(t, ok)
}
