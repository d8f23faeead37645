package native

import (
	"errors"
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	sys "golang.org/x/sys/unix"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/regnum"
)

func attachSleeper(t *testing.T) (*IO, int) {
	t.Helper()
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("could not start sleep: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
	})

	io, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { io.Close() })

	pid := cmd.Process.Pid
	if err := io.Attach(pid); err != nil {
		if errors.Is(err, syscall.EPERM) {
			t.Skipf("ptrace not permitted: %v", err)
		}
		t.Fatal(err)
	}
	t.Cleanup(func() { io.Detach(pid) })
	return io, pid
}

func TestNativeRegisters(t *testing.T) {
	io, pid := attachSleeper(t)

	tgt, err := proc.NewTarget(pid, io.Arch(), io)
	require.NoError(t, err)
	require.False(t, tgt.QtraceSupported())

	regs, err := tgt.Registers(true)
	require.NoError(t, err)
	require.NotEmpty(t, regs)

	pc, ok := tgt.Cache().Uint64(regnum.AMD64_Rip)
	require.True(t, ok)
	require.NotZero(t, pc)

	// Writing back the value just read must leave the process unchanged.
	rbx, _ := tgt.Cache().Uint64(regnum.AMD64_Rbx)
	require.NoError(t, tgt.SetRegisterUint64(regnum.AMD64_Rbx, rbx))
	b, err := tgt.ReadRegister(regnum.AMD64_Rip)
	require.NoError(t, err)
	require.Len(t, b, 8)

	xmm, err := tgt.ReadRegister(regnum.AMD64_XMM0)
	require.NoError(t, err)
	require.Len(t, xmm, 16)
	require.NoError(t, tgt.SetRegister(regnum.AMD64_XMM0, xmm))
}

func TestNativeBadPid(t *testing.T) {
	io, err := New()
	require.NoError(t, err)
	defer io.Close()

	buf := make([]byte, io.Arch().GregsSize)
	require.Error(t, io.GetRegs(-1, buf))
}

func TestWaitStopInterrupted(t *testing.T) {
	defer func(f func(int, *sys.WaitStatus, int, *sys.Rusage) (int, error)) { wait4 = f }(wait4)

	calls := 0
	wait4 = func(pid int, ws *sys.WaitStatus, options int, rusage *sys.Rusage) (int, error) {
		calls++
		if calls < 3 {
			return -1, sys.EINTR
		}
		*ws = sys.WaitStatus(uint32(sys.SIGSTOP)<<8 | 0x7f)
		return pid, nil
	}

	ws, err := waitStop(42)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.True(t, ws.Stopped())
	require.Equal(t, sys.SIGSTOP, ws.StopSignal())

	wait4 = func(pid int, ws *sys.WaitStatus, options int, rusage *sys.Rusage) (int, error) {
		return -1, sys.ECHILD
	}
	_, err = waitStop(42)
	require.ErrorIs(t, err, sys.ECHILD)
}
