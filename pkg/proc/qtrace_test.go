package proc_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/sim"
)

func TestQtraceController(t *testing.T) {
	s, _ := newMIPS64Process(t)
	tc, ok := proc.QtraceController(s)
	require.True(t, ok)
	require.NotNil(t, tc)

	_, ok = proc.QtraceController(s.WithoutQtrace())
	require.False(t, ok)

	require.ErrorIs(t, proc.StartQtrace(nil, testPid), proc.ErrQtraceNotSupported)
	require.ErrorIs(t, proc.StopQtrace(nil, testPid), proc.ErrQtraceNotSupported)
}

// Toggling qtrace into the state it is already in succeeds, as it does for
// PT_SETQTRACE.
func TestQtraceIdempotent(t *testing.T) {
	s, _ := newMIPS64Process(t)

	require.NoError(t, proc.StartQtrace(s, testPid))
	require.NoError(t, proc.StartQtrace(s, testPid))
	require.True(t, s.Qtraced(testPid))

	require.NoError(t, proc.StopQtrace(s, testPid))
	require.NoError(t, proc.StopQtrace(s, testPid))
	require.False(t, s.Qtraced(testPid))

	require.Equal(t, []sim.Call{
		{Op: sim.SetQtrace, Pid: testPid},
		{Op: sim.SetQtrace, Pid: testPid},
		{Op: sim.SetQtrace, Pid: testPid},
		{Op: sim.SetQtrace, Pid: testPid},
	}, s.Calls())
}

func TestQtraceFailure(t *testing.T) {
	s, _ := newMIPS64Process(t)
	s.Fail(sim.SetQtrace, syscall.EINVAL)

	var terr *proc.TraceToggleError
	err := proc.StartQtrace(s, testPid)
	require.True(t, errors.As(err, &terr))
	require.Equal(t, proc.EnableFailed, terr.Kind)
	require.ErrorIs(t, err, syscall.EINVAL)

	err = proc.StopQtrace(s, testPid)
	require.True(t, errors.As(err, &terr))
	require.Equal(t, proc.DisableFailed, terr.Kind)
	require.Equal(t, testPid, terr.Pid)

	require.Equal(t, "couldn't enable qtrace: "+syscall.EINVAL.Error(), (&proc.TraceToggleError{Kind: proc.EnableFailed, Err: syscall.EINVAL}).Error())
}
