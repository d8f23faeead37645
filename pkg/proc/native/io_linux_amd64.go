package native

import (
	"fmt"
	"runtime"
	"sync"

	sys "golang.org/x/sys/unix"

	"github.com/go-delve/regxfer/pkg/logflags"
	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/linutil"
)

// IO issues register requests to the kernel with ptrace(2). Every request
// is executed on the same OS thread, the one that attached to the traced
// processes.
type IO struct {
	ptraceChan     chan func()
	ptraceDoneChan chan interface{}
	closeOnce      sync.Once
	log            logflags.Logger
}

// New starts the ptrace thread and returns an IO using it. Call Close to
// stop the thread.
func New() (*IO, error) {
	io := &IO{
		ptraceChan:     make(chan func()),
		ptraceDoneChan: make(chan interface{}),
		log:            logflags.PtraceLogger(),
	}
	go io.handlePtraceFuncs()
	return io, nil
}

// Arch returns the register layout used by this backend.
func (io *IO) Arch() *proc.Arch {
	return linutil.AMD64Arch()
}

func (io *IO) handlePtraceFuncs() {
	// We must ensure here that we are running on the same thread during
	// while invoking the ptrace(2) syscall. This is due to the fact that ptrace(2) expects
	// all commands after PTRACE_ATTACH to come from the same thread.
	runtime.LockOSThread()

	for fn := range io.ptraceChan {
		fn()
		io.ptraceDoneChan <- nil
	}
}

func (io *IO) execPtraceFunc(fn func()) {
	io.ptraceChan <- fn
	<-io.ptraceDoneChan
}

// Close stops the ptrace thread. io must not be used afterwards.
func (io *IO) Close() error {
	io.closeOnce.Do(func() {
		close(io.ptraceChan)
	})
	return nil
}

// Attach attaches to process pid and waits for it to stop.
func (io *IO) Attach(pid int) error {
	var err error
	io.execPtraceFunc(func() { err = ptraceAttach(pid) })
	if err != nil {
		return fmt.Errorf("could not attach to pid %d: %w", pid, err)
	}
	ws, err := waitStop(pid)
	if err != nil {
		return err
	}
	if logflags.Ptrace() {
		io.log.Debugf("attached to %d (stop signal %v)", pid, ws.StopSignal())
	}
	return nil
}

var wait4 = sys.Wait4

// waitStop waits for pid to enter a stopped state.
func waitStop(pid int) (sys.WaitStatus, error) {
	var ws sys.WaitStatus
	for {
		_, err := wait4(pid, &ws, sys.WALL, nil)
		if err == sys.EINTR {
			continue
		}
		if err != nil {
			return ws, err
		}
		if ws.Exited() || ws.Signaled() {
			return ws, fmt.Errorf("process %d exited while attaching", pid)
		}
		if ws.Stopped() {
			return ws, nil
		}
	}
}

// Detach detaches from process pid, letting it run.
func (io *IO) Detach(pid int) error {
	var err error
	io.execPtraceFunc(func() { err = ptraceDetach(pid, 0) })
	if logflags.Ptrace() {
		io.log.Debugf("detached from %d: %v", pid, err)
	}
	return err
}

func (io *IO) exec(req string, pid int, fn func() error) error {
	var err error
	io.execPtraceFunc(func() { err = fn() })
	if logflags.Ptrace() {
		io.log.WithField("pid", pid).Debugf("%s: %v", req, err)
	}
	return err
}

func (io *IO) GetRegs(pid int, regs []byte) error {
	return io.exec("PTRACE_GETREGS", pid, func() error { return ptraceGetRegs(pid, regs) })
}

func (io *IO) SetRegs(pid int, regs []byte) error {
	return io.exec("PTRACE_SETREGS", pid, func() error { return ptraceSetRegs(pid, regs) })
}

func (io *IO) GetFpRegs(pid int, fpregs []byte) error {
	return io.exec("PTRACE_GETFPREGS", pid, func() error { return ptraceGetFpRegs(pid, fpregs) })
}

func (io *IO) SetFpRegs(pid int, fpregs []byte) error {
	return io.exec("PTRACE_SETFPREGS", pid, func() error { return ptraceSetFpRegs(pid, fpregs) })
}
