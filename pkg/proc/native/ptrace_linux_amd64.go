package native

import (
	"syscall"
	"unsafe"

	sys "golang.org/x/sys/unix"

	"github.com/go-delve/regxfer/pkg/proc/linutil"
)

// ptraceAttach executes the sys.PtraceAttach call.
func ptraceAttach(pid int) error {
	return sys.PtraceAttach(pid)
}

// ptraceDetach calls ptrace(PTRACE_DETACH).
func ptraceDetach(tid, sig int) error {
	_, _, err := sys.Syscall6(sys.SYS_PTRACE, sys.PTRACE_DETACH, uintptr(tid), 1, uintptr(sig), 0, 0)
	if err != syscall.Errno(0) {
		return err
	}
	return nil
}

// ptraceGetRegs reads struct user_regs_struct of tid into regs.
func ptraceGetRegs(tid int, regs []byte) error {
	var r sys.PtraceRegs
	if err := sys.PtraceGetRegs(tid, &r); err != nil {
		return err
	}
	lr := linutil.AMD64PtraceRegs(r)
	copy(regs, lr.Encode())
	return nil
}

// ptraceSetRegs writes regs, a struct user_regs_struct, to tid.
func ptraceSetRegs(tid int, regs []byte) error {
	var lr linutil.AMD64PtraceRegs
	if err := lr.Decode(regs); err != nil {
		return err
	}
	r := sys.PtraceRegs(lr)
	return sys.PtraceSetRegs(tid, &r)
}

// ptraceGetFpRegs executes PTRACE_GETFPREGS, filling fpregs with the
// FXSAVE area of tid.
func ptraceGetFpRegs(tid int, fpregs []byte) error {
	var fp linutil.AMD64PtraceFpRegs
	_, _, err := syscall.Syscall6(syscall.SYS_PTRACE, sys.PTRACE_GETFPREGS, uintptr(tid), 0, uintptr(unsafe.Pointer(&fp)), 0, 0)
	if err != syscall.Errno(0) {
		return err
	}
	copy(fpregs, fp.Encode())
	return nil
}

// ptraceSetFpRegs executes PTRACE_SETFPREGS.
func ptraceSetFpRegs(tid int, fpregs []byte) error {
	var fp linutil.AMD64PtraceFpRegs
	if err := fp.Decode(fpregs); err != nil {
		return err
	}
	_, _, err := syscall.Syscall6(syscall.SYS_PTRACE, sys.PTRACE_SETFPREGS, uintptr(tid), 0, uintptr(unsafe.Pointer(&fp)), 0, 0)
	if err != syscall.Errno(0) {
		return err
	}
	return nil
}
