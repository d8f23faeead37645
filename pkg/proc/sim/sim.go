// Package sim implements an in-memory stand-in for the kernel register
// interface. Each simulated process owns a general purpose and a floating
// point register block; individual requests can be made to fail and every
// request is recorded so that callers can check what was asked of the
// kernel and in which order.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-delve/regxfer/pkg/logflags"
	"github.com/go-delve/regxfer/pkg/proc"
)

// ErrNoSuchProcess is returned for requests about a pid that was never
// added.
var ErrNoSuchProcess = errors.New("no such process")

// Op identifies a kernel request.
type Op uint8

const (
	GetRegs Op = iota
	SetRegs
	GetFpRegs
	SetFpRegs
	SetQtrace
)

func (op Op) String() string {
	switch op {
	case GetRegs:
		return "PT_GETREGS"
	case SetRegs:
		return "PT_SETREGS"
	case GetFpRegs:
		return "PT_GETFPREGS"
	case SetFpRegs:
		return "PT_SETFPREGS"
	case SetQtrace:
		return "PT_SETQTRACE"
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Call is one recorded request.
type Call struct {
	Op  Op
	Pid int
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d)", c.Op, c.Pid)
}

type process struct {
	regs   []byte
	fpregs []byte
	qtrace bool
}

// IO is a simulated kernel. It implements proc.ProcessRegisterIO and
// proc.TraceController and is safe for concurrent use.
type IO struct {
	mu       sync.Mutex
	arch     *proc.Arch
	procs    map[int]*process
	failures map[Op]error
	calls    []Call
	log      logflags.Logger
}

// New returns a simulated kernel whose register blocks are sized for
// arch.
func New(arch *proc.Arch) *IO {
	return &IO{
		arch:     arch,
		procs:    make(map[int]*process),
		failures: make(map[Op]error),
		log:      logflags.PtraceLogger(),
	}
}

// Arch returns the architecture the simulated blocks are sized for.
func (s *IO) Arch() *proc.Arch {
	return s.arch
}

// AddProcess creates process pid with both register blocks zeroed. Adding
// an existing pid resets it.
func (s *IO) AddProcess(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs[pid] = &process{
		regs:   make([]byte, s.arch.GregsSize),
		fpregs: make([]byte, s.arch.FpregsSize),
	}
}

// SetBlocks replaces the register blocks of process pid. A nil block is
// left unchanged.
func (s *IO) SetBlocks(pid int, regs, fpregs []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[pid]
	if !ok {
		return ErrNoSuchProcess
	}
	if regs != nil {
		if err := s.checkSize(regs, s.arch.GregsSize); err != nil {
			return err
		}
		copy(p.regs, regs)
	}
	if fpregs != nil {
		if err := s.checkSize(fpregs, s.arch.FpregsSize); err != nil {
			return err
		}
		copy(p.fpregs, fpregs)
	}
	return nil
}

// Blocks returns copies of the register blocks of process pid.
func (s *IO) Blocks(pid int) (regs, fpregs []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[pid]
	if !ok {
		return nil, nil, ErrNoSuchProcess
	}
	return append([]byte(nil), p.regs...), append([]byte(nil), p.fpregs...), nil
}

// Qtraced reports whether qtrace is enabled for process pid.
func (s *IO) Qtraced(pid int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[pid]
	return ok && p.qtrace
}

// Fail makes every following request of kind op fail with err, until
// Fail is called again for op with a nil error or Reset is called.
func (s *IO) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns the requests received so far.
func (s *IO) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Reset forgets recorded calls and injected failures. Process state is
// kept.
func (s *IO) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.failures = make(map[Op]error)
}

func (s *IO) checkSize(buf []byte, size int) error {
	if len(buf) != size {
		return fmt.Errorf("bad register block size %d, expected %d", len(buf), size)
	}
	return nil
}

// request records a call and returns the process it refers to, or the
// error the call must fail with.
func (s *IO) request(op Op, pid int) (*process, error) {
	s.calls = append(s.calls, Call{Op: op, Pid: pid})
	if logflags.Ptrace() {
		s.log.Debugf("%s pid=%d", op, pid)
	}
	if err := s.failures[op]; err != nil {
		return nil, err
	}
	p, ok := s.procs[pid]
	if !ok {
		return nil, ErrNoSuchProcess
	}
	return p, nil
}

func (s *IO) get(op Op, pid int, dst []byte, bank func(*process) []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.request(op, pid)
	if err != nil {
		return err
	}
	src := bank(p)
	if err := s.checkSize(dst, len(src)); err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

func (s *IO) set(op Op, pid int, src []byte, bank func(*process) []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.request(op, pid)
	if err != nil {
		return err
	}
	dst := bank(p)
	if err := s.checkSize(src, len(dst)); err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

func gregsBank(p *process) []byte { return p.regs }
func fpregsBank(p *process) []byte { return p.fpregs }

func (s *IO) GetRegs(pid int, regs []byte) error {
	return s.get(GetRegs, pid, regs, gregsBank)
}

func (s *IO) SetRegs(pid int, regs []byte) error {
	return s.set(SetRegs, pid, regs, gregsBank)
}

func (s *IO) GetFpRegs(pid int, fpregs []byte) error {
	return s.get(GetFpRegs, pid, fpregs, fpregsBank)
}

func (s *IO) SetFpRegs(pid int, fpregs []byte) error {
	return s.set(SetFpRegs, pid, fpregs, fpregsBank)
}

// SetQtrace enables or disables qtrace for process pid. Requesting the
// current state succeeds and changes nothing.
func (s *IO) SetQtrace(pid int, enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.request(SetQtrace, pid)
	if err != nil {
		return err
	}
	p.qtrace = enable
	return nil
}

type regsOnly struct {
	s *IO
}

func (r regsOnly) GetRegs(pid int, regs []byte) error { return r.s.GetRegs(pid, regs) }
func (r regsOnly) SetRegs(pid int, regs []byte) error { return r.s.SetRegs(pid, regs) }
func (r regsOnly) GetFpRegs(pid int, fpregs []byte) error { return r.s.GetFpRegs(pid, fpregs) }
func (r regsOnly) SetFpRegs(pid int, fpregs []byte) error { return r.s.SetFpRegs(pid, fpregs) }

// WithoutQtrace returns a view of s that only implements
// proc.ProcessRegisterIO, as a kernel without qtrace support would.
func (s *IO) WithoutQtrace() proc.ProcessRegisterIO {
	return regsOnly{s}
}
