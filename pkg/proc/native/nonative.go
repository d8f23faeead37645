//go:build !linux || !amd64
// +build !linux !amd64

package native

import (
	"github.com/go-delve/regxfer/pkg/proc"
	"github.com/go-delve/regxfer/pkg/proc/linutil"
)

// IO is unusable on this platform.
type IO struct{}

// New returns ErrNativeBackendDisabled.
func New() (*IO, error) {
	return nil, ErrNativeBackendDisabled
}

func (io *IO) Arch() *proc.Arch {
	return linutil.AMD64Arch()
}

func (io *IO) Close() error { return nil }

// Attach returns ErrNativeBackendDisabled.
func (io *IO) Attach(pid int) error {
	return ErrNativeBackendDisabled
}

// Detach returns ErrNativeBackendDisabled.
func (io *IO) Detach(pid int) error {
	return ErrNativeBackendDisabled
}

func (io *IO) GetRegs(pid int, regs []byte) error { return ErrNativeBackendDisabled }
func (io *IO) SetRegs(pid int, regs []byte) error { return ErrNativeBackendDisabled }
func (io *IO) GetFpRegs(pid int, fpregs []byte) error { return ErrNativeBackendDisabled }
func (io *IO) SetFpRegs(pid int, fpregs []byte) error { return ErrNativeBackendDisabled }
