// Package native reads and writes the registers of processes traced by
// this process, using ptrace(2) directly.
package native

import (
	"errors"
)

// ErrNativeBackendDisabled is returned on platforms where the native
// backend is not available.
var ErrNativeBackendDisabled = errors.New("native backend disabled during compilation")
