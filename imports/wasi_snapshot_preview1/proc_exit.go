package wasi_snapshot_preview1

import (
	"context"
	"fmt"
)

// ExitError is returned up through the call chain by ProcExit, unwinding
// the interpreter the same way a Trap does but carrying the guest's exit
// code rather than a runtime-violation message.
type ExitError struct {
	Code uint32
}

func (e *ExitError) Error() string { return fmt.Sprintf("wasi: proc_exit(%d)", e.Code) }

// ProcExit implements WASI's proc_exit. It declares no Wasm results, so
// it reports the requested exit unconditionally through its trailing
// error return rather than a return value.
//
// See https://github.com/WebAssembly/WASI/blob/snapshot-01/phases/snapshot/docs.md#proc_exit
func ProcExit(_ context.Context, code uint32) error {
	return &ExitError{Code: code}
}
