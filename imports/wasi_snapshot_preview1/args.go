package wasi_snapshot_preview1

import (
	"context"

	"github.com/gowasm/corewasm/internal/wasm"
)

// ArgsSizesGet implements WASI's args_sizes_get. This shim never exposes
// any command-line arguments to the guest, so it always reports a count
// and buffer size of zero.
//
// See https://github.com/WebAssembly/WASI/blob/snapshot-01/phases/snapshot/docs.md#args_sizes_get
func ArgsSizesGet(_ context.Context, mem *wasm.MemInst, resultArgc, resultArgvLen uint32) Errno {
	if !mem.WriteUint32Le(resultArgc, 0) || !mem.WriteUint32Le(resultArgvLen, 0) {
		return ErrnoFault
	}
	return ErrnoSuccess
}
