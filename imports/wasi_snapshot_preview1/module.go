package wasi_snapshot_preview1

import (
	"github.com/gowasm/corewasm"
	"github.com/gowasm/corewasm/internal/wasm"
)

// Instantiate registers args_sizes_get, fd_write, and proc_exit as host
// functions on rt under ModuleName, returning the module name and export
// set ready to pass to Runtime.InstantiateModule's imports.
func Instantiate(rt *corewasm.Runtime) (string, map[string]wasm.ExternVal) {
	b := rt.NewHostModuleBuilder(ModuleName)
	b.NewFunctionBuilder().WithFunc(ArgsSizesGet).Export("args_sizes_get")
	b.NewFunctionBuilder().WithFunc(FdWrite).Export("fd_write")
	b.NewFunctionBuilder().WithFunc(ProcExit).Export("proc_exit")
	return b.Build()
}
