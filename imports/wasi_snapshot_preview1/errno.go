// Package wasi_snapshot_preview1 is a trimmed WASI preview1 shim: just
// enough of the syscall surface (args_sizes_get, fd_write, proc_exit) to
// exercise AllocHostFunction and import linking end-to-end with a real
// multi-module scenario, not a compliant WASI implementation.
package wasi_snapshot_preview1

// Errno is a WASI preview1 error code. Neither uint16 nor a defined type,
// for parity with wasm.ValueType's own register-slot convention.
type Errno = uint32

const (
	ErrnoSuccess Errno = 0
	ErrnoFault   Errno = 21 // EFAULT: out-of-bounds memory access
	ErrnoBadf    Errno = 8  // EBADF: unsupported file descriptor
)

// ModuleName is the import module name guest modules compiled against
// WASI preview1 expect these functions under.
const ModuleName = "wasi_snapshot_preview1"
