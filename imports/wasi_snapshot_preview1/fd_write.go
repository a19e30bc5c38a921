package wasi_snapshot_preview1

import (
	"context"

	"github.com/gowasm/corewasm/internal/wasm"
)

// FdWrite implements WASI's fd_write. Only fd 1 (stdout) and fd 2 (stderr)
// are supported, routed through whatever io.Writer WithStdout configured
// for that descriptor on ctx; every other fd is rejected with ErrnoBadf.
//
// iovsPtr points to iovsLen little-endian (buf uint32, bufLen uint32)
// pairs describing the guest buffers to write, in order. The total byte
// count written is stored at resultNwritten.
//
// See https://github.com/WebAssembly/WASI/blob/snapshot-01/phases/snapshot/docs.md#fd_write
func FdWrite(ctx context.Context, mem *wasm.MemInst, fd, iovsPtr, iovsLen, resultNwritten uint32) Errno {
	if fd != 1 && fd != 2 {
		return ErrnoBadf
	}
	w := writerFor(ctx, fd)

	var total uint32
	for i := uint32(0); i < iovsLen; i++ {
		iovec, ok := mem.Read(iovsPtr+i*8, 8)
		if !ok {
			return ErrnoFault
		}
		buf := le32(iovec[0:4])
		bufLen := le32(iovec[4:8])

		data, ok := mem.Read(buf, bufLen)
		if !ok {
			return ErrnoFault
		}
		n, err := w.Write(data)
		if err != nil {
			return ErrnoFault
		}
		total += uint32(n)
	}

	if !mem.WriteUint32Le(resultNwritten, total) {
		return ErrnoFault
	}
	return ErrnoSuccess
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
