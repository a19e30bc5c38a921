package wasi_snapshot_preview1

import (
	"context"
	"io"
)

type stdioKey struct{ fd uint32 }

// WithStdout arranges for fd_write calls against file descriptor fd (1
// for stdout, 2 for stderr, by WASI convention) to write to w. Streams
// not configured this way discard their output.
func WithStdout(ctx context.Context, fd uint32, w io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{fd}, w)
}

func writerFor(ctx context.Context, fd uint32) io.Writer {
	if w, ok := ctx.Value(stdioKey{fd}).(io.Writer); ok {
		return w
	}
	return io.Discard
}
