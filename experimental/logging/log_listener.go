// Package logging provides an experimental.FunctionListenerFactory that
// writes a line per call to an io.Writer, for debugging a module's
// interaction with the host.
package logging

import (
	"bytes"
	"context"
	"io"

	"github.com/gowasm/corewasm/api"
	"github.com/gowasm/corewasm/experimental"
	"github.com/gowasm/corewasm/internal/logging"
)

// NewLoggingListenerFactory returns a FunctionListenerFactory that logs
// every call (function name, parameters, and results) to w.
func NewLoggingListenerFactory(w io.Writer) experimental.FunctionListenerFactory {
	return &factory{w: w}
}

type factory struct {
	w io.Writer
}

func (f *factory) NewListener(def api.FunctionDefinition) experimental.FunctionListener {
	params, results := logging.Config(def.ParamTypes(), def.ResultTypes(), def.ParamNames(), def.ResultNames())
	return &funcListener{w: f.w, def: def, paramLoggers: params, resultLoggers: results}
}

type funcListener struct {
	w                           io.Writer
	def                         api.FunctionDefinition
	paramLoggers, resultLoggers []logging.ValLogger
}

type callDepthKey struct{}

func (l *funcListener) Before(ctx context.Context, def api.FunctionDefinition, params []uint64) context.Context {
	depth, _ := ctx.Value(callDepthKey{}).(int)

	var buf bytes.Buffer
	indent(&buf, depth)
	buf.WriteString("==> ")
	buf.WriteString(qualifiedName(def))
	buf.WriteByte('(')
	for i, log := range l.paramLoggers {
		if i > 0 {
			buf.WriteByte(',')
		}
		log(&buf, i, params)
	}
	buf.WriteString(")\n")
	l.w.Write(buf.Bytes()) //nolint

	return context.WithValue(ctx, callDepthKey{}, depth+1)
}

func (l *funcListener) After(ctx context.Context, def api.FunctionDefinition, results []uint64, err error) {
	depth, _ := ctx.Value(callDepthKey{}).(int)
	if depth > 0 {
		depth--
	}

	var buf bytes.Buffer
	indent(&buf, depth)
	if err != nil {
		buf.WriteString("<== ")
		buf.WriteString(qualifiedName(def))
		buf.WriteString(" returned error: ")
		buf.WriteString(err.Error())
		buf.WriteByte('\n')
		l.w.Write(buf.Bytes()) //nolint
		return
	}

	buf.WriteString("<== ")
	buf.WriteString(qualifiedName(def))
	buf.WriteByte('(')
	for i, log := range l.resultLoggers {
		if i > 0 {
			buf.WriteByte(',')
		}
		log(&buf, i, results)
	}
	buf.WriteString(")\n")
	l.w.Write(buf.Bytes()) //nolint
}

func qualifiedName(def api.FunctionDefinition) string {
	if def.Name() != "" {
		return def.ModuleName() + "." + def.Name()
	}
	return def.ModuleName() + ".$unnamed"
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, "\t") //nolint
	}
}
