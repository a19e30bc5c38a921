// Package logging includes utilities used to log function calls. This is
// in an independent package to avoid dependency cycles between the core
// wasm package and the experimental call-tracing hook it is consumed by.
package logging

import (
	"context"
	"io"
	"strconv"

	"github.com/gowasm/corewasm/api"
)

// ValueType aliases api.ValueType so call sites don't need both imports.
type ValueType = api.ValueType

const (
	ValueTypeI32 = api.ValueTypeI32
	ValueTypeI64 = api.ValueTypeI64
	ValueTypeF32 = api.ValueTypeF32
	ValueTypeF64 = api.ValueTypeF64
)

// Writer is the subset of io.Writer plus the byte/string conveniences the
// per-value writers below use.
type Writer interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

// ValLogger formats the i'th value of a raw uint64 register-slot sequence
// (a function's param or result list) according to its declared type.
type ValLogger func(w Writer, i int, vals []uint64)

// Config builds one ValLogger per parameter and per result of a function,
// so a FunctionListener (see experimental/listener.go) can format a call's
// arguments and return values without re-deriving their types on every
// invocation.
func Config(paramTypes, resultTypes []ValueType, paramNames, resultNames []string) (params, results []ValLogger) {
	params = make([]ValLogger, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = namedLogger(paramNames, i, t)
	}
	results = make([]ValLogger, len(resultTypes))
	for i, t := range resultTypes {
		results[i] = namedLogger(resultNames, i, t)
	}
	return
}

func namedLogger(names []string, i int, t ValueType) ValLogger {
	writer := valWriterForType(t)
	if i >= len(names) || names[i] == "" {
		return writer
	}
	name := names[i]
	return func(w Writer, i int, vals []uint64) {
		w.WriteString(name) //nolint
		w.WriteByte('=')    //nolint
		writer(w, i, vals)
	}
}

func valWriterForType(t ValueType) ValLogger {
	switch t {
	case ValueTypeI32:
		return writeI32
	case ValueTypeI64:
		return writeI64
	case ValueTypeF32:
		return writeF32
	case ValueTypeF64:
		return writeF64
	default:
		panic("logging: unsupported value type")
	}
}

func writeI32(w Writer, i int, vals []uint64) {
	w.WriteString(strconv.FormatInt(int64(int32(vals[i])), 10)) //nolint
}

func writeI64(w Writer, i int, vals []uint64) {
	w.WriteString(strconv.FormatInt(int64(vals[i]), 10)) //nolint
}

func writeF32(w Writer, i int, vals []uint64) {
	w.WriteString(strconv.FormatFloat(float64(api.DecodeF32(vals[i])), 'g', -1, 32)) //nolint
}

func writeF64(w Writer, i int, vals []uint64) {
	w.WriteString(strconv.FormatFloat(api.DecodeF64(vals[i]), 'g', -1, 64)) //nolint
}

// NoopContext is returned by listeners that do not need to thread any
// state from Before to After.
func NoopContext(ctx context.Context) context.Context { return ctx }
