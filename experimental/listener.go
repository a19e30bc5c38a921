// Package experimental hosts runtime hooks whose shape may still change:
// currently just call tracing via FunctionListener.
package experimental

import (
	"context"

	"github.com/gowasm/corewasm/api"
)

// FunctionListenerFactory returns a FunctionListener for a given function,
// or nil to skip instrumenting it. It is queried each time a traced call
// starts: on every corewasm.ExportedFunction.Call, and once for a module's
// start function when the module is instantiated.
type FunctionListenerFactory interface {
	NewListener(def api.FunctionDefinition) FunctionListener
}

// FunctionListener can be registered for any function via
// FunctionListenerFactory to either log or trace its calls.
type FunctionListener interface {
	// Before is invoked before a function is called. ctx is the context
	// active for the whole call, returned by the engine to After.
	Before(ctx context.Context, def api.FunctionDefinition, params []uint64) context.Context

	// After is invoked after a function returns, whether it trapped or
	// not. err is non-nil if the call failed.
	After(ctx context.Context, def api.FunctionDefinition, results []uint64, err error)
}

type listenerFactoryKey struct{}

// WithFunctionListenerFactory registers fn to be consulted for the start
// function of every module instantiated against a context derived from
// ctx. Calls made from inside a running function are not traced.
func WithFunctionListenerFactory(ctx context.Context, fn FunctionListenerFactory) context.Context {
	return context.WithValue(ctx, listenerFactoryKey{}, fn)
}

// FunctionListenerFactoryFromContext extracts a FunctionListenerFactory
// set by WithFunctionListenerFactory, or nil if none was set.
func FunctionListenerFactoryFromContext(ctx context.Context) FunctionListenerFactory {
	fn, _ := ctx.Value(listenerFactoryKey{}).(FunctionListenerFactory)
	return fn
}
