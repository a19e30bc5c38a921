package corewasm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gowasm/corewasm/internal/wasm"
)

// HostModuleBuilder collects host functions under a single import module
// name, grounded on the teacher's builder.go WithFunc idiom: ordinary Go
// funcs are reflected in directly rather than requiring callers to hand-
// write a register-based signature.
type HostModuleBuilder struct {
	rt         *Runtime
	moduleName string
	exports    map[string]wasm.ExternVal
}

// NewHostModuleBuilder starts building a set of host functions that guest
// modules can import under moduleName.
func (r *Runtime) NewHostModuleBuilder(moduleName string) *HostModuleBuilder {
	return &HostModuleBuilder{rt: r, moduleName: moduleName, exports: map[string]wasm.ExternVal{}}
}

// NewFunctionBuilder starts defining one host function.
func (b *HostModuleBuilder) NewFunctionBuilder() *HostFunctionBuilder {
	return &HostFunctionBuilder{parent: b}
}

// HostFunctionBuilder configures and exports a single host function.
type HostFunctionBuilder struct {
	parent *HostModuleBuilder
	fn     interface{}
}

// WithFunc uses reflection to derive the WebAssembly signature from fn's Go
// signature. Parameters and results must be int32, uint32, int64, uint64,
// float32, or float64, except an optional leading context.Context
// parameter, which receives the call's context, and a *wasm.MemInst
// parameter, which receives the calling module's memory; neither consumes
// an operand. A trailing error result is the call's error, not a Wasm
// result.
func (b *HostFunctionBuilder) WithFunc(fn interface{}) *HostFunctionBuilder {
	b.fn = fn
	return b
}

// Export finalizes the function under name, making it available in the
// ExternVal this builder's Build returns for that name. Returns the
// parent HostModuleBuilder so calls can be chained.
func (b *HostFunctionBuilder) Export(name string) *HostModuleBuilder {
	ft, err := functionTypeOf(b.fn)
	if err != nil {
		panic(fmt.Sprintf("corewasm: host function %q: %v", name, err))
	}
	addr := wasm.AllocHostFunction(b.parent.rt.store, reflect.ValueOf(b.fn), ft)
	b.parent.exports[name] = wasm.FuncExtern(addr)
	return b.parent
}

// Build returns the module name and the set of ExternVal this builder
// defined, keyed by export name — ready to look up when assembling the
// imports slice passed to Runtime.InstantiateModule.
func (b *HostModuleBuilder) Build() (moduleName string, exports map[string]wasm.ExternVal) {
	return b.moduleName, b.exports
}

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var memInstType = reflect.TypeOf((*wasm.MemInst)(nil))

// functionTypeOf derives a FunctionType from a Go func's reflect.Type,
// skipping a leading context.Context parameter.
func functionTypeOf(fn interface{}) (*wasm.FunctionType, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("not a func: %T", fn)
	}
	t := v.Type()

	ft := &wasm.FunctionType{}
	for i := 0; i < t.NumIn(); i++ {
		pt := t.In(i)
		if i == 0 && pt == ctxType {
			continue
		}
		if pt == memInstType {
			continue
		}
		vt, err := valueTypeOf(pt)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		ft.Params = append(ft.Params, vt)
	}
	numOut := t.NumOut()
	if numOut > 0 && t.Out(numOut-1) == errorType {
		numOut-- // a trailing error return reports failure, not a Wasm result
	}
	for i := 0; i < numOut; i++ {
		vt, err := valueTypeOf(t.Out(i))
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		ft.Results = append(ft.Results, vt)
	}
	return ft, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func valueTypeOf(t reflect.Type) (wasm.ValueType, error) {
	switch t.Kind() {
	case reflect.Int32, reflect.Uint32:
		return wasm.ValueTypeI32, nil
	case reflect.Int64, reflect.Uint64:
		return wasm.ValueTypeI64, nil
	case reflect.Float32:
		return wasm.ValueTypeF32, nil
	case reflect.Float64:
		return wasm.ValueTypeF64, nil
	default:
		return 0, fmt.Errorf("type %s is not wasm-representable", t)
	}
}
