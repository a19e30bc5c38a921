package wasm

import (
	"context"
	"fmt"
	"reflect"
)

// Invoke calls the function at addr with args, after checking arity and
// value types against the function's declared signature. Internal
// functions are dispatched through their owning module instance's
// ModuleEngine; host functions are called directly via reflection.
//
// See spec.md §4.G "invoke".
func Invoke(ctx context.Context, s *Store, addr FuncAddr, args []Val) ([]Val, error) {
	f := s.Func(addr)
	if err := checkArgs(&f.Type, args); err != nil {
		return nil, &InvokeError{Msg: "argument mismatch", Err: err}
	}

	if f.IsHost() {
		return callHostFuncIn(ctx, s, nil, f, args)
	}

	mi := s.Module(f.ModuleInstance)
	eng, err := s.Engine.NewModuleEngine(moduleOf(s, f), mi)
	if err != nil {
		return nil, &InvokeError{Msg: "preparing module engine", Err: err}
	}
	funcIdx, err := localFuncIndex(mi, addr)
	if err != nil {
		return nil, &InvokeError{Msg: "resolving function index", Err: err}
	}
	results, err := eng.Call(ctx, s, funcIdx, args)
	if err != nil {
		return nil, &InvokeError{Msg: "call", Err: err}
	}
	return results, nil
}

func checkArgs(ft *FunctionType, args []Val) error {
	if len(args) != len(ft.Params) {
		return fmt.Errorf("expected %d argument(s), got %d", len(ft.Params), len(args))
	}
	for i, want := range ft.Params {
		if args[i].Ty() != want {
			return fmt.Errorf("argument %d: expected %s, got %s", i, ValueTypeName(want), ValueTypeName(args[i].Ty()))
		}
	}
	return nil
}

// localFuncIndex maps a store-wide FuncAddr back to its index within its
// owning module instance's function namespace, which is what
// ModuleEngine.Call expects.
func localFuncIndex(mi *ModuleInst, addr FuncAddr) (Index, error) {
	for i, a := range mi.Funcs {
		if a == addr {
			return Index(i), nil
		}
	}
	return 0, fmt.Errorf("function address %d does not belong to its recorded module instance", addr)
}

// moduleOf reconstructs the static Module AST view an Engine needs from
// the store's function instance. Internal functions retain a pointer to
// their own Func AST node but instantiate.go does not keep the whole
// enclosing Module around once its module instance exists; engines that
// need full-module context (like internal/interp) reconstruct what they
// need from the FuncInst.Code graph reachable from the module instance's
// function addresses instead of from this stub.
func moduleOf(s *Store, f *FuncInst) *Module {
	mi := s.Module(f.ModuleInstance)
	m := &Module{Types: mi.Types}
	for _, a := range mi.Funcs {
		fi := s.Func(a)
		if !fi.IsHost() {
			m.Funcs = append(m.Funcs, fi.Code)
		}
	}
	return m
}

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
var memInstType = reflect.TypeOf((*MemInst)(nil))

// callHostFuncIn marshals Val arguments into Go values via reflection,
// invokes the wrapped closure, and marshals its results back.
//
// Host functions follow the same register-slot convention as internal
// functions: a param/result of ValueTypeI32 maps to a Go int32 or uint32,
// I64 to int64/uint64, F32 to float32, F64 to float64. A leading
// context.Context parameter, if present, receives ctx; a *MemInst
// parameter, if present, receives the calling module instance's memory 0
// (callerMI nil means no caller context is available, e.g. a top-level
// Invoke with no enclosing module). This mirrors how the WASI surface
// (imports/wasi_snapshot_preview1) reads/writes guest memory: its methods
// are ordinary Go functions reflected in by AllocHostFunction.
func callHostFuncIn(ctx context.Context, s *Store, callerMI *ModuleInst, f *FuncInst, args []Val) ([]Val, error) {
	fn := reflect.ValueOf(f.Host.Fn)
	ft := fn.Type()

	in := make([]reflect.Value, 0, ft.NumIn())
	argIdx := 0
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		if pt == ctxType {
			in = append(in, reflect.ValueOf(ctx))
			continue
		}
		if pt == memInstType {
			if callerMI == nil || len(callerMI.Mems) == 0 {
				return nil, fmt.Errorf("wasm: host function requires the calling module to have memory")
			}
			in = append(in, reflect.ValueOf(s.Mem(callerMI.Mems[0])))
			continue
		}
		if argIdx >= len(args) {
			return nil, fmt.Errorf("wasm: host function expects more parameters than declared in its FunctionType")
		}
		in = append(in, valToReflect(args[argIdx], pt))
		argIdx++
	}

	out := fn.Call(in)

	// A trailing Go `error` return is the call's error, not a Wasm result:
	// it lets a host function (e.g. proc_exit) abort the call rather than
	// produce a value.
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if errv := out[n-1].Interface(); errv != nil {
			return nil, errv.(error)
		}
		out = out[:n-1]
	}

	results := make([]Val, 0, len(out))
	for i, rt := range out {
		results = append(results, reflectToVal(rt, f.Type.Results, i))
	}
	return results, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func valToReflect(v Val, want reflect.Type) reflect.Value {
	switch want.Kind() {
	case reflect.Int32:
		return reflect.ValueOf(v.I32())
	case reflect.Uint32:
		return reflect.ValueOf(uint32(v.I32()))
	case reflect.Int64:
		return reflect.ValueOf(v.I64())
	case reflect.Uint64:
		return reflect.ValueOf(uint64(v.I64()))
	case reflect.Float32:
		return reflect.ValueOf(v.F32())
	case reflect.Float64:
		return reflect.ValueOf(v.F64())
	default:
		panic(fmt.Sprintf("wasm: host function parameter type %s is not wasm-representable", want))
	}
}

func reflectToVal(rv reflect.Value, results []ValueType, i int) Val {
	if i >= len(results) {
		panic("wasm: host function returned more values than its FunctionType declares")
	}
	switch results[i] {
	case ValueTypeI32:
		if rv.Kind() == reflect.Uint32 {
			return I32Val(int32(rv.Uint()))
		}
		return I32Val(int32(rv.Int()))
	case ValueTypeI64:
		if rv.Kind() == reflect.Uint64 {
			return I64Val(int64(rv.Uint()))
		}
		return I64Val(rv.Int())
	case ValueTypeF32:
		return F32Val(float32(rv.Float()))
	case ValueTypeF64:
		return F64Val(rv.Float())
	default:
		panic("wasm: unknown result value type")
	}
}
