package corewasm

import (
	"context"
	"fmt"

	"github.com/gowasm/corewasm/api"
	"github.com/gowasm/corewasm/experimental"
	"github.com/gowasm/corewasm/internal/features"
	"github.com/gowasm/corewasm/internal/interp"
	"github.com/gowasm/corewasm/internal/wasm"
)

// Runtime is a Store plus the Engine and configuration used to compile and
// instantiate modules against it. Not concurrency-safe: like the
// underlying Store, callers sharing a Runtime across goroutines must
// guard it themselves.
type Runtime struct {
	store *wasm.Store
	cfg   *RuntimeConfig
}

// NewRuntime allocates a fresh Store backed by the interpreter Engine. A
// nil config uses NewRuntimeConfig's defaults.
func NewRuntime(cfg *RuntimeConfig) *Runtime {
	if cfg == nil {
		cfg = NewRuntimeConfig()
	}
	cfg.applyFeatures()
	return &Runtime{
		store: wasm.NewStore(interp.NewEngine()),
		cfg:   cfg,
	}
}

// Features reports the post-MVP proposal names currently enabled for any
// Runtime's validation (the registry is process-global; see
// internal/features).
func (r *Runtime) Features() []string { return features.List() }

// Store exposes the underlying address-indexed Store for callers that
// need to build ExternVal imports (host functions, linked modules) before
// calling InstantiateModule.
func (r *Runtime) Store() *wasm.Store { return r.store }

// CompiledModule is a validated module, ready to instantiate.
type CompiledModule struct {
	module *wasm.Module
}

// CompileModule validates m against the MVP algorithm (wasm.ValidateModule)
// plus this Runtime's configured memory ceiling.
func (r *Runtime) CompileModule(m *wasm.Module) (*CompiledModule, error) {
	if err := wasm.ValidateModule(m); err != nil {
		return nil, err
	}
	for i, mem := range m.Mems {
		if mem.Type.Limits.Min > r.cfg.memoryMaxPages {
			return nil, fmt.Errorf("corewasm: memory %d declares a minimum of %d pages, exceeding the configured maximum of %d", i, mem.Type.Limits.Min, r.cfg.memoryMaxPages)
		}
		if mem.Type.Limits.Max != nil && *mem.Type.Limits.Max > r.cfg.memoryMaxPages {
			return nil, fmt.Errorf("corewasm: memory %d declares a maximum of %d pages, exceeding the configured maximum of %d", i, *mem.Type.Limits.Max, r.cfg.memoryMaxPages)
		}
	}
	return &CompiledModule{module: m}, nil
}

// Module is an instantiated CompiledModule: a live ModuleInst addressed
// within this Runtime's Store.
type Module struct {
	rt   *Runtime
	name string
	addr wasm.ModuleAddr
}

// InstantiateModule runs §4.F against compiled, resolving its imports
// from the supplied ExternVal slice (in the module's import declaration
// order — see wasm.InstantiateModule). name identifies the resulting
// module instance for diagnostics and for FunctionListener tracing.
func (r *Runtime) InstantiateModule(ctx context.Context, compiled *CompiledModule, name string, imports []wasm.ExternVal) (*Module, error) {
	if r.cfg.listenerFactory != nil {
		ctx = experimental.WithFunctionListenerFactory(ctx, r.cfg.listenerFactory)
	}
	addr, err := wasm.InstantiateModule(ctx, r.store, compiled.module, name, imports)
	if err != nil {
		return nil, err
	}
	return &Module{rt: r, name: name, addr: addr}, nil
}

// ExportedFunction looks up a function exported under name, returning ok
// false if no such export exists or it is not a function.
func (m *Module) ExportedFunction(name string) (fn *ExportedFunction, ok bool) {
	mi := m.rt.store.Module(m.addr)
	ext, ok := mi.GetExport(name)
	if !ok || ext.Type != api.ExternTypeFunc {
		return nil, false
	}
	return &ExportedFunction{module: m, name: name, addr: ext.Func}, true
}

// ExportedFunction is a callable handle to one of a Module's exports.
type ExportedFunction struct {
	module *Module
	name   string
	addr   wasm.FuncAddr
}

// Call invokes the function with params, one register per declared
// parameter encoded with the matching api.EncodeI32/I64/F32/F64, and
// returns results encoded the same way. If the Runtime was configured
// with a FunctionListenerFactory, the call is traced.
func (f *ExportedFunction) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	s := f.module.rt.store
	fi := s.Func(f.addr)

	args := make([]wasm.Val, len(params))
	for i, p := range params {
		if i >= len(fi.Type.Params) {
			return nil, fmt.Errorf("corewasm: %s expects %d parameter(s), got %d", f.name, len(fi.Type.Params), len(params))
		}
		args[i] = wasm.ValFromRaw(fi.Type.Params[i], p)
	}

	var listener experimental.FunctionListener
	if factory := f.module.rt.cfg.listenerFactory; factory != nil {
		def := funcDefinition{moduleName: f.module.name, name: f.name, ft: &fi.Type}
		listener = factory.NewListener(def)
		if listener != nil {
			ctx = listener.Before(ctx, def, rawSlice(args))
		}
	}

	results, err := wasm.Invoke(ctx, s, f.addr, args)

	out := make([]uint64, len(results))
	for i, v := range results {
		out[i] = v.Raw()
	}
	if listener != nil {
		listener.After(ctx, funcDefinition{moduleName: f.module.name, name: f.name, ft: &fi.Type}, out, err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func rawSlice(vs []wasm.Val) []uint64 {
	out := make([]uint64, len(vs))
	for i, v := range vs {
		out[i] = v.Raw()
	}
	return out
}

type funcDefinition struct {
	moduleName string
	name       string
	ft         *wasm.FunctionType
}

func (d funcDefinition) ModuleName() string             { return d.moduleName }
func (d funcDefinition) Index() uint32                  { return 0 }
func (d funcDefinition) Name() string                   { return d.name }
func (d funcDefinition) ExportNames() []string          { return []string{d.name} }
func (d funcDefinition) ParamTypes() []api.ValueType    { return d.ft.Params }
func (d funcDefinition) ParamNames() []string           { return nil }
func (d funcDefinition) ResultTypes() []api.ValueType   { return d.ft.Results }
func (d funcDefinition) ResultNames() []string          { return nil }

var _ api.FunctionDefinition = funcDefinition{}
