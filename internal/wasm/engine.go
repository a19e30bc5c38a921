package wasm

import "context"

// Engine compiles validated module code into whatever representation it
// executes, and exposes the call entry point invoke.go and the start-
// function step of instantiate.go both need. This package specifies the
// pre/post-conditions an Engine must uphold but, by design, does not pick
// one: internal/interp provides the one concrete implementation actually
// wired into this tree.
//
// See spec.md §4.G and the GLOSSARY "Engine"/"ModuleEngine" entries.
type Engine interface {
	// NewModuleEngine prepares per-instance call state for an allocated
	// module instance. Invoke calls it afresh for every call of an internal
	// function (including a module's start function), so any state it
	// returns lives only for that one call.
	NewModuleEngine(mod *Module, inst *ModuleInst) (ModuleEngine, error)
}

// ModuleEngine is the per-module-instance half of the Engine seam: it
// knows how to execute the functions belonging to one specific module
// instance.
type ModuleEngine interface {
	// Call invokes the internal function at the given index within this
	// module instance's own function space (not a store-wide FuncAddr),
	// with params/results already arity- and type-checked by the caller.
	Call(ctx context.Context, s *Store, funcIdx Index, params []Val) ([]Val, error)
}

// CallHost invokes a host function instance directly; it is exposed here
// (rather than folded into ModuleEngine) because host functions have no
// owning module instance to dispatch through. See spec.md §4.J.
func CallHost(ctx context.Context, s *Store, f *FuncInst, params []Val) ([]Val, error) {
	return callHostFuncIn(ctx, s, nil, f, params)
}

// CallHostInModule is CallHost plus the calling module instance, letting a
// host function request a *MemInst parameter to read/write the caller's
// linear memory (imports/wasi_snapshot_preview1's fd_write, for example).
// An Engine's ModuleEngine.Call implementation uses this for a `call`
// targeting a host import, passing its own module instance as caller.
func CallHostInModule(ctx context.Context, s *Store, caller *ModuleInst, f *FuncInst, params []Val) ([]Val, error) {
	return callHostFuncIn(ctx, s, caller, f, params)
}
