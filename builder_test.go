package corewasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/wasm"
)

func TestHostModuleBuilder_DerivesSignatureFromGoFunc(t *testing.T) {
	rt := NewRuntime(nil)
	b := rt.NewHostModuleBuilder("env")
	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, a, b int32) int32 { return a + b }).Export("add")
	name, exports := b.Build()

	require.Equal(t, "env", name)
	addAddr := exports["add"].Func

	f := rt.store.Func(addAddr)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, f.Type.Params)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, f.Type.Results)
}

func TestHostModuleBuilder_SkipsMemInstParamWhenDerivingSignature(t *testing.T) {
	rt := NewRuntime(nil)
	b := rt.NewHostModuleBuilder("env")
	b.NewFunctionBuilder().WithFunc(func(mem *wasm.MemInst, ptr int32) int32 { return ptr }).Export("peek")
	_, exports := b.Build()

	f := rt.store.Func(exports["peek"].Func)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI32}, f.Type.Params, "the *wasm.MemInst parameter consumes no Wasm operand")
}

func TestHostModuleBuilder_DropsTrailingErrorFromResultType(t *testing.T) {
	rt := NewRuntime(nil)
	b := rt.NewHostModuleBuilder("env")
	b.NewFunctionBuilder().WithFunc(func(code int32) error { return nil }).Export("abort")
	_, exports := b.Build()

	f := rt.store.Func(exports["abort"].Func)
	require.Empty(t, f.Type.Results, "a trailing error return reports call failure, not a Wasm result")
}

func TestHostModuleBuilder_ExportPanicsOnNonWasmRepresentableType(t *testing.T) {
	rt := NewRuntime(nil)
	b := rt.NewHostModuleBuilder("env")
	fb := b.NewFunctionBuilder().WithFunc(func(s string) int32 { return 0 })

	require.Panics(t, func() { fb.Export("bad") })
}

func TestHostModuleBuilder_LinksIntoGuestModuleByName(t *testing.T) {
	rt := NewRuntime(nil)
	b := rt.NewHostModuleBuilder("env")
	b.NewFunctionBuilder().WithFunc(func(a, b int32) int32 { return a + b }).Export("add")
	_, exports := b.Build()

	ft := &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	guest := &wasm.Module{
		Types:   []*wasm.FunctionType{ft},
		Imports: []*wasm.Import{{Module: "env", Name: "add", Desc: wasm.ImportFunc, DescFunc: 0}},
		Exports: []*wasm.Export{{Name: "add", Desc: wasm.ExportFunc, Index: 0}},
	}
	compiled, err := rt.CompileModule(guest)
	require.NoError(t, err)

	mod, err := rt.InstantiateModule(context.Background(), compiled, "guest", []wasm.ExternVal{exports["add"]})
	require.NoError(t, err)

	fn, ok := mod.ExportedFunction("add")
	require.True(t, ok)
	results, err := fn.Call(context.Background(), 3, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(7), results[0])
}
