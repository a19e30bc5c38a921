package corewasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/api"
	"github.com/gowasm/corewasm/experimental"
	"github.com/gowasm/corewasm/internal/wasm"
)

func addOneModule() *wasm.Module {
	ft := &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}
	return &wasm.Module{
		Types: []*wasm.FunctionType{ft},
		Funcs: []*wasm.Func{{Type: 0, Body: wasm.Expr{Body: []wasm.Instr{
			{Op: wasm.OpGetLocal, LocalIdx: 0},
			{Op: wasm.OpI32Const, I32: 1},
			{Op: wasm.OpI32Add},
		}}}},
		Exports: []*wasm.Export{{Name: "add_one", Desc: wasm.ExportFunc, Index: 0}},
	}
}

func TestRuntime_CompileModule_RejectsInvalidModule(t *testing.T) {
	rt := NewRuntime(nil)
	m := &wasm.Module{Funcs: []*wasm.Func{{Type: 0}}} // references a type index that doesn't exist

	_, err := rt.CompileModule(m)
	require.Error(t, err)
}

func TestRuntime_CompileModule_EnforcesConfiguredMemoryCeiling(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig().WithMemoryMaxPages(1))
	m := &wasm.Module{Mems: []*wasm.Memory{{Type: wasm.MemoryType{Limits: wasm.Limits{Min: 2}}}}}

	_, err := rt.CompileModule(m)
	require.Error(t, err)
}

func TestRuntime_CompileModule_AcceptsMemoryWithinCeiling(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig().WithMemoryMaxPages(4))
	m := &wasm.Module{Mems: []*wasm.Memory{{Type: wasm.MemoryType{Limits: wasm.Limits{Min: 2}}}}}

	_, err := rt.CompileModule(m)
	require.NoError(t, err)
}

func TestRuntime_InstantiateModule_PropagatesInstantiationErrors(t *testing.T) {
	rt := NewRuntime(nil)
	compiled, err := rt.CompileModule(&wasm.Module{Imports: []*wasm.Import{
		{Module: "env", Name: "mem", Desc: wasm.ImportMemory, DescMemory: wasm.MemoryType{Limits: wasm.Limits{Min: 1}}},
	}})
	require.NoError(t, err)

	_, err = rt.InstantiateModule(context.Background(), compiled, "m", nil)
	require.Error(t, err)
}

func TestExportedFunction_CallRoundTrips(t *testing.T) {
	rt := NewRuntime(nil)
	compiled, err := rt.CompileModule(addOneModule())
	require.NoError(t, err)

	mod, err := rt.InstantiateModule(context.Background(), compiled, "m", nil)
	require.NoError(t, err)

	fn, ok := mod.ExportedFunction("add_one")
	require.True(t, ok)

	results, err := fn.Call(context.Background(), api.EncodeI32(41))
	require.NoError(t, err)
	require.Equal(t, int32(42), int32(uint32(results[0])))
}

func TestExportedFunction_CallRejectsTooFewParams(t *testing.T) {
	rt := NewRuntime(nil)
	compiled, err := rt.CompileModule(addOneModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(context.Background(), compiled, "m", nil)
	require.NoError(t, err)
	fn, _ := mod.ExportedFunction("add_one")

	_, err = fn.Call(context.Background())
	require.Error(t, err)
}

func TestModule_ExportedFunction_MissingOrNonFuncExportIsNotOk(t *testing.T) {
	rt := NewRuntime(nil)
	compiled, err := rt.CompileModule(addOneModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(context.Background(), compiled, "m", nil)
	require.NoError(t, err)

	_, ok := mod.ExportedFunction("nope")
	require.False(t, ok)
}

type recordingListener struct {
	beforeCalls, afterCalls int
	lastParams              []uint64
	lastResults             []uint64
	lastErr                 error
}

func (l *recordingListener) Before(ctx context.Context, def api.FunctionDefinition, params []uint64) context.Context {
	l.beforeCalls++
	l.lastParams = params
	return ctx
}

func (l *recordingListener) After(ctx context.Context, def api.FunctionDefinition, results []uint64, err error) {
	l.afterCalls++
	l.lastResults = results
	l.lastErr = err
}

type recordingListenerFactory struct{ listener *recordingListener }

func (f *recordingListenerFactory) NewListener(def api.FunctionDefinition) experimental.FunctionListener {
	return f.listener
}

func TestExportedFunction_Call_TracesThroughConfiguredListener(t *testing.T) {
	rec := &recordingListener{}
	rt := NewRuntime(NewRuntimeConfig().WithFunctionListenerFactory(&recordingListenerFactory{listener: rec}))
	compiled, err := rt.CompileModule(addOneModule())
	require.NoError(t, err)
	mod, err := rt.InstantiateModule(context.Background(), compiled, "m", nil)
	require.NoError(t, err)
	fn, _ := mod.ExportedFunction("add_one")

	_, err = fn.Call(context.Background(), api.EncodeI32(10))
	require.NoError(t, err)

	require.Equal(t, 1, rec.beforeCalls)
	require.Equal(t, 1, rec.afterCalls)
	require.Equal(t, []uint64{api.EncodeI32(10)}, rec.lastParams)
	require.Equal(t, int32(11), int32(uint32(rec.lastResults[0])))
	require.NoError(t, rec.lastErr)
}

func TestRuntime_InstantiateModule_TracesStartFunctionThroughListener(t *testing.T) {
	rec := &recordingListener{}
	rt := NewRuntime(NewRuntimeConfig().WithFunctionListenerFactory(&recordingListenerFactory{listener: rec}))

	startType := &wasm.FunctionType{}
	startIdx := wasm.Index(0)
	m := &wasm.Module{
		Types:   []*wasm.FunctionType{startType},
		Funcs:   []*wasm.Func{{Type: 0, Body: wasm.Expr{Body: nil}}},
		Start:   &startIdx,
	}
	compiled, err := rt.CompileModule(m)
	require.NoError(t, err)

	_, err = rt.InstantiateModule(context.Background(), compiled, "starter", nil)
	require.NoError(t, err)

	require.Equal(t, 1, rec.beforeCalls)
	require.Equal(t, 1, rec.afterCalls)
}
