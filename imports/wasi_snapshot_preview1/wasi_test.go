package wasi_snapshot_preview1_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm"
	"github.com/gowasm/corewasm/internal/wasm"

	wasi "github.com/gowasm/corewasm/imports/wasi_snapshot_preview1"
)

// helloModule imports fd_write and writes "hi" to fd 1 (stdout), returning
// the byte count fd_write reported written. Its own memory holds, from
// offset 0: an iovec {buf: 8, len: 2}, then "hi" at offset 8, with offset
// 16 reserved for fd_write's nwritten result.
func helloModule() *wasm.Module {
	fdWriteType := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	runType := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}

	body := []wasm.Instr{
		{Op: wasm.OpI32Const, I32: 1},  // fd
		{Op: wasm.OpI32Const, I32: 0},  // iovs
		{Op: wasm.OpI32Const, I32: 1},  // iovs_len
		{Op: wasm.OpI32Const, I32: 16}, // result.nwritten
		{Op: wasm.OpCall, FuncIdx: 0},  // imported fd_write; drops its errno below
		{Op: wasm.OpDrop},
		{Op: wasm.OpI32Const, I32: 16},
		{Op: wasm.OpI32Load, Memarg: wasm.Memarg{Align: 2, Offset: 0}},
	}

	return &wasm.Module{
		Types: []*wasm.FunctionType{fdWriteType, runType},
		Imports: []*wasm.Import{
			{Module: wasi.ModuleName, Name: "fd_write", Desc: wasm.ImportFunc, DescFunc: 0},
		},
		Funcs: []*wasm.Func{
			{Type: 1, Body: wasm.Expr{Body: body}},
		},
		Mems: []*wasm.Memory{
			{Type: wasm.MemoryType{Limits: wasm.Limits{Min: 1}}},
		},
		Data: []*wasm.DataSegment{
			{Mem: 0, Offset: wasm.Expr{Body: []wasm.Instr{{Op: wasm.OpI32Const, I32: 0}}}, Init: []byte{8, 0, 0, 0, 2, 0, 0, 0}},
			{Mem: 0, Offset: wasm.Expr{Body: []wasm.Instr{{Op: wasm.OpI32Const, I32: 8}}}, Init: []byte("hi")},
		},
		Exports: []*wasm.Export{
			{Name: "run", Desc: wasm.ExportFunc, Index: 1},
		},
	}
}

func TestFdWrite_linkedAcrossModules(t *testing.T) {
	rt := corewasm.NewRuntime(nil)
	moduleName, exports := wasi.Instantiate(rt)
	require.Equal(t, wasi.ModuleName, moduleName)

	var stdout bytes.Buffer
	ctx := wasi.WithStdout(context.Background(), 1, &stdout)

	compiled, err := rt.CompileModule(helloModule())
	require.NoError(t, err)

	mod, err := rt.InstantiateModule(ctx, compiled, "hello", []wasm.ExternVal{exports["fd_write"]})
	require.NoError(t, err)

	run, ok := mod.ExportedFunction("run")
	require.True(t, ok)

	results, err := run.Call(ctx)
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, results)
	require.Equal(t, "hi", stdout.String())
}

func TestArgsSizesGet_alwaysZero(t *testing.T) {
	mem := &wasm.MemInst{Data: make([]byte, wasm.PageSize)}
	errno := wasi.ArgsSizesGet(context.Background(), mem, 0, 4)
	require.Equal(t, wasi.ErrnoSuccess, errno)

	argc, ok := mem.ReadUint32Le(0)
	require.True(t, ok)
	require.Equal(t, uint32(0), argc)
}

func TestProcExit_abortsCallWithExitError(t *testing.T) {
	rt := corewasm.NewRuntime(nil)
	_, exports := wasi.Instantiate(rt)

	procExitType := &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}}
	runType := &wasm.FunctionType{}
	m := &wasm.Module{
		Types: []*wasm.FunctionType{procExitType, runType},
		Imports: []*wasm.Import{
			{Module: wasi.ModuleName, Name: "proc_exit", Desc: wasm.ImportFunc, DescFunc: 0},
		},
		Funcs: []*wasm.Func{{
			Type: 1,
			Body: wasm.Expr{Body: []wasm.Instr{
				{Op: wasm.OpI32Const, I32: 7},
				{Op: wasm.OpCall, FuncIdx: 0},
			}},
		}},
		Exports: []*wasm.Export{{Name: "run", Desc: wasm.ExportFunc, Index: 1}},
	}

	compiled, err := rt.CompileModule(m)
	require.NoError(t, err)

	mod, err := rt.InstantiateModule(context.Background(), compiled, "exiter", []wasm.ExternVal{exports["proc_exit"]})
	require.NoError(t, err)

	run, ok := mod.ExportedFunction("run")
	require.True(t, ok)

	_, err = run.Call(context.Background())
	require.Error(t, err)
	var exitErr *wasi.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, uint32(7), exitErr.Code)
}
