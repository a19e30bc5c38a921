package wasm_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/wasm"
)

func TestInvoke_RejectsArgumentCountMismatch(t *testing.T) {
	s := wasm.NewStore(nil)
	fn := func(a int32) int32 { return a }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})

	_, err := wasm.Invoke(context.Background(), s, addr, nil)
	require.Error(t, err)
	var invokeErr *wasm.InvokeError
	require.ErrorAs(t, err, &invokeErr)
}

func TestInvoke_RejectsArgumentTypeMismatch(t *testing.T) {
	s := wasm.NewStore(nil)
	fn := func(a int32) int32 { return a }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})

	_, err := wasm.Invoke(context.Background(), s, addr, []wasm.Val{wasm.F32Val(1)})
	require.Error(t, err)
}

func TestInvoke_CallsHostFunctionDirectly(t *testing.T) {
	s := wasm.NewStore(nil)
	fn := func(a, b int32) int32 { return a * b }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})

	results, err := wasm.Invoke(context.Background(), s, addr, []wasm.Val{wasm.I32Val(6), wasm.I32Val(7)})
	require.NoError(t, err)
	require.Equal(t, int32(42), results[0].I32())
}

func TestInvoke_HostFunctionErrorAbortsTheCallWithNoResults(t *testing.T) {
	s := wasm.NewStore(nil)
	boom := func() error { return errBoom }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(boom), &wasm.FunctionType{})

	results, err := wasm.Invoke(context.Background(), s, addr, nil)
	require.ErrorIs(t, err, errBoom)
	require.Nil(t, results)
}

func TestCallHost_RequiresNoCallerMemoryWhenFunctionTakesNone(t *testing.T) {
	s := wasm.NewStore(nil)
	fn := func(a int32) int32 { return a + 1 }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})
	f := s.Func(addr)

	results, err := wasm.CallHost(context.Background(), s, f, []wasm.Val{wasm.I32Val(41)})
	require.NoError(t, err)
	require.Equal(t, int32(42), results[0].I32())
}

func TestCallHostInModule_ResolvesCallerMemoryForMemInstParam(t *testing.T) {
	s := wasm.NewStore(nil)
	var seenByte byte
	fn := func(mem *wasm.MemInst, ptr int32) int32 {
		b, _ := mem.Read(uint32(ptr), 1)
		seenByte = b[0]
		return int32(len(b))
	}
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})
	f := s.Func(addr)

	memAddr := wasm.AllocMem(s, &wasm.MemoryType{Limits: wasm.Limits{Min: 1}})
	require.True(t, s.Mem(memAddr).Write(5, []byte{0x42}))
	caller := &wasm.ModuleInst{Mems: []wasm.MemAddr{memAddr}}

	results, err := wasm.CallHostInModule(context.Background(), s, caller, f, []wasm.Val{wasm.I32Val(5)})
	require.NoError(t, err)
	require.Equal(t, int32(1), results[0].I32())
	require.Equal(t, byte(0x42), seenByte)
}

func TestCallHostInModule_ErrorsWhenCallerHasNoMemory(t *testing.T) {
	s := wasm.NewStore(nil)
	fn := func(mem *wasm.MemInst) int32 { return 0 }
	addr := wasm.AllocHostFunction(s, reflect.ValueOf(fn), &wasm.FunctionType{
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	})
	f := s.Func(addr)

	_, err := wasm.CallHostInModule(context.Background(), s, &wasm.ModuleInst{}, f, nil)
	require.Error(t, err)
}

var errBoom = boomErr{}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }
