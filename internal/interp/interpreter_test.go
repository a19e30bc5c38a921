package interp_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/interp"
	"github.com/gowasm/corewasm/internal/wasm"
)

// factorialModule builds, by hand, a single-function module computing
//
//	fac(n) = n == 0 ? 1 : n * fac(n-1)
//
// using a recursive call rather than a loop, to exercise OpCall alongside
// control flow and i32 arithmetic.
func factorialModule() *wasm.Module {
	facType := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}

	body := []wasm.Instr{
		{Op: wasm.OpGetLocal, LocalIdx: 0},
		{Op: wasm.OpI32Eqz},
		{
			Op:         wasm.OpIf,
			ResultType: wasm.ResultType{wasm.ValueTypeI32},
			Then: []wasm.Instr{
				{Op: wasm.OpI32Const, I32: 1},
			},
			Else: []wasm.Instr{
				{Op: wasm.OpGetLocal, LocalIdx: 0},
				{Op: wasm.OpGetLocal, LocalIdx: 0},
				{Op: wasm.OpI32Const, I32: 1},
				{Op: wasm.OpI32Sub},
				{Op: wasm.OpCall, FuncIdx: 0},
				{Op: wasm.OpI32Mul},
			},
		},
	}

	return &wasm.Module{
		Types: []*wasm.FunctionType{facType},
		Funcs: []*wasm.Func{
			{Type: 0, Body: wasm.Expr{Body: body}},
		},
		Exports: []*wasm.Export{
			{Name: "fac", Desc: wasm.ExportFunc, Index: 0},
		},
	}
}

func TestInterpreter_Factorial(t *testing.T) {
	s := wasm.NewStore(interp.NewEngine())
	m := factorialModule()
	require.NoError(t, wasm.ValidateModule(m))

	addr, err := wasm.InstantiateModule(context.Background(), s, m, "fac-mod", nil)
	require.NoError(t, err)

	mi := s.Module(addr)
	exp, ok := mi.GetExport("fac")
	require.True(t, ok)

	results, err := wasm.Invoke(context.Background(), s, exp.Func, []wasm.Val{wasm.I32Val(5)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int32(120), results[0].I32())
}

func TestInterpreter_DivideByZeroTraps(t *testing.T) {
	divType := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	m := &wasm.Module{
		Types: []*wasm.FunctionType{divType},
		Funcs: []*wasm.Func{{
			Type: 0,
			Body: wasm.Expr{Body: []wasm.Instr{
				{Op: wasm.OpGetLocal, LocalIdx: 0},
				{Op: wasm.OpGetLocal, LocalIdx: 1},
				{Op: wasm.OpI32DivS},
			}},
		}},
		Exports: []*wasm.Export{{Name: "div", Desc: wasm.ExportFunc, Index: 0}},
	}
	require.NoError(t, wasm.ValidateModule(m))

	s := wasm.NewStore(interp.NewEngine())
	addr, err := wasm.InstantiateModule(context.Background(), s, m, "div-mod", nil)
	require.NoError(t, err)

	mi := s.Module(addr)
	exp, _ := mi.GetExport("div")
	_, err = wasm.Invoke(context.Background(), s, exp.Func, []wasm.Val{wasm.I32Val(1), wasm.I32Val(0)})
	require.Error(t, err)
	var trap *interp.Trap
	require.ErrorAs(t, err, &trap)
}
