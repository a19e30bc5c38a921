package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/wasm"
)

func TestVal_RoundTripsThroughRaw(t *testing.T) {
	cases := []wasm.Val{
		wasm.I32Val(-7),
		wasm.I64Val(-1 << 40),
		wasm.F32Val(3.5),
		wasm.F64Val(-2.25),
	}
	for _, v := range cases {
		got := wasm.ValFromRaw(v.Ty(), v.Raw())
		require.Equal(t, v, got)
	}
}

func TestVal_Accessors(t *testing.T) {
	require.Equal(t, int32(-7), wasm.I32Val(-7).I32())
	require.Equal(t, int64(-7), wasm.I64Val(-7).I64())
	require.Equal(t, float32(1.5), wasm.F32Val(1.5).F32())
	require.Equal(t, 1.5, wasm.F64Val(1.5).F64())
}

func TestExternVal_Constructors(t *testing.T) {
	require.Equal(t, byte(0x00), wasm.FuncExtern(3).Type)
	require.Equal(t, wasm.FuncAddr(3), wasm.FuncExtern(3).Func)
	require.Equal(t, wasm.MemAddr(4), wasm.MemExtern(4).Mem)
	require.Equal(t, wasm.TableAddr(5), wasm.TableExtern(5).Table)
	require.Equal(t, wasm.GlobalAddr(6), wasm.GlobalExtern(6).Global)
}
