package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeF32(t *testing.T) {
	for _, v := range []float32{0, 1.5, -1.5, 3.14159} {
		require.Equal(t, v, DecodeF32(EncodeF32(v)))
	}
}

func TestEncodeDecodeF64(t *testing.T) {
	for _, v := range []float64{0, 1.5, -1.5, 3.14159265358979} {
		require.Equal(t, v, DecodeF64(EncodeF64(v)))
	}
}

func TestValueTypeName(t *testing.T) {
	require.Equal(t, "i32", ValueTypeName(ValueTypeI32))
	require.Equal(t, "i64", ValueTypeName(ValueTypeI64))
	require.Equal(t, "f32", ValueTypeName(ValueTypeF32))
	require.Equal(t, "f64", ValueTypeName(ValueTypeF64))
}

func TestExternTypeName(t *testing.T) {
	require.Equal(t, "func", ExternTypeName(ExternTypeFunc))
	require.Equal(t, "table", ExternTypeName(ExternTypeTable))
	require.Equal(t, "memory", ExternTypeName(ExternTypeMemory))
	require.Equal(t, "global", ExternTypeName(ExternTypeGlobal))
}
