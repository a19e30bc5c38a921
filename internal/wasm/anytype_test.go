package wasm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/wasm"
)

func TestOperandStack_PushPopExpect(t *testing.T) {
	s := wasm.NewOperandStack()
	s.Push(wasm.ValueTypeI32)
	require.NoError(t, s.PopExpect(wasm.ValueTypeI32))
	require.Equal(t, 0, s.Height())
}

func TestOperandStack_UnderflowWhenReachable(t *testing.T) {
	s := wasm.NewOperandStack()
	err := s.PopExpect(wasm.ValueTypeI32)
	require.Error(t, err)
	var underflow *wasm.StackUnderflow
	require.ErrorAs(t, err, &underflow)
}

func TestOperandStack_TypeMismatch(t *testing.T) {
	s := wasm.NewOperandStack()
	s.Push(wasm.ValueTypeF32)
	err := s.PopExpect(wasm.ValueTypeI32)
	require.Error(t, err)
	var mismatch *wasm.TypeMismatch
	require.ErrorAs(t, err, &mismatch)
}

func TestOperandStack_UnreachableMakesPopsPolymorphic(t *testing.T) {
	s := wasm.NewOperandStack()
	s.SetUnreachable()

	require.True(t, s.Unreachable())
	require.NoError(t, s.PopExpect(wasm.ValueTypeI64))
	typ, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, wasm.ValueType(0), typ)
}

func TestOperandStack_FramesIsolateHeight(t *testing.T) {
	s := wasm.NewOperandStack()
	s.Push(wasm.ValueTypeI32)

	s.PushFrame()
	require.Equal(t, 0, s.Height(), "a new frame starts at height 0 regardless of the enclosing frame")
	s.Push(wasm.ValueTypeI64)
	require.Equal(t, []wasm.ValueType{wasm.ValueTypeI64}, s.Snapshot())
	s.PopFrame()

	require.Equal(t, 1, s.Height(), "popping the frame restores the enclosing frame's height")
}
