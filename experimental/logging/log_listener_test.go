package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/api"
)

type stubDef struct{}

func (stubDef) ModuleName() string           { return "math" }
func (stubDef) Index() uint32                { return 2 }
func (stubDef) Name() string                 { return "add" }
func (stubDef) ExportNames() []string        { return []string{"add"} }
func (stubDef) ParamTypes() []api.ValueType  { return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32} }
func (stubDef) ParamNames() []string         { return []string{"x", "y"} }
func (stubDef) ResultTypes() []api.ValueType { return []api.ValueType{api.ValueTypeI32} }
func (stubDef) ResultNames() []string        { return nil }

func TestLoggingListener_BeforeAfter(t *testing.T) {
	var buf bytes.Buffer
	factory := NewLoggingListenerFactory(&buf)
	l := factory.NewListener(stubDef{})

	ctx := l.Before(context.Background(), stubDef{}, []uint64{api.EncodeI32(2), api.EncodeI32(3)})
	l.After(ctx, stubDef{}, []uint64{api.EncodeI32(5)}, nil)

	out := buf.String()
	require.Contains(t, out, "==> math.add(x=2,y=3)")
	require.Contains(t, out, "<== math.add(5)")
}
