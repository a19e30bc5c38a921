package experimental

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/api"
)

type stubDef struct{ name string }

func (d stubDef) ModuleName() string        { return "m" }
func (d stubDef) Index() uint32             { return 0 }
func (d stubDef) Name() string              { return d.name }
func (d stubDef) ExportNames() []string     { return []string{d.name} }
func (d stubDef) ParamTypes() []api.ValueType  { return nil }
func (d stubDef) ParamNames() []string      { return nil }
func (d stubDef) ResultTypes() []api.ValueType { return nil }
func (d stubDef) ResultNames() []string     { return nil }

type stubFactory struct{ got api.FunctionDefinition }

func (f *stubFactory) NewListener(def api.FunctionDefinition) FunctionListener {
	f.got = def
	return nil
}

func TestWithFunctionListenerFactory_roundTrips(t *testing.T) {
	require.Nil(t, FunctionListenerFactoryFromContext(context.Background()))

	f := &stubFactory{}
	ctx := WithFunctionListenerFactory(context.Background(), f)

	got := FunctionListenerFactoryFromContext(ctx)
	require.NotNil(t, got)
	got.NewListener(stubDef{name: "add"})
	require.Equal(t, "add", f.got.Name())
}
