package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/api"
)

func TestConfig(t *testing.T) {
	params, results := Config(
		[]ValueType{ValueTypeI32, ValueTypeI64},
		[]ValueType{ValueTypeF64},
		[]string{"x", "y"},
		nil,
	)
	require.Len(t, params, 2)
	require.Len(t, results, 1)

	var buf bytes.Buffer
	vals := []uint64{api.EncodeI32(-2), api.EncodeI64(40)}
	params[0](&buf, 0, vals)
	require.Equal(t, "x=-2", buf.String())

	buf.Reset()
	params[1](&buf, 1, vals)
	require.Equal(t, "y=40", buf.String())

	buf.Reset()
	results[0](&buf, 0, []uint64{api.EncodeF64(3.5)})
	require.Equal(t, "3.5", buf.String())
}
