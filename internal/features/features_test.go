package features_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gowasm/corewasm/internal/features"
)

func init() {
	os.Setenv(features.EnvVarName, features.MultiValue+",bogus")
}

func TestEnableFromEnvironment(t *testing.T) {
	features.EnableFromEnvironment()
	require.True(t, features.Have(features.MultiValue))
	require.False(t, features.Have("bogus"))
	require.False(t, features.Have(features.BulkMemory))
}

func TestEnableIsIdempotent(t *testing.T) {
	features.Enable(features.ReferenceTypes)
	features.Enable(features.ReferenceTypes)
	count := 0
	for _, f := range features.List() {
		if f == features.ReferenceTypes {
			count++
		}
	}
	require.Equal(t, 1, count)
}
