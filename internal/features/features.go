// Package features implements a feature flagging mechanism for corewasm.
//
// The registry knows three post-MVP proposal names (multi-value,
// bulk-memory, reference-types); this tree implements only the 2019-12-05
// MVP. Validation consults only multi-value: by default it rejects a
// function type with more than one result, and enabling multi-value turns
// that rejection off without adding support for the proposal. Enabling
// bulk-memory or reference-types changes no validation outcome.
package features

import (
	"os"
	"strings"
	"sync"
)

const (
	// EnvVarName is the name of the environment variable which contains the
	// list of feature flags.
	EnvVarName = "COREWASMFEATURES"
)

var (
	lock sync.RWMutex
	list []string
)

// EnableFromEnvironment extracts the list of corewasm features enabled from
// the COREWASMFEATURES environment variable.
func EnableFromEnvironment() {
	features := os.Getenv(EnvVarName)
	Enable(strings.Split(features, ",")...)
}

// Enable the list of features passed as arguments.
//
// The function is idempotent and atomic, features that are already present are
// skipped.
//
// Unrecognized features are ignored.
func Enable(features ...string) {
	lock.Lock()
	defer lock.Unlock()

	enabled := list

	for _, f := range features {
		if supported(f) && !have(enabled, f) {
			enabled = append(enabled, f)
		}
	}

	list = enabled
}

// List returns the current list of features enabled on corewasm.
//
// The program must treat the returned slice as read-only.
func List() []string {
	lock.RLock()
	defer lock.RUnlock()
	return list
}

// Have returns true if the given feature is enabled.
func Have(feature string) bool {
	lock.RLock()
	features := list
	lock.RUnlock()
	return have(features, feature)
}

func have(list []string, feature string) bool {
	for _, f := range list {
		if f == feature {
			return true
		}
	}
	return false
}

// Post-MVP proposal names recognized by validation's post-MVP gate.
const (
	MultiValue     = "multi-value"
	BulkMemory     = "bulk-memory"
	ReferenceTypes = "reference-types"
)

func supported(feature string) bool {
	switch feature {
	case MultiValue, BulkMemory, ReferenceTypes:
		return true
	default:
		return false
	}
}
