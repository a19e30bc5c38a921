// Package corewasm is the facade most callers use instead of reaching
// into internal/wasm directly: it wraps a Store and an Engine behind
// RuntimeConfig, CompileModule, InstantiateModule, and a
// Module.ExportedFunction(name).Call(ctx, args...) convenience wrapper.
package corewasm

import (
	"github.com/gowasm/corewasm/experimental"
	"github.com/gowasm/corewasm/internal/features"
	"github.com/gowasm/corewasm/internal/wasm"
)

// RuntimeConfig controls Runtime behavior. Immutable: every With* method
// returns a copy, so a base config can be shared and specialized safely.
type RuntimeConfig struct {
	enabledFeatures []string
	memoryMaxPages  uint32
	listenerFactory experimental.FunctionListenerFactory
}

// NewRuntimeConfig returns a RuntimeConfig with MVP defaults: no post-MVP
// features enabled, the full 4GiB memory address space available, and no
// call tracing.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{memoryMaxPages: wasm.MemoryMaxPages}
}

func (c *RuntimeConfig) clone() *RuntimeConfig {
	ret := *c
	ret.enabledFeatures = append([]string(nil), c.enabledFeatures...)
	return &ret
}

// WithFeatures enables the named post-MVP proposals (see internal/features)
// for modules validated by the resulting Runtime. An unrecognized name is
// silently ignored, the same idempotent-registry behavior as
// features.Enable.
func (c *RuntimeConfig) WithFeatures(names ...string) *RuntimeConfig {
	ret := c.clone()
	ret.enabledFeatures = append(ret.enabledFeatures, names...)
	return ret
}

// WithMemoryMaxPages caps how many 64KiB pages any memory a module
// compiled by the resulting Runtime defines may declare as its minimum or
// maximum. Imported memories are not checked, and a memory that declares
// no maximum can still grow at run time up to wasm.MemoryMaxPages.
// Defaults to wasm.MemoryMaxPages (the full 4GiB address space).
func (c *RuntimeConfig) WithMemoryMaxPages(pages uint32) *RuntimeConfig {
	ret := c.clone()
	ret.memoryMaxPages = pages
	return ret
}

// WithFunctionListenerFactory arranges for every Invoke made through the
// resulting Runtime's exported functions to be traced via the given
// factory (see experimental/logging for a ready-made implementation that
// writes to an io.Writer).
func (c *RuntimeConfig) WithFunctionListenerFactory(f experimental.FunctionListenerFactory) *RuntimeConfig {
	ret := c.clone()
	ret.listenerFactory = f
	return ret
}

func (c *RuntimeConfig) applyFeatures() {
	for _, name := range c.enabledFeatures {
		features.Enable(name)
	}
}
