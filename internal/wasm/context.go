package wasm

// Chain is a persistent, singly-linked sequence used for every indexable
// field of Ctx. Each node is one of three forms:
//
//   - Set: holds its own complete backing slice (the module-level root).
//   - Prepended: holds new items in front of a parent chain (locals growing
//     one parameter/declaration at a time, labels growing one nested block
//     at a time).
//   - Delegated: holds no items of its own, just forwards to parent
//     unchanged (types/funcs/tables/mems/globals inside a function body,
//     which never add to those spaces).
//
// All three constructors are O(1); only lookup walks the chain, bounded by
// nesting depth. This is what lets instruction-sequence validation build a
// child Ctx per nested block without recopying the enclosing context.
//
// See spec.md §4.E "Ctx".
type Chain[T any] struct {
	items  []T
	parent *Chain[T]
	form   chainForm
}

type chainForm byte

const (
	chainSet chainForm = iota
	chainPrepended
	chainDelegated
)

// NewChain creates a root chain owning items directly.
func NewChain[T any](items []T) *Chain[T] {
	return &Chain[T]{form: chainSet, items: items}
}

// Prepend returns a child chain exposing items in front of c.
func (c *Chain[T]) Prepend(items []T) *Chain[T] {
	return &Chain[T]{form: chainPrepended, items: items, parent: c}
}

// Delegate returns a child chain identical to c, for contexts that must
// carry a field forward unchanged into a nested scope.
func (c *Chain[T]) Delegate() *Chain[T] {
	if c == nil {
		return nil
	}
	return &Chain[T]{form: chainDelegated, parent: c}
}

// Len returns the total number of visible items.
func (c *Chain[T]) Len() int {
	if c == nil {
		return 0
	}
	switch c.form {
	case chainSet:
		return len(c.items)
	case chainPrepended:
		return len(c.items) + c.parent.Len()
	default: // chainDelegated
		return c.parent.Len()
	}
}

// At returns the i'th visible item, or ok=false if i is out of range.
func (c *Chain[T]) At(i Index) (t T, ok bool) {
	if c == nil {
		return t, false
	}
	switch c.form {
	case chainSet:
		if int(i) >= len(c.items) {
			return t, false
		}
		return c.items[i], true
	case chainPrepended:
		if int(i) < len(c.items) {
			return c.items[i], true
		}
		return c.parent.At(i - uint32(len(c.items)))
	default: // chainDelegated
		return c.parent.At(i)
	}
}

// Ctx is the validation typing context threaded through module, function,
// and instruction-sequence typing. Each field is independently either set,
// prepended, or delegated as a child context is built, so entering a
// nested block or function body never copies the whole context.
//
// See spec.md §4.E.
type Ctx struct {
	Types   *Chain[*FunctionType]
	Funcs   *Chain[*FunctionType]
	Tables  *Chain[*TableType]
	Mems    *Chain[*MemoryType]
	Globals *Chain[*GlobalType]
	Locals  *Chain[ValueType]
	Labels  *Chain[ResultType]

	// Return is the enclosing function's result type, or nil outside any
	// function body (e.g. while typing a global or element/data offset
	// const-expr, where `return` is not a valid instruction).
	Return *ResultType
}

// WithLabel returns a child context with lbl pushed as the innermost
// (index 0) label, for entering a block/loop/if body.
func (c Ctx) WithLabel(lbl ResultType) Ctx {
	c.Labels = c.Labels.Prepend([]ResultType{lbl})
	return c
}
