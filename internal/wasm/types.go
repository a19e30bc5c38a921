// Package wasm implements the validation and instantiation core of a
// WebAssembly 1.0 (MVP) runtime: static typing of a decoded Module, and
// linking a validated Module against host-provided imports into a Store.
//
// The address-indexed Store model here (FuncAddr, TableAddr, ... as plain
// uint32 indices into flat, append-only pools) follows the original
// greenwasm-execution reference rather than the pointer-holding
// ModuleInstance model of current wazero, because the store invariants this
// package has to uphold (stable addresses, append-only pools, pop_aux) are
// only meaningful over an index-addressed store.
package wasm

import "fmt"

// ValueType is one of the four MVP numeric types.
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
)

func ValueTypeName(t ValueType) string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	default:
		return fmt.Sprintf("unknown(%#x)", t)
	}
}

// ResultType is an ordered sequence of value types. The MVP constrains its
// length to 0 or 1; that constraint is enforced by validation, not the type
// itself, so the AST can still represent (and reject) a non-conformant
// module produced by a lenient or adversarial decoder.
type ResultType []ValueType

// Index is a namespace-relative index (function, table, memory, global,
// type, local, or label index), always imports-then-own-declarations order.
type Index = uint32

// Mutability of a global.
type Mutability byte

const (
	Const Mutability = iota
	Var
)

func (m Mutability) String() string {
	if m == Var {
		return "var"
	}
	return "const"
}

// ElemType is the element type of a table. MVP only has AnyFunc.
type ElemType byte

const AnyFunc ElemType = 0x70

// Limits describes the size bounds of a table or memory.
type Limits struct {
	Min uint32
	Max *uint32 // nil means unbounded
}

// Valid reports whether max, if present, is not smaller than min.
//
// See spec.md §4.E "Limits. Valid iff max.unwrap_or(min) >= min."
func (l Limits) Valid() bool {
	if l.Max == nil {
		return true
	}
	return *l.Max >= l.Min
}

// FunctionType is a `[args] -> [results]` signature. The MVP constrains
// |results| <= 1.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

func (f *FunctionType) String() string {
	return fmt.Sprintf("%s->%s", valueTypesString(f.Params), valueTypesString(f.Results))
}

// EqualsSignature compares by value, not pointer identity.
func (f *FunctionType) EqualsSignature(params, results []ValueType) bool {
	return sliceEq(f.Params, params) && sliceEq(f.Results, results)
}

func sliceEq(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func valueTypesString(vs []ValueType) string {
	s := "["
	for i, v := range vs {
		if i > 0 {
			s += ","
		}
		s += ValueTypeName(v)
	}
	return s + "]"
}

// TableType is the type of a table: limits plus an element type, which the
// MVP always fixes to AnyFunc.
type TableType struct {
	Limits   Limits
	ElemType ElemType
}

func (t *TableType) Valid() bool { return t.Limits.Valid() }

// MemoryType is the type of linear memory: limits in units of pages.
type MemoryType struct {
	Limits Limits
}

func (m *MemoryType) Valid() bool { return m.Limits.Valid() }

// GlobalType is the type of a global: value type plus mutability. Always
// valid per spec.md §4.E.
type GlobalType struct {
	ValType    ValueType
	Mutability Mutability
}
