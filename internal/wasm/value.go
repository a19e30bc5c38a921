package wasm

import "github.com/gowasm/corewasm/api"

// Val is a runtime value of one of the four MVP types. It stores every
// representation in a single uint64 register slot (api.EncodeF32/F64 for
// the float cases), the same convention the teacher's api package uses to
// move values across the host/guest boundary.
type Val struct {
	T   ValueType
	raw uint64
}

func I32Val(v int32) Val { return Val{T: ValueTypeI32, raw: api.EncodeI32(v)} }
func I64Val(v int64) Val { return Val{T: ValueTypeI64, raw: api.EncodeI64(v)} }
func F32Val(v float32) Val { return Val{T: ValueTypeF32, raw: api.EncodeF32(v)} }
func F64Val(v float64) Val { return Val{T: ValueTypeF64, raw: api.EncodeF64(v)} }

// Ty returns the value's type, i.e. Val.ty() in spec.md's notation.
func (v Val) Ty() ValueType { return v.T }

func (v Val) I32() int32   { return int32(uint32(v.raw)) }
func (v Val) I64() int64   { return int64(v.raw) }
func (v Val) F32() float32 { return api.DecodeF32(v.raw) }
func (v Val) F64() float64 { return api.DecodeF64(v.raw) }

// Raw returns the underlying register-slot bit pattern.
func (v Val) Raw() uint64 { return v.raw }

// ValFromRaw reconstructs a Val from a raw register slot given its type.
func ValFromRaw(t ValueType, raw uint64) Val { return Val{T: t, raw: raw} }

// ExternVal is an external value: a store address tagged with the kind of
// entity it addresses. See spec.md §3.
type ExternVal struct {
	Type  api.ExternType
	Func  FuncAddr
	Table TableAddr
	Mem   MemAddr
	Global GlobalAddr
}

func FuncExtern(a FuncAddr) ExternVal     { return ExternVal{Type: api.ExternTypeFunc, Func: a} }
func TableExtern(a TableAddr) ExternVal   { return ExternVal{Type: api.ExternTypeTable, Table: a} }
func MemExtern(a MemAddr) ExternVal       { return ExternVal{Type: api.ExternTypeMemory, Mem: a} }
func GlobalExtern(a GlobalAddr) ExternVal { return ExternVal{Type: api.ExternTypeGlobal, Global: a} }

// ExternType mirrors the ExternVal sum, but with full types instead of
// addresses. Produced by external_typing (externtype.go) and consumed by
// import_matching's extern_type.
type ExternType struct {
	Kind   api.ExternType
	Func   *FunctionType
	Table  *TableType
	Mem    *MemoryType
	Global *GlobalType
}
