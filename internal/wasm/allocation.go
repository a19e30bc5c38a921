package wasm

import (
	"fmt"
	"reflect"
)

// AllocFunction allocates an internal (non-host) function instance closing
// over moduleInst, the module instance it will belong to once alloc_module
// finishes linking it. See spec.md §4.D "alloc_func".
func AllocFunction(s *Store, ft *FunctionType, moduleInst ModuleAddr, code *Func) FuncAddr {
	return s.pushFunc(&FuncInst{Type: *ft, ModuleInstance: moduleInst, Code: code})
}

// AllocHostFunction allocates a function instance backed by a host closure
// rather than wasm bytecode. fn must be a reflect.Value wrapping a Go func
// whose signature is compatible with ft; the engine is responsible for the
// actual argument/result marshalling at call time.
//
// See spec.md §4.J and §4.D "alloc_func" (host variant).
func AllocHostFunction(s *Store, fn reflect.Value, ft *FunctionType) FuncAddr {
	if fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("wasm: AllocHostFunction: fn is a %s, not a func", fn.Kind()))
	}
	return s.pushFunc(&FuncInst{Type: *ft, Host: &HostFunc{Fn: fn.Interface()}})
}

// AllocTable allocates a table instance of the given type, all elements
// initially absent (nil). See spec.md §4.D "alloc_table".
func AllocTable(s *Store, tt *TableType) TableAddr {
	return s.pushTable(&TableInst{Type: *tt, Elem: make([]*FuncAddr, tt.Limits.Min)})
}

// AllocMem allocates a memory instance of the given type, zero-filled.
// See spec.md §4.D "alloc_mem".
func AllocMem(s *Store, mt *MemoryType) MemAddr {
	return s.pushMem(&MemInst{Type: *mt, Data: make([]byte, uint64(mt.Limits.Min)*PageSize)})
}

// AllocGlobal allocates a global instance with its initial value (already
// evaluated by the caller; see instantiate.go's aux-instance step for why
// evaluation must precede this call). See spec.md §4.D "alloc_global".
func AllocGlobal(s *Store, gt *GlobalType, v Val) GlobalAddr {
	return s.pushGlobal(&GlobalInst{Type: *gt, Val: v})
}

// AllocatingTableBeyondMaxLimit is returned by GrowTableBy when the
// requested growth would exceed the table's declared maximum.
type AllocatingTableBeyondMaxLimit struct {
	Max, Requested uint32
}

func (e *AllocatingTableBeyondMaxLimit) Error() string {
	return fmt.Sprintf("wasm: growing table to %d elements exceeds its max of %d", e.Requested, e.Max)
}

// GrowTableBy grows a table instance by n elements, appending absent (nil)
// entries, or fails without mutating the table if that would exceed its
// declared maximum. See spec.md §4.D "grow_table".
func GrowTableBy(t *TableInst, n uint32) error {
	newLen := uint32(len(t.Elem)) + n
	if t.Type.Limits.Max != nil && newLen > *t.Type.Limits.Max {
		return &AllocatingTableBeyondMaxLimit{Max: *t.Type.Limits.Max, Requested: newLen}
	}
	t.Elem = append(t.Elem, make([]*FuncAddr, n)...)
	return nil
}

// AllocatingMemBeyondMaxLimit is returned by GrowMemoryBy when the
// requested growth would exceed the memory's declared maximum (or the
// implementation's hard 4GiB address-space ceiling).
type AllocatingMemBeyondMaxLimit struct {
	Max, Requested uint32
}

func (e *AllocatingMemBeyondMaxLimit) Error() string {
	return fmt.Sprintf("wasm: growing memory to %d pages exceeds its max of %d", e.Requested, e.Max)
}

// MemoryMaxPages is the MVP's hard linear-memory address-space ceiling:
// 2^16 pages of 64KiB each span the full 32-bit address space.
const MemoryMaxPages = 1 << 16

// GrowMemoryBy grows a memory instance by n pages, zero-filling the new
// pages, or fails without mutating memory if that would exceed its
// declared maximum or the 4GiB address-space ceiling.
// See spec.md §4.D "grow_mem".
func GrowMemoryBy(m *MemInst, n uint32) error {
	newPages := m.PageCount() + n
	if newPages > MemoryMaxPages {
		return &AllocatingMemBeyondMaxLimit{Max: MemoryMaxPages, Requested: newPages}
	}
	if m.Type.Limits.Max != nil && newPages > *m.Type.Limits.Max {
		return &AllocatingMemBeyondMaxLimit{Max: *m.Type.Limits.Max, Requested: newPages}
	}
	m.Data = append(m.Data, make([]byte, uint64(n)*PageSize)...)
	return nil
}

// AllocModule allocates every own (non-imported) definition of m in order
// (funcs, then tables, then mems, then globals) against a store that
// already holds resolvedImports, and returns the fully populated module
// instance's address. globalVals are the already-evaluated initial values
// for m's own globals, parallel to m.Globals.
//
// The module instance is pushed (reserving its ModuleAddr) before its own
// functions are allocated, so that AllocFunction can close over the
// address each function will eventually see as its own module instance,
// closing the self-reference cycle a function needs to call_indirect or
// reference its own globals. See spec.md §4.D "alloc_module".
func AllocModule(s *Store, m *Module, resolvedImports []ExternVal, globalVals []Val) ModuleAddr {
	inst := &ModuleInst{Types: append([]*FunctionType(nil), m.Types...)}
	modAddr := s.pushModule(inst)

	for _, im := range resolvedImports {
		switch im.Type {
		case extTypeFunc:
			inst.Funcs = append(inst.Funcs, im.Func)
		case extTypeTable:
			inst.Tables = append(inst.Tables, im.Table)
		case extTypeMem:
			inst.Mems = append(inst.Mems, im.Mem)
		case extTypeGlobal:
			inst.Globals = append(inst.Globals, im.Global)
		}
	}

	for _, f := range m.Funcs {
		ft := m.Types[f.Type]
		inst.Funcs = append(inst.Funcs, AllocFunction(s, ft, modAddr, f))
	}
	for _, t := range m.Tables {
		inst.Tables = append(inst.Tables, AllocTable(s, &t.Type))
	}
	for _, mem := range m.Mems {
		inst.Mems = append(inst.Mems, AllocMem(s, &mem.Type))
	}
	for i, g := range m.Globals {
		inst.Globals = append(inst.Globals, AllocGlobal(s, &g.Type, globalVals[i]))
	}

	for _, ex := range m.Exports {
		var val ExternVal
		switch ex.Desc {
		case ExportFunc:
			val = FuncExtern(inst.Funcs[ex.Index])
		case ExportTable:
			val = TableExtern(inst.Tables[ex.Index])
		case ExportMemory:
			val = MemExtern(inst.Mems[ex.Index])
		case ExportGlobal:
			val = GlobalExtern(inst.Globals[ex.Index])
		}
		inst.Exports = append(inst.Exports, ExportInst{Name: ex.Name, Val: val})
	}

	return modAddr
}
