package wasm

import "github.com/gowasm/corewasm/api"

// FuncAddr, TableAddr, MemAddr, GlobalAddr, and ModuleAddr are flat indices
// into the Store's respective append-only pools. Allocation never reuses or
// relocates an address: once handed out, an address stays valid and stable
// for the lifetime of the Store, matching the greenwasm-execution store
// model spec.md is drawn from.
type (
	FuncAddr   = uint32
	TableAddr  = uint32
	MemAddr    = uint32
	GlobalAddr = uint32
	ModuleAddr = uint32
)

// FuncInst is a function instance: either a closure over a module instance
// (a "wasm" function) or a host function bridged in by reflection.
type FuncInst struct {
	Type ItfFunctionType

	// Internal function. ModuleInstance is unused (zero) and Code is nil
	// for a host function.
	ModuleInstance ModuleAddr
	Code           *Func

	// Host function. Host is nil for an internal function.
	Host *HostFunc
}

// ItfFunctionType is an alias retained for readability at call sites that
// read as "the interface function type" in spec.md prose; it is the same
// type as FunctionType.
type ItfFunctionType = FunctionType

// HostFunc wraps a Go closure, invoked through reflection so that the
// engine can call it uniformly alongside internal functions. See
// AllocHostFunction in allocation.go.
type HostFunc struct {
	Fn interface{} // a Go func; AllocHostFunction does not check it against Type
}

func (f *FuncInst) IsHost() bool { return f.Host != nil }

// TableInst is a table instance: a growable vector of optional function
// addresses (nil entries are traps-on-call, produced by table.grow or an
// un-initialized declared table).
type TableInst struct {
	Type ItfTableType
	Elem []*FuncAddr
}

type ItfTableType = TableType

// MemInst is a memory instance: growable linear memory in page units.
const PageSize = 65536

type MemInst struct {
	Type ItfMemoryType
	Data []byte
}

type ItfMemoryType = MemoryType

// PageCount returns the current memory size in 64KiB pages.
func (m *MemInst) PageCount() uint32 { return uint32(len(m.Data) / PageSize) }

// ReadUint32Le reads a little-endian uint32 at offset, returning false if
// that would read past the end of memory.
func (m *MemInst) ReadUint32Le(offset uint32) (uint32, bool) {
	b, ok := m.Read(offset, 4)
	if !ok {
		return 0, false
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, true
}

// WriteUint32Le writes v as a little-endian uint32 at offset, returning
// false without mutating memory if that would write past its end.
func (m *MemInst) WriteUint32Le(offset, v uint32) bool {
	return m.Write(offset, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// Read returns the byteCount bytes starting at offset, or false if that
// range falls outside memory.
func (m *MemInst) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.Data)) {
		return nil, false
	}
	return m.Data[offset:end], true
}

// Write copies data into memory starting at offset, returning false
// without mutating memory if that range falls outside memory.
func (m *MemInst) Write(offset uint32, data []byte) bool {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(m.Data)) {
		return false
	}
	copy(m.Data[offset:end], data)
	return true
}

// GlobalInst is a global variable instance.
type GlobalInst struct {
	Type ItfGlobalType
	Val  Val
}

type ItfGlobalType = GlobalType

// ModuleInst is a module instance: the concatenated imports-then-own index
// spaces resolved to concrete store addresses, plus the module's exports.
type ModuleInst struct {
	Types   []*FunctionType
	Funcs   []FuncAddr
	Tables  []TableAddr
	Mems    []MemAddr
	Globals []GlobalAddr
	Exports []ExportInst
}

// ExportInst is a resolved (name, external value) pair, the instantiated
// counterpart of Export.
type ExportInst struct {
	Name string
	Val  ExternVal
}

// GetExport looks up an export by name.
func (mi *ModuleInst) GetExport(name string) (ExternVal, bool) {
	for _, e := range mi.Exports {
		if e.Name == name {
			return e.Val, true
		}
	}
	return ExternVal{}, false
}

// Store holds every runtime entity in flat, append-only pools addressed by
// plain indices. This is the central departure from pointer-graph store
// designs: addresses are stable the moment they are handed out, which lets
// instantiate.go implement pop_aux (rolling back a speculative aux module
// instance) as a simple slice truncation instead of a graph edit.
type Store struct {
	Funcs   []*FuncInst
	Tables  []*TableInst
	Mems    []*MemInst
	Globals []*GlobalInst
	Modules []*ModuleInst

	Engine Engine
}

// NewStore creates an empty store bound to the given execution engine.
func NewStore(engine Engine) *Store {
	return &Store{Engine: engine}
}

func (s *Store) pushFunc(f *FuncInst) FuncAddr {
	s.Funcs = append(s.Funcs, f)
	return FuncAddr(len(s.Funcs) - 1)
}

func (s *Store) pushTable(t *TableInst) TableAddr {
	s.Tables = append(s.Tables, t)
	return TableAddr(len(s.Tables) - 1)
}

func (s *Store) pushMem(m *MemInst) MemAddr {
	s.Mems = append(s.Mems, m)
	return MemAddr(len(s.Mems) - 1)
}

func (s *Store) pushGlobal(g *GlobalInst) GlobalAddr {
	s.Globals = append(s.Globals, g)
	return GlobalAddr(len(s.Globals) - 1)
}

func (s *Store) pushModule(m *ModuleInst) ModuleAddr {
	s.Modules = append(s.Modules, m)
	return ModuleAddr(len(s.Modules) - 1)
}

// PopAux discards the most recently pushed module instance. Used by
// instantiate.go to roll back the auxiliary instance built to evaluate
// imported-global initializer expressions once those values have been
// read out: the aux instance must not survive into the final store.
//
// See spec.md §4.F "pop_aux".
func (s *Store) PopAux(addr ModuleAddr) {
	if int(addr) != len(s.Modules)-1 {
		panic("wasm: PopAux called on non-top-of-stack module address")
	}
	s.Modules = s.Modules[:addr]
}

func (s *Store) Func(a FuncAddr) *FuncInst     { return s.Funcs[a] }
func (s *Store) Table(a TableAddr) *TableInst  { return s.Tables[a] }
func (s *Store) Mem(a MemAddr) *MemInst        { return s.Mems[a] }
func (s *Store) Global(a GlobalAddr) *GlobalInst { return s.Globals[a] }
func (s *Store) Module(a ModuleAddr) *ModuleInst { return s.Modules[a] }

// ExternValType classifies an ExternVal using the api vocabulary.
func ExternValType(e ExternVal) api.ExternType { return e.Type }
