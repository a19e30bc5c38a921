package wasm

// Module is the passive AST produced by a (out of scope) binary decoder.
// See spec.md §3 "Module".
type Module struct {
	Types   []*FunctionType
	Funcs   []*Func
	Tables  []*Table
	Mems    []*Memory
	Globals []*Global
	Elem    []*ElementSegment
	Data    []*DataSegment
	Start   *Index // nil if absent
	Imports []*Import
	Exports []*Export
}

// Func is an own (non-imported) function definition.
type Func struct {
	Type   Index // index into Module.Types
	Locals []ValueType
	Body   Expr
}

// Table is an own (non-imported) table definition.
type Table struct {
	Type TableType
}

// Memory is an own (non-imported) memory definition.
type Memory struct {
	Type MemoryType
}

// Global is an own (non-imported) global definition.
type Global struct {
	Type GlobalType
	Init Expr
}

// ElementSegment initializes a contiguous run of a table's elements with
// function indices.
type ElementSegment struct {
	Table  Index
	Offset Expr // must type as a const-expr producing i32
	Init   []Index
}

// DataSegment initializes a contiguous run of a memory's bytes.
type DataSegment struct {
	Mem    Index
	Offset Expr // must type as a const-expr producing i32
	Init   []byte
}

// ImportDesc tags which of the four kinds an Import describes.
type ImportDesc byte

const (
	ImportFunc ImportDesc = iota
	ImportTable
	ImportMemory
	ImportGlobal
)

// Import describes an entity the module expects the host or another module
// to provide at instantiation time.
type Import struct {
	Module string
	Name   string
	Desc   ImportDesc

	// Exactly one of these is meaningful, selected by Desc.
	DescFunc   Index // index into Module.Types
	DescTable  TableType
	DescMemory MemoryType
	DescGlobal GlobalType
}

// ExportDesc tags which index namespace an Export's Index refers to.
type ExportDesc byte

const (
	ExportFunc ExportDesc = iota
	ExportTable
	ExportMemory
	ExportGlobal
)

// Export names an own entity (imported or locally declared; the index
// namespace always puts imports first) for other modules or the host to
// import by name.
type Export struct {
	Name string
	Desc ExportDesc
	Index
}

// importCounts returns, in namespace order, how many of each kind are
// imports (as opposed to own declarations). Used throughout validation and
// allocation to build the "imports ++ own" concatenated index spaces.
func (m *Module) importCounts() (funcs, tables, mems, globals int) {
	for _, im := range m.Imports {
		switch im.Desc {
		case ImportFunc:
			funcs++
		case ImportTable:
			tables++
		case ImportMemory:
			mems++
		case ImportGlobal:
			globals++
		}
	}
	return
}
