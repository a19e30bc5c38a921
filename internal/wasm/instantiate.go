package wasm

import (
	"context"
	"fmt"

	"github.com/gowasm/corewasm/experimental"
)

// InstantiateModule links a validated module against externally supplied
// imports, allocates its own definitions, initializes its tables and
// memories from its element and data segments, and (if present) runs its
// start function. It returns the address of the new module instance.
//
// The algorithm follows spec.md §4.F exactly, including its two
// deliberately ordered phases around tables/memories: every element and
// data segment is bounds-checked against the freshly allocated (but still
// untouched) tables and memories before any of them is mutated, so a
// bounds failure on segment k leaves segments 0..k-1 unapplied too — the
// new module instance (and its tables/memories) remain allocated in the
// store as documented residue of the failed attempt, but their contents
// are exactly what alloc_module produced.
func InstantiateModule(ctx context.Context, s *Store, m *Module, name string, imports []ExternVal) (ModuleAddr, error) {
	if len(imports) != len(m.Imports) {
		return 0, &InstantiationError{Err: &ImportArityMismatch{Want: len(m.Imports), Got: len(imports)}}
	}
	for i, im := range m.Imports {
		required := importExternType(m, im)
		actual := ExternalTyping(s, imports[i])
		if !ExternTypeMatches(actual, required) {
			return 0, &InstantiationError{Err: &ImportMismatch{Module: im.Module, Name: im.Name}}
		}
	}

	// Build the auxiliary module instance: imported globals only, just
	// enough context for get_global in an own global's init expr to
	// resolve. See spec.md §4.F "aux module instance" / "pop_aux".
	aux := &ModuleInst{}
	for _, im := range imports {
		if im.Type == extTypeGlobal {
			aux.Globals = append(aux.Globals, im.Global)
		}
	}
	auxAddr := s.pushModule(aux)

	globalVals := make([]Val, len(m.Globals))
	for i, g := range m.Globals {
		v, err := evalConstExpr(s, aux, g.Init)
		if err != nil {
			s.PopAux(auxAddr)
			return 0, &InstantiationError{Msg: fmt.Sprintf("evaluating global %d initializer", i), Err: err}
		}
		globalVals[i] = v
	}
	s.PopAux(auxAddr)

	modAddr := AllocModule(s, m, imports, globalVals)
	mi := s.Module(modAddr)

	type elemPlan struct {
		tableAddr TableAddr
		offset    uint32
		funcAddrs []FuncAddr
	}
	elemPlans := make([]elemPlan, len(m.Elem))
	for i, el := range m.Elem {
		offVal, err := evalConstExpr(s, mi, el.Offset)
		if err != nil {
			return 0, &InstantiationError{Msg: fmt.Sprintf("evaluating element segment %d offset", i), Err: err}
		}
		off := uint32(offVal.I32())
		tableAddr := mi.Tables[el.Table]
		t := s.Table(tableAddr)
		if uint64(off)+uint64(len(el.Init)) > uint64(len(t.Elem)) {
			return 0, &InstantiationError{Err: &ElemOrDataOutOfBounds{Index: i}}
		}
		funcAddrs := make([]FuncAddr, len(el.Init))
		for j, fidx := range el.Init {
			funcAddrs[j] = mi.Funcs[fidx]
		}
		elemPlans[i] = elemPlan{tableAddr: tableAddr, offset: off, funcAddrs: funcAddrs}
	}

	type dataPlan struct {
		memAddr MemAddr
		offset  uint32
		bytes   []byte
	}
	dataPlans := make([]dataPlan, len(m.Data))
	for i, d := range m.Data {
		offVal, err := evalConstExpr(s, mi, d.Offset)
		if err != nil {
			return 0, &InstantiationError{Msg: fmt.Sprintf("evaluating data segment %d offset", i), Err: err}
		}
		off := uint32(offVal.I32())
		memAddr := mi.Mems[d.Mem]
		mem := s.Mem(memAddr)
		if uint64(off)+uint64(len(d.Init)) > uint64(len(mem.Data)) {
			return 0, &InstantiationError{Err: &ElemOrDataOutOfBounds{IsData: true, Index: i}}
		}
		dataPlans[i] = dataPlan{memAddr: memAddr, offset: off, bytes: d.Init}
	}

	for _, p := range elemPlans {
		t := s.Table(p.tableAddr)
		for j, fa := range p.funcAddrs {
			fa := fa
			t.Elem[int(p.offset)+j] = &fa
		}
	}
	for _, p := range dataPlans {
		mem := s.Mem(p.memAddr)
		copy(mem.Data[p.offset:], p.bytes)
	}

	if m.Start != nil {
		startAddr := mi.Funcs[*m.Start]
		if _, err := invokeWithListener(ctx, s, name, "_start", startAddr, nil); err != nil {
			return 0, &InstantiationError{Msg: "running start function", Err: err}
		}
	}

	return modAddr, nil
}

// invokeWithListener is Invoke plus FunctionListener tracing, for the one
// call site (the start function) that has no corewasm.ExportedFunction
// wrapping it to supply that tracing itself. The factory, if any, travels
// on ctx via experimental.WithFunctionListenerFactory — set by
// corewasm.Runtime.InstantiateModule — so this package need not import
// corewasm and risk a cycle.
func invokeWithListener(ctx context.Context, s *Store, moduleName, funcName string, addr FuncAddr, args []Val) ([]Val, error) {
	factory := experimental.FunctionListenerFactoryFromContext(ctx)
	if factory == nil {
		return Invoke(ctx, s, addr, args)
	}

	f := s.Func(addr)
	def := startFuncDefinition{moduleName: moduleName, name: funcName, ft: &f.Type}
	listener := factory.NewListener(def)
	if listener == nil {
		return Invoke(ctx, s, addr, args)
	}

	rawArgs := make([]uint64, len(args))
	for i, v := range args {
		rawArgs[i] = v.Raw()
	}
	ctx = listener.Before(ctx, def, rawArgs)

	results, err := Invoke(ctx, s, addr, args)

	rawResults := make([]uint64, len(results))
	for i, v := range results {
		rawResults[i] = v.Raw()
	}
	listener.After(ctx, def, rawResults, err)
	return results, err
}

type startFuncDefinition struct {
	moduleName string
	name       string
	ft         *FunctionType
}

func (d startFuncDefinition) ModuleName() string      { return d.moduleName }
func (d startFuncDefinition) Index() uint32           { return 0 }
func (d startFuncDefinition) Name() string            { return d.name }
func (d startFuncDefinition) ExportNames() []string   { return nil }
func (d startFuncDefinition) ParamTypes() []ValueType { return d.ft.Params }
func (d startFuncDefinition) ParamNames() []string    { return nil }
func (d startFuncDefinition) ResultTypes() []ValueType { return d.ft.Results }
func (d startFuncDefinition) ResultNames() []string    { return nil }

// importExternType projects an Import declaration to the ExternType it
// requires, for comparison against what the caller actually supplied.
func importExternType(m *Module, im *Import) ExternType {
	switch im.Desc {
	case ImportFunc:
		return ExternType{Kind: extTypeFunc, Func: m.Types[im.DescFunc]}
	case ImportTable:
		tt := im.DescTable
		return ExternType{Kind: extTypeTable, Table: &tt}
	case ImportMemory:
		mt := im.DescMemory
		return ExternType{Kind: extTypeMem, Mem: &mt}
	default: // ImportGlobal
		gt := im.DescGlobal
		return ExternType{Kind: extTypeGlobal, Global: &gt}
	}
}

// evalConstExpr evaluates a constant expression: exactly one of the four
// t.const instructions, or get_global on an imported const global. This is
// the only instruction vocabulary const-expr validation (validation.go)
// accepts, so evaluation never needs a general interpreter.
//
// See spec.md §4.F and §4.E "const_expr".
func evalConstExpr(s *Store, mi *ModuleInst, e Expr) (Val, error) {
	if len(e.Body) != 1 {
		return Val{}, fmt.Errorf("wasm: const expression must have exactly one instruction, got %d", len(e.Body))
	}
	in := e.Body[0]
	switch in.Op {
	case OpI32Const:
		return I32Val(in.I32), nil
	case OpI64Const:
		return I64Val(in.I64), nil
	case OpF32Const:
		return F32Val(in.F32), nil
	case OpF64Const:
		return F64Val(in.F64), nil
	case OpGetGlobal:
		addr := mi.Globals[in.GlobalIdx]
		return s.Global(addr).Val, nil
	default:
		return Val{}, fmt.Errorf("wasm: opcode %#x is not valid in a const expression", in.Op)
	}
}
