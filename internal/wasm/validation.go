package wasm

import (
	"fmt"

	"github.com/gowasm/corewasm/internal/features"
)

// ValidateModule statically types every definition in m: its types,
// own function bodies, table/memory/global declarations, element/data
// segment offsets, start function, and export names. It reports the
// first ValidationError found.
//
// See spec.md §4.E.
func ValidateModule(m *Module) error {
	for i, f := range m.Funcs {
		if int(f.Type) >= len(m.Types) {
			return newValidationError(UnknownIndex, fmt.Sprintf("func %d: type index %d", i, f.Type), nil)
		}
	}

	impFuncs, impTables, impMems, impGlobals := importTypesOf(m)

	funcTypes := append(append([]*FunctionType(nil), impFuncs...), ownFuncTypes(m)...)
	tableTypes := append(append([]*TableType(nil), impTables...), ownTableTypes(m)...)
	memTypes := append(append([]*MemoryType(nil), impMems...), ownMemTypes(m)...)
	globalTypes := append(append([]*GlobalType(nil), impGlobals...), ownGlobalTypes(m)...)

	for i, tt := range tableTypes {
		if !tt.Valid() {
			return newValidationError(InvalidTableType, fmt.Sprintf("table %d", i), nil)
		}
	}
	for i, mt := range memTypes {
		if !mt.Valid() {
			return newValidationError(InvalidMemoryType, fmt.Sprintf("memory %d", i), nil)
		}
		if mt.Limits.Min > MemoryMaxPages || (mt.Limits.Max != nil && *mt.Limits.Max > MemoryMaxPages) {
			return newValidationError(InvalidMemoryType, fmt.Sprintf("memory %d exceeds the 4GiB address space", i), nil)
		}
	}
	if len(tableTypes) > 1 {
		return newValidationError(InvalidTableType, "at most one table is allowed in the MVP", nil)
	}
	if len(memTypes) > 1 {
		return newValidationError(InvalidMemoryType, "at most one memory is allowed in the MVP", nil)
	}

	rootCtx := Ctx{
		Types:   NewChain(m.Types),
		Funcs:   NewChain(funcTypes),
		Tables:  NewChain(tableTypes),
		Mems:    NewChain(memTypes),
		Globals: NewChain(globalTypes),
	}

	// Global initializers may only reference imported globals (own globals
	// are not yet initialized, so forward/self references are invalid).
	constCtx := rootCtx
	constCtx.Globals = NewChain(append([]*GlobalType(nil), impGlobals...))
	for i, g := range m.Globals {
		t, err := validateConstExpr(constCtx, g.Init)
		if err != nil {
			return newValidationError(ConstExprNotConst, fmt.Sprintf("global %d initializer", i), err)
		}
		if t != g.Type.ValType {
			return newValidationError(TypeMismatchKind, fmt.Sprintf("global %d initializer", i),
				&TypeMismatch{Want: g.Type.ValType, Got: t})
		}
	}

	for i, f := range m.Funcs {
		if err := validateFunc(rootCtx, m.Types[f.Type], f); err != nil {
			return newValidationError(InvalidInstruction, fmt.Sprintf("func %d", i), err)
		}
	}

	for i, el := range m.Elem {
		if int(el.Table) >= len(tableTypes) {
			return newValidationError(UnknownIndex, fmt.Sprintf("elem %d: table index %d", i, el.Table), nil)
		}
		t, err := validateConstExpr(constCtx, el.Offset)
		if err != nil || t != ValueTypeI32 {
			return newValidationError(ConstExprNotConst, fmt.Sprintf("elem %d offset", i), err)
		}
		for _, fi := range el.Init {
			if int(fi) >= len(funcTypes) {
				return newValidationError(UnknownIndex, fmt.Sprintf("elem %d: func index %d", i, fi), nil)
			}
		}
	}
	for i, d := range m.Data {
		if int(d.Mem) >= len(memTypes) {
			return newValidationError(UnknownIndex, fmt.Sprintf("data %d: mem index %d", i, d.Mem), nil)
		}
		t, err := validateConstExpr(constCtx, d.Offset)
		if err != nil || t != ValueTypeI32 {
			return newValidationError(ConstExprNotConst, fmt.Sprintf("data %d offset", i), err)
		}
	}

	if m.Start != nil {
		if int(*m.Start) >= len(funcTypes) {
			return newValidationError(UnknownIndex, fmt.Sprintf("start: func index %d", *m.Start), nil)
		}
		ft := funcTypes[*m.Start]
		if len(ft.Params) != 0 || len(ft.Results) != 0 {
			return newValidationError(InvalidStartFunction, "start function must have type []->[] ", nil)
		}
	}

	seen := map[string]bool{}
	for _, ex := range m.Exports {
		if seen[ex.Name] {
			return newValidationError(DuplicateExportName, ex.Name, nil)
		}
		seen[ex.Name] = true
		var n int
		switch ex.Desc {
		case ExportFunc:
			n = len(funcTypes)
		case ExportTable:
			n = len(tableTypes)
		case ExportMemory:
			n = len(memTypes)
		case ExportGlobal:
			n = len(globalTypes)
		}
		if int(ex.Index) >= n {
			return newValidationError(UnknownIndex, fmt.Sprintf("export %q", ex.Name), nil)
		}
	}

	return validatePostMVP(m)
}

// validatePostMVP flags module shapes that only make sense under a
// post-MVP proposal this tree does not implement, unless the caller has
// explicitly acknowledged the proposal via the features registry (in
// which case the module is let through for whatever the caller's own
// reason was, rather than rejected here on their behalf).
//
// See spec.md §4.L.
func validatePostMVP(m *Module) error {
	if !features.Have(features.MultiValue) {
		for i, ft := range m.Types {
			if len(ft.Results) > 1 {
				return newValidationError(InvalidFunctionType,
					fmt.Sprintf("type %d has more than one result, which requires the %q feature", i, features.MultiValue), nil)
			}
		}
	}
	return nil
}

func importTypesOf(m *Module) (funcs []*FunctionType, tables []*TableType, mems []*MemoryType, globals []*GlobalType) {
	for _, im := range m.Imports {
		switch im.Desc {
		case ImportFunc:
			funcs = append(funcs, m.Types[im.DescFunc])
		case ImportTable:
			tt := im.DescTable
			tables = append(tables, &tt)
		case ImportMemory:
			mt := im.DescMemory
			mems = append(mems, &mt)
		case ImportGlobal:
			gt := im.DescGlobal
			globals = append(globals, &gt)
		}
	}
	return
}

func ownFuncTypes(m *Module) []*FunctionType {
	out := make([]*FunctionType, len(m.Funcs))
	for i, f := range m.Funcs {
		out[i] = m.Types[f.Type]
	}
	return out
}

func ownTableTypes(m *Module) []*TableType {
	out := make([]*TableType, len(m.Tables))
	for i, t := range m.Tables {
		tt := t.Type
		out[i] = &tt
	}
	return out
}

func ownMemTypes(m *Module) []*MemoryType {
	out := make([]*MemoryType, len(m.Mems))
	for i, mm := range m.Mems {
		mt := mm.Type
		out[i] = &mt
	}
	return out
}

func ownGlobalTypes(m *Module) []*GlobalType {
	out := make([]*GlobalType, len(m.Globals))
	for i, g := range m.Globals {
		gt := g.Type
		out[i] = &gt
	}
	return out
}

// validateConstExpr types a constant expression: exactly one instruction,
// either a t.const or a get_global referencing a global visible in ctx
// (which the caller restricts to imported globals for module-level
// initializers, per spec.md §4.E "const_expr").
func validateConstExpr(ctx Ctx, e Expr) (ValueType, error) {
	if len(e.Body) != 1 {
		return 0, fmt.Errorf("constant expression must consist of exactly one instruction")
	}
	in := e.Body[0]
	switch in.Op {
	case OpI32Const:
		return ValueTypeI32, nil
	case OpI64Const:
		return ValueTypeI64, nil
	case OpF32Const:
		return ValueTypeF32, nil
	case OpF64Const:
		return ValueTypeF64, nil
	case OpGetGlobal:
		g, ok := ctx.Globals.At(in.GlobalIdx)
		if !ok {
			return 0, fmt.Errorf("unknown global index %d", in.GlobalIdx)
		}
		if g.Mutability != Const {
			return 0, fmt.Errorf("get_global in a constant expression must reference an immutable global")
		}
		return g.ValType, nil
	default:
		return 0, fmt.Errorf("opcode %#x is not valid in a constant expression", in.Op)
	}
}

// validateFunc types one function body: its locals (params prepended to
// declared locals) seed the context, and its expression must type as
// []->ft.Results with an implicit outer label of that same result type
// (so a bare `br 0` / `return` inside the body exits the function).
func validateFunc(ctx Ctx, ft *FunctionType, f *Func) error {
	ctx.Locals = NewChain(append(append([]ValueType(nil), ft.Params...), f.Locals...))
	rt := ResultType(append([]ValueType(nil), ft.Results...))
	ctx.Return = &rt
	ctx = ctx.WithLabel(rt)

	stack := NewOperandStack()
	return validateInstrSeq(ctx, stack, f.Body.Body, rt)
}

// validateInstrSeq types a flat instruction sequence against an expected
// result type, using stack as the (frame-scoped) operand stack. The
// caller is responsible for having already pushed the frame this sequence
// belongs to.
func validateInstrSeq(ctx Ctx, stack *OperandStack, body []Instr, expect ResultType) error {
	for _, in := range body {
		if err := validateInstr(ctx, stack, in); err != nil {
			return fmt.Errorf("opcode %#x: %w", in.Op, err)
		}
	}
	return checkBlockResult(stack, expect)
}

func checkBlockResult(stack *OperandStack, expect ResultType) error {
	if err := stack.PopExpectSeq(expect); err != nil {
		return err
	}
	if stack.Height() != 0 && !stack.Unreachable() {
		return fmt.Errorf("unexpected extra value(s) on the stack at block end")
	}
	return nil
}

// validateInstr applies one instruction's typing rule: pop its declared
// input types off stack, then push its declared output types. The
// stack-polymorphic instructions (unreachable, br, br_table, return) are
// handled by immediately calling stack.SetUnreachable after popping
// whatever concrete operands their own rule demands (e.g. br_table's
// index, return's own result values), realizing spec.md §4.E's
// stack-polymorphic typing rule: every pop past that point trivially
// succeeds.
func validateInstr(ctx Ctx, stack *OperandStack, in Instr) error {
	switch in.Op {
	case OpUnreachable:
		stack.SetUnreachable()
		return nil

	case OpNop:
		return nil

	case OpBlock, OpLoop:
		stack.PushFrame()
		lblType := in.ResultType
		lctx := ctx
		if in.Op == OpLoop {
			lctx = ctx.WithLabel(nil) // loop's label targets its start: br re-enters with no operands
		} else {
			lctx = ctx.WithLabel(lblType)
		}
		if err := validateInstrSeq(lctx, stack, in.Then, lblType); err != nil {
			return err
		}
		stack.PopFrame()
		stack.PushSeq(lblType)
		return nil

	case OpIf:
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		lblType := in.ResultType
		lctx := ctx.WithLabel(lblType)

		stack.PushFrame()
		if err := validateInstrSeq(lctx, stack, in.Then, lblType); err != nil {
			return err
		}
		stack.PopFrame()

		stack.PushFrame()
		if err := validateInstrSeq(lctx, stack, in.Else, lblType); err != nil {
			return err
		}
		stack.PopFrame()

		stack.PushSeq(lblType)
		return nil

	case OpBr:
		lbl, ok := ctx.Labels.At(in.LabelIdx)
		if !ok {
			return fmt.Errorf("unknown label %d", in.LabelIdx)
		}
		if err := stack.PopExpectSeq(lbl); err != nil {
			return err
		}
		stack.SetUnreachable()
		return nil

	case OpBrIf:
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		lbl, ok := ctx.Labels.At(in.LabelIdx)
		if !ok {
			return fmt.Errorf("unknown label %d", in.LabelIdx)
		}
		if err := stack.PopExpectSeq(lbl); err != nil {
			return err
		}
		stack.PushSeq(lbl)
		return nil

	case OpBrTable:
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		defLbl, ok := ctx.Labels.At(in.LabelIdx)
		if !ok {
			return fmt.Errorf("unknown default label %d", in.LabelIdx)
		}
		for _, li := range in.LabelIdxs {
			lbl, ok := ctx.Labels.At(li)
			if !ok {
				return fmt.Errorf("unknown label %d", li)
			}
			if !resultTypeEq(lbl, defLbl) {
				return fmt.Errorf("br_table labels must all share the default label's result type")
			}
		}
		if err := stack.PopExpectSeq(defLbl); err != nil {
			return err
		}
		stack.SetUnreachable()
		return nil

	case OpReturn:
		if ctx.Return == nil {
			return fmt.Errorf("return outside of a function body")
		}
		if err := stack.PopExpectSeq(*ctx.Return); err != nil {
			return err
		}
		stack.SetUnreachable()
		return nil

	case OpCall:
		ft, ok := ctx.Funcs.At(in.FuncIdx)
		if !ok {
			return fmt.Errorf("unknown function index %d", in.FuncIdx)
		}
		return applySignature(stack, ft)

	case OpCallIndirect:
		if ctx.Tables.Len() == 0 {
			return fmt.Errorf("call_indirect requires a table")
		}
		ft, ok := ctx.Types.At(in.TypeIdx)
		if !ok {
			return fmt.Errorf("unknown type index %d", in.TypeIdx)
		}
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		return applySignature(stack, ft)

	case OpDrop:
		_, err := stack.Pop()
		return err

	case OpSelect:
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		t1, err := stack.Pop()
		if err != nil {
			return err
		}
		if err := stack.PopExpect(t1); err != nil {
			return err
		}
		stack.Push(t1)
		return nil

	case OpGetLocal:
		t, ok := ctx.Locals.At(in.LocalIdx)
		if !ok {
			return fmt.Errorf("unknown local index %d", in.LocalIdx)
		}
		stack.Push(t)
		return nil
	case OpSetLocal:
		t, ok := ctx.Locals.At(in.LocalIdx)
		if !ok {
			return fmt.Errorf("unknown local index %d", in.LocalIdx)
		}
		return stack.PopExpect(t)
	case OpTeeLocal:
		t, ok := ctx.Locals.At(in.LocalIdx)
		if !ok {
			return fmt.Errorf("unknown local index %d", in.LocalIdx)
		}
		if err := stack.PopExpect(t); err != nil {
			return err
		}
		stack.Push(t)
		return nil
	case OpGetGlobal:
		g, ok := ctx.Globals.At(in.GlobalIdx)
		if !ok {
			return fmt.Errorf("unknown global index %d", in.GlobalIdx)
		}
		stack.Push(g.ValType)
		return nil
	case OpSetGlobal:
		g, ok := ctx.Globals.At(in.GlobalIdx)
		if !ok {
			return fmt.Errorf("unknown global index %d", in.GlobalIdx)
		}
		if g.Mutability != Var {
			return fmt.Errorf("set_global on an immutable global %d", in.GlobalIdx)
		}
		return stack.PopExpect(g.ValType)
	}

	if rule, ok := memoryInstrRules[in.Op]; ok {
		if ctx.Mems.Len() == 0 {
			return fmt.Errorf("memory instruction requires a memory")
		}
		if 1<<in.Memarg.Align > rule.naturalAlign {
			return fmt.Errorf("alignment %d exceeds natural alignment", in.Memarg.Align)
		}
		if rule.isStore {
			if err := stack.PopExpect(rule.valType); err != nil {
				return err
			}
			return stack.PopExpect(ValueTypeI32)
		}
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		stack.Push(rule.valType)
		return nil
	}

	switch in.Op {
	case OpMemorySize:
		if ctx.Mems.Len() == 0 {
			return fmt.Errorf("memory.size requires a memory")
		}
		stack.Push(ValueTypeI32)
		return nil
	case OpMemoryGrow:
		if ctx.Mems.Len() == 0 {
			return fmt.Errorf("memory.grow requires a memory")
		}
		if err := stack.PopExpect(ValueTypeI32); err != nil {
			return err
		}
		stack.Push(ValueTypeI32)
		return nil
	}

	switch in.Op {
	case OpI32Const:
		stack.Push(ValueTypeI32)
		return nil
	case OpI64Const:
		stack.Push(ValueTypeI64)
		return nil
	case OpF32Const:
		stack.Push(ValueTypeF32)
		return nil
	case OpF64Const:
		stack.Push(ValueTypeF64)
		return nil
	}

	if rule, ok := numericInstrRules[in.Op]; ok {
		for _, want := range rule.in {
			if err := stack.PopExpect(want); err != nil {
				return err
			}
		}
		for _, push := range rule.out {
			stack.Push(push)
		}
		return nil
	}

	return fmt.Errorf("unknown or unimplemented opcode")
}

func applySignature(stack *OperandStack, ft *FunctionType) error {
	if err := stack.PopExpectSeq(ft.Params); err != nil {
		return err
	}
	stack.PushSeq(ft.Results)
	return nil
}

func resultTypeEq(a, b ResultType) bool {
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

type memRule struct {
	valType      ValueType
	naturalAlign uint32 // in bytes
	isStore      bool
}

var memoryInstrRules = map[Opcode]memRule{
	OpI32Load:    {ValueTypeI32, 4, false},
	OpI64Load:    {ValueTypeI64, 8, false},
	OpF32Load:    {ValueTypeF32, 4, false},
	OpF64Load:    {ValueTypeF64, 8, false},
	OpI32Load8S:  {ValueTypeI32, 1, false},
	OpI32Load8U:  {ValueTypeI32, 1, false},
	OpI32Load16S: {ValueTypeI32, 2, false},
	OpI32Load16U: {ValueTypeI32, 2, false},
	OpI64Load8S:  {ValueTypeI64, 1, false},
	OpI64Load8U:  {ValueTypeI64, 1, false},
	OpI64Load16S: {ValueTypeI64, 2, false},
	OpI64Load16U: {ValueTypeI64, 2, false},
	OpI64Load32S: {ValueTypeI64, 4, false},
	OpI64Load32U: {ValueTypeI64, 4, false},
	OpI32Store:   {ValueTypeI32, 4, true},
	OpI64Store:   {ValueTypeI64, 8, true},
	OpF32Store:   {ValueTypeF32, 4, true},
	OpF64Store:   {ValueTypeF64, 8, true},
	OpI32Store8:  {ValueTypeI32, 1, true},
	OpI32Store16: {ValueTypeI32, 2, true},
	OpI64Store8:  {ValueTypeI64, 1, true},
	OpI64Store16: {ValueTypeI64, 2, true},
	OpI64Store32: {ValueTypeI64, 4, true},
}

type numRule struct {
	in, out []ValueType
}

func unop(t ValueType) numRule    { return numRule{in: []ValueType{t}, out: []ValueType{t}} }
func binop(t ValueType) numRule   { return numRule{in: []ValueType{t, t}, out: []ValueType{t}} }
func testop(t ValueType) numRule  { return numRule{in: []ValueType{t}, out: []ValueType{ValueTypeI32}} }
func relop(t ValueType) numRule   { return numRule{in: []ValueType{t, t}, out: []ValueType{ValueTypeI32}} }
func cvt(from, to ValueType) numRule { return numRule{in: []ValueType{from}, out: []ValueType{to}} }

var numericInstrRules = map[Opcode]numRule{
	OpI32Eqz: testop(ValueTypeI32),
	OpI32Eq: relop(ValueTypeI32), OpI32Ne: relop(ValueTypeI32),
	OpI32LtS: relop(ValueTypeI32), OpI32LtU: relop(ValueTypeI32),
	OpI32GtS: relop(ValueTypeI32), OpI32GtU: relop(ValueTypeI32),
	OpI32LeS: relop(ValueTypeI32), OpI32LeU: relop(ValueTypeI32),
	OpI32GeS: relop(ValueTypeI32), OpI32GeU: relop(ValueTypeI32),

	OpI64Eqz: numRule{in: []ValueType{ValueTypeI64}, out: []ValueType{ValueTypeI32}},
	OpI64Eq: relop(ValueTypeI64), OpI64Ne: relop(ValueTypeI64),
	OpI64LtS: relop(ValueTypeI64), OpI64LtU: relop(ValueTypeI64),
	OpI64GtS: relop(ValueTypeI64), OpI64GtU: relop(ValueTypeI64),
	OpI64LeS: relop(ValueTypeI64), OpI64LeU: relop(ValueTypeI64),
	OpI64GeS: relop(ValueTypeI64), OpI64GeU: relop(ValueTypeI64),

	OpF32Eq: relop(ValueTypeF32), OpF32Ne: relop(ValueTypeF32),
	OpF32Lt: relop(ValueTypeF32), OpF32Gt: relop(ValueTypeF32),
	OpF32Le: relop(ValueTypeF32), OpF32Ge: relop(ValueTypeF32),
	OpF64Eq: relop(ValueTypeF64), OpF64Ne: relop(ValueTypeF64),
	OpF64Lt: relop(ValueTypeF64), OpF64Gt: relop(ValueTypeF64),
	OpF64Le: relop(ValueTypeF64), OpF64Ge: relop(ValueTypeF64),

	OpI32Clz: unop(ValueTypeI32), OpI32Ctz: unop(ValueTypeI32), OpI32Popcnt: unop(ValueTypeI32),
	OpI32Add: binop(ValueTypeI32), OpI32Sub: binop(ValueTypeI32), OpI32Mul: binop(ValueTypeI32),
	OpI32DivS: binop(ValueTypeI32), OpI32DivU: binop(ValueTypeI32),
	OpI32RemS: binop(ValueTypeI32), OpI32RemU: binop(ValueTypeI32),
	OpI32And: binop(ValueTypeI32), OpI32Or: binop(ValueTypeI32), OpI32Xor: binop(ValueTypeI32),
	OpI32Shl: binop(ValueTypeI32), OpI32ShrS: binop(ValueTypeI32), OpI32ShrU: binop(ValueTypeI32),
	OpI32Rotl: binop(ValueTypeI32), OpI32Rotr: binop(ValueTypeI32),

	OpI64Clz: unop(ValueTypeI64), OpI64Ctz: unop(ValueTypeI64), OpI64Popcnt: unop(ValueTypeI64),
	OpI64Add: binop(ValueTypeI64), OpI64Sub: binop(ValueTypeI64), OpI64Mul: binop(ValueTypeI64),
	OpI64DivS: binop(ValueTypeI64), OpI64DivU: binop(ValueTypeI64),
	OpI64RemS: binop(ValueTypeI64), OpI64RemU: binop(ValueTypeI64),
	OpI64And: binop(ValueTypeI64), OpI64Or: binop(ValueTypeI64), OpI64Xor: binop(ValueTypeI64),
	OpI64Shl: binop(ValueTypeI64), OpI64ShrS: binop(ValueTypeI64), OpI64ShrU: binop(ValueTypeI64),
	OpI64Rotl: binop(ValueTypeI64), OpI64Rotr: binop(ValueTypeI64),

	OpF32Abs: unop(ValueTypeF32), OpF32Neg: unop(ValueTypeF32), OpF32Ceil: unop(ValueTypeF32),
	OpF32Floor: unop(ValueTypeF32), OpF32Trunc: unop(ValueTypeF32), OpF32Nearest: unop(ValueTypeF32),
	OpF32Sqrt: unop(ValueTypeF32),
	OpF32Add: binop(ValueTypeF32), OpF32Sub: binop(ValueTypeF32), OpF32Mul: binop(ValueTypeF32),
	OpF32Div: binop(ValueTypeF32), OpF32Min: binop(ValueTypeF32), OpF32Max: binop(ValueTypeF32),
	OpF32Copysign: binop(ValueTypeF32),

	OpF64Abs: unop(ValueTypeF64), OpF64Neg: unop(ValueTypeF64), OpF64Ceil: unop(ValueTypeF64),
	OpF64Floor: unop(ValueTypeF64), OpF64Trunc: unop(ValueTypeF64), OpF64Nearest: unop(ValueTypeF64),
	OpF64Sqrt: unop(ValueTypeF64),
	OpF64Add: binop(ValueTypeF64), OpF64Sub: binop(ValueTypeF64), OpF64Mul: binop(ValueTypeF64),
	OpF64Div: binop(ValueTypeF64), OpF64Min: binop(ValueTypeF64), OpF64Max: binop(ValueTypeF64),
	OpF64Copysign: binop(ValueTypeF64),

	OpI32WrapI64:    cvt(ValueTypeI64, ValueTypeI32),
	OpI32TruncF32S:  cvt(ValueTypeF32, ValueTypeI32),
	OpI32TruncF32U:  cvt(ValueTypeF32, ValueTypeI32),
	OpI32TruncF64S:  cvt(ValueTypeF64, ValueTypeI32),
	OpI32TruncF64U:  cvt(ValueTypeF64, ValueTypeI32),
	OpI64ExtendI32S: cvt(ValueTypeI32, ValueTypeI64),
	OpI64ExtendI32U: cvt(ValueTypeI32, ValueTypeI64),
	OpI64TruncF32S:  cvt(ValueTypeF32, ValueTypeI64),
	OpI64TruncF32U:  cvt(ValueTypeF32, ValueTypeI64),
	OpI64TruncF64S:  cvt(ValueTypeF64, ValueTypeI64),
	OpI64TruncF64U:  cvt(ValueTypeF64, ValueTypeI64),
	OpF32ConvertI32S: cvt(ValueTypeI32, ValueTypeF32),
	OpF32ConvertI32U: cvt(ValueTypeI32, ValueTypeF32),
	OpF32ConvertI64S: cvt(ValueTypeI64, ValueTypeF32),
	OpF32ConvertI64U: cvt(ValueTypeI64, ValueTypeF32),
	OpF32DemoteF64:   cvt(ValueTypeF64, ValueTypeF32),
	OpF64ConvertI32S: cvt(ValueTypeI32, ValueTypeF64),
	OpF64ConvertI32U: cvt(ValueTypeI32, ValueTypeF64),
	OpF64ConvertI64S: cvt(ValueTypeI64, ValueTypeF64),
	OpF64ConvertI64U: cvt(ValueTypeI64, ValueTypeF64),
	OpF64PromoteF32:  cvt(ValueTypeF32, ValueTypeF64),
	OpI32ReinterpretF32: cvt(ValueTypeF32, ValueTypeI32),
	OpI64ReinterpretF64: cvt(ValueTypeF64, ValueTypeI64),
	OpF32ReinterpretI32: cvt(ValueTypeI32, ValueTypeF32),
	OpF64ReinterpretI64: cvt(ValueTypeI64, ValueTypeF64),
}
