// Package interp implements a minimal, correctness-first tree-walking
// interpreter satisfying the wasm.Engine/wasm.ModuleEngine seam. It trades
// every optimization a production engine would apply (no compilation, no
// threaded dispatch, no bytecode flattening) for directly walking the
// Instr AST instantiate.go and validation.go already operate on, since
// this tree's only use for an engine is to make invoke and a module's own
// start function observable and testable.
package interp

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/gowasm/corewasm/internal/moremath"
	"github.com/gowasm/corewasm/internal/wasm"
)

// Engine is the concrete wasm.Engine this tree wires into every Store it
// creates (see the root corewasm package's NewRuntime).
type Engine struct{}

// NewEngine returns a fresh interpreter engine. Every module instantiated
// against a Store sharing one Engine reuses the same (stateless) dispatch
// logic; all mutable state lives in the Store and in each call's locals.
func NewEngine() *Engine { return &Engine{} }

func (e *Engine) NewModuleEngine(mod *wasm.Module, inst *wasm.ModuleInst) (wasm.ModuleEngine, error) {
	return &moduleEngine{mod: mod, inst: inst}, nil
}

type moduleEngine struct {
	mod  *wasm.Module
	inst *wasm.ModuleInst
}

// Call runs the internal function at funcIdx (an index into the owning
// module instance's concatenated import+own function space) to
// completion and returns its results.
func (me *moduleEngine) Call(ctx context.Context, s *wasm.Store, funcIdx wasm.Index, params []wasm.Val) ([]wasm.Val, error) {
	addr := me.inst.Funcs[funcIdx]
	fi := s.Func(addr)
	f := fi.Code

	locals := make([]wasm.Val, 0, len(params)+len(f.Locals))
	locals = append(locals, params...)
	for _, lt := range f.Locals {
		locals = append(locals, zero(lt))
	}

	fr := &frame{s: s, mi: me.inst, locals: locals}
	stack := make([]wasm.Val, 0, 8)
	sig, err := fr.evalBody(ctx, f.Body.Body, &stack)
	if err != nil {
		return nil, err
	}

	results := stack
	if sig.kind == sigReturn {
		results = sig.vals
	}
	return append([]wasm.Val(nil), results...), nil
}

func zero(t wasm.ValueType) wasm.Val {
	switch t {
	case wasm.ValueTypeI32:
		return wasm.I32Val(0)
	case wasm.ValueTypeI64:
		return wasm.I64Val(0)
	case wasm.ValueTypeF32:
		return wasm.F32Val(0)
	default:
		return wasm.F64Val(0)
	}
}

// Trap reports a runtime-detected violation: a trapping instruction
// (unreachable), a failed dynamic check (call_indirect signature
// mismatch, out-of-bounds memory/table access), or an arithmetic
// condition the wasm spec defines as trapping (integer division by zero
// or overflow).
type Trap struct{ Msg string }

func (t *Trap) Error() string { return "wasm: trap: " + t.Msg }

func trap(format string, args ...interface{}) error {
	return &Trap{Msg: fmt.Sprintf(format, args...)}
}

// sigKind distinguishes why evalBody returned: normal fallthrough,
// branching to an enclosing label, or a return out of the whole function.
type sigKind byte

const (
	sigNone sigKind = iota
	sigBranch
	sigReturn
)

type signal struct {
	kind  sigKind
	depth int // valid only when kind == sigBranch: how many enclosing labels remain to unwind
	vals  []wasm.Val
}

type frame struct {
	s      *wasm.Store
	mi     *wasm.ModuleInst
	locals []wasm.Val
}

// evalBody executes a flat instruction sequence against stack (the
// operand stack of the innermost enclosing block), returning how it
// finished: having fallen off the end (sigNone), having branched out
// (sigBranch, with depth counted from this sequence's own label), or
// having returned from the function (sigReturn).
func (fr *frame) evalBody(ctx context.Context, body []wasm.Instr, stack *[]wasm.Val) (signal, error) {
	for _, in := range body {
		sig, err := fr.eval(ctx, in, stack)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

func push(stack *[]wasm.Val, v wasm.Val) { *stack = append(*stack, v) }

func pop(stack *[]wasm.Val) wasm.Val {
	s := *stack
	v := s[len(s)-1]
	*stack = s[:len(s)-1]
	return v
}

func popN(stack *[]wasm.Val, n int) []wasm.Val {
	s := *stack
	vs := append([]wasm.Val(nil), s[len(s)-n:]...)
	*stack = s[:len(s)-n]
	return vs
}

// runBlockBody executes a nested block/loop/if body on its own, initially
// empty operand stack (MVP blocks take no inputs), then translates the
// branch/return/fallthrough outcome for the caller. With isLoop set, a
// branch signal targeting depth 0 re-runs the body, implementing a loop's
// label semantics (branching to a loop re-enters it rather than exiting it).
func (fr *frame) runBlockBody(ctx context.Context, body []wasm.Instr, isLoop bool) (signal, []wasm.Val, error) {
	for {
		inner := make([]wasm.Val, 0, 4)
		sig, err := fr.evalBody(ctx, body, &inner)
		if err != nil {
			return signal{}, nil, err
		}
		switch sig.kind {
		case sigNone:
			return signal{kind: sigNone}, inner, nil
		case sigReturn:
			return sig, nil, nil
		case sigBranch:
			if sig.depth == 0 {
				if isLoop {
					continue // br 0 inside a loop restarts it
				}
				return signal{kind: sigNone}, sig.vals, nil
			}
			return signal{kind: sigBranch, depth: sig.depth - 1, vals: sig.vals}, nil, nil
		}
	}
}

func (fr *frame) eval(ctx context.Context, in wasm.Instr, stack *[]wasm.Val) (signal, error) {
	switch in.Op {
	case wasm.OpUnreachable:
		return signal{}, trap("unreachable executed")
	case wasm.OpNop:
		return signal{}, nil

	case wasm.OpBlock:
		sig, vals, err := fr.runBlockBody(ctx, in.Then, false)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		*stack = append(*stack, vals...)
		return signal{}, nil

	case wasm.OpLoop:
		sig, vals, err := fr.runBlockBody(ctx, in.Then, true)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		*stack = append(*stack, vals...)
		return signal{}, nil

	case wasm.OpIf:
		cond := pop(stack)
		branch := in.Else
		if cond.I32() != 0 {
			branch = in.Then
		}
		sig, vals, err := fr.runBlockBody(ctx, branch, false)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
		*stack = append(*stack, vals...)
		return signal{}, nil

	case wasm.OpBr:
		return signal{kind: sigBranch, depth: int(in.LabelIdx)}, nil

	case wasm.OpBrIf:
		cond := pop(stack)
		if cond.I32() == 0 {
			return signal{}, nil
		}
		return signal{kind: sigBranch, depth: int(in.LabelIdx)}, nil

	case wasm.OpBrTable:
		idxVal := pop(stack)
		idx := uint32(idxVal.I32())
		target := in.LabelIdx
		if int(idx) < len(in.LabelIdxs) {
			target = in.LabelIdxs[idx]
		}
		return signal{kind: sigBranch, depth: int(target)}, nil

	case wasm.OpReturn:
		return signal{kind: sigReturn, vals: append([]wasm.Val(nil), (*stack)...)}, nil

	case wasm.OpCall:
		addr := fr.mi.Funcs[in.FuncIdx]
		return fr.call(ctx, addr, stack)

	case wasm.OpCallIndirect:
		tabIdx := pop(stack)
		tableAddr := fr.mi.Tables[0]
		table := fr.s.Table(tableAddr)
		i := int(uint32(tabIdx.I32()))
		if i < 0 || i >= len(table.Elem) || table.Elem[i] == nil {
			return signal{}, trap("call_indirect: undefined element %d", i)
		}
		addr := *table.Elem[i]
		fi := fr.s.Func(addr)
		wantType := fr.mi.Types[in.TypeIdx]
		if !fi.Type.EqualsSignature(wantType.Params, wantType.Results) {
			return signal{}, trap("call_indirect: signature mismatch")
		}
		return fr.call(ctx, addr, stack)

	case wasm.OpDrop:
		pop(stack)
		return signal{}, nil

	case wasm.OpSelect:
		cond := pop(stack)
		v2 := pop(stack)
		v1 := pop(stack)
		if cond.I32() != 0 {
			push(stack, v1)
		} else {
			push(stack, v2)
		}
		return signal{}, nil

	case wasm.OpGetLocal:
		push(stack, fr.locals[in.LocalIdx])
		return signal{}, nil
	case wasm.OpSetLocal:
		fr.locals[in.LocalIdx] = pop(stack)
		return signal{}, nil
	case wasm.OpTeeLocal:
		v := pop(stack)
		fr.locals[in.LocalIdx] = v
		push(stack, v)
		return signal{}, nil
	case wasm.OpGetGlobal:
		addr := fr.mi.Globals[in.GlobalIdx]
		push(stack, fr.s.Global(addr).Val)
		return signal{}, nil
	case wasm.OpSetGlobal:
		addr := fr.mi.Globals[in.GlobalIdx]
		fr.s.Global(addr).Val = pop(stack)
		return signal{}, nil

	case wasm.OpI32Const:
		push(stack, wasm.I32Val(in.I32))
		return signal{}, nil
	case wasm.OpI64Const:
		push(stack, wasm.I64Val(in.I64))
		return signal{}, nil
	case wasm.OpF32Const:
		push(stack, wasm.F32Val(in.F32))
		return signal{}, nil
	case wasm.OpF64Const:
		push(stack, wasm.F64Val(in.F64))
		return signal{}, nil

	case wasm.OpMemorySize:
		mem := fr.s.Mem(fr.mi.Mems[0])
		push(stack, wasm.I32Val(int32(mem.PageCount())))
		return signal{}, nil
	case wasm.OpMemoryGrow:
		mem := fr.s.Mem(fr.mi.Mems[0])
		delta := uint32(pop(stack).I32())
		old := mem.PageCount()
		if err := wasm.GrowMemoryBy(mem, delta); err != nil {
			push(stack, wasm.I32Val(-1))
		} else {
			push(stack, wasm.I32Val(int32(old)))
		}
		return signal{}, nil
	}

	switch in.Op {
	case wasm.OpI32DivS, wasm.OpI32DivU, wasm.OpI32RemS, wasm.OpI32RemU:
		vs := popN(stack, 2)
		v, err := i32DivRem(in.Op, vs[0], vs[1])
		if err != nil {
			return signal{}, err
		}
		push(stack, v)
		return signal{}, nil
	case wasm.OpI64DivS, wasm.OpI64DivU, wasm.OpI64RemS, wasm.OpI64RemU:
		vs := popN(stack, 2)
		v, err := i64DivRem(in.Op, vs[0], vs[1])
		if err != nil {
			return signal{}, err
		}
		push(stack, v)
		return signal{}, nil
	}

	if rule, ok := memRules[in.Op]; ok {
		return signal{}, fr.evalMem(rule, in, stack)
	}
	if rule, ok := numRules[in.Op]; ok {
		return signal{}, fr.evalNum(rule, stack)
	}

	return signal{}, fmt.Errorf("interp: unimplemented opcode %#x", in.Op)
}

func (fr *frame) call(ctx context.Context, addr wasm.FuncAddr, stack *[]wasm.Val) (signal, error) {
	fi := fr.s.Func(addr)
	args := popN(stack, len(fi.Type.Params))

	var results []wasm.Val
	var err error
	if fi.IsHost() {
		// fr.mi, not fi's (host functions have none), is the caller whose
		// memory a WASI-style host function reads and writes.
		results, err = wasm.CallHostInModule(ctx, fr.s, fr.mi, fi, args)
	} else {
		results, err = wasm.Invoke(ctx, fr.s, addr, args)
	}
	if err != nil {
		return signal{}, err
	}
	*stack = append(*stack, results...)
	return signal{}, nil
}

type memRule struct {
	bytes   int
	isStore bool
	signed  bool
	is64    bool
}

var memRules = map[wasm.Opcode]memRule{
	wasm.OpI32Load: {4, false, false, false}, wasm.OpI64Load: {8, false, false, true},
	wasm.OpF32Load: {4, false, false, false}, wasm.OpF64Load: {8, false, false, true},
	wasm.OpI32Load8S: {1, false, true, false}, wasm.OpI32Load8U: {1, false, false, false},
	wasm.OpI32Load16S: {2, false, true, false}, wasm.OpI32Load16U: {2, false, false, false},
	wasm.OpI64Load8S: {1, false, true, true}, wasm.OpI64Load8U: {1, false, false, true},
	wasm.OpI64Load16S: {2, false, true, true}, wasm.OpI64Load16U: {2, false, false, true},
	wasm.OpI64Load32S: {4, false, true, true}, wasm.OpI64Load32U: {4, false, false, true},
	wasm.OpI32Store: {4, true, false, false}, wasm.OpI64Store: {8, true, false, true},
	wasm.OpF32Store: {4, true, false, false}, wasm.OpF64Store: {8, true, false, true},
	wasm.OpI32Store8: {1, true, false, false}, wasm.OpI32Store16: {2, true, false, false},
	wasm.OpI64Store8: {1, true, false, true}, wasm.OpI64Store16: {2, true, false, true},
	wasm.OpI64Store32: {4, true, false, true},
}

func (fr *frame) evalMem(rule memRule, in wasm.Instr, stack *[]wasm.Val) error {
	mem := fr.s.Mem(fr.mi.Mems[0])

	isFloat := in.Op == wasm.OpF32Load || in.Op == wasm.OpF64Load || in.Op == wasm.OpF32Store || in.Op == wasm.OpF64Store

	if rule.isStore {
		v := pop(stack)
		addrVal := pop(stack)
		off := uint64(uint32(addrVal.I32())) + uint64(in.Memarg.Offset)
		if off+uint64(rule.bytes) > uint64(len(mem.Data)) {
			return trap("out of bounds memory access")
		}
		buf := mem.Data[off : off+uint64(rule.bytes)]
		var raw uint64
		if isFloat {
			raw = v.Raw()
		} else if rule.is64 {
			raw = uint64(v.I64())
		} else {
			raw = uint64(uint32(v.I32()))
		}
		for i := 0; i < rule.bytes; i++ {
			buf[i] = byte(raw >> (8 * i))
		}
		return nil
	}

	addrVal := pop(stack)
	off := uint64(uint32(addrVal.I32())) + uint64(in.Memarg.Offset)
	if off+uint64(rule.bytes) > uint64(len(mem.Data)) {
		return trap("out of bounds memory access")
	}
	buf := mem.Data[off : off+uint64(rule.bytes)]
	var raw uint64
	for i := 0; i < rule.bytes; i++ {
		raw |= uint64(buf[i]) << (8 * i)
	}

	switch in.Op {
	case wasm.OpF32Load:
		push(stack, wasm.F32Val(math.Float32frombits(uint32(raw))))
	case wasm.OpF64Load:
		push(stack, wasm.F64Val(math.Float64frombits(raw)))
	default:
		if rule.signed {
			shift := uint(64 - rule.bytes*8)
			signed := int64(raw<<shift) >> shift
			if rule.is64 {
				push(stack, wasm.I64Val(signed))
			} else {
				push(stack, wasm.I32Val(int32(signed)))
			}
		} else if rule.is64 {
			push(stack, wasm.I64Val(int64(raw)))
		} else {
			push(stack, wasm.I32Val(int32(uint32(raw))))
		}
	}
	return nil
}

// numRule implements one numeric instruction given its popped Vals,
// returning the Val(s) to push. arity is how many operands it pops.
type numRule struct {
	arity int
	fn    func(vs []wasm.Val) wasm.Val
}

func (fr *frame) evalNum(r numRule, stack *[]wasm.Val) error {
	vs := popN(stack, r.arity)
	push(stack, r.fn(vs))
	return nil
}

func i32u(v wasm.Val) uint32 { return uint32(v.I32()) }
func i64u(v wasm.Val) uint64 { return uint64(v.I64()) }

func b2i32(b bool) wasm.Val {
	if b {
		return wasm.I32Val(1)
	}
	return wasm.I32Val(0)
}

var numRules = buildNumRules()

func buildNumRules() map[wasm.Opcode]numRule {
	m := map[wasm.Opcode]numRule{}
	u1 := func(op wasm.Opcode, fn func(wasm.Val) wasm.Val) {
		m[op] = numRule{1, func(vs []wasm.Val) wasm.Val { return fn(vs[0]) }}
	}
	b2 := func(op wasm.Opcode, fn func(a, b wasm.Val) wasm.Val) {
		m[op] = numRule{2, func(vs []wasm.Val) wasm.Val { return fn(vs[0], vs[1]) }}
	}

	// i32 comparisons
	u1(wasm.OpI32Eqz, func(a wasm.Val) wasm.Val { return b2i32(a.I32() == 0) })
	b2(wasm.OpI32Eq, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() == b.I32()) })
	b2(wasm.OpI32Ne, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() != b.I32()) })
	b2(wasm.OpI32LtS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() < b.I32()) })
	b2(wasm.OpI32LtU, func(a, b wasm.Val) wasm.Val { return b2i32(i32u(a) < i32u(b)) })
	b2(wasm.OpI32GtS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() > b.I32()) })
	b2(wasm.OpI32GtU, func(a, b wasm.Val) wasm.Val { return b2i32(i32u(a) > i32u(b)) })
	b2(wasm.OpI32LeS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() <= b.I32()) })
	b2(wasm.OpI32LeU, func(a, b wasm.Val) wasm.Val { return b2i32(i32u(a) <= i32u(b)) })
	b2(wasm.OpI32GeS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I32() >= b.I32()) })
	b2(wasm.OpI32GeU, func(a, b wasm.Val) wasm.Val { return b2i32(i32u(a) >= i32u(b)) })

	// i64 comparisons (push i32 results)
	u1(wasm.OpI64Eqz, func(a wasm.Val) wasm.Val { return b2i32(a.I64() == 0) })
	b2(wasm.OpI64Eq, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() == b.I64()) })
	b2(wasm.OpI64Ne, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() != b.I64()) })
	b2(wasm.OpI64LtS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() < b.I64()) })
	b2(wasm.OpI64LtU, func(a, b wasm.Val) wasm.Val { return b2i32(i64u(a) < i64u(b)) })
	b2(wasm.OpI64GtS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() > b.I64()) })
	b2(wasm.OpI64GtU, func(a, b wasm.Val) wasm.Val { return b2i32(i64u(a) > i64u(b)) })
	b2(wasm.OpI64LeS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() <= b.I64()) })
	b2(wasm.OpI64LeU, func(a, b wasm.Val) wasm.Val { return b2i32(i64u(a) <= i64u(b)) })
	b2(wasm.OpI64GeS, func(a, b wasm.Val) wasm.Val { return b2i32(a.I64() >= b.I64()) })
	b2(wasm.OpI64GeU, func(a, b wasm.Val) wasm.Val { return b2i32(i64u(a) >= i64u(b)) })

	// f32/f64 comparisons
	b2(wasm.OpF32Eq, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() == b.F32()) })
	b2(wasm.OpF32Ne, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() != b.F32()) })
	b2(wasm.OpF32Lt, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() < b.F32()) })
	b2(wasm.OpF32Gt, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() > b.F32()) })
	b2(wasm.OpF32Le, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() <= b.F32()) })
	b2(wasm.OpF32Ge, func(a, b wasm.Val) wasm.Val { return b2i32(a.F32() >= b.F32()) })
	b2(wasm.OpF64Eq, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() == b.F64()) })
	b2(wasm.OpF64Ne, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() != b.F64()) })
	b2(wasm.OpF64Lt, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() < b.F64()) })
	b2(wasm.OpF64Gt, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() > b.F64()) })
	b2(wasm.OpF64Le, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() <= b.F64()) })
	b2(wasm.OpF64Ge, func(a, b wasm.Val) wasm.Val { return b2i32(a.F64() >= b.F64()) })

	// i32 arithmetic
	u1(wasm.OpI32Clz, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(bits.LeadingZeros32(i32u(a)))) })
	u1(wasm.OpI32Ctz, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(bits.TrailingZeros32(i32u(a)))) })
	u1(wasm.OpI32Popcnt, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(bits.OnesCount32(i32u(a)))) })
	b2(wasm.OpI32Add, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() + b.I32()) })
	b2(wasm.OpI32Sub, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() - b.I32()) })
	b2(wasm.OpI32Mul, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() * b.I32()) })
	b2(wasm.OpI32And, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() & b.I32()) })
	b2(wasm.OpI32Or, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() | b.I32()) })
	b2(wasm.OpI32Xor, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() ^ b.I32()) })
	b2(wasm.OpI32Shl, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() << (i32u(b) % 32)) })
	b2(wasm.OpI32ShrS, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(a.I32() >> (i32u(b) % 32)) })
	b2(wasm.OpI32ShrU, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(int32(i32u(a) >> (i32u(b) % 32))) })
	b2(wasm.OpI32Rotl, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(int32(bits.RotateLeft32(i32u(a), int(i32u(b))))) })
	b2(wasm.OpI32Rotr, func(a, b wasm.Val) wasm.Val { return wasm.I32Val(int32(bits.RotateLeft32(i32u(a), -int(i32u(b))))) })

	// i64 arithmetic
	u1(wasm.OpI64Clz, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(bits.LeadingZeros64(i64u(a)))) })
	u1(wasm.OpI64Ctz, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(bits.TrailingZeros64(i64u(a)))) })
	u1(wasm.OpI64Popcnt, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(bits.OnesCount64(i64u(a)))) })
	b2(wasm.OpI64Add, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() + b.I64()) })
	b2(wasm.OpI64Sub, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() - b.I64()) })
	b2(wasm.OpI64Mul, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() * b.I64()) })
	b2(wasm.OpI64And, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() & b.I64()) })
	b2(wasm.OpI64Or, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() | b.I64()) })
	b2(wasm.OpI64Xor, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() ^ b.I64()) })
	b2(wasm.OpI64Shl, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() << (i64u(b) % 64)) })
	b2(wasm.OpI64ShrS, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(a.I64() >> (i64u(b) % 64)) })
	b2(wasm.OpI64ShrU, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(int64(i64u(a) >> (i64u(b) % 64))) })
	b2(wasm.OpI64Rotl, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(int64(bits.RotateLeft64(i64u(a), int(i64u(b))))) })
	b2(wasm.OpI64Rotr, func(a, b wasm.Val) wasm.Val { return wasm.I64Val(int64(bits.RotateLeft64(i64u(a), -int(i64u(b))))) })

	// f32/f64 arithmetic, using moremath for the MVP's NaN/signed-zero-aware min/max
	u1(wasm.OpF32Abs, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Abs(float64(a.F32())))) })
	u1(wasm.OpF32Neg, func(a wasm.Val) wasm.Val { return wasm.F32Val(-a.F32()) })
	u1(wasm.OpF32Ceil, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Ceil(float64(a.F32())))) })
	u1(wasm.OpF32Floor, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Floor(float64(a.F32())))) })
	u1(wasm.OpF32Trunc, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Trunc(float64(a.F32())))) })
	u1(wasm.OpF32Nearest, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.RoundToEven(float64(a.F32())))) })
	u1(wasm.OpF32Sqrt, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Sqrt(float64(a.F32())))) })
	b2(wasm.OpF32Add, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(a.F32() + b.F32()) })
	b2(wasm.OpF32Sub, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(a.F32() - b.F32()) })
	b2(wasm.OpF32Mul, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(a.F32() * b.F32()) })
	b2(wasm.OpF32Div, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(a.F32() / b.F32()) })
	b2(wasm.OpF32Min, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(float32(moremath.WasmCompatMin(float64(a.F32()), float64(b.F32())))) })
	b2(wasm.OpF32Max, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(float32(moremath.WasmCompatMax(float64(a.F32()), float64(b.F32())))) })
	b2(wasm.OpF32Copysign, func(a, b wasm.Val) wasm.Val { return wasm.F32Val(float32(math.Copysign(float64(a.F32()), float64(b.F32())))) })

	u1(wasm.OpF64Abs, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Abs(a.F64())) })
	u1(wasm.OpF64Neg, func(a wasm.Val) wasm.Val { return wasm.F64Val(-a.F64()) })
	u1(wasm.OpF64Ceil, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Ceil(a.F64())) })
	u1(wasm.OpF64Floor, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Floor(a.F64())) })
	u1(wasm.OpF64Trunc, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Trunc(a.F64())) })
	u1(wasm.OpF64Nearest, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.RoundToEven(a.F64())) })
	u1(wasm.OpF64Sqrt, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Sqrt(a.F64())) })
	b2(wasm.OpF64Add, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(a.F64() + b.F64()) })
	b2(wasm.OpF64Sub, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(a.F64() - b.F64()) })
	b2(wasm.OpF64Mul, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(a.F64() * b.F64()) })
	b2(wasm.OpF64Div, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(a.F64() / b.F64()) })
	b2(wasm.OpF64Min, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(moremath.WasmCompatMin(a.F64(), b.F64())) })
	b2(wasm.OpF64Max, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(moremath.WasmCompatMax(a.F64(), b.F64())) })
	b2(wasm.OpF64Copysign, func(a, b wasm.Val) wasm.Val { return wasm.F64Val(math.Copysign(a.F64(), b.F64())) })

	// conversions
	u1(wasm.OpI32WrapI64, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(a.I64())) })
	u1(wasm.OpI64ExtendI32S, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(a.I32())) })
	u1(wasm.OpI64ExtendI32U, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(i32u(a))) })
	u1(wasm.OpI32TruncF32S, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(a.F32())) })
	u1(wasm.OpI32TruncF32U, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(uint32(a.F32()))) })
	u1(wasm.OpI32TruncF64S, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(a.F64())) })
	u1(wasm.OpI32TruncF64U, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(uint32(a.F64()))) })
	u1(wasm.OpI64TruncF32S, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(a.F32())) })
	u1(wasm.OpI64TruncF32U, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(uint64(a.F32()))) })
	u1(wasm.OpI64TruncF64S, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(a.F64())) })
	u1(wasm.OpI64TruncF64U, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(uint64(a.F64()))) })
	u1(wasm.OpF32ConvertI32S, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(a.I32())) })
	u1(wasm.OpF32ConvertI32U, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(i32u(a))) })
	u1(wasm.OpF32ConvertI64S, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(a.I64())) })
	u1(wasm.OpF32ConvertI64U, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(i64u(a))) })
	u1(wasm.OpF32DemoteF64, func(a wasm.Val) wasm.Val { return wasm.F32Val(float32(a.F64())) })
	u1(wasm.OpF64ConvertI32S, func(a wasm.Val) wasm.Val { return wasm.F64Val(float64(a.I32())) })
	u1(wasm.OpF64ConvertI32U, func(a wasm.Val) wasm.Val { return wasm.F64Val(float64(i32u(a))) })
	u1(wasm.OpF64ConvertI64S, func(a wasm.Val) wasm.Val { return wasm.F64Val(float64(a.I64())) })
	u1(wasm.OpF64ConvertI64U, func(a wasm.Val) wasm.Val { return wasm.F64Val(float64(i64u(a))) })
	u1(wasm.OpF64PromoteF32, func(a wasm.Val) wasm.Val { return wasm.F64Val(float64(a.F32())) })
	u1(wasm.OpI32ReinterpretF32, func(a wasm.Val) wasm.Val { return wasm.I32Val(int32(math.Float32bits(a.F32()))) })
	u1(wasm.OpI64ReinterpretF64, func(a wasm.Val) wasm.Val { return wasm.I64Val(int64(math.Float64bits(a.F64()))) })
	u1(wasm.OpF32ReinterpretI32, func(a wasm.Val) wasm.Val { return wasm.F32Val(math.Float32frombits(i32u(a))) })
	u1(wasm.OpF64ReinterpretI64, func(a wasm.Val) wasm.Val { return wasm.F64Val(math.Float64frombits(i64u(a))) })

	// division/remainder are handled directly in eval, since they can trap.
	return m
}

func i32DivRem(op wasm.Opcode, a, b wasm.Val) (wasm.Val, error) {
	switch op {
	case wasm.OpI32DivS:
		bv := b.I32()
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		if a.I32() == math.MinInt32 && bv == -1 {
			return wasm.Val{}, trap("integer overflow")
		}
		return wasm.I32Val(a.I32() / bv), nil
	case wasm.OpI32DivU:
		bv := i32u(b)
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I32Val(int32(i32u(a) / bv)), nil
	case wasm.OpI32RemS:
		bv := b.I32()
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I32Val(a.I32() % bv), nil
	default: // OpI32RemU
		bv := i32u(b)
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I32Val(int32(i32u(a) % bv)), nil
	}
}

func i64DivRem(op wasm.Opcode, a, b wasm.Val) (wasm.Val, error) {
	switch op {
	case wasm.OpI64DivS:
		bv := b.I64()
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		if a.I64() == math.MinInt64 && bv == -1 {
			return wasm.Val{}, trap("integer overflow")
		}
		return wasm.I64Val(a.I64() / bv), nil
	case wasm.OpI64DivU:
		bv := i64u(b)
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I64Val(int64(i64u(a) / bv)), nil
	case wasm.OpI64RemS:
		bv := b.I64()
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I64Val(a.I64() % bv), nil
	default: // OpI64RemU
		bv := i64u(b)
		if bv == 0 {
			return wasm.Val{}, trap("integer divide by zero")
		}
		return wasm.I64Val(int64(i64u(a) % bv)), nil
	}
}
