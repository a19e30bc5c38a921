package wasm

import "fmt"

// OperandStack is the operand-stack half of the instruction-sequence
// typing algorithm. It tracks, per enclosing control construct, the stack
// height at entry and whether an unreachable instruction has made the
// remainder of the current construct's stack polymorphic ("anything").
// That single `unreachable` flag per frame is the concrete realization of
// spec.md §4.E's stack-polymorphic typing rule: once set, pops below the
// frame's base height always succeed (yielding an unknown type), exactly
// as if the stack beneath the frame, extended upward, could hold any
// sequence of any types; pushes still accumulate as usual.
//
// See spec.md §4.E and "find_ty_prefix".
type OperandStack struct {
	vals   []ValueType
	frames []ctrlFrame
}

type ctrlFrame struct {
	height      int
	unreachable bool
}

// NewOperandStack returns an operand stack with one (outermost) frame
// already pushed, matching a function body's implicit control frame.
func NewOperandStack() *OperandStack {
	s := &OperandStack{}
	s.PushFrame()
	return s
}

// PushFrame enters a new control construct (block/loop/if), recording the
// current height as its base.
func (s *OperandStack) PushFrame() {
	s.frames = append(s.frames, ctrlFrame{height: len(s.vals)})
}

// PopFrame exits the current control construct, truncating the stack back
// to the frame's base height. Used after popping the construct's declared
// result type(s) off the top of the stack.
func (s *OperandStack) PopFrame() {
	f := s.frames[len(s.frames)-1]
	s.vals = s.vals[:f.height]
	s.frames = s.frames[:len(s.frames)-1]
}

// SetUnreachable discards every value pushed since the frame's base and
// marks it polymorphic, the operational meaning of the unreachable
// instruction: spec.md's stack-polymorphic rule for `unreachable` (and, by
// the same mechanism, for `br`/`br_table`/`return`, which are typed as if
// followed by an implicit unreachable).
func (s *OperandStack) SetUnreachable() {
	f := &s.frames[len(s.frames)-1]
	s.vals = s.vals[:f.height]
	f.unreachable = true
}

func (s *OperandStack) curFrame() *ctrlFrame { return &s.frames[len(s.frames)-1] }

// Push pushes a single concrete value.
func (s *OperandStack) Push(t ValueType) { s.vals = append(s.vals, t) }

// PushSeq pushes a sequence of concrete values, in order.
func (s *OperandStack) PushSeq(ts []ValueType) {
	for _, t := range ts {
		s.Push(t)
	}
}

// StackUnderflow is returned by Pop/PopExpect when asked to pop past the
// enclosing frame's base height while reachable (i.e. a genuine arity
// violation, not an unreachable-polymorphic "don't care").
type StackUnderflow struct {
	Want ValueType
}

func (e *StackUnderflow) Error() string {
	return fmt.Sprintf("wasm: operand stack underflow: expected a %s", ValueTypeName(e.Want))
}

// TypeMismatch is returned when a concrete popped value doesn't match the
// instruction's declared input type.
type TypeMismatch struct {
	Want, Got ValueType
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("wasm: type mismatch: expected %s, got %s", ValueTypeName(e.Want), ValueTypeName(e.Got))
}

// Pop pops and returns one value of unspecified type (AnyVal), used for
// instructions like drop or the polymorphic arm of select.
func (s *OperandStack) Pop() (ValueType, error) {
	f := s.curFrame()
	if len(s.vals) == f.height {
		if f.unreachable {
			return 0, nil // polymorphic: any type satisfies the caller
		}
		return 0, &StackUnderflow{}
	}
	t := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	return t, nil
}

// PopExpect pops one value and checks it against want (AnyConcrete(want)).
func (s *OperandStack) PopExpect(want ValueType) error {
	f := s.curFrame()
	if len(s.vals) == f.height {
		if f.unreachable {
			return nil
		}
		return &StackUnderflow{Want: want}
	}
	got := s.vals[len(s.vals)-1]
	s.vals = s.vals[:len(s.vals)-1]
	if got != want {
		return &TypeMismatch{Want: want, Got: got}
	}
	return nil
}

// PopExpectSeq pops len(want) values and checks each against the
// corresponding entry of want, in reverse (top-of-stack-first) order. This
// is find_ty_prefix specialized to an all-concrete expected type, the
// common case for every non-stack-polymorphic instruction.
func (s *OperandStack) PopExpectSeq(want []ValueType) error {
	for i := len(want) - 1; i >= 0; i-- {
		if err := s.PopExpect(want[i]); err != nil {
			return err
		}
	}
	return nil
}

// Height reports the current frame-relative stack height.
func (s *OperandStack) Height() int {
	f := s.curFrame()
	return len(s.vals) - f.height
}

// Unreachable reports whether the current frame has gone polymorphic.
func (s *OperandStack) Unreachable() bool { return s.curFrame().unreachable }

// Snapshot returns the values visible above the current frame's base, for
// checking a block/loop/if's declared result type against what is
// actually on the stack at its end.
func (s *OperandStack) Snapshot() []ValueType {
	f := s.curFrame()
	return append([]ValueType(nil), s.vals[f.height:]...)
}
