package wasm

import "fmt"

// ValidationErrorKind enumerates the taxonomy of static module-typing
// failures. See spec.md §7.
type ValidationErrorKind byte

const (
	InvalidLimits ValidationErrorKind = iota
	InvalidFunctionType
	InvalidTableType
	InvalidMemoryType
	InvalidInstruction
	TypeMismatchKind
	UnknownIndex
	InvalidStartFunction
	DuplicateExportName
	ConstExprNotConst
)

func (k ValidationErrorKind) String() string {
	switch k {
	case InvalidLimits:
		return "invalid limits"
	case InvalidFunctionType:
		return "invalid function type"
	case InvalidTableType:
		return "invalid table type"
	case InvalidMemoryType:
		return "invalid memory type"
	case InvalidInstruction:
		return "invalid instruction"
	case TypeMismatchKind:
		return "type mismatch"
	case UnknownIndex:
		return "unknown index"
	case InvalidStartFunction:
		return "invalid start function"
	case DuplicateExportName:
		return "duplicate export name"
	case ConstExprNotConst:
		return "non-constant expression in constant-expression context"
	default:
		return "validation error"
	}
}

// ValidationError reports why a module failed static validation.
type ValidationError struct {
	Kind ValidationErrorKind
	Msg  string
	Err  error // wrapped cause, if any (e.g. a StackUnderflow/TypeMismatch)
}

func (e *ValidationError) Error() string {
	if e.Msg == "" && e.Err == nil {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(kind ValidationErrorKind, msg string, cause error) *ValidationError {
	return &ValidationError{Kind: kind, Msg: msg, Err: cause}
}

// ImportMismatch is an InstantiationError cause returned when a supplied import's
// type does not satisfy the module's import declaration.
type ImportMismatch struct {
	Module, Name string
}

func (e *ImportMismatch) Error() string {
	return fmt.Sprintf("wasm: import %q.%q does not match the expected extern type", e.Module, e.Name)
}

// ImportArityMismatch is an InstantiationError cause returned when the caller
// supplied a different number of imports than the module declares.
type ImportArityMismatch struct {
	Want, Got int
}

func (e *ImportArityMismatch) Error() string {
	return fmt.Sprintf("wasm: module declares %d imports, got %d", e.Want, e.Got)
}

// InstantiationError reports why instantiate.go could not link and
// initialize a validated module. See spec.md §7.
type InstantiationError struct {
	Msg string
	Err error
}

func (e *InstantiationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wasm: instantiation failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("wasm: instantiation failed: %s", e.Msg)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// ElemOrDataOutOfBounds is returned by instantiate.go's bounds-check pass
// (performed, per spec.md §4.F, before any table/memory is mutated, so a
// failure here leaves every table and memory exactly as alloc_module left
// them).
type ElemOrDataOutOfBounds struct {
	IsData bool
	Index  int
}

func (e *ElemOrDataOutOfBounds) Error() string {
	kind := "element"
	if e.IsData {
		kind = "data"
	}
	return fmt.Sprintf("wasm: %s segment %d is out of bounds", kind, e.Index)
}

// InvokeError reports why Invoke could not call a function. See spec.md §7.
type InvokeError struct {
	Msg string
	Err error
}

func (e *InvokeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wasm: invoke failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("wasm: invoke failed: %s", e.Msg)
}

func (e *InvokeError) Unwrap() error { return e.Err }
