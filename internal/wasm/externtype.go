package wasm

// ExternalTyping computes the ExternType of a store entity addressed by an
// ExternVal, i.e. external_typing(store, externval) in spec.md §4.C.
func ExternalTyping(s *Store, e ExternVal) ExternType {
	switch e.Type {
	case extTypeFunc:
		return ExternType{Kind: extTypeFunc, Func: &s.Func(e.Func).Type}
	case extTypeTable:
		t := s.Table(e.Table).Type
		return ExternType{Kind: extTypeTable, Table: &t}
	case extTypeMem:
		m := s.Mem(e.Mem).Type
		return ExternType{Kind: extTypeMem, Mem: &m}
	case extTypeGlobal:
		g := s.Global(e.Global).Type
		return ExternType{Kind: extTypeGlobal, Global: &g}
	default:
		panic("wasm: unknown extern value kind")
	}
}

// These aliases keep externtype.go readable without importing the api
// package's names directly into every switch above.
const (
	extTypeFunc   = 0x00
	extTypeTable  = 0x01
	extTypeMem    = 0x02
	extTypeGlobal = 0x03
)

// LimitsMatch reports whether an imported entity's actual limits satisfy
// the limits declared by the importing module: the actual minimum must be
// at least the required minimum, and if the import declares a maximum, the
// actual entity must also declare one no greater than it.
//
// See spec.md §4.C "limits_match".
func LimitsMatch(actual, required Limits) bool {
	if actual.Min < required.Min {
		return false
	}
	if required.Max == nil {
		return true
	}
	if actual.Max == nil {
		return false
	}
	return *actual.Max <= *required.Max
}

// ExternTypeMatches reports whether `actual` may be used to satisfy an
// import declared as `required`: func types must match exactly by
// signature, table/memory element types must match with limits covariant
// per LimitsMatch, and globals must match exactly (mutability included,
// since a var global aliased through a const import would break the
// exporting module's invariants).
//
// See spec.md §4.C "extern_type".
func ExternTypeMatches(actual, required ExternType) bool {
	if actual.Kind != required.Kind {
		return false
	}
	switch actual.Kind {
	case extTypeFunc:
		return actual.Func.EqualsSignature(required.Func.Params, required.Func.Results)
	case extTypeTable:
		return actual.Table.ElemType == required.Table.ElemType &&
			LimitsMatch(actual.Table.Limits, required.Table.Limits)
	case extTypeMem:
		return LimitsMatch(actual.Mem.Limits, required.Mem.Limits)
	case extTypeGlobal:
		return actual.Global.ValType == required.Global.ValType &&
			actual.Global.Mutability == required.Global.Mutability
	default:
		return false
	}
}
