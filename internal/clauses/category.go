package clauses

// Category identifies the builder that produced a clause. The set is
// closed: the filter and the synthesizer switch over it exhaustively, and
// TestCategoriesExhaustive fails when a new value is not handled.
type Category int

const (
	CategoryEnv Category = iota
	CategoryImpl
	CategoryTraitWF
	CategoryAdtWF
	CategoryProjection
	CategoryAssocNormalize
	CategoryAutoTraitDefault
	CategoryBuiltinSized
	CategoryBuiltinCopyClone
	CategoryBuiltinFn
	CategoryBuiltinUnsize
	CategoryBuiltinTuple
	CategoryBuiltinAuto
	CategoryDyn

	numCategories
)

// AllCategories lists every builder category in dispatch order.
var AllCategories = func() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}()

func (c Category) String() string {
	switch c {
	case CategoryEnv:
		return "env"
	case CategoryImpl:
		return "impl"
	case CategoryTraitWF:
		return "trait_wf"
	case CategoryAdtWF:
		return "adt_wf"
	case CategoryProjection:
		return "projection"
	case CategoryAssocNormalize:
		return "assoc_normalize"
	case CategoryAutoTraitDefault:
		return "auto_trait_default"
	case CategoryBuiltinSized:
		return "builtin_sized"
	case CategoryBuiltinCopyClone:
		return "builtin_copy_clone"
	case CategoryBuiltinFn:
		return "builtin_fn"
	case CategoryBuiltinUnsize:
		return "builtin_unsize"
	case CategoryBuiltinTuple:
		return "builtin_tuple"
	case CategoryBuiltinAuto:
		return "builtin_auto"
	case CategoryDyn:
		return "dyn"
	}
	return "unknown"
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}
