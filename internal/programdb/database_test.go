package programdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausegen/internal/ir"
)

func self0(trait ir.TraitID, args ...ir.Arg) ir.Implemented {
	return ir.Implemented{TraitRef: ir.TraitRef{Trait: trait, Args: append([]ir.Arg{ir.BoundVar{Index: 0}}, args...)}}
}

func TestParseWellKnown(t *testing.T) {
	w, ok := ParseWellKnown("copy")
	require.True(t, ok)
	assert.Equal(t, WellKnownCopy, w)
	assert.Equal(t, "copy", w.String())

	w, ok = ParseWellKnown("")
	assert.True(t, ok)
	assert.Equal(t, WellKnownNone, w)
	assert.Equal(t, "none", w.String())

	_, ok = ParseWellKnown("drop")
	assert.False(t, ok)
}

func TestTraitSupertraits(t *testing.T) {
	trait := &TraitDatum{
		ID:      "FnMut",
		Binders: []ir.VarKind{ir.KindType, ir.KindType},
		WhereClauses: []ir.WhereClause{
			self0("FnOnce", ir.BoundVar{Index: 1}),
			// a bound on a parameter, not on Self
			ir.Implemented{TraitRef: ir.TraitRef{Trait: "Tuple", Args: []ir.Arg{ir.BoundVar{Index: 1}}}},
		},
	}
	sups := trait.Supertraits()
	require.Len(t, sups, 1)
	assert.Equal(t, "^0: FnOnce<^1>", sups[0].String())
	assert.Equal(t, "^2: FnMut<^3>", trait.SelfRef(2).String())
}

func TestProgramQueries(t *testing.T) {
	p := NewProgram()
	p.AddTrait(&TraitDatum{ID: "Clone", Binders: []ir.VarKind{ir.KindType}, WellKnown: WellKnownClone})
	p.AddTrait(&TraitDatum{ID: "Send", Binders: []ir.VarKind{ir.KindType}, Flags: TraitFlags{Auto: true}})
	p.AddTrait(&TraitDatum{
		ID:         "Iterator",
		Binders:    []ir.VarKind{ir.KindType},
		AssocTypes: []ir.AssocTypeID{"Iterator::Item"},
	})
	p.AddAdt(&AdtDatum{
		ID:      "Vec",
		Binders: []ir.VarKind{ir.KindType},
		Variants: []Variant{{Name: "Vec", Fields: []Field{
			{Name: "ptr", Ty: ir.RawPtrTy(ir.Mut, ir.BoundVar{Index: 0})},
			{Name: "len", Ty: ir.ScalarTy(ir.Usize)},
		}}},
	})
	first := p.AddImpl(&ImplDatum{TraitRef: ir.TraitRef{Trait: "Clone", Args: []ir.Arg{ir.ScalarTy(ir.U8)}}})
	second := p.AddImpl(&ImplDatum{
		TraitRef:    ir.TraitRef{Trait: "Iterator", Args: []ir.Arg{ir.AdtTy("Vec", ir.ScalarTy(ir.U8))}},
		AssocValues: []AssocValue{{Assoc: "Iterator::Item", Ty: ir.ScalarTy(ir.U8)}},
	})
	p.AddFnDef(&FnDefDatum{ID: "zip"})
	p.AddFnDef(&FnDefDatum{ID: "abs"})
	p.AddClosure(&ClosureDatum{ID: "adder", Kind: ClosureFnMut})

	assert.Equal(t, ir.ImplID(0), first)
	assert.Equal(t, ir.ImplID(1), second)

	assert.Equal(t, []ir.TraitID{"Clone", "Send", "Iterator"}, p.Traits())
	assert.Equal(t, []ir.TraitID{"Send"}, p.AutoTraits())
	assert.Equal(t, []ir.FnDefID{"abs", "zip"}, p.SortedFnDefs())
	assert.Equal(t, Stats{Traits: 3, Impls: 2, Adts: 1, FnDefs: 2, Closures: 1}, p.Stats())

	id, ok := p.WellKnownTrait(WellKnownClone)
	assert.True(t, ok)
	assert.Equal(t, ir.TraitID("Clone"), id)
	_, ok = p.WellKnownTrait(WellKnownSized)
	assert.False(t, ok)

	assoc, ok := p.AssocTypeDatum("Iterator::Item")
	require.True(t, ok)
	assert.Equal(t, "Item", assoc.Name)
	assert.Equal(t, ir.TraitID("Iterator"), assoc.Trait)

	impls := p.ImplsForTrait("Iterator")
	require.Len(t, impls, 1)
	item, ok := impls[0].AssocValue("Iterator::Item")
	require.True(t, ok)
	assert.Equal(t, "u8", item.String())
	_, ok = impls[0].AssocValue("Iterator::Other")
	assert.False(t, ok)

	vec, ok := p.AdtDatum("Vec")
	require.True(t, ok)
	assert.Equal(t, "Vec<^1>", vec.SelfTy(1).String())
	require.Len(t, vec.FieldTypes(), 2)
	assert.Equal(t, "*mut ^0", vec.FieldTypes()[0].String())

	_, ok = p.ClosureDatum("adder")
	assert.True(t, ok)
	_, ok = p.FnDefDatum("missing")
	assert.False(t, ok)
}

func TestProgramTraitsIsACopy(t *testing.T) {
	p := NewProgram()
	p.AddTrait(&TraitDatum{ID: "Eq"})
	traits := p.Traits()
	traits[0] = "Mutated"
	assert.Equal(t, []ir.TraitID{"Eq"}, p.Traits())
}
