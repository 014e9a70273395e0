// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package types

import (
	"sort"

	"github.com/shackle-lang/go-shackle/pkg/intern"
)

// ----------------------------------------------------------------------------
// Total constructors (primitives)
// ----------------------------------------------------------------------------

// Boolean constructs the boolean type with the given variability and
// optionality.
func (t *Table) Boolean(vr VarType, opt OptType) Ty {
	return t.intern(tyData{kind: kindBoolean, vr: vr, opt: opt})
}

// Integer constructs the (unbounded) integer type.
func (t *Table) Integer(vr VarType, opt OptType) Ty {
	return t.intern(tyData{kind: kindInteger, vr: vr, opt: opt})
}

// Float constructs the float type.
func (t *Table) Float(vr VarType, opt OptType) Ty {
	return t.intern(tyData{kind: kindFloat, vr: vr, opt: opt})
}

// Enum constructs the type of a specific user-defined enumeration.
func (t *Table) Enum(vr VarType, opt OptType, e intern.NewTypeID) Ty {
	return t.intern(tyData{kind: kindEnum, vr: vr, opt: opt, enum: e})
}

// StringTy constructs the string type.
func (t *Table) StringTy(opt OptType) Ty {
	return t.intern(tyData{kind: kindString, opt: opt})
}

// AnnotationTy constructs the annotation type.
func (t *Table) AnnotationTy(opt OptType) Ty {
	return t.intern(tyData{kind: kindAnnotation, opt: opt})
}

// Bottom constructs the bottom type: the subtype of every concrete type
// (with compatible opt), and the type of <>, {} and [].
func (t *Table) Bottom(opt OptType) Ty {
	return t.intern(tyData{kind: kindBottom, opt: opt})
}

// Error returns the error sentinel type, which is bidirectionally absorbing
// in the subtype lattice and short-circuits further diagnostics.
func (t *Table) Error() Ty {
	return t.intern(tyData{kind: kindError})
}

// TypeInstVar constructs the (unconstrained, i.e. no var/opt override) type
// of a type-inst variable.  Overrides are layered on afterwards via WithInst
// and WithOpt.
func (t *Table) TypeInstVar(desc TyVarDesc) Ty {
	return t.intern(tyData{kind: kindTyVar, tvDesc: desc})
}

// ----------------------------------------------------------------------------
// Partial constructors (well-formedness enforced; absent on failure)
// ----------------------------------------------------------------------------

// Array constructs an array type with the given dim (index domain) and
// element type, provided dim is known-par, known-occurs and known-indexable.
// Arrays themselves are never var; their opt comes from opt.
func (t *Table) Array(dim, elem Ty, opt OptType) (Ty, bool) {
	if !t.KnownPar(dim) || !t.KnownOccurs(dim) || !t.KnownIndexable(dim) {
		return 0, false
	}

	return t.intern(tyData{kind: kindArray, opt: opt, dim: dim, elem: elem}), true
}

// ParSet constructs a par set of the given element type, provided the
// element is known-par and known-occurs.  A var set instead arises from
// WithInst(parSet, Var); see the Set invariant in spec section 3.3.
func (t *Table) ParSet(elem Ty, opt OptType) (Ty, bool) {
	return t.set(Par, opt, elem)
}

func (t *Table) set(vr VarType, opt OptType, elem Ty) (Ty, bool) {
	if !t.KnownPar(elem) || !t.KnownOccurs(elem) {
		return 0, false
	}

	if vr == Var && !t.KnownEnumerable(elem) {
		return 0, false
	}

	return t.intern(tyData{kind: kindSet, vr: vr, opt: opt, elem: elem}), true
}

// Tuple constructs an ordered tuple type over fields.
func (t *Table) Tuple(fields []Ty, opt OptType) Ty {
	cp := append([]Ty(nil), fields...)

	return t.intern(tyData{kind: kindTuple, opt: opt, elems: cp})
}

// RecordField is one (name, type) entry supplied to Record.
type RecordField struct {
	Name intern.StringID
	Type Ty
}

// Record constructs a record type from an unordered list of fields, which is
// canonicalised into ascending field-name order (Open Question (a), resolved
// in DESIGN.md).  Returns false if two fields share the same name.
func (t *Table) Record(fields []RecordField, opt OptType) (Ty, bool) {
	cp := append([]RecordField(nil), fields...)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })

	for i := 1; i < len(cp); i++ {
		if cp[i].Name == cp[i-1].Name {
			return 0, false
		}
	}

	names := make([]intern.StringID, len(cp))
	elems := make([]Ty, len(cp))

	for i, f := range cp {
		names[i] = f.Name
		elems[i] = f.Type
	}

	return t.intern(tyData{kind: kindRecord, opt: opt, elems: elems, names: names}), true
}

// Function constructs a function type from an ordered parameter list and a
// return type.
func (t *Table) Function(params []Ty, ret Ty, opt OptType) Ty {
	cp := append([]Ty(nil), params...)

	return t.intern(tyData{kind: kindFunction, opt: opt, elems: cp, ret: ret})
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// IsError reports whether ty is the error sentinel.
func (t *Table) IsError(ty Ty) bool {
	return t.get(ty).kind == kindError
}

// IsBottom reports whether ty is the bottom type.
func (t *Table) IsBottom(ty Ty) bool {
	return t.get(ty).kind == kindBottom
}

// Opt returns the optionality of ty.  The error sentinel reports NonOpt by
// convention; callers must not rely on this since Error is bidirectionally
// absorbing regardless.
func (t *Table) Opt(ty Ty) OptType {
	return t.get(ty).opt
}

// ArrayParts returns the dim and element of an array type.  Returns zero
// values if ty is not an array.
func (t *Table) ArrayParts(ty Ty) (dim, elem Ty) {
	d := t.get(ty)

	return d.dim, d.elem
}

// SetElem returns the element type of a set type.
func (t *Table) SetElem(ty Ty) Ty {
	return t.get(ty).elem
}

// TupleFields returns the ordered field types of a tuple type.
func (t *Table) TupleFields(ty Ty) []Ty {
	return t.get(ty).elems
}

// RecordFields returns the canonically-ordered fields of a record type.
func (t *Table) RecordFields(ty Ty) []RecordField {
	d := t.get(ty)
	out := make([]RecordField, len(d.elems))

	for i, e := range d.elems {
		out[i] = RecordField{Name: d.names[i], Type: e}
	}

	return out
}

// FunctionParts returns the parameter types and return type of a function
// type.
func (t *Table) FunctionParts(ty Ty) (params []Ty, ret Ty) {
	d := t.get(ty)

	return d.elems, d.ret
}

// TyVarDescriptor returns the descriptor of a type-inst-variable type.
func (t *Table) TyVarDescriptor(ty Ty) TyVarDesc {
	return t.get(ty).tvDesc
}

// TyVarOverride reports the var/opt overrides recorded on a type-inst
// variable occurrence, e.g. whether it was written "var $T" or "opt $T".
// varSet/optSet are false when no override is present at this occurrence.
func (t *Table) TyVarOverride(ty Ty) (varSet bool, varVal VarType, optSet bool, optVal OptType) {
	d := t.get(ty)

	return d.tvVar.set, d.tvVar.value, d.tvOpt.set, d.tvOpt.value
}

// IsKind reports helpers used pervasively by the checker and lowering.
func (t *Table) IsBoolean(ty Ty) bool   { return t.get(ty).kind == kindBoolean }
func (t *Table) IsInteger(ty Ty) bool   { return t.get(ty).kind == kindInteger }
func (t *Table) IsFloat(ty Ty) bool     { return t.get(ty).kind == kindFloat }
func (t *Table) IsEnum(ty Ty) bool      { return t.get(ty).kind == kindEnum }
func (t *Table) IsString(ty Ty) bool    { return t.get(ty).kind == kindString }
func (t *Table) IsAnnotation(ty Ty) bool { return t.get(ty).kind == kindAnnotation }
func (t *Table) IsArray(ty Ty) bool     { return t.get(ty).kind == kindArray }
func (t *Table) IsSet(ty Ty) bool       { return t.get(ty).kind == kindSet }
func (t *Table) IsTuple(ty Ty) bool     { return t.get(ty).kind == kindTuple }
func (t *Table) IsRecord(ty Ty) bool    { return t.get(ty).kind == kindRecord }
func (t *Table) IsFunction(ty Ty) bool  { return t.get(ty).kind == kindFunction }
func (t *Table) IsTyVar(ty Ty) bool     { return t.get(ty).kind == kindTyVar }

// Var returns the variability of a scalar/set type.  For other kinds it
// returns Par.
func (t *Table) Var(ty Ty) VarType {
	return t.get(ty).vr
}

// EnumRef returns the NewTypeID of an enum type.
func (t *Table) EnumRef(ty Ty) intern.NewTypeID {
	return t.get(ty).enum
}
