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

// WithInst lifts (or lowers) ty to the given variability at its top level.
// WithInst(ty, Par) always succeeds (arrays, tuples, records, functions,
// strings, annotations and bottom simply have no variability dimension and
// pass through unchanged). WithInst(ty, Var) fails when ty cannot be made
// var: arrays never carry variability, and a TyVar lifts to var only when
// its descriptor is Varifiable.
func (t *Table) WithInst(ty Ty, vr VarType) (Ty, bool) {
	if vr == Par {
		return t.withInstPar(ty), true
	}

	return t.withInstVar(ty)
}

func (t *Table) withInstVar(ty Ty) (Ty, bool) {
	d := t.get(ty)

	switch d.kind {
	case kindBoolean:
		return t.Boolean(Var, d.opt), true
	case kindInteger:
		return t.Integer(Var, d.opt), true
	case kindFloat:
		return t.Float(Var, d.opt), true
	case kindEnum:
		return t.Enum(Var, d.opt, d.enum), true
	case kindSet:
		// A set's own element is always known-par (spec 3.3); lifting the
		// set itself to var additionally requires the element be
		// known-enumerable.
		return t.set(Var, d.opt, d.elem)
	case kindTyVar:
		if !d.tvDesc.Varifiable {
			return 0, false
		}

		nd := d
		nd.tvVar = varOverride{set: true, value: Var}

		return t.intern(nd), true
	}

	return 0, false
}

func (t *Table) withInstPar(ty Ty) Ty {
	d := t.get(ty)

	switch d.kind {
	case kindBoolean:
		return t.Boolean(Par, d.opt)
	case kindInteger:
		return t.Integer(Par, d.opt)
	case kindFloat:
		return t.Float(Par, d.opt)
	case kindEnum:
		return t.Enum(Par, d.opt, d.enum)
	case kindSet:
		// The element already satisfies known-par/known-occurs regardless
		// of the set's own variability (spec 3.3), so relaxing to par
		// never violates the set invariant.
		return t.intern(tyData{kind: kindSet, vr: Par, opt: d.opt, elem: d.elem})
	case kindTyVar:
		nd := d
		nd.tvVar = varOverride{set: true, value: Par}

		return t.intern(nd)
	}

	return ty
}

// MakePar is total: it lowers var to par everywhere inside ty, recursing
// structurally through arrays, sets, tuples and records.
func (t *Table) MakePar(ty Ty) Ty {
	return t.makePar(ty, 0)
}

func (t *Table) makePar(ty Ty, depth int) Ty {
	if depth > maxStructuralDepth {
		return t.Error()
	}

	d := t.get(ty)

	switch d.kind {
	case kindBoolean:
		return t.Boolean(Par, d.opt)
	case kindInteger:
		return t.Integer(Par, d.opt)
	case kindFloat:
		return t.Float(Par, d.opt)
	case kindEnum:
		return t.Enum(Par, d.opt, d.enum)
	case kindSet:
		elem := t.makePar(d.elem, depth+1)

		return t.intern(tyData{kind: kindSet, vr: Par, opt: d.opt, elem: elem})
	case kindArray:
		elem := t.makePar(d.elem, depth+1)

		return t.intern(tyData{kind: kindArray, opt: d.opt, dim: d.dim, elem: elem})
	case kindTuple:
		elems := make([]Ty, len(d.elems))
		for i, e := range d.elems {
			elems[i] = t.makePar(e, depth+1)
		}

		return t.intern(tyData{kind: kindTuple, opt: d.opt, elems: elems})
	case kindRecord:
		elems := make([]Ty, len(d.elems))
		for i, e := range d.elems {
			elems[i] = t.makePar(e, depth+1)
		}

		return t.intern(tyData{kind: kindRecord, opt: d.opt, elems: elems, names: d.names})
	case kindTyVar:
		nd := d
		nd.tvVar = varOverride{set: true, value: Par}

		return t.intern(nd)
	}

	return ty
}

// WithOpt is total: it replaces the top-level optionality of ty.  For a
// TyVar, optionality lives in the tvOpt override rather than the generic opt
// field (spec 3.2's TyVar payload carries "an optional opt override", not a
// base opt), so that case is special-cased.
func (t *Table) WithOpt(ty Ty, opt OptType) Ty {
	d := t.get(ty)

	if d.kind == kindTyVar {
		d.tvOpt = optOverride{set: true, value: opt}

		return t.intern(d)
	}

	d.opt = opt

	return t.intern(d)
}
