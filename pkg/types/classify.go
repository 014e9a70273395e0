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

// KnownPar reports whether every reachable scalar/set/ty-var within ty is
// par.  A TyVar only counts as known-par if it carries an explicit par
// override.
func (t *Table) KnownPar(ty Ty) bool {
	return t.knownPar(ty, 0)
}

func (t *Table) knownPar(ty Ty, depth int) bool {
	if depth > maxStructuralDepth {
		return false
	}

	d := t.get(ty)

	switch d.kind {
	case kindBoolean, kindInteger, kindFloat, kindEnum:
		return d.vr == Par
	case kindString, kindAnnotation, kindBottom, kindError:
		return true
	case kindArray:
		return t.knownPar(d.elem, depth+1)
	case kindSet:
		return d.vr == Par && t.knownPar(d.elem, depth+1)
	case kindTuple, kindRecord:
		for _, e := range d.elems {
			if !t.knownPar(e, depth+1) {
				return false
			}
		}

		return true
	case kindFunction:
		if !t.knownPar(d.ret, depth+1) {
			return false
		}

		for _, p := range d.elems {
			if !t.knownPar(p, depth+1) {
				return false
			}
		}

		return true
	case kindTyVar:
		return d.tvVar.set && d.tvVar.value == Par
	}

	return false
}

// KnownOccurs reports whether every reachable container/scalar within ty is
// NonOpt.
func (t *Table) KnownOccurs(ty Ty) bool {
	return t.knownOccurs(ty, 0)
}

func (t *Table) knownOccurs(ty Ty, depth int) bool {
	if depth > maxStructuralDepth {
		return false
	}

	d := t.get(ty)

	if d.kind != kindError && d.kind != kindTyVar && d.opt != NonOpt {
		return false
	}

	switch d.kind {
	case kindBoolean, kindInteger, kindFloat, kindEnum, kindString, kindAnnotation, kindBottom, kindError:
		return true
	case kindArray:
		return t.knownOccurs(d.dim, depth+1) && t.knownOccurs(d.elem, depth+1)
	case kindSet:
		return t.knownOccurs(d.elem, depth+1)
	case kindTuple, kindRecord:
		for _, e := range d.elems {
			if !t.knownOccurs(e, depth+1) {
				return false
			}
		}

		return true
	case kindFunction:
		if !t.knownOccurs(d.ret, depth+1) {
			return false
		}

		for _, p := range d.elems {
			if !t.knownOccurs(p, depth+1) {
				return false
			}
		}

		return true
	case kindTyVar:
		return d.tvOpt.set && d.tvOpt.value == NonOpt
	}

	return false
}

// KnownEnumerable reports whether ty is bool, int, a (NonOpt) enum, or a
// TyVar flagged enumerable.
func (t *Table) KnownEnumerable(ty Ty) bool {
	d := t.get(ty)

	switch d.kind {
	case kindBoolean, kindInteger:
		return d.opt == NonOpt
	case kindEnum:
		return d.opt == NonOpt
	case kindTyVar:
		return d.tvDesc.Enumerable
	}

	return false
}

// KnownIndexable reports whether ty is known-enumerable, a NonOpt tuple of
// enumerables, or a TyVar flagged indexable.
func (t *Table) KnownIndexable(ty Ty) bool {
	if t.KnownEnumerable(ty) {
		return true
	}

	d := t.get(ty)

	switch d.kind {
	case kindTuple:
		if d.opt != NonOpt {
			return false
		}

		for _, e := range d.elems {
			if !t.KnownEnumerable(e) {
				return false
			}
		}

		return true
	case kindTyVar:
		return d.tvDesc.Indexable
	}

	return false
}

// KnownVarifiable reports whether WithInst(ty, Var) would succeed.
func (t *Table) KnownVarifiable(ty Ty) bool {
	_, ok := t.WithInst(ty, Var)

	return ok
}

// HasDefaultValue determines whether an if-then without an else branch is
// well-formed for ty: true for opt types, bool, string, annotation, arrays,
// sets, and compound types whose fields all have defaults.
func (t *Table) HasDefaultValue(ty Ty) bool {
	return t.hasDefaultValue(ty, 0)
}

func (t *Table) hasDefaultValue(ty Ty, depth int) bool {
	if depth > maxStructuralDepth {
		return false
	}

	d := t.get(ty)

	if d.kind != kindError && d.opt == Opt {
		return true
	}

	switch d.kind {
	case kindBoolean, kindString, kindAnnotation, kindArray, kindSet:
		return true
	case kindTuple, kindRecord:
		for _, e := range d.elems {
			if !t.hasDefaultValue(e, depth+1) {
				return false
			}
		}

		return true
	}

	return false
}
