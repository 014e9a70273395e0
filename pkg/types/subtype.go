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

import "github.com/shackle-lang/go-shackle/pkg/intern"

// IsSubtypeOf determines whether a is a subtype of b: the least congruence
// satisfying spec 4.2's base and congruence rules.  Error is bidirectionally
// absorbing; Bottom is the subtype of every type with a compatible opt.
func (t *Table) IsSubtypeOf(a, b Ty) bool {
	return t.isSubtypeOf(a, b, 0)
}

func (t *Table) isSubtypeOf(a, b Ty, depth int) bool {
	if depth > maxStructuralDepth {
		return false
	}

	da, db := t.get(a), t.get(b)

	if da.kind == kindError || db.kind == kindError {
		return true
	}

	if da.kind == kindBottom {
		return optImplies(da.opt, db.opt)
	}

	switch da.kind {
	case kindBoolean:
		switch db.kind {
		case kindBoolean, kindInteger, kindFloat:
			return varLE(da.vr, db.vr) && optImplies(da.opt, db.opt)
		}

		return false
	case kindInteger:
		switch db.kind {
		case kindInteger, kindFloat:
			return varLE(da.vr, db.vr) && optImplies(da.opt, db.opt)
		}

		return false
	case kindFloat:
		if db.kind == kindFloat {
			return varLE(da.vr, db.vr) && optImplies(da.opt, db.opt)
		}

		return false
	case kindEnum:
		if db.kind == kindEnum && da.enum == db.enum {
			return varLE(da.vr, db.vr) && optImplies(da.opt, db.opt)
		}

		return false
	case kindString:
		return db.kind == kindString && optImplies(da.opt, db.opt)
	case kindAnnotation:
		return db.kind == kindAnnotation && optImplies(da.opt, db.opt)
	case kindArray:
		if db.kind != kindArray {
			return false
		}

		return t.isSubtypeOf(da.dim, db.dim, depth+1) && t.isSubtypeOf(da.elem, db.elem, depth+1) &&
			optImplies(da.opt, db.opt)
	case kindSet:
		if db.kind != kindSet {
			return false
		}

		return varLE(da.vr, db.vr) && t.isSubtypeOf(da.elem, db.elem, depth+1) && optImplies(da.opt, db.opt)
	case kindTuple:
		if db.kind != kindTuple || len(da.elems) != len(db.elems) {
			return false
		}

		for i := range da.elems {
			if !t.isSubtypeOf(da.elems[i], db.elems[i], depth+1) {
				return false
			}
		}

		return optImplies(da.opt, db.opt)
	case kindRecord:
		if db.kind != kindRecord {
			return false
		}
		// Width- and depth-covariant: every field of db must appear in da
		// with a subtype; da may carry additional fields db lacks.
		for i, name := range db.names {
			idx := findField(da.names, name)
			if idx < 0 || !t.isSubtypeOf(da.elems[idx], db.elems[i], depth+1) {
				return false
			}
		}

		return optImplies(da.opt, db.opt)
	case kindFunction:
		if db.kind != kindFunction || len(da.elems) != len(db.elems) {
			return false
		}
		// Contravariant in parameters, covariant in return.
		for i := range da.elems {
			if !t.isSubtypeOf(db.elems[i], da.elems[i], depth+1) {
				return false
			}
		}

		return t.isSubtypeOf(da.ret, db.ret, depth+1) && optImplies(da.opt, db.opt)
	case kindTyVar:
		if db.kind != kindTyVar || da.tvDesc.ID != db.tvDesc.ID {
			return false
		}

		return overrideVarLE(da.tvVar, db.tvVar) && overrideOptLE(da.tvOpt, db.tvOpt)
	}

	return false
}

func findField(names []intern.StringID, target intern.StringID) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}

	return -1
}

func varLE(a, b VarType) bool {
	return !(a == Var && b == Par)
}

func optImplies(a, b OptType) bool {
	return !(a == Opt && b == NonOpt)
}

// overrideVarLE compares two TyVar var-overrides, treating an unset override
// as the baseline Par value — consistent with TypeInstVar's zero-valued
// construction and with MakePar's default lowering.
func overrideVarLE(a, b varOverride) bool {
	av, bv := Par, Par
	if a.set {
		av = a.value
	}

	if b.set {
		bv = b.value
	}

	return varLE(av, bv)
}

// overrideOptLE is the opt-override analogue of overrideVarLE, treating an
// unset override as the baseline NonOpt value.
func overrideOptLE(a, b optOverride) bool {
	ao, bo := NonOpt, NonOpt
	if a.set {
		ao = a.value
	}

	if b.set {
		bo = b.value
	}

	return optImplies(ao, bo)
}
