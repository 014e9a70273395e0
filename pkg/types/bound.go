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

// MostSpecificSupertype folds ts using the subtype lattice's join, returning
// false if no common supertype exists.  For function types the join pairs
// the join of returns with the MEET of each parameter (contravariance); for
// records it takes the intersection of field names.
func (t *Table) MostSpecificSupertype(ts []Ty) (Ty, bool) {
	return foldBound(ts, func(a, b Ty) (Ty, bool) { return t.sup2(a, b, 0) })
}

// MostGeneralSubtype folds ts using the subtype lattice's meet.  For
// function types this pairs the meet of returns with the JOIN of each
// parameter; for records it takes the union of field names.
func (t *Table) MostGeneralSubtype(ts []Ty) (Ty, bool) {
	return foldBound(ts, func(a, b Ty) (Ty, bool) { return t.inf2(a, b, 0) })
}

func foldBound(ts []Ty, op func(a, b Ty) (Ty, bool)) (Ty, bool) {
	if len(ts) == 0 {
		return 0, false
	}

	acc := ts[0]

	for _, ty := range ts[1:] {
		next, ok := op(acc, ty)
		if !ok {
			return 0, false
		}

		acc = next
	}

	return acc, true
}

func optOr(a, b OptType) OptType {
	if a == Opt || b == Opt {
		return Opt
	}

	return NonOpt
}

func optAnd(a, b OptType) OptType {
	if a == NonOpt || b == NonOpt {
		return NonOpt
	}

	return Opt
}

func varOr(a, b VarType) VarType {
	if a == Var || b == Var {
		return Var
	}

	return Par
}

func varAnd(a, b VarType) VarType {
	if a == Par || b == Par {
		return Par
	}

	return Var
}

// sup2 computes the least upper bound of a and b, or reports it does not
// exist.
func (t *Table) sup2(a, b Ty, depth int) (Ty, bool) {
	if depth > maxStructuralDepth {
		return 0, false
	}

	da, db := t.get(a), t.get(b)

	if da.kind == kindError || db.kind == kindError {
		return t.Error(), true
	}

	if da.kind == kindBottom || db.kind == kindBottom {
		return t.supBottom(a, da, b, db)
	}

	switch da.kind {
	case kindBoolean:
		return t.supNumericLadder(kindBoolean, da, db)
	case kindInteger:
		return t.supNumericLadder(kindInteger, da, db)
	case kindFloat:
		return t.supNumericLadder(kindFloat, da, db)
	case kindEnum:
		if db.kind == kindEnum && da.enum == db.enum {
			return t.Enum(varOr(da.vr, db.vr), optOr(da.opt, db.opt), da.enum), true
		}

		return 0, false
	case kindString:
		if db.kind == kindString {
			return t.StringTy(optOr(da.opt, db.opt)), true
		}

		return 0, false
	case kindAnnotation:
		if db.kind == kindAnnotation {
			return t.AnnotationTy(optOr(da.opt, db.opt)), true
		}

		return 0, false
	case kindArray:
		if db.kind != kindArray {
			return 0, false
		}

		dim, ok := t.sup2(da.dim, db.dim, depth+1)
		if !ok {
			return 0, false
		}

		elem, ok := t.sup2(da.elem, db.elem, depth+1)
		if !ok {
			return 0, false
		}

		return t.intern(tyData{kind: kindArray, opt: optOr(da.opt, db.opt), dim: dim, elem: elem}), true
	case kindSet:
		if db.kind != kindSet {
			return 0, false
		}

		elem, ok := t.sup2(da.elem, db.elem, depth+1)
		if !ok {
			return 0, false
		}

		return t.intern(tyData{
			kind: kindSet, vr: varOr(da.vr, db.vr), opt: optOr(da.opt, db.opt), elem: elem,
		}), true
	case kindTuple:
		if db.kind != kindTuple || len(da.elems) != len(db.elems) {
			return 0, false
		}

		elems := make([]Ty, len(da.elems))

		for i := range da.elems {
			e, ok := t.sup2(da.elems[i], db.elems[i], depth+1)
			if !ok {
				return 0, false
			}

			elems[i] = e
		}

		return t.intern(tyData{kind: kindTuple, opt: optOr(da.opt, db.opt), elems: elems}), true
	case kindRecord:
		if db.kind != kindRecord {
			return 0, false
		}

		return t.supRecord(da, db, depth+1)
	case kindFunction:
		if db.kind != kindFunction || len(da.elems) != len(db.elems) {
			return 0, false
		}

		ret, ok := t.sup2(da.ret, db.ret, depth+1)
		if !ok {
			return 0, false
		}

		params := make([]Ty, len(da.elems))

		for i := range da.elems {
			// Contravariance: join of functions takes the MEET of params.
			p, ok := t.inf2(da.elems[i], db.elems[i], depth+1)
			if !ok {
				return 0, false
			}

			params[i] = p
		}

		return t.intern(tyData{
			kind: kindFunction, opt: optOr(da.opt, db.opt), elems: params, ret: ret,
		}), true
	case kindTyVar:
		if db.kind != kindTyVar || da.tvDesc.ID != db.tvDesc.ID {
			return 0, false
		}

		nd := da
		nd.tvVar = combineVarOverride(da.tvVar, db.tvVar, varOr)
		nd.tvOpt = combineOptOverride(da.tvOpt, db.tvOpt, optOr)

		return t.intern(nd), true
	}

	return 0, false
}

// inf2 computes the greatest lower bound of a and b, or reports it does not
// exist.
func (t *Table) inf2(a, b Ty, depth int) (Ty, bool) {
	if depth > maxStructuralDepth {
		return 0, false
	}

	da, db := t.get(a), t.get(b)

	if da.kind == kindError || db.kind == kindError {
		return t.Error(), true
	}

	if da.kind == kindBottom && db.kind == kindBottom {
		return t.Bottom(optAnd(da.opt, db.opt)), true
	}

	if da.kind == kindBottom || db.kind == kindBottom {
		// Bottom(NonOpt) is <= every type regardless of opt (spec 3.3), and
		// nothing else is known to be <= both a non-bottom type and a
		// bottom type, so it is the greatest such lower bound available.
		return t.Bottom(NonOpt), true
	}

	switch da.kind {
	case kindBoolean:
		return t.infNumericLadder(kindBoolean, da, db)
	case kindInteger:
		return t.infNumericLadder(kindInteger, da, db)
	case kindFloat:
		return t.infNumericLadder(kindFloat, da, db)
	case kindEnum:
		if db.kind == kindEnum && da.enum == db.enum {
			return t.Enum(varAnd(da.vr, db.vr), optAnd(da.opt, db.opt), da.enum), true
		}

		return 0, false
	case kindString:
		if db.kind == kindString {
			return t.StringTy(optAnd(da.opt, db.opt)), true
		}

		return 0, false
	case kindAnnotation:
		if db.kind == kindAnnotation {
			return t.AnnotationTy(optAnd(da.opt, db.opt)), true
		}

		return 0, false
	case kindArray:
		if db.kind != kindArray {
			return 0, false
		}

		dim, ok := t.inf2(da.dim, db.dim, depth+1)
		if !ok {
			return 0, false
		}

		elem, ok := t.inf2(da.elem, db.elem, depth+1)
		if !ok {
			return 0, false
		}

		return t.intern(tyData{kind: kindArray, opt: optAnd(da.opt, db.opt), dim: dim, elem: elem}), true
	case kindSet:
		if db.kind != kindSet {
			return 0, false
		}

		elem, ok := t.inf2(da.elem, db.elem, depth+1)
		if !ok {
			return 0, false
		}

		return t.intern(tyData{
			kind: kindSet, vr: varAnd(da.vr, db.vr), opt: optAnd(da.opt, db.opt), elem: elem,
		}), true
	case kindTuple:
		if db.kind != kindTuple || len(da.elems) != len(db.elems) {
			return 0, false
		}

		elems := make([]Ty, len(da.elems))

		for i := range da.elems {
			e, ok := t.inf2(da.elems[i], db.elems[i], depth+1)
			if !ok {
				return 0, false
			}

			elems[i] = e
		}

		return t.intern(tyData{kind: kindTuple, opt: optAnd(da.opt, db.opt), elems: elems}), true
	case kindRecord:
		if db.kind != kindRecord {
			return 0, false
		}

		return t.infRecord(da, db, depth+1)
	case kindFunction:
		if db.kind != kindFunction || len(da.elems) != len(db.elems) {
			return 0, false
		}

		ret, ok := t.inf2(da.ret, db.ret, depth+1)
		if !ok {
			return 0, false
		}

		params := make([]Ty, len(da.elems))

		for i := range da.elems {
			// Contravariance: meet of functions takes the JOIN of params.
			p, ok := t.sup2(da.elems[i], db.elems[i], depth+1)
			if !ok {
				return 0, false
			}

			params[i] = p
		}

		return t.intern(tyData{
			kind: kindFunction, opt: optAnd(da.opt, db.opt), elems: params, ret: ret,
		}), true
	case kindTyVar:
		if db.kind != kindTyVar || da.tvDesc.ID != db.tvDesc.ID {
			return 0, false
		}

		nd := da
		nd.tvVar = combineVarOverride(da.tvVar, db.tvVar, varAnd)
		nd.tvOpt = combineOptOverride(da.tvOpt, db.tvOpt, optAnd)

		return t.intern(nd), true
	}

	return 0, false
}

func (t *Table) supBottom(a Ty, da tyData, b Ty, db tyData) (Ty, bool) {
	switch {
	case da.kind == kindBottom && db.kind == kindBottom:
		return t.Bottom(optOr(da.opt, db.opt)), true
	case da.kind == kindBottom:
		if !optImplies(da.opt, db.opt) {
			return t.WithOpt(b, Opt), true
		}

		return b, true
	default:
		if !optImplies(db.opt, da.opt) {
			return t.WithOpt(a, Opt), true
		}

		return a, true
	}
}

// supNumericLadder/infNumericLadder implement the bool <= int <= float chain
// (spec 4.2's base rule table) for join/meet respectively; from is the kind
// of da, which determines which rungs of the ladder are reachable.
func (t *Table) supNumericLadder(from tyKind, da, db tyData) (Ty, bool) {
	rank := func(k tyKind) int {
		switch k {
		case kindBoolean:
			return 0
		case kindInteger:
			return 1
		case kindFloat:
			return 2
		}

		return -1
	}

	ra, rb := rank(from), rank(db.kind)
	if ra < 0 || rb < 0 {
		return 0, false
	}

	vr, opt := varOr(da.vr, db.vr), optOr(da.opt, db.opt)
	top := ra

	if rb > top {
		top = rb
	}

	switch top {
	case 0:
		return t.Boolean(vr, opt), true
	case 1:
		return t.Integer(vr, opt), true
	default:
		return t.Float(vr, opt), true
	}
}

func (t *Table) infNumericLadder(from tyKind, da, db tyData) (Ty, bool) {
	rank := func(k tyKind) int {
		switch k {
		case kindBoolean:
			return 0
		case kindInteger:
			return 1
		case kindFloat:
			return 2
		}

		return -1
	}

	ra, rb := rank(from), rank(db.kind)
	if ra < 0 || rb < 0 {
		return 0, false
	}

	vr, opt := varAnd(da.vr, db.vr), optAnd(da.opt, db.opt)
	bottom := ra

	if rb < bottom {
		bottom = rb
	}

	switch bottom {
	case 0:
		return t.Boolean(vr, opt), true
	case 1:
		return t.Integer(vr, opt), true
	default:
		return t.Float(vr, opt), true
	}
}

// supRecord takes the intersection of field names (width-covariant join).
func (t *Table) supRecord(da, db tyData, depth int) (Ty, bool) {
	var fields []RecordField

	for i, name := range da.names {
		idx := findField(db.names, name)
		if idx < 0 {
			continue
		}

		f, ok := t.sup2(da.elems[i], db.elems[idx], depth)
		if !ok {
			return 0, false
		}

		fields = append(fields, RecordField{Name: name, Type: f})
	}

	return t.Record(fields, optOr(da.opt, db.opt))
}

// infRecord takes the union of field names (width-contravariant meet): a
// field present in only one operand carries over unchanged, since requiring
// it absent would make the result no longer a lower bound of the operand
// that has it.
func (t *Table) infRecord(da, db tyData, depth int) (Ty, bool) {
	var fields []RecordField

	for i, name := range da.names {
		if idx := findField(db.names, name); idx >= 0 {
			f, ok := t.inf2(da.elems[i], db.elems[idx], depth)
			if !ok {
				return 0, false
			}

			fields = append(fields, RecordField{Name: name, Type: f})
		} else {
			fields = append(fields, RecordField{Name: name, Type: da.elems[i]})
		}
	}

	for i, name := range db.names {
		if findField(da.names, name) < 0 {
			fields = append(fields, RecordField{Name: name, Type: db.elems[i]})
		}
	}

	return t.Record(fields, optAnd(da.opt, db.opt))
}

func combineVarOverride(a, b varOverride, combine func(VarType, VarType) VarType) varOverride {
	if !a.set && !b.set {
		return varOverride{}
	}

	av, bv := Par, Par
	if a.set {
		av = a.value
	}

	if b.set {
		bv = b.value
	}

	return varOverride{set: true, value: combine(av, bv)}
}

func combineOptOverride(a, b optOverride, combine func(OptType, OptType) OptType) optOverride {
	if !a.set && !b.set {
		return optOverride{}
	}

	ao, bo := NonOpt, NonOpt
	if a.set {
		ao = a.value
	}

	if b.set {
		bo = b.value
	}

	return optOverride{set: true, value: combine(ao, bo)}
}
