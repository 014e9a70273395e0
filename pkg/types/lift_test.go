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
	"testing"

	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/util/assert"
)

func Test_Lift_WithOptIdempotentOnLatest(t *testing.T) {
	tbl := NewTable()
	base := tbl.Integer(Par, NonOpt)

	a := tbl.WithOpt(tbl.WithOpt(base, Opt), NonOpt)
	b := tbl.WithOpt(base, NonOpt)

	assert.Equal(t, b, a, "expected with_opt(with_opt(t,o1),o2) == with_opt(t,o2)")
}

func Test_Lift_MakeParIdempotent(t *testing.T) {
	tbl := NewTable()
	elem, ok := tbl.WithInst(tbl.Integer(Par, NonOpt), Var)
	if !ok {
		t.Fatalf("expected int to be varifiable")
	}

	arr := mustArr(tbl, tbl.Integer(Par, NonOpt), elem)

	once := tbl.MakePar(arr)
	twice := tbl.MakePar(once)

	assert.Equal(t, twice, once, "expected make_par(make_par(t)) == make_par(t)")
	assert.True(t, tbl.KnownPar(once), "expected make_par's result to be known-par")
}

func Test_Lift_WithInstVarFailsOnArray(t *testing.T) {
	tbl := NewTable()
	arr := mustArr(tbl, tbl.Integer(Par, NonOpt), tbl.Integer(Par, NonOpt))

	if _, ok := tbl.WithInst(arr, Var); ok {
		t.Fatalf("expected with_inst(array, Var) to fail: arrays are never var")
	}

	if _, ok := tbl.WithInst(arr, Par); !ok {
		t.Fatalf("expected with_inst(array, Par) to be a no-op success")
	}
}

func Test_Lift_WithInstSucceedsIffKnownVarifiable(t *testing.T) {
	tbl := NewTable()
	nt := intern.NewNewTypes()

	varifiable := tbl.TypeInstVar(TyVarDesc{ID: nt.Fresh("T"), Varifiable: true})
	rigid := tbl.TypeInstVar(TyVarDesc{ID: nt.Fresh("U"), Varifiable: false})

	if _, ok := tbl.WithInst(varifiable, Var); !ok {
		t.Fatalf("expected varifiable tyvar to accept Var")
	}

	if !tbl.KnownVarifiable(varifiable) {
		t.Fatalf("expected KnownVarifiable(varifiable tyvar) to hold")
	}

	if _, ok := tbl.WithInst(rigid, Var); ok {
		t.Fatalf("expected non-varifiable tyvar to reject Var")
	}

	if tbl.KnownVarifiable(rigid) {
		t.Fatalf("expected KnownVarifiable(non-varifiable tyvar) to be false")
	}
}

func Test_Lift_EnumConstructorLifting(t *testing.T) {
	// Concrete scenario 6: enum E = C(1..3); C(var 1..3) accepted, yields
	// var E; C({1,2}) yields set of E.
	tbl := NewTable()
	nt := intern.NewNewTypes()
	e := nt.InternFromPattern(1, "E")

	parE := tbl.Enum(Par, NonOpt, e)
	varE, ok := tbl.WithInst(parE, Var)

	if !ok || !tbl.IsSubtypeOf(parE, varE) {
		t.Fatalf("expected par E to lift to var E, with par E <= var E")
	}

	setOfE, ok := tbl.ParSet(parE, NonOpt)
	if !ok {
		t.Fatalf("expected par set of E to be constructible")
	}

	if !tbl.IsSet(setOfE) || tbl.SetElem(setOfE) != parE {
		t.Fatalf("expected set of E to carry par E as its element")
	}
}

func Test_MakePar_DeeplyNestedArrayDoesNotOverflowTheStack(t *testing.T) {
	tbl := NewTable()

	ty := tbl.Integer(Var, NonOpt)
	for i := 0; i < maxStructuralDepth*4; i++ {
		var ok bool
		ty, ok = tbl.Array(tbl.Integer(Par, NonOpt), ty, NonOpt)
		if !ok {
			t.Fatalf("Array construction failed at depth %d", i)
		}
	}

	// The property under test is that this returns at all rather than
	// overflowing the stack; deep inside the result an Error type marks
	// where the ceiling was hit, but the top-level kind is still Array.
	par := tbl.MakePar(ty)
	assert.True(t, tbl.IsArray(par), "expected a top-level array type back, got %v", par)
}
