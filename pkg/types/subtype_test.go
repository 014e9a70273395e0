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

func sampleTypes(t *Table) []Ty {
	return []Ty{
		t.Boolean(Par, NonOpt),
		t.Boolean(Var, NonOpt),
		t.Boolean(Par, Opt),
		t.Integer(Par, NonOpt),
		t.Integer(Var, Opt),
		t.Float(Par, NonOpt),
		t.StringTy(NonOpt),
		t.AnnotationTy(Opt),
		t.Bottom(NonOpt),
		t.Bottom(Opt),
		t.Error(),
		must(t.ParSet(t.Integer(Par, NonOpt), NonOpt)),
		mustArr(t, t.Integer(Par, NonOpt), t.Integer(Par, NonOpt)),
		t.Tuple([]Ty{t.Integer(Par, NonOpt), t.Boolean(Par, NonOpt)}, NonOpt),
	}
}

func must(ty Ty, ok bool) Ty {
	if !ok {
		panic("invariant violated in test fixture")
	}

	return ty
}

func mustArr(t *Table, dim, elem Ty) Ty {
	ty, ok := t.Array(dim, elem, NonOpt)
	if !ok {
		panic("invariant violated in test fixture")
	}

	return ty
}

func Test_Subtype_Reflexive(t *testing.T) {
	tbl := NewTable()

	for _, ty := range sampleTypes(tbl) {
		if !tbl.IsSubtypeOf(ty, ty) {
			t.Fatalf("type %d is not a subtype of itself", ty)
		}
	}
}

func Test_Subtype_Transitive(t *testing.T) {
	tbl := NewTable()
	ts := sampleTypes(tbl)

	for _, a := range ts {
		for _, b := range ts {
			// Error is absorbing in both directions, so a chain through it
			// says nothing about a and c.
			if tbl.IsError(b) {
				continue
			}

			for _, c := range ts {
				if tbl.IsSubtypeOf(a, b) && tbl.IsSubtypeOf(b, c) && !tbl.IsSubtypeOf(a, c) {
					t.Fatalf("transitivity violated: %d <= %d <= %d but not %d <= %d", a, b, c, a, c)
				}
			}
		}
	}
}

func Test_Subtype_AntisymmetricModuloEquality(t *testing.T) {
	tbl := NewTable()
	ts := sampleTypes(tbl)

	for _, a := range ts {
		for _, b := range ts {
			if tbl.IsError(a) || tbl.IsError(b) {
				continue
			}

			if tbl.IsSubtypeOf(a, b) && tbl.IsSubtypeOf(b, a) && a != b {
				t.Fatalf("expected %d == %d given mutual subtyping", a, b)
			}
		}
	}
}

func Test_Subtype_BoolIntFloatLadder(t *testing.T) {
	tbl := NewTable()
	b := tbl.Boolean(Par, NonOpt)
	i := tbl.Integer(Par, NonOpt)
	f := tbl.Float(Par, NonOpt)

	assert.True(t, tbl.IsSubtypeOf(b, i) && tbl.IsSubtypeOf(i, f) && tbl.IsSubtypeOf(b, f), "expected bool <= int <= float")
	assert.False(t, tbl.IsSubtypeOf(f, i) || tbl.IsSubtypeOf(i, b), "ladder must not hold in reverse")
}

func Test_Subtype_ParVarOptMonotone(t *testing.T) {
	tbl := NewTable()
	par := tbl.Integer(Par, NonOpt)
	vr := tbl.Integer(Var, NonOpt)
	opt := tbl.Integer(Par, Opt)

	assert.True(t, tbl.IsSubtypeOf(par, vr), "expected par int <= var int")
	assert.False(t, tbl.IsSubtypeOf(vr, par), "var int must not be <= par int")
	assert.True(t, tbl.IsSubtypeOf(par, opt), "expected non-opt int <= opt int")
	assert.False(t, tbl.IsSubtypeOf(opt, par), "opt int must not be <= non-opt int")
}

func Test_Subtype_FunctionVariance(t *testing.T) {
	tbl := NewTable()
	pInt := tbl.Integer(Par, NonOpt)
	pBool := tbl.Boolean(Par, NonOpt)
	pFloat := tbl.Float(Par, NonOpt)

	// function(float) -> bool  <=  function(int) -> bool
	// iff int <= float (param contravariant: wider param accepted) and
	// bool <= bool (return covariant).
	f1 := tbl.Function([]Ty{pFloat}, pBool, NonOpt)
	f2 := tbl.Function([]Ty{pInt}, pBool, NonOpt)

	assert.True(t, tbl.IsSubtypeOf(f1, f2), "expected function(float)->bool <= function(int)->bool")
	assert.False(t, tbl.IsSubtypeOf(f2, f1), "function variance must not hold in reverse")

	// Covariant in return: function(int)->bool <= function(int)->int
	g1 := tbl.Function([]Ty{pInt}, pBool, NonOpt)
	g2 := tbl.Function([]Ty{pInt}, pInt, NonOpt)

	assert.True(t, tbl.IsSubtypeOf(g1, g2), "expected covariant return to hold")
}

func Test_Subtype_RecordWidthCovariance(t *testing.T) {
	tbl := NewTable()
	strs := intern.NewStrings()
	a := strs.Intern("a")
	b := strs.Intern("b")

	r1, ok := tbl.Record([]RecordField{
		{Name: a, Type: tbl.Integer(Par, NonOpt)},
		{Name: b, Type: tbl.Boolean(Par, NonOpt)},
	}, NonOpt)
	if !ok {
		t.Fatalf("unexpected record construction failure")
	}

	r2, ok := tbl.Record([]RecordField{
		{Name: a, Type: tbl.Integer(Par, NonOpt)},
	}, NonOpt)
	if !ok {
		t.Fatalf("unexpected record construction failure")
	}

	assert.True(t, tbl.IsSubtypeOf(r1, r2), "expected wider record to be a subtype of the narrower one")
	assert.False(t, tbl.IsSubtypeOf(r2, r1), "narrower record must not be a subtype of the wider one")
}

func Test_IsSubtypeOf_DeeplyNestedArrayDoesNotOverflowTheStack(t *testing.T) {
	tbl := NewTable()

	a := tbl.Integer(Par, NonOpt)
	b := tbl.Integer(Par, NonOpt)

	for i := 0; i < maxStructuralDepth*4; i++ {
		var ok bool

		a, ok = tbl.Array(tbl.Integer(Par, NonOpt), a, NonOpt)
		if !ok {
			t.Fatalf("Array construction failed at depth %d", i)
		}

		b, ok = tbl.Array(tbl.Integer(Par, NonOpt), b, NonOpt)
		if !ok {
			t.Fatalf("Array construction failed at depth %d", i)
		}
	}

	// Must return, not panic or hang; the past-the-ceiling answer is
	// conservatively "not a subtype" rather than true.
	assert.False(t, tbl.IsSubtypeOf(a, b), "expected IsSubtypeOf to report false past the recursion ceiling")
}
