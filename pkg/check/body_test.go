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
package check

import (
	"math/big"
	"testing"

	"github.com/shackle-lang/go-shackle/pkg/diag"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

func Test_Body_ConstraintLiteralOK(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Constraint,
		Data: hir.ItemData{
			Exprs: []hir.Expr{{Kind: hir.BoolLit, BoolValue: true}},
			Root:  0,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}
}

func Test_Body_ConstraintRejectsNonBoolean(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Constraint,
		Data: hir.ItemData{
			Exprs: []hir.Expr{{Kind: hir.IntLit, IntValue: big.NewInt(1)}},
			Root:  0,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.TypeMismatch {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a TypeMismatch diagnostic for a non-boolean constraint")
	}
}

func Test_Body_ArrayLiteralSupremum(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},   // 0
				{Kind: hir.FloatLit, FloatValue: 2.5},         // 1
				{Kind: hir.ArrayLit, Elements: []hir.ExprRef{0, 1}}, // 2
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	arrTy := bt.Expressions[2]
	if !tbl.IsArray(arrTy) {
		t.Fatalf("expected an array type, got %v", arrTy)
	}

	_, elem := tbl.ArrayParts(arrTy)
	if !tbl.IsFloat(elem) {
		t.Fatalf("expected the int/float supremum to be float, got %v", elem)
	}
}

func Test_Body_ArrayLiteralIncompatibleElementsReportsDiagnostic(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},
				{Kind: hir.StringLit, StringValue: "x"},
				{Kind: hir.ArrayLit, Elements: []hir.ExprRef{0, 1}},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.InvalidArrayLiteral {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an InvalidArrayLiteral diagnostic for int/string elements")
	}
}

func Test_Body_TupleAndRecordLiterals(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	fname := strs.Intern("x")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)}, // 0
				{Kind: hir.BoolLit, BoolValue: true},        // 1
				{Kind: hir.TupleLit, Elements: []hir.ExprRef{0, 1}}, // 2
				{Kind: hir.RecordLit, Fields: []hir.RecordField{{Name: fname, Value: 0}}}, // 3
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	tupTy := bt.Expressions[2]
	if !tbl.IsTuple(tupTy) || len(tbl.TupleFields(tupTy)) != 2 {
		t.Fatalf("expected a 2-tuple, got %v", tupTy)
	}

	recTy := c.collect(0, &model.Items[0].Data, flatScopes{mapScope{}}.ScopeFor(0), 3, nil, bt)
	if !tbl.IsRecord(recTy) || len(tbl.RecordFields(recTy)) != 1 {
		t.Fatalf("expected a 1-field record, got %v", recTy)
	}
}

func Test_Body_AccessorOnTuple(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},                      // 0
				{Kind: hir.BoolLit, BoolValue: true},                             // 1
				{Kind: hir.TupleLit, Elements: []hir.ExprRef{0, 1}},              // 2
				{Kind: hir.Accessor, Target: 2, IsTupleAccessor: true, Index: 1}, // 3
			},
			Root: 3,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsBoolean(bt.Expressions[3]) {
		t.Fatalf("expected the second tuple field (bool), got %v", bt.Expressions[3])
	}
}

func Test_Body_AccessorOutOfRangeReportsDiagnostic(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},
				{Kind: hir.TupleLit, Elements: []hir.ExprRef{0}},
				{Kind: hir.Accessor, Target: 1, IsTupleAccessor: true, Index: 5},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.InvalidFieldAccess {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an InvalidFieldAccess diagnostic for an out-of-range tuple index")
	}
}

func Test_Body_IfThenElseBranchSupremum(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true},   // 0: condition
				{Kind: hir.IntLit, IntValue: big.NewInt(1)}, // 1: then
				{Kind: hir.FloatLit, FloatValue: 2.0},  // 2: else
				{Kind: hir.IfThenElse, Condition: 0, Then: 1, HasElse: true, Else: 2}, // 3
			},
			Root: 3,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsFloat(bt.Expressions[3]) {
		t.Fatalf("expected the int/float supremum to be float, got %v", bt.Expressions[3])
	}
}

func Test_Body_IfThenNoElseAcceptsValueWithDefault(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true},
				{Kind: hir.ArrayLit}, // empty array — has a default value (the empty array itself)
				{Kind: hir.IfThenElse, Condition: 0, Then: 1, HasElse: false},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics for a branch type with a default value, got %v", diags.Sorted())
	}
}

func Test_Body_CaseArmsJoinAndBindPattern(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	v := strs.Intern("v")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{
				{Kind: hir.Variable, Name: v}, // 0: arm pattern
			},
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true},   // 0: scrutinee
				{Kind: hir.IntLit, IntValue: big.NewInt(1)}, // 1: arm result
				{Kind: hir.Case, Scrutinee: 0, Arms: []hir.CaseArm{{Pattern: 0, Result: 1}}}, // 2
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsBoolean(bt.Patterns[0]) {
		t.Fatalf("expected the arm pattern bound to the scrutinee's type, got %v", bt.Patterns[0])
	}
}

func Test_Body_LetBindsPatternAndReturnsBody(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	x := strs.Intern("x")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: x}},
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)}, // 0: bound value
				{Kind: hir.Identifier, Name: x},             // 1: unused (LetBody below is expr 0)
				{Kind: hir.Let, Bindings: []hir.LetBinding{{Pattern: 0, Value: 0}}, LetBody: 0},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsInteger(bt.Expressions[2]) {
		t.Fatalf("expected the let to return the bound value's type, got %v", bt.Expressions[2])
	}

	if !tbl.IsInteger(bt.Patterns[0]) {
		t.Fatalf("expected x bound to int, got %v", bt.Patterns[0])
	}
}

func Test_Body_LambdaAscribedParams(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	p := strs.Intern("p")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: p}},
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},      // 0: param domain "int"
				{Kind: hir.BoolLit, BoolValue: true},              // 1: lambda body
				{Kind: hir.Lambda, LambdaParams: []hir.PatternRef{0}, LambdaParamDomains: []hir.ExprRef{0}, LambdaBody: 1},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	fnTy := bt.Expressions[2]
	if !tbl.IsFunction(fnTy) {
		t.Fatalf("expected a function type, got %v", fnTy)
	}

	params, ret := tbl.FunctionParts(fnTy)
	if len(params) != 1 || !tbl.IsInteger(params[0]) {
		t.Fatalf("expected one int parameter, got %v", params)
	}

	if !tbl.IsBoolean(ret) {
		t.Fatalf("expected the return to be the body's boolean type, got %v", ret)
	}
}

func Test_Body_CallResolvesMonomorphicFunction(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	f := strs.Intern("f")
	p := strs.Intern("p")

	fnItem := hir.Item{
		Kind: hir.Function,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{
				{Kind: hir.Variable, Name: f},
				{Kind: hir.Variable, Name: p},
			},
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)}, // param domain int
				{Kind: hir.BoolLit, BoolValue: true},        // return domain bool
			},
			Name:         0,
			HasName:      true,
			Root:         1,
			Params:       []hir.PatternRef{1},
			ParamDomains: []hir.ExprRef{0},
		},
	}

	callerItem := hir.Item{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(7)},
				{Kind: hir.Call, Callee: f, Args: []hir.ExprRef{0}},
			},
			Root: 1,
		},
	}

	model := &hir.Model{Items: []hir.Item{fnItem, callerItem}}

	scope := mapScope{f: {IsOverloadSet: true, Overloads: []hir.ItemRef{0}}}
	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	bt := c.Body(1)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsBoolean(bt.Expressions[1]) {
		t.Fatalf("expected the call to resolve to bool, got %v", bt.Expressions[1])
	}

	res, ok := bt.Calls[1]
	if !ok || res.Item != 0 {
		t.Fatalf("expected the call to resolve to item 0, got %+v (ok=%v)", res, ok)
	}
}

func Test_Body_CallReportsNoMatchingFunction(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	f := strs.Intern("f")
	p := strs.Intern("p")

	fnItem := hir.Item{
		Kind: hir.Function,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{
				{Kind: hir.Variable, Name: f},
				{Kind: hir.Variable, Name: p},
			},
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true}, // param domain bool
				{Kind: hir.BoolLit, BoolValue: true}, // return domain bool
			},
			Name:         0,
			HasName:      true,
			Root:         1,
			Params:       []hir.PatternRef{1},
			ParamDomains: []hir.ExprRef{0},
		},
	}

	callerItem := hir.Item{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(7)}, // wrong argument type
				{Kind: hir.Call, Callee: f, Args: []hir.ExprRef{0}},
			},
			Root: 1,
		},
	}

	model := &hir.Model{Items: []hir.Item{fnItem, callerItem}}

	scope := mapScope{f: {IsOverloadSet: true, Overloads: []hir.ItemRef{0}}}
	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	c.Body(1)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.NoMatchingFunction {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a NoMatchingFunction diagnostic, got %v", diags.Sorted())
	}
}

func Test_Body_CallReportsAmbiguousOverloading(t *testing.T) {
	// Two overloads whose parameter types differ along incomparable axes
	// (var-but-nonopt vs. par-but-opt) both accept a par/nonopt bool
	// argument, and neither dominates the other, so resolution should be
	// genuinely ambiguous rather than tie-broken.
	tbl, nt, strs, diags := newFixture()
	f := strs.Intern("f")
	p1 := strs.Intern("p1")
	p2 := strs.Intern("p2")

	fnItem := func(name, pname intern.StringID, paramDomain hir.Expr) hir.Item {
		return hir.Item{
			Kind: hir.Function,
			Data: hir.ItemData{
				Patterns: []hir.Pattern{
					{Kind: hir.Variable, Name: name},
					{Kind: hir.Variable, Name: pname},
				},
				Exprs: []hir.Expr{
					paramDomain,
					{Kind: hir.BoolLit, BoolValue: true}, // return domain bool
				},
				Name:         0,
				HasName:      true,
				Root:         1,
				Params:       []hir.PatternRef{1},
				ParamDomains: []hir.ExprRef{0},
			},
		}
	}

	a := fnItem(f, p1, hir.Expr{Kind: hir.BoolLit, BoolValue: true})
	b := fnItem(f, p2, hir.Expr{Kind: hir.BoolLit, BoolValue: true})

	callerItem := hir.Item{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true},
				{Kind: hir.Call, Callee: f, Args: []hir.ExprRef{0}},
			},
			Root: 1,
		},
	}

	model := &hir.Model{Items: []hir.Item{a, b, callerItem}}

	scope := mapScope{f: {IsOverloadSet: true, Overloads: []hir.ItemRef{0, 1}}}
	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	// Force the two overloads onto incomparable parameter types directly,
	// bypassing the domain evaluator (which has no surface syntax here
	// for "var bool" or "opt bool" ascriptions): compute each item's
	// signature first, then overwrite its bound parameter type.
	sigA := c.Signatures(0)
	sigB := c.Signatures(1)

	varBool, _ := tbl.WithInst(tbl.Boolean(types.Par, types.NonOpt), types.Var)
	optBool := tbl.WithOpt(tbl.Boolean(types.Par, types.NonOpt), types.Opt)

	patA := sigA.Patterns[0]
	patA.Entry.Params = []types.Ty{varBool}
	sigA.Patterns[0] = patA

	patB := sigB.Patterns[0]
	patB.Entry.Params = []types.Ty{optBool}
	sigB.Patterns[0] = patB

	c.Body(2)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.AmbiguousCall {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an AmbiguousCall diagnostic for two incomparable overloads, got %v", diags.Sorted())
	}
}

func Test_Body_RangeOperatorCallProducesSet(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	dotdot := strs.Intern("..")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},
				{Kind: hir.IntLit, IntValue: big.NewInt(3)},
				{Kind: hir.Call, Callee: dotdot, Args: []hir.ExprRef{0, 1}},
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsSet(bt.Expressions[2]) {
		t.Fatalf("expected a set type from the range operator, got %v", bt.Expressions[2])
	}
}

func Test_Body_ArrayAccessScalarIndexSelectsElement(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	arrTy, ok := tbl.Array(tbl.Integer(types.Par, types.NonOpt), tbl.Boolean(types.Par, types.NonOpt), types.NonOpt)
	if !ok {
		t.Fatalf("failed to construct fixture array type")
	}

	arrName := strs.Intern("m")
	scope := mapScope{arrName: {Variable: 0}}

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Declaration,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: arrName}},
			Exprs:    []hir.Expr{{Kind: hir.BoolLit, BoolValue: true}}, // placeholder domain
			Name:     0,
			HasName:  true,
			Root:     0,
		},
	}, {
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.Identifier, Name: arrName},             // 0: m
				{Kind: hir.IntLit, IntValue: big.NewInt(2)},       // 1: par index
				{Kind: hir.ArrayAccess, Target: 0, Indices: []hir.ExprRef{1}}, // 2
			},
			Root: 2,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	// Force the declared domain directly, bypassing the domain evaluator
	// (whose array-literal rule always infers a plain integer-indexed 1D
	// array and has no surface syntax for an arbitrary declared array type).
	sig := c.Signatures(0)
	sig.Patterns[0] = PatternTy{Kind: Variable, Ty: arrTy}

	bt := c.Body(1)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	elemTy := bt.Expressions[2]
	if !tbl.IsBoolean(elemTy) {
		t.Fatalf("expected the array's boolean element type, got %v", elemTy)
	}
}

func Test_Body_ArrayAccessDimensionCountMismatchReportsDiagnostic(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	arrTy, ok := tbl.Array(tbl.Integer(types.Par, types.NonOpt), tbl.Boolean(types.Par, types.NonOpt), types.NonOpt)
	if !ok {
		t.Fatalf("failed to construct fixture array type")
	}

	arrName := strs.Intern("m")
	scope := mapScope{arrName: {Variable: 0}}

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Declaration,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: arrName}},
			Exprs:    []hir.Expr{{Kind: hir.BoolLit, BoolValue: true}}, // placeholder domain
			Name:     0,
			HasName:  true,
			Root:     0,
		},
	}, {
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.Identifier, Name: arrName},
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},
				{Kind: hir.IntLit, IntValue: big.NewInt(2)},
				{Kind: hir.ArrayAccess, Target: 0, Indices: []hir.ExprRef{1, 2}}, // one dim too many
			},
			Root: 3,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	sig := c.Signatures(0)
	sig.Patterns[0] = PatternTy{Kind: Variable, Ty: arrTy}

	c.Body(1)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.InvalidFieldAccess {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected an InvalidFieldAccess diagnostic for a dimension-count mismatch, got %v", diags.Sorted())
	}
}

func Test_Body_ArrayAccessSlicingTwoDimensions(t *testing.T) {
	// array[1..3,1..3] of int: m; x = m[1,..]; -- concrete scenario 3.
	tbl, nt, strs, diags := newFixture()
	dotdot := strs.Intern("..")

	dim := tbl.Tuple([]types.Ty{tbl.Integer(types.Par, types.NonOpt), tbl.Integer(types.Par, types.NonOpt)}, types.NonOpt)
	arrTy, ok := tbl.Array(dim, tbl.Integer(types.Par, types.NonOpt), types.NonOpt)
	if !ok {
		t.Fatalf("failed to construct fixture array type")
	}

	arrName := strs.Intern("m")
	scope := mapScope{arrName: {Variable: 0}}

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Declaration,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: arrName}},
			Exprs:    []hir.Expr{{Kind: hir.BoolLit, BoolValue: true}}, // placeholder domain
			Name:     0,
			HasName:  true,
			Root:     0,
		},
	}, {
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.Identifier, Name: arrName},                            // 0: m
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},                      // 1: value index
				{Kind: hir.Call, Callee: dotdot},                                 // 2: infinite slice ".."
				{Kind: hir.ArrayAccess, Target: 0, Indices: []hir.ExprRef{1, 2}}, // 3
			},
			Root: 3,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)

	sig := c.Signatures(0)
	sig.Patterns[0] = PatternTy{Kind: Variable, Ty: arrTy}

	bt := c.Body(1)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	resTy := bt.Expressions[3]
	if !tbl.IsArray(resTy) {
		t.Fatalf("expected a sliced array result, got %v", resTy)
	}

	resDim, resElem := tbl.ArrayParts(resTy)
	if !tbl.IsInteger(resDim) || !tbl.IsInteger(resElem) {
		t.Fatalf("expected array[int] of int, got dim=%v elem=%v", resDim, resElem)
	}
}

func Test_Body_IndirectCallAppliesLambda(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	x := strs.Intern("x")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Patterns: []hir.Pattern{{Kind: hir.Variable, Name: x}},
			Exprs: []hir.Expr{
				{Kind: hir.BoolLit, BoolValue: true},                                                      // 0: param domain bool
				{Kind: hir.Identifier, Name: x},                                                            // 1: lambda body (echoes param)
				{Kind: hir.Lambda, LambdaParams: []hir.PatternRef{0}, LambdaParamDomains: []hir.ExprRef{0}, LambdaBody: 1}, // 2
				{Kind: hir.BoolLit, BoolValue: false},                                                      // 3: call argument
				{Kind: hir.Call, HasCalleeExpr: true, CalleeExpr: 2, Args: []hir.ExprRef{3}},               // 4
			},
			Root: 4,
		},
	}}}

	scope := mapScope{x: {Variable: 0}}
	c := NewChecker(tbl, nt, strs, model, flatScopes{scope}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	if !tbl.IsBoolean(bt.Expressions[4]) {
		t.Fatalf("expected the indirect call to return bool, got %v", bt.Expressions[4])
	}

	if _, ok := bt.Calls[4]; ok {
		t.Fatalf("expected no bt.Calls entry for an indirect call (no defining item to record)")
	}
}

func Test_Body_IndirectCallRejectsNonFunctionCallee(t *testing.T) {
	tbl, nt, strs, diags := newFixture()

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.IntLit, IntValue: big.NewInt(1)},                 // 0: not a function
				{Kind: hir.Call, HasCalleeExpr: true, CalleeExpr: 0},        // 1
			},
			Root: 1,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	c.Body(0)

	found := false
	for _, d := range diags.Sorted() {
		if d.Kind == diag.NoMatchingFunction {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a NoMatchingFunction diagnostic for a non-function indirect callee, got %v", diags.Sorted())
	}
}

func Test_Body_AbsentLiteralProducesOptBottom(t *testing.T) {
	tbl, nt, strs, diags := newFixture()
	absent := strs.Intern("<>")

	model := &hir.Model{Items: []hir.Item{{
		Kind: hir.Output,
		Data: hir.ItemData{
			Exprs: []hir.Expr{
				{Kind: hir.Call, Callee: absent},
			},
			Root: 0,
		},
	}}}

	c := NewChecker(tbl, nt, strs, model, flatScopes{mapScope{}}, diags)
	bt := c.Body(0)

	if !diags.Empty() {
		t.Fatalf("expected no diagnostics, got %v", diags.Sorted())
	}

	ty := bt.Expressions[0]
	if tbl.Opt(ty) != types.Opt {
		t.Fatalf("expected the absent literal to be opt, got %v", ty)
	}
}
