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
	"github.com/shackle-lang/go-shackle/pkg/diag"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/resolve"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// CallResolution is the overload-resolution outcome recorded for one Call
// expression.
type CallResolution struct {
	// Item is the defining item of the winning candidate (the function,
	// annotation, or enum case the call resolved to).
	Item hir.ItemRef
	// Overload is the candidate's index within that item's synthesized
	// overload family (always 0 for Function/AnnotationConstructor, 0-5
	// for an EnumConstructor's six variants).
	Overload int
	// Instantiation maps the winning candidate's type-inst variables to
	// their call-site instantiation; empty for a monomorphic candidate.
	Instantiation map[intern.NewTypeID]types.Ty
}

// BodyTypes is the per-item result of body typing: every expression's
// inferred type, every pattern's type as bound in a case arm or generator,
// identifier resolutions, and call resolutions.
type BodyTypes struct {
	Expressions          map[hir.ExprRef]types.Ty
	Patterns             map[hir.PatternRef]types.Ty
	IdentifierResolution map[hir.ExprRef]hir.ItemRef
	Calls                map[hir.ExprRef]CallResolution
}

func newBodyTypes() BodyTypes {
	return BodyTypes{
		Expressions:          make(map[hir.ExprRef]types.Ty),
		Patterns:             make(map[hir.PatternRef]types.Ty),
		IdentifierResolution: make(map[hir.ExprRef]hir.ItemRef),
		Calls:                make(map[hir.ExprRef]CallResolution),
	}
}

// Body computes and memoizes item's BodyTypes. Unlike Signatures, body
// typing has no cross-item cycle concern (spec 4.6: "the body typer runs
// afterwards in any order, since bodies may cross-reference freely") so
// there is no Computing marker here — only a plain memoization cache.
func (c *Checker) Body(item hir.ItemRef) *BodyTypes {
	if bt, ok := c.bodyCache[item]; ok {
		return bt
	}

	bt := newBodyTypes()
	c.bodyCache[item] = &bt

	it := c.Model.Item(item)
	d := &it.Data
	scope := c.Scopes.ScopeFor(item)

	switch it.Kind {
	case hir.Assignment, hir.EnumAssignment:
		c.bodyAssignment(item, d, scope, &bt)
	case hir.Constraint:
		c.typecheck(item, d, scope, d.Root, c.Table.Boolean(types.Var, types.NonOpt), &bt)
	case hir.Function:
		c.bodyFunction(item, d, scope, &bt)
	case hir.Output:
		c.collect(item, d, scope, d.Root, nil, &bt)
	case hir.Solve:
		c.typecheck(item, d, scope, d.Root, c.Table.Float(types.Var, types.NonOpt), &bt)
	}

	return &bt
}

// bodyAssignment typechecks the assigned expression against the declaration
// it targets. The target is found by resolving the assignment's own Name
// pattern through Scope, exactly as any other identifier reference would be
// — this model has no separate LHS-binding field distinguishing an
// assignment from the declaration it completes (that identification is
// HIR→THIR lowering's job, spec 4.7). An unresolved or overloaded target
// falls back to plain inference so the RHS still gets a recorded type.
func (c *Checker) bodyAssignment(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, bt *BodyTypes) {
	if !d.HasName {
		c.collect(item, d, scope, d.Root, nil, bt)
		return
	}

	name := d.Pattern(d.Name).Name

	res, ok := scope.Resolve(name)
	if !ok || res.IsOverloadSet {
		c.collect(item, d, scope, d.Root, nil, bt)
		return
	}

	expected := c.typeOfItem(res.Variable)
	c.typecheck(item, d, scope, d.Root, expected, bt)
}

// bodyFunction typechecks a function's body against its own signature's
// return type (its Name pattern's FunctionPattern entry, already computed by
// the signature typer). Scope binding of the function's own parameters is
// the surrounding compiler's responsibility (ScopeFor(item) is assumed to
// already reflect them), matching how the signature typer's domain
// evaluator never re-derives parameter scoping either.
func (c *Checker) bodyFunction(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, bt *BodyTypes) {
	if !d.HasName {
		c.collect(item, d, scope, d.Root, nil, bt)
		return
	}

	sig := c.Signatures(item)

	pt, ok := sig.Patterns[d.Name]
	if !ok || pt.Kind != FunctionPattern {
		c.collect(item, d, scope, d.Root, nil, bt)
		return
	}

	c.typecheck(item, d, scope, d.Root, pt.Entry.Ret, bt)
}

// ----------------------------------------------------------------------------
// Bidirectional core
// ----------------------------------------------------------------------------

// typecheck infers ref's actual type via collect and verifies it is a
// subtype of expected, reporting TypeMismatch otherwise.
func (c *Checker) typecheck(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, ref hir.ExprRef, expected types.Ty, bt *BodyTypes) types.Ty {
	actual := c.collect(item, d, scope, ref, &expected, bt)

	if !c.Table.IsSubtypeOf(actual, expected) {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.TypeMismatch,
			Message: "expression type is not compatible with the expected type",
			Item:    item,
			Primary: d.Expr(ref).Origin,
		})
	}

	return actual
}

// collect infers ref's type, recording it in bt.Expressions. hint, when
// non-nil, is the expected type this expression is being collected on
// behalf of (spec 4.5's "annotated_for"): used to resolve an empty
// array/set literal's element type and an unascribed lambda's parameter
// types, never to suppress a genuine mismatch (that is typecheck's job).
func (c *Checker) collect(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, ref hir.ExprRef, hint *types.Ty, bt *BodyTypes) types.Ty {
	if int(ref) >= len(d.Exprs) {
		return c.Table.Error()
	}

	e := d.Expr(ref)

	var ty types.Ty

	switch e.Kind {
	case hir.BoolLit:
		ty = c.Table.Boolean(types.Par, types.NonOpt)
	case hir.IntLit:
		ty = c.Table.Integer(types.Par, types.NonOpt)
	case hir.FloatLit:
		ty = c.Table.Float(types.Par, types.NonOpt)
	case hir.StringLit:
		ty = c.Table.StringTy(types.NonOpt)
	case hir.Identifier:
		ty = c.collectIdentifier(item, scope, e, ref, bt)
	case hir.ArrayLit:
		ty = c.collectArrayLit(item, d, scope, e, hint, bt)
	case hir.SetLit:
		ty = c.collectSetLit(item, d, scope, e, hint, bt)
	case hir.TupleLit:
		ty = c.collectTupleLit(item, d, scope, e, bt)
	case hir.RecordLit:
		ty = c.collectRecordLit(item, d, scope, e, bt)
	case hir.Comprehension:
		ty = c.collectComprehension(item, d, scope, e, bt)
	case hir.Accessor:
		ty = c.collectAccessor(item, d, scope, e, bt)
	case hir.ArrayAccess:
		ty = c.collectArrayAccess(item, d, scope, e, bt)
	case hir.IfThenElse:
		ty = c.collectIfThenElse(item, d, scope, e, bt)
	case hir.Case:
		ty = c.collectCase(item, d, scope, e, bt)
	case hir.Call:
		ty = c.collectCall(item, d, scope, ref, e, bt)
	case hir.Let:
		ty = c.collectLet(item, d, scope, e, bt)
	case hir.Lambda:
		ty = c.collectLambda(item, d, scope, e, hint, bt)
	default:
		ty = c.Table.Error()
	}

	bt.Expressions[ref] = ty

	return ty
}

func (c *Checker) collectIdentifier(item hir.ItemRef, scope hir.Scope, e hir.Expr, ref hir.ExprRef, bt *BodyTypes) types.Ty {
	res, ok := scope.Resolve(e.Name)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.UndefinedIdentifier,
			Message: "undefined identifier",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	if res.IsOverloadSet {
		if len(res.Overloads) == 1 {
			bt.IdentifierResolution[ref] = res.Overloads[0]
			return c.typeOfItem(res.Overloads[0])
		}

		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.AmbiguousCall,
			Message: "an overloaded name must be called, not referenced as a plain value",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	bt.IdentifierResolution[ref] = res.Variable

	return c.typeOfItem(res.Variable)
}

func (c *Checker) collectArrayLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, hint *types.Ty, bt *BodyTypes) types.Ty {
	if len(e.Elements) == 0 {
		elem := c.Table.Bottom(types.NonOpt)

		if hint != nil && c.Table.IsArray(*hint) {
			_, elem = c.Table.ArrayParts(*hint)
		}

		arr, ok := c.Table.Array(c.Table.Integer(types.Par, types.NonOpt), elem, types.NonOpt)
		if !ok {
			return c.Table.Error()
		}

		return arr
	}

	elem := c.collect(item, d, scope, e.Elements[0], nil, bt)

	for _, el := range e.Elements[1:] {
		ety := c.collect(item, d, scope, el, nil, bt)

		sup, ok := c.Table.MostSpecificSupertype([]types.Ty{elem, ety})
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.InvalidArrayLiteral,
				Message: "array literal elements have incompatible types",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		elem = sup
	}

	arr, ok := c.Table.Array(c.Table.Integer(types.Par, types.NonOpt), elem, types.NonOpt)
	if !ok {
		return c.Table.Error()
	}

	return arr
}

func (c *Checker) collectSetLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, hint *types.Ty, bt *BodyTypes) types.Ty {
	if len(e.Elements) == 0 {
		elem := c.Table.Bottom(types.NonOpt)

		if hint != nil && c.Table.IsSet(*hint) {
			elem = c.Table.SetElem(*hint)
		}

		s, ok := c.Table.ParSet(elem, types.NonOpt)
		if !ok {
			return c.Table.Error()
		}

		return s
	}

	elem := c.collect(item, d, scope, e.Elements[0], nil, bt)

	for _, el := range e.Elements[1:] {
		ety := c.collect(item, d, scope, el, nil, bt)

		sup, ok := c.Table.MostSpecificSupertype([]types.Ty{elem, ety})
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.InvalidArrayLiteral,
				Message: "set literal elements have incompatible types",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		elem = sup
	}

	return c.buildSet(item, e.Origin, elem, false)
}

// buildSet constructs a set type over elem: a par set when forceVar is
// false and elem is known-par, otherwise a var set over make_par(elem).
// Reports TypeInferenceFailure if elem cannot be made par or
// cannot be varified (e.g. an array element, which is never enumerable).
func (c *Checker) buildSet(item hir.ItemRef, origin hir.Origin, elem types.Ty, forceVar bool) types.Ty {
	if !forceVar && c.Table.KnownPar(elem) {
		s, ok := c.Table.ParSet(elem, types.NonOpt)
		if ok {
			return s
		}
	}

	parElem := c.Table.MakePar(elem)

	s, ok := c.Table.ParSet(parElem, types.NonOpt)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.TypeInferenceFailure,
			Message: "set element type cannot be determined",
			Item:    item,
			Primary: origin,
		})

		return c.Table.Error()
	}

	v, ok := c.Table.WithInst(s, types.Var)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.TypeInferenceFailure,
			Message: "set element type cannot be determined",
			Item:    item,
			Primary: origin,
		})

		return c.Table.Error()
	}

	return v
}

func (c *Checker) collectTupleLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	fields := make([]types.Ty, len(e.Elements))
	for i, el := range e.Elements {
		fields[i] = c.collect(item, d, scope, el, nil, bt)
	}

	return c.Table.Tuple(fields, types.NonOpt)
}

func (c *Checker) collectRecordLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	fields := make([]types.RecordField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = types.RecordField{Name: f.Name, Type: c.collect(item, d, scope, f.Value, nil, bt)}
	}

	rec, ok := c.Table.Record(fields, types.NonOpt)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.IllegalType,
			Message: "record literal has duplicate field names",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	return rec
}

func (c *Checker) collectComprehension(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	liftVar := false

	for _, gen := range e.Generators {
		srcTy := c.collect(item, d, scope, gen.Source, nil, bt)

		var elemTy types.Ty

		switch {
		case c.Table.IsArray(srcTy):
			_, elemTy = c.Table.ArrayParts(srcTy)
		case c.Table.IsSet(srcTy):
			elemTy = c.Table.SetElem(srcTy)

			if c.Table.Var(srcTy) == types.Var {
				liftVar = true
			}
		default:
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.IllegalType,
				Message: "comprehension generator source must be an array or set",
				Item:    item,
				Primary: e.Origin,
			})

			elemTy = c.Table.Error()
		}

		c.collectPattern(item, d, scope, gen.Pattern, elemTy, true, bt)

		if gen.HasWhere {
			whereTy := c.typecheck(item, d, scope, gen.Where, c.Table.Boolean(types.Var, types.NonOpt), bt)

			if c.Table.IsBoolean(whereTy) && c.Table.Var(whereTy) == types.Var {
				liftVar = true
			}
		}
	}

	bodyTy := c.collect(item, d, scope, e.Body, nil, bt)

	if e.IsSet {
		return c.buildSet(item, e.Origin, bodyTy, liftVar)
	}

	result := bodyTy

	if liftVar {
		v, ok := c.Table.WithInst(bodyTy, types.Var)
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.TypeInferenceFailure,
				Message: "comprehension body type cannot be lifted to var",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = c.Table.WithOpt(v, types.Opt)
	}

	arr, ok := c.Table.Array(c.Table.Integer(types.Par, types.NonOpt), result, types.NonOpt)
	if !ok {
		return c.Table.Error()
	}

	return arr
}

func (c *Checker) collectAccessor(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	targetTy := c.collect(item, d, scope, e.Target, nil, bt)

	var field types.Ty

	switch {
	case e.IsTupleAccessor && c.Table.IsTuple(targetTy):
		fields := c.Table.TupleFields(targetTy)
		if e.Index < 0 || e.Index >= len(fields) {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.InvalidFieldAccess,
				Message: "tuple index out of range",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		field = fields[e.Index]
	case !e.IsTupleAccessor && c.Table.IsRecord(targetTy):
		found := false

		for _, f := range c.Table.RecordFields(targetTy) {
			if f.Name == e.FieldName {
				field = f.Type
				found = true

				break
			}
		}

		if !found {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.InvalidFieldAccess,
				Message: "no such record field",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}
	default:
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.InvalidFieldAccess,
			Message: "accessor target is not a tuple or record",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	if c.Table.Opt(targetTy) == types.Opt {
		return c.Table.WithOpt(field, types.Opt)
	}

	return field
}

// collectArrayAccess implements the Array access rule: each index dimension
// is processed individually. A set-typed index slices that dimension (its
// element type must be a subtype of the dimension's index type, and the set
// itself must be par NonOpt); a value-typed index selects a single element
// of that dimension and lifts its own var/opt into the result. Any sliced
// dimension survives into a result array; an access with no sliced
// dimensions reduces all the way to a single element.
func (c *Checker) collectArrayAccess(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	targetTy := c.collect(item, d, scope, e.Target, nil, bt)

	if !c.Table.IsArray(targetTy) {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.InvalidFieldAccess,
			Message: "array access target is not an array",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	dim, elem := c.Table.ArrayParts(targetTy)

	dims := []types.Ty{dim}
	if c.Table.IsTuple(dim) {
		dims = c.Table.TupleFields(dim)
	}

	if len(e.Indices) != len(dims) {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.InvalidFieldAccess,
			Message: "array access index count does not match the array's dimensionality",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	var slicedDims []types.Ty

	liftVar := false
	liftOpt := false

	for i, idxRef := range e.Indices {
		idxTy := c.collect(item, d, scope, idxRef, &dims[i], bt)

		switch {
		case c.Table.IsSet(idxTy):
			if c.Table.Var(idxTy) != types.Par || c.Table.Opt(idxTy) == types.Opt {
				c.Diags.Report(diag.Diagnostic{
					Kind:    diag.TypeMismatch,
					Message: "a slicing index must be a par, non-opt set",
					Item:    item,
					Primary: e.Origin,
				})

				return c.Table.Error()
			}

			if !c.Table.IsSubtypeOf(c.Table.SetElem(idxTy), dims[i]) {
				c.Diags.Report(diag.Diagnostic{
					Kind:    diag.TypeMismatch,
					Message: "slicing index set element type does not match that dimension's index type",
					Item:    item,
					Primary: e.Origin,
				})

				return c.Table.Error()
			}

			slicedDims = append(slicedDims, dims[i])

		default:
			if !c.Table.IsSubtypeOf(idxTy, dims[i]) {
				c.Diags.Report(diag.Diagnostic{
					Kind:    diag.TypeMismatch,
					Message: "array index type does not match that dimension's index type",
					Item:    item,
					Primary: e.Origin,
				})

				return c.Table.Error()
			}

			if c.Table.Var(idxTy) == types.Var {
				liftVar = true
			}

			if c.Table.Opt(idxTy) == types.Opt {
				liftOpt = true
			}
		}
	}

	result := elem

	if liftVar {
		v, ok := c.Table.WithInst(result, types.Var)
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.TypeInferenceFailure,
				Message: "array access result type cannot be lifted to var",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = v
	}

	if liftOpt {
		result = c.Table.WithOpt(result, types.Opt)
	}

	if len(slicedDims) > 0 {
		newDim := slicedDims[0]
		if len(slicedDims) > 1 {
			newDim = c.Table.Tuple(slicedDims, types.NonOpt)
		}

		arr, ok := c.Table.Array(newDim, result, types.NonOpt)
		if !ok {
			return c.Table.Error()
		}

		result = arr
	}

	if c.Table.Opt(targetTy) == types.Opt {
		return c.Table.WithOpt(result, types.Opt)
	}

	return result
}

func (c *Checker) collectIfThenElse(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	condTy := c.typecheck(item, d, scope, e.Condition, c.Table.Boolean(types.Var, types.NonOpt), bt)

	thenTy := c.collect(item, d, scope, e.Then, nil, bt)

	var result types.Ty

	if e.HasElse {
		elseTy := c.collect(item, d, scope, e.Else, nil, bt)

		sup, ok := c.Table.MostSpecificSupertype([]types.Ty{thenTy, elseTy})
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.BranchMismatch,
				Message: "if-then-else branches have no common supertype",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = sup
	} else {
		if !c.Table.HasDefaultValue(thenTy) {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.TypeMismatch,
				Message: "if-then without else requires a branch type with a default value",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = thenTy
	}

	if c.Table.IsBoolean(condTy) && c.Table.Var(condTy) == types.Var {
		v, ok := c.Table.WithInst(result, types.Var)
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.TypeInferenceFailure,
				Message: "if-then-else result type cannot be lifted to var",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = v
	}

	return result
}

func (c *Checker) collectCase(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	scrutineeTy := c.collect(item, d, scope, e.Scrutinee, nil, bt)

	var result types.Ty

	haveResult := false

	for _, arm := range e.Arms {
		c.collectPattern(item, d, scope, arm.Pattern, scrutineeTy, true, bt)

		armTy := c.collect(item, d, scope, arm.Result, nil, bt)

		if !haveResult {
			result = armTy
			haveResult = true

			continue
		}

		sup, ok := c.Table.MostSpecificSupertype([]types.Ty{result, armTy})
		if !ok {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.BranchMismatch,
				Message: "case arms have no common supertype",
				Item:    item,
				Primary: e.Origin,
			})

			return c.Table.Error()
		}

		result = sup
	}

	if !haveResult {
		return c.Table.Error()
	}

	if c.Table.IsBoolean(scrutineeTy) || c.Table.IsInteger(scrutineeTy) || c.Table.IsEnum(scrutineeTy) {
		if c.Table.Var(scrutineeTy) == types.Var {
			v, ok := c.Table.WithInst(result, types.Var)
			if !ok {
				c.Diags.Report(diag.Diagnostic{
					Kind:    diag.TypeInferenceFailure,
					Message: "case result type cannot be lifted to var",
					Item:    item,
					Primary: e.Origin,
				})

				return c.Table.Error()
			}

			result = v
		}
	}

	return result
}

func (c *Checker) collectLet(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, bt *BodyTypes) types.Ty {
	for _, b := range e.Bindings {
		valTy := c.collect(item, d, scope, b.Value, nil, bt)
		c.collectPattern(item, d, scope, b.Pattern, valTy, false, bt)
	}

	return c.collect(item, d, scope, e.LetBody, nil, bt)
}

func (c *Checker) collectLambda(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, hint *types.Ty, bt *BodyTypes) types.Ty {
	var hintParams []types.Ty

	if hint != nil && c.Table.IsFunction(*hint) {
		hintParams, _ = c.Table.FunctionParts(*hint)
	}

	params := make([]types.Ty, len(e.LambdaParams))

	for i, pref := range e.LambdaParams {
		var pty types.Ty

		switch {
		case i < len(e.LambdaParamDomains):
			pty = c.collect(item, d, scope, e.LambdaParamDomains[i], nil, bt)
		case i < len(hintParams):
			pty = hintParams[i]
		default:
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.TypeInferenceFailure,
				Message: "lambda parameter type cannot be inferred without an ascription or call-site context",
				Item:    item,
				Primary: e.Origin,
			})

			pty = c.Table.Error()
		}

		bt.Patterns[pref] = pty
		params[i] = pty
	}

	ret := c.collect(item, d, scope, e.LambdaBody, nil, bt)

	return c.Table.Function(params, ret, types.NonOpt)
}

// collectCall handles the range-operator family (producing a set value, not
// merely a bound, as in the signature typer's restricted domainCall),
// ordinary overloaded calls resolved by name, and indirect calls whose
// callee is an arbitrary sub-expression (e.g. a let-bound lambda) — spec
// 4.5's Call rule: "if the callee is an identifier, overloading is
// resolved; else, the callee is typed first and must have function type."
func (c *Checker) collectCall(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, ref hir.ExprRef, e hir.Expr, bt *BodyTypes) types.Ty {
	args := make([]types.Ty, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.collect(item, d, scope, a, nil, bt)
	}

	if e.HasCalleeExpr {
		return c.collectIndirectCall(item, d, scope, e, args, bt)
	}

	if c.rangeOps[e.Callee] {
		vr := types.Par

		for _, a := range args {
			if (c.Table.IsInteger(a) || c.Table.IsBoolean(a)) && c.Table.Var(a) == types.Var {
				vr = types.Var
			}
		}

		s, ok := c.Table.ParSet(c.Table.Integer(types.Par, types.NonOpt), types.NonOpt)
		if !ok {
			return c.Table.Error()
		}

		if vr == types.Var {
			v, ok := c.Table.WithInst(s, types.Var)
			if ok {
				s = v
			}
		}

		return s
	}

	if c.absentLits[e.Callee] {
		return c.Table.WithOpt(c.Table.Bottom(types.NonOpt), types.Opt)
	}

	res, ok := scope.Resolve(e.Callee)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.UndefinedIdentifier,
			Message: "undefined callee",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	candidates, owners := c.candidatesFor(res)
	if len(candidates) == 0 {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.NoMatchingFunction,
			Message: "callee is not callable",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	outcome, result, _ := resolve.Resolve(c.Table, candidates, args)

	switch outcome {
	case resolve.Ok:
		bt.Calls[ref] = CallResolution{
			Item:          owners[result.Candidate].item,
			Overload:      owners[result.Candidate].overload,
			Instantiation: result.Instantiation,
		}

		return result.Return
	case resolve.AmbiguousOverloading:
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.AmbiguousCall,
			Message: "call matches more than one equally-specific overload",
			Item:    item,
			Primary: e.Origin,
		})
	default:
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.NoMatchingFunction,
			Message: "no overload accepts these argument types",
			Item:    item,
			Primary: e.Origin,
		})
	}

	return c.Table.Error()
}

// collectIndirectCall implements the Call rule's else-branch: the
// callee is typed first and must have function type. The callee's own
// params/ret are run through the same resolve.Resolve machinery as a named
// call, as a single monomorphic candidate, so arity and argument-mismatch
// diagnostics stay uniform; there is no defining item to record in bt.Calls
// since the callee is a value, not a name, so lowering re-derives the
// callee from e.CalleeExpr directly.
func (c *Checker) collectIndirectCall(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, args []types.Ty, bt *BodyTypes) types.Ty {
	calleeTy := c.collect(item, d, scope, e.CalleeExpr, nil, bt)

	if !c.Table.IsFunction(calleeTy) {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.NoMatchingFunction,
			Message: "indirect call target does not have function type",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	params, ret := c.Table.FunctionParts(calleeTy)

	outcome, result, _ := resolve.Resolve(c.Table, []resolve.Candidate{{Params: params, Ret: ret}}, args)
	if outcome != resolve.Ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.NoMatchingFunction,
			Message: "indirect call arguments do not match the callee's parameter types",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	return result.Return
}

type candidateOwner struct {
	item     hir.ItemRef
	overload int
}

// candidatesFor gathers every resolve.Candidate a resolved callee name can
// denote: a plain function-typed variable, a single user Function/
// Annotation item, or — when the name denotes an overload set — every
// Function/Annotation/EnumConstructor item sharing it.
func (c *Checker) candidatesFor(res hir.ScopeResult) ([]resolve.Candidate, []candidateOwner) {
	if !res.IsOverloadSet {
		if k := c.Model.Items[res.Variable].Kind; k == hir.Function || k == hir.Annotation {
			return c.candidatesFor(hir.ScopeResult{IsOverloadSet: true, Overloads: []hir.ItemRef{res.Variable}})
		}

		ty := c.typeOfItem(res.Variable)
		if !c.Table.IsFunction(ty) {
			return nil, nil
		}

		params, ret := c.Table.FunctionParts(ty)

		return []resolve.Candidate{{Params: params, Ret: ret, SourceOrder: c.sourceOrder(res.Variable, 0)}},
			[]candidateOwner{{item: res.Variable, overload: 0}}
	}

	var (
		candidates []resolve.Candidate
		owners     []candidateOwner
	)

	for _, ownerItem := range res.Overloads {
		sig := c.Signatures(ownerItem)

		data := &c.Model.Items[ownerItem].Data
		if !data.HasName {
			continue
		}

		pt, ok := sig.Patterns[data.Name]
		if !ok {
			continue
		}

		switch pt.Kind {
		case FunctionPattern:
			candidates = append(candidates, resolve.Candidate{
				Params: pt.Entry.Params, Ret: pt.Entry.Ret, TyVars: pt.Entry.TyVars,
				SourceOrder: c.sourceOrder(ownerItem, 0),
			})
			owners = append(owners, candidateOwner{item: ownerItem, overload: 0})
		case AnnotationConstructor:
			candidates = append(candidates, resolve.Candidate{
				Params: pt.Entry.Params, Ret: pt.Entry.Ret,
				SourceOrder: c.sourceOrder(ownerItem, 0),
			})
			owners = append(owners, candidateOwner{item: ownerItem, overload: 0})
		case EnumConstructor:
			for i, entry := range pt.Entries {
				candidates = append(candidates, resolve.Candidate{
					Params: entry.Params, Ret: entry.Ret,
					SourceOrder: c.sourceOrder(ownerItem, i),
				})
				owners = append(owners, candidateOwner{item: ownerItem, overload: i})
			}
		}
	}

	return candidates, owners
}

// sourceOrder derives resolve.Candidate.SourceOrder deterministically from
// an item's declaration-order position (hir.ItemRef values are assigned in
// source order by the surrounding compiler) and an overload's position
// within its own item's synthesized family; no dedicated topological
// position is needed here since tie-breaking only discriminates between
// candidates sharing an identical substituted signature, which already
// implies deterministic relative order is all that matters, not the
// scheduler's dependency order.
func (c *Checker) sourceOrder(item hir.ItemRef, overload int) int {
	return int(item)*8 + overload
}

// ----------------------------------------------------------------------------
// Pattern typing
// ----------------------------------------------------------------------------

// collectPattern types a pattern against an expected type, binding any
// variables it introduces. resolvesAtoms controls whether a bare
// constructor-like pattern's name is resolved through scope (true for a
// case arm or comprehension generator pattern; false for an irrefutable let
// binding, where the spec's grammar excludes constructor patterns).
func (c *Checker) collectPattern(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, pref hir.PatternRef, expected types.Ty, resolvesAtoms bool, bt *BodyTypes) types.Ty {
	p := d.Pattern(pref)

	var ty types.Ty

	switch p.Kind {
	case hir.Wildcard:
		ty = expected
	case hir.Variable:
		ty = expected
	case hir.TuplePattern:
		ty = c.collectTuplePattern(item, d, scope, p, expected, bt)
	case hir.RecordPattern:
		ty = c.collectRecordPattern(item, d, scope, p, expected, bt)
	case hir.EnumAtomPattern, hir.AnnotationAtomPattern:
		ty = c.collectAtomPattern(item, scope, p, expected, resolvesAtoms, bt)
	case hir.EnumConstructorPattern, hir.AnnotationConstructorPattern:
		ty = c.collectConstructorPattern(item, d, scope, p, expected, resolvesAtoms, bt)
	default:
		ty = c.Table.Error()
	}

	bt.Patterns[pref] = ty

	return ty
}

func (c *Checker) collectTuplePattern(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, p hir.Pattern, expected types.Ty, bt *BodyTypes) types.Ty {
	if !c.Table.IsTuple(expected) {
		c.Diags.Report(diag.Diagnostic{Kind: diag.TypeMismatch, Message: "tuple pattern against a non-tuple type", Item: item})
		return c.Table.Error()
	}

	fields := c.Table.TupleFields(expected)
	if len(fields) != len(p.Elements) {
		c.Diags.Report(diag.Diagnostic{Kind: diag.TypeMismatch, Message: "tuple pattern arity mismatch", Item: item})
		return c.Table.Error()
	}

	for i, el := range p.Elements {
		c.collectPattern(item, d, scope, el, fields[i], false, bt)
	}

	return expected
}

func (c *Checker) collectRecordPattern(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, p hir.Pattern, expected types.Ty, bt *BodyTypes) types.Ty {
	if !c.Table.IsRecord(expected) {
		c.Diags.Report(diag.Diagnostic{Kind: diag.TypeMismatch, Message: "record pattern against a non-record type", Item: item})
		return c.Table.Error()
	}

	recFields := c.Table.RecordFields(expected)

	for _, pf := range p.Fields {
		found := false

		for _, rf := range recFields {
			if rf.Name == pf.Name {
				c.collectPattern(item, d, scope, pf.Pattern, rf.Type, false, bt)
				found = true

				break
			}
		}

		if !found {
			c.Diags.Report(diag.Diagnostic{Kind: diag.InvalidFieldAccess, Message: "no such record field in pattern", Item: item})
		}
	}

	return expected
}

// ignoreOpt strips top-level optionality, used when matching a constructor
// pattern's return type against the scrutinee's expected type "ignoring
// opt" (spec 4.5).
func (c *Checker) ignoreOpt(ty types.Ty) types.Ty {
	return c.Table.WithOpt(ty, types.NonOpt)
}

func (c *Checker) collectAtomPattern(item hir.ItemRef, scope hir.Scope, p hir.Pattern, expected types.Ty, resolvesAtoms bool, bt *BodyTypes) types.Ty {
	if !resolvesAtoms {
		c.Diags.Report(diag.Diagnostic{Kind: diag.IllegalType, Message: "constructor pattern not permitted here", Item: item})
		return c.Table.Error()
	}

	res, ok := scope.Resolve(p.Constructor)
	if !ok {
		c.Diags.Report(diag.Diagnostic{Kind: diag.UndefinedIdentifier, Message: "undefined pattern constructor", Item: item})
		return c.Table.Error()
	}

	candidates := c.atomCandidates(res)

	want := c.ignoreOpt(expected)

	var match types.Ty

	found := 0

	for _, cand := range candidates {
		if c.Table.IsSubtypeOf(want, c.ignoreOpt(cand)) {
			match = cand
			found++
		}
	}

	if found != 1 {
		c.Diags.Report(diag.Diagnostic{Kind: diag.NoMatchingFunction, Message: "no unique atom overload matches the expected type", Item: item})
		return c.Table.Error()
	}

	return match
}

func (c *Checker) atomCandidates(res hir.ScopeResult) []types.Ty {
	if !res.IsOverloadSet {
		return []types.Ty{c.typeOfItem(res.Variable)}
	}

	var out []types.Ty

	for _, it := range res.Overloads {
		sig := c.Signatures(it)

		data := &c.Model.Items[it].Data
		if !data.HasName {
			continue
		}

		if pt, ok := sig.Patterns[data.Name]; ok && (pt.Kind == EnumAtom || pt.Kind == AnnotationAtom) {
			out = append(out, pt.Ty)
		}
	}

	return out
}

func (c *Checker) collectConstructorPattern(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, p hir.Pattern, expected types.Ty, resolvesAtoms bool, bt *BodyTypes) types.Ty {
	if !resolvesAtoms {
		c.Diags.Report(diag.Diagnostic{Kind: diag.IllegalType, Message: "constructor pattern not permitted here", Item: item})
		return c.Table.Error()
	}

	res, ok := scope.Resolve(p.Constructor)
	if !ok {
		c.Diags.Report(diag.Diagnostic{Kind: diag.UndefinedIdentifier, Message: "undefined pattern constructor", Item: item})
		return c.Table.Error()
	}

	entries := c.constructorEntries(res)

	want := c.ignoreOpt(expected)

	var match *FunctionEntry

	found := 0

	for i := range entries {
		if len(entries[i].Params) != len(p.Args) {
			continue
		}

		if c.Table.IsSubtypeOf(want, c.ignoreOpt(entries[i].Ret)) {
			match = &entries[i]
			found++
		}
	}

	if found != 1 {
		c.Diags.Report(diag.Diagnostic{Kind: diag.NoMatchingFunction, Message: "no unique constructor overload matches the expected type", Item: item})

		for _, a := range p.Args {
			c.collectPattern(item, d, scope, a, c.Table.Error(), false, bt)
		}

		return c.Table.Error()
	}

	for i, a := range p.Args {
		c.collectPattern(item, d, scope, a, match.Params[i], false, bt)
	}

	return match.Ret
}

func (c *Checker) constructorEntries(res hir.ScopeResult) []FunctionEntry {
	if !res.IsOverloadSet {
		ty := c.typeOfItem(res.Variable)
		if !c.Table.IsFunction(ty) {
			return nil
		}

		params, ret := c.Table.FunctionParts(ty)

		return []FunctionEntry{{Params: params, Ret: ret}}
	}

	var out []FunctionEntry

	for _, it := range res.Overloads {
		sig := c.Signatures(it)

		data := &c.Model.Items[it].Data
		if !data.HasName {
			continue
		}

		pt, ok := sig.Patterns[data.Name]
		if !ok {
			continue
		}

		switch pt.Kind {
		case FunctionPattern:
			out = append(out, pt.Entry)
		case AnnotationConstructor:
			out = append(out, pt.Entry)
		case EnumConstructor:
			out = append(out, pt.Entries...)
		}
	}

	return out
}
