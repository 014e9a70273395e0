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

package thir

import (
	"fmt"

	"github.com/shackle-lang/go-shackle/pkg/check"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// lowerer holds the state threaded through one HIR-to-THIR translation run:
// the checker it pulls resolved types and signatures from, the model being
// built, and the item/local-name bookkeeping needed to resolve references
// while walking.
type lowerer struct {
	checker *check.Checker
	scopes  check.ScopeProvider
	stdlib  hir.Stdlib
	strs    *intern.Strings
	tbl     *types.Table

	model *Model

	// itemMap carries every hir.ItemRef already lowered to its thir.ItemRef.
	itemMap map[hir.ItemRef]ItemRef

	// currentItemData is the ItemData of the item currently being walked,
	// so helpers that only receive a PatternRef/ExprRef can still address
	// the right arena without threading an extra parameter everywhere.
	currentItemData *hir.ItemData

	// locals is a stack of lexically-bound names (lambda parameters, let
	// bindings, comprehension generators) currently in scope, innermost
	// last. hir.Scope only ever resolves an identifier to a top-level
	// hir.ItemRef (see hir.ScopeResult), so it has no vocabulary for a
	// purely local binder; lowering tracks those itself and prefers a
	// local match over Checker.Body's IdentifierResolution.
	locals []intern.StringID

	freshCounter int
}

// Lower translates a fully checked hir.Model into a thir.Model, in the given
// topological item order. order and stdlib are the same inputs the scheduler
// and checker already computed; Lower does not re-derive them.
func Lower(checker *check.Checker, scopes check.ScopeProvider, stdlib hir.Stdlib, strs *intern.Strings, model *hir.Model, order []hir.ItemRef) *Model {
	lw := &lowerer{
		checker: checker,
		scopes:  scopes,
		stdlib:  stdlib,
		strs:    strs,
		tbl:     checker.Table,
		model:   &Model{},
		itemMap: make(map[hir.ItemRef]ItemRef, len(order)),
	}

	for _, item := range order {
		lw.lowerHeader(item, model)
	}
	for _, item := range order {
		lw.lowerBody(item, model)
	}

	return lw.model
}

// lowerHeader creates the (possibly empty-bodied) thir item for ref, so that
// forward references encountered while lowering bodies always have a target
// to resolve to.
func (lw *lowerer) lowerHeader(ref hir.ItemRef, model *hir.Model) {
	it := model.Item(ref)
	d := &it.Data

	switch it.Kind {
	case hir.Declaration:
		sig := lw.checker.Signatures(ref)
		pt := sig.Patterns[d.Name]
		lw.itemMap[ref] = lw.model.addDeclaration(Declaration{
			HasName:  d.HasName,
			Name:     d.Pattern(d.Name).Name,
			Domain:   pt.Ty,
			TopLevel: true,
		})

	case hir.Function:
		sig := lw.checker.Signatures(ref)
		pt := sig.Patterns[d.Name]
		lw.itemMap[ref] = lw.model.addFunction(Function{
			Name:   d.Pattern(d.Name).Name,
			Ret:    pt.Entry.Ret,
			Params: lw.lowerParams(d, pt.Entry.Params),
			TyVars: pt.Entry.TyVars,
			Pure:   d.Pure,
		})

	case hir.Annotation:
		sig := lw.checker.Signatures(ref)
		pt := sig.Patterns[d.Name]
		lw.itemMap[ref] = lw.model.addAnnotation(Annotation{
			Name:   d.Pattern(d.Name).Name,
			Params: lw.lowerParams(d, pt.Entry.Params),
		})

	case hir.Enumeration:
		sig := lw.checker.Signatures(ref)
		enumName := d.Pattern(d.Name).Name
		enum := Enumeration{Name: enumName}
		for _, caseRef := range d.Cases {
			pt := sig.Patterns[caseRef]
			pat := d.Pattern(caseRef)
			ctor := Constructor{Name: pat.Constructor}
			if len(pt.Entries) > 0 {
				// Entries[0] is always the canonical par/non-opt/non-set
				// overload synthesized by synthesizeEnumOverloads; the
				// other five are var/opt/set liftings of the same
				// declared parameter domains, not distinct constructors.
				ctor.Params = append([]types.Ty(nil), pt.Entries[0].Params...)
			}
			enum.Constructors = append(enum.Constructors, ctor)
		}
		lw.itemMap[ref] = lw.model.addEnumeration(enum)

	case hir.Output:
		lw.itemMap[ref] = lw.model.addOutput(Output{})

	case hir.Solve:
		// HIR carries no satisfy/minimize/maximize discriminator on a
		// Solve item (ItemData.Root is simply "the objective" per its own
		// doc comment); lowering treats every Solve as Minimize when an
		// objective is present. A future HIR revision that distinguishes
		// satisfy/minimize/maximize should populate Kind from that field
		// instead of this default.
		lw.itemMap[ref] = lw.model.addSolve(Solve{Kind: Minimize})

	case hir.Assignment, hir.EnumAssignment, hir.Constraint, hir.TypeAlias, hir.Include:
		// No standalone header: Assignment/EnumAssignment attach to an
		// existing Declaration/Enumeration header; Constraint items are
		// created directly in lowerBody; TypeAlias is inlined at use
		// (domainIdentifier already substitutes its resolved Ty at the
		// signature-typer level, so no synthetic item is needed); Include
		// has no runtime representation.
	}
}

func (lw *lowerer) lowerParams(d *hir.ItemData, domains []types.Ty) []Param {
	params := make([]Param, len(domains))
	for i, dom := range domains {
		params[i] = Param{Domain: dom}
		if i < len(d.Params) {
			pat := d.Pattern(d.Params[i])
			if pat.Kind == hir.Variable {
				params[i].HasName = true
				params[i].Name = pat.Name
			}
		}
	}
	return params
}

// lowerBody fills in ref's definition/body/constraint now that every item
// has a header to reference.
func (lw *lowerer) lowerBody(ref hir.ItemRef, model *hir.Model) {
	it := model.Item(ref)
	d := &it.Data

	switch it.Kind {
	case hir.Assignment, hir.EnumAssignment:
		lw.lowerAssignment(ref, d)

	case hir.Constraint:
		bt := lw.checker.Body(ref)
		expr := lw.lowerExpr(ref, d, bt, d.Root)
		lw.model.addConstraint(Constraint{Expr: expr, TopLevel: true})

	case hir.Function:
		if !d.HasName {
			return
		}
		bt := lw.checker.Body(ref)
		target := lw.itemMap[ref]
		fn := &lw.model.Functions[target.Index]
		for _, p := range fn.Params {
			if p.HasName {
				lw.pushLocal(p.Name)
			}
		}
		fn.HasBody = true
		fn.Body = lw.lowerExpr(ref, d, bt, d.Root)
		for _, p := range fn.Params {
			if p.HasName {
				lw.popLocal()
			}
		}

	case hir.Output:
		bt := lw.checker.Body(ref)
		expr := lw.lowerExpr(ref, d, bt, d.Root)
		target := lw.itemMap[ref]
		lw.model.Outputs[target.Index].Expr = expr

	case hir.Solve:
		// signatureSolve (pkg/check/signature.go) always type-checks
		// d.Root as a var-float objective, so this HIR has no
		// representation for a pure "solve satisfy" with no objective
		// expression at all; every Solve item lowers one.
		bt := lw.checker.Body(ref)
		expr := lw.lowerExpr(ref, d, bt, d.Root)
		target := lw.itemMap[ref]
		sv := &lw.model.Solves[target.Index]
		sv.HasObjective = true
		sv.Objective = expr

	case hir.Declaration, hir.Annotation, hir.Enumeration, hir.TypeAlias, hir.Include:
		// Header already complete; these kinds have no separate body.
	}
}

// lowerAssignment implements the definition-or-equality rule (§4.7): the
// first assignment to a declaration becomes its Definition, every later one
// a synthesized equality Constraint; a destructuring assignment target is
// rewritten into an anonymous root declaration plus one accessor
// declaration per named leaf of the pattern.
func (lw *lowerer) lowerAssignment(item hir.ItemRef, d *hir.ItemData) {
	lw.currentItemData = d
	bt := lw.checker.Body(item)
	rhs := lw.lowerExpr(item, d, bt, d.Root)
	rhsTy := bt.Expressions[d.Root]

	if !d.HasName {
		return
	}
	namePat := d.Pattern(d.Name)

	switch namePat.Kind {
	case hir.Wildcard:
		return

	case hir.Variable:
		scope := lw.scopes.ScopeFor(item)
		res, ok := scope.Resolve(namePat.Name)
		if ok && !res.IsOverloadSet {
			if target, known := lw.itemMap[res.Variable]; known && target.Kind == DeclarationItem {
				decl := &lw.model.Declarations[target.Index]
				if !decl.HasDefinition {
					decl.HasDefinition = true
					decl.Definition = rhs
					return
				}
				lw.synthesizeEqualityConstraint(target, rhs, rhsTy)
				return
			}
		}
		// Unresolvable target (should not happen once scoping is
		// complete): keep the value reachable via a fresh declaration
		// rather than dropping it.
		lw.model.addDeclaration(Declaration{HasDefinition: true, Definition: rhs, Domain: rhsTy, TopLevel: true})

	case hir.TuplePattern, hir.RecordPattern:
		root := lw.model.addDeclaration(Declaration{HasDefinition: true, Definition: rhs, Domain: rhsTy, TopLevel: true})
		rootRef := lw.model.push(Expression{Kind: Ref, Ty: rhsTy, RefTarget: root})
		lw.emitAssignmentAccessors(namePat, rootRef, rhsTy)

	default:
		// Enum/annotation constructor-pattern destructuring is not legal
		// assignment/let grammar (only case matches constructors); nothing
		// to lower.
	}
}

func (lw *lowerer) synthesizeEqualityConstraint(target ItemRef, rhs ExprID, rhsTy types.Ty) {
	lhs := lw.model.push(Expression{Kind: Ref, Ty: rhsTy, RefTarget: target})
	eq := Expression{Kind: Call, Ty: lw.tbl.Boolean(types.Var, types.NonOpt), Args: []ExprID{lhs, rhs}}
	if item, ok := lw.stdlibItem(hir.Eq); ok {
		eq.CalleeTarget = item
	} else {
		eq.IsRawCallee = true
		eq.RawCallee = lw.strs.Intern("=")
	}
	eqID := lw.model.push(eq)
	lw.model.addConstraint(Constraint{Expr: eqID, TopLevel: true})
}

// emitAssignmentAccessors walks a destructuring assignment target pattern,
// synthesizing a top-level Declaration per named leaf, lazily creating only
// the Accessor chain needed to reach that leaf.
func (lw *lowerer) emitAssignmentAccessors(pat hir.Pattern, source ExprID, ty types.Ty) {
	switch pat.Kind {
	case hir.Wildcard:
		return

	case hir.Variable:
		lw.model.addDeclaration(Declaration{HasName: true, Name: pat.Name, HasDefinition: true, Definition: source, Domain: ty, TopLevel: true})

	case hir.TuplePattern:
		fields := lw.tbl.TupleFields(ty)
		for i, subRef := range pat.Elements {
			if i >= len(fields) {
				break
			}
			subPat := lw.patternOf(subRef)
			fty := lw.propagateOpt(ty, fields[i])
			accID := lw.model.push(Expression{Kind: Accessor, Ty: fty, Target: source, IsTupleAccessor: true, Index: i})
			lw.emitAssignmentAccessors(subPat, accID, fty)
		}

	case hir.RecordPattern:
		fields := lw.tbl.RecordFields(ty)
		for _, pf := range pat.Fields {
			raw, ok := fieldType(fields, pf.Name)
			if !ok {
				continue
			}
			fty := lw.propagateOpt(ty, raw)
			subPat := lw.patternOf(pf.Pattern)
			accID := lw.model.push(Expression{Kind: Accessor, Ty: fty, Target: source, FieldName: pf.Name})
			lw.emitAssignmentAccessors(subPat, accID, fty)
		}

	default:
	}
}

// propagateOpt mirrors collectAccessor's opt-propagation rule (pkg/check/
// body.go): accessing a field of an opt container yields an opt field, even
// when the field's own declared domain is non-opt.
func (lw *lowerer) propagateOpt(container, field types.Ty) types.Ty {
	if lw.tbl.Opt(container) == types.Opt {
		return lw.tbl.WithOpt(field, types.Opt)
	}
	return field
}

func fieldType(fields []types.RecordField, name intern.StringID) (types.Ty, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return 0, false
}

// patternOf recurses into a sub-pattern reference belonging to
// currentItemData's own pattern arena.
func (lw *lowerer) patternOf(ref hir.PatternRef) hir.Pattern {
	return lw.currentItemData.Pattern(ref)
}

func (lw *lowerer) stdlibItem(name hir.WellKnown) (ItemRef, bool) {
	if lw.stdlib == nil {
		return ItemRef{}, false
	}
	href, ok := lw.stdlib.Lookup(name)
	if !ok {
		return ItemRef{}, false
	}
	target, ok := lw.itemMap[href]
	return target, ok
}

func (lw *lowerer) pushLocal(name intern.StringID) { lw.locals = append(lw.locals, name) }
func (lw *lowerer) popLocal()                      { lw.locals = lw.locals[:len(lw.locals)-1] }

func (lw *lowerer) isLocal(name intern.StringID) bool {
	for i := len(lw.locals) - 1; i >= 0; i-- {
		if lw.locals[i] == name {
			return true
		}
	}
	return false
}

func (lw *lowerer) freshName(prefix string) intern.StringID {
	lw.freshCounter++
	return lw.strs.Intern(fmt.Sprintf("$%s%d", prefix, lw.freshCounter))
}

// lowerExpr translates one hir expression, recursively, into the shared
// Expression arena. item/d address the hir arena href belongs to; bt is that
// item's already-computed BodyTypes.
func (lw *lowerer) lowerExpr(item hir.ItemRef, d *hir.ItemData, bt *check.BodyTypes, href hir.ExprRef) ExprID {
	prevData := lw.currentItemData
	lw.currentItemData = d
	defer func() { lw.currentItemData = prevData }()

	e := d.Expr(href)
	ty := bt.Expressions[href]
	base := Expression{Ty: ty, Origin: e.Origin}

	switch e.Kind {
	case hir.BoolLit:
		base.Kind = BoolLit
		base.BoolValue = e.BoolValue

	case hir.IntLit:
		base.Kind = IntLit
		if e.IntValue != nil {
			base.IntText = e.IntValue.String()
		}

	case hir.FloatLit:
		base.Kind = FloatLit
		base.FloatValue = e.FloatValue

	case hir.StringLit:
		base.Kind = StringLit
		base.StringValue = e.StringValue

	case hir.Identifier:
		if lw.isLocal(e.Name) {
			base.Kind = LocalRef
			base.LocalName = e.Name
		} else if target, ok := bt.IdentifierResolution[href]; ok {
			base.Kind = Ref
			base.RefTarget = lw.itemMap[target]
		} else {
			// Unresolved identifier: a diagnostic was already reported by
			// the body typer; keep a well-formed node so lowering can
			// still complete.
			base.Kind = LocalRef
			base.LocalName = e.Name
		}

	case hir.ArrayLit:
		base.Kind = ArrayLit
		base.Elements = lw.lowerExprList(item, d, bt, e.Elements)

	case hir.SetLit:
		base.Kind = SetLit
		base.Elements = lw.lowerExprList(item, d, bt, e.Elements)

	case hir.TupleLit:
		base.Kind = TupleLit
		base.Elements = lw.lowerExprList(item, d, bt, e.Elements)

	case hir.RecordLit:
		base.Kind = RecordLit
		base.Fields = make([]RecordField, len(e.Fields))
		for i, f := range e.Fields {
			base.Fields[i] = RecordField{Name: f.Name, Value: lw.lowerExpr(item, d, bt, f.Value)}
		}

	case hir.Comprehension:
		base.Kind = Comprehension
		base.IsSet = e.IsSet
		base.Generators = lw.lowerGenerators(item, d, bt, e.Generators)
		base.Body = lw.lowerExpr(item, d, bt, e.Body)
		lw.popGeneratorLocals(d, e.Generators)

	case hir.Accessor:
		base.Kind = Accessor
		base.Target = lw.lowerExpr(item, d, bt, e.Target)
		base.IsTupleAccessor = e.IsTupleAccessor
		base.Index = e.Index
		base.FieldName = e.FieldName

	case hir.ArrayAccess:
		return lw.lowerArrayAccess(item, d, bt, e, ty, e.Origin)

	case hir.IfThenElse:
		base.Kind = IfThenElse
		base.Condition = lw.lowerExpr(item, d, bt, e.Condition)
		base.Then = lw.lowerExpr(item, d, bt, e.Then)
		if e.HasElse {
			base.Else = lw.lowerExpr(item, d, bt, e.Else)
		} else {
			base.Else = lw.synthesizeDefault(bt.Expressions[e.Then], e.Origin)
		}

	case hir.Case:
		base.Kind = Case
		base.Scrutinee = lw.lowerExpr(item, d, bt, e.Scrutinee)
		base.Arms = make([]CaseArm, len(e.Arms))
		for i, arm := range e.Arms {
			base.Arms[i] = CaseArm{Pattern: d.Pattern(arm.Pattern), Result: lw.lowerExpr(item, d, bt, arm.Result)}
		}

	case hir.Call:
		base.Kind = Call
		base.Args = lw.lowerExprList(item, d, bt, e.Args)

		switch {
		case e.HasCalleeExpr:
			base.IsIndirectCallee = true
			base.CalleeExpr = lw.lowerExpr(item, d, bt, e.CalleeExpr)
		default:
			if res, ok := bt.Calls[href]; ok {
				base.CalleeTarget = lw.itemMap[res.Item]
				base.Overload = res.Overload
			} else {
				base.IsRawCallee = true
				base.RawCallee = e.Callee
			}
		}

	case hir.Let:
		base.Kind = Let
		base.Bindings = lw.lowerLetBindings(item, d, bt, e.Bindings)
		base.LetBody = lw.lowerExpr(item, d, bt, e.LetBody)
		lw.popLetLocals(d, e.Bindings)

	case hir.Lambda:
		base.Kind = Lambda
		base.Params = make([]Param, len(e.LambdaParams))
		for i, pref := range e.LambdaParams {
			pat := d.Pattern(pref)
			pty := bt.Patterns[pref]
			base.Params[i] = Param{Domain: pty}
			if pat.Kind == hir.Variable {
				base.Params[i].HasName = true
				base.Params[i].Name = pat.Name
				lw.pushLocal(pat.Name)
			}
		}
		base.LambdaBody = lw.lowerExpr(item, d, bt, e.LambdaBody)
		for _, p := range base.Params {
			if p.HasName {
				lw.popLocal()
			}
		}
	}

	return lw.model.push(base)
}

// lowerArrayAccess lowers a[ix1,...,ixn]. A purely scalar access (every
// dimension a value index) lowers directly to an ArrayAccess node; an
// access with at least one set-typed (slicing) dimension is rewritten per
// a slicing rewrite into a slice_Nd call over erase_enum'd index sets, wrapped in a
// let-expression that binds the collection and each index to a fresh local
// so none of them is evaluated more than once.
func (lw *lowerer) lowerArrayAccess(item hir.ItemRef, d *hir.ItemData, bt *check.BodyTypes, e hir.Expr, resultTy types.Ty, origin hir.Origin) ExprID {
	n := len(e.Indices)
	sliced := make([]bool, n)
	anySliced := false

	for i, idxRef := range e.Indices {
		if lw.tbl.IsSet(bt.Expressions[idxRef]) {
			sliced[i] = true
			anySliced = true
		}
	}

	if !anySliced {
		target := lw.lowerExpr(item, d, bt, e.Target)
		indices := make([]ExprID, n)

		for i, idxRef := range e.Indices {
			indices[i] = lw.lowerExpr(item, d, bt, idxRef)
		}

		return lw.model.push(Expression{Kind: ArrayAccess, Ty: resultTy, Origin: origin, Target: target, Indices: indices})
	}

	targetExpr := lw.lowerExpr(item, d, bt, e.Target)
	collTy := bt.Expressions[e.Target]
	collName := lw.freshName("arr")

	bindings := []LetBinding{{HasName: true, Name: collName, Value: targetExpr}}
	lw.pushLocal(collName)

	collRef := lw.model.push(Expression{Kind: LocalRef, Ty: collTy, Origin: origin, LocalName: collName})

	indexRefs := make([]ExprID, n)

	for i, idxRef := range e.Indices {
		idxExpr := lw.lowerExpr(item, d, bt, idxRef)
		name := lw.freshName("ix")

		bindings = append(bindings, LetBinding{HasName: true, Name: name, Value: idxExpr})
		lw.pushLocal(name)

		indexRefs[i] = lw.model.push(Expression{Kind: LocalRef, Ty: bt.Expressions[idxRef], Origin: origin, LocalName: name})
	}

	indicesList := make([]ExprID, n)
	keptRanges := make([]ExprID, 0, n)

	for i := 0; i < n; i++ {
		if !sliced[i] {
			setTy, ok := lw.tbl.ParSet(bt.Expressions[e.Indices[i]], types.NonOpt)
			if !ok {
				setTy = lw.tbl.Error()
			}

			singleton := lw.model.push(Expression{Kind: SetLit, Ty: setTy, Origin: origin, Elements: []ExprID{indexRefs[i]}})
			indicesList[i] = lw.eraseEnum(singleton, setTy, origin)

			continue
		}

		rangeArg := indexRefs[i]
		if lw.isInfiniteRange(d, e.Indices[i]) {
			rangeArg = lw.indexSetOfN(collRef, i+1, n, origin)
		}

		indicesList[i] = lw.eraseEnum(rangeArg, bt.Expressions[e.Indices[i]], origin)
		keptRanges = append(keptRanges, rangeArg)
	}

	for range indexRefs {
		lw.popLocal()
	}

	lw.popLocal()

	setOfInt, ok := lw.tbl.ParSet(lw.tbl.Integer(types.Par, types.NonOpt), types.NonOpt)
	if !ok {
		setOfInt = lw.tbl.Error()
	}

	listTy, ok := lw.tbl.Array(lw.tbl.Integer(types.Par, types.NonOpt), setOfInt, types.NonOpt)
	if !ok {
		listTy = lw.tbl.Error()
	}

	listExpr := lw.model.push(Expression{Kind: ArrayLit, Ty: listTy, Origin: origin, Elements: indicesList})

	sliceCall := Expression{Kind: Call, Ty: resultTy, Origin: origin, Args: append([]ExprID{collRef, listExpr}, keptRanges...)}
	if target, ok := lw.stdlibItem(hir.SliceND); ok {
		sliceCall.CalleeTarget = target
	} else {
		sliceCall.IsRawCallee = true
		sliceCall.RawCallee = lw.strs.Intern("slice_Nd")
	}

	sliceID := lw.model.push(sliceCall)

	return lw.model.push(Expression{Kind: Let, Ty: resultTy, Origin: origin, Bindings: bindings, LetBody: sliceID})
}

// isInfiniteRange reports whether idxRef is the bare ".." range operator
// applied with no bounds — the one slicing spelling that is
// rewritten to index_set_iofN(a) rather than passed through as-is, since it
// has no concrete bound of its own to carry.
func (lw *lowerer) isInfiniteRange(d *hir.ItemData, idxRef hir.ExprRef) bool {
	idx := d.Expr(idxRef)

	return idx.Kind == hir.Call && !idx.HasCalleeExpr && len(idx.Args) == 0 && idx.Callee == lw.strs.Intern("..")
}

// indexSetOfN builds a call to the well-known index_set_iofN(a, i, n):
// dimension i (1-based) of n's full index set, as used for an infinite
// slice's kept range.
func (lw *lowerer) indexSetOfN(target ExprID, i, n int, origin hir.Origin) ExprID {
	intTy := lw.tbl.Integer(types.Par, types.NonOpt)

	setTy, ok := lw.tbl.ParSet(intTy, types.NonOpt)
	if !ok {
		setTy = lw.tbl.Error()
	}

	iLit := lw.model.push(Expression{Kind: IntLit, Ty: intTy, Origin: origin, IntText: fmt.Sprintf("%d", i)})
	nLit := lw.model.push(Expression{Kind: IntLit, Ty: intTy, Origin: origin, IntText: fmt.Sprintf("%d", n)})

	call := Expression{Kind: Call, Ty: setTy, Origin: origin, Args: []ExprID{target, iLit, nLit}}
	if item, ok := lw.stdlibItem(hir.IndexSetOfN); ok {
		call.CalleeTarget = item
	} else {
		call.IsRawCallee = true
		call.RawCallee = lw.strs.Intern("index_set_iofN")
	}

	return lw.model.push(call)
}

// eraseEnum builds a call to the well-known erase_enum(x): x with any
// enumeration index type replaced by its underlying integer range, the form
// slice_Nd's index list expects.
func (lw *lowerer) eraseEnum(x ExprID, ty types.Ty, origin hir.Origin) ExprID {
	call := Expression{Kind: Call, Ty: ty, Origin: origin, Args: []ExprID{x}}
	if item, ok := lw.stdlibItem(hir.EraseEnum); ok {
		call.CalleeTarget = item
	} else {
		call.IsRawCallee = true
		call.RawCallee = lw.strs.Intern("erase_enum")
	}

	return lw.model.push(call)
}

func (lw *lowerer) lowerExprList(item hir.ItemRef, d *hir.ItemData, bt *check.BodyTypes, refs []hir.ExprRef) []ExprID {
	if len(refs) == 0 {
		return nil
	}
	out := make([]ExprID, len(refs))
	for i, r := range refs {
		out[i] = lw.lowerExpr(item, d, bt, r)
	}
	return out
}

// lowerGenerators lowers each comprehension generator, pushing any binder
// names (including the fresh variable introduced for a destructured pattern)
// as locals for the duration of lowering the later generators and the
// comprehension body. Callers must pair this with popGeneratorLocals.
func (lw *lowerer) lowerGenerators(item hir.ItemRef, d *hir.ItemData, bt *check.BodyTypes, gens []hir.Generator) []Generator {
	out := make([]Generator, len(gens))
	for i, g := range gens {
		source := lw.lowerExpr(item, d, bt, g.Source)
		pat := d.Pattern(g.Pattern)

		switch pat.Kind {
		case hir.Wildcard:
			out[i] = Generator{Source: source}
			if g.HasWhere {
				out[i].HasWhere = true
				out[i].Where = lw.lowerExpr(item, d, bt, g.Where)
			}

		case hir.Variable:
			lw.pushLocal(pat.Name)
			out[i] = Generator{HasName: true, Name: pat.Name, Source: source}
			if g.HasWhere {
				out[i].HasWhere = true
				out[i].Where = lw.lowerExpr(item, d, bt, g.Where)
			}

		default:
			// Destructuring generator pattern (§4.7): split into a fresh
			// plain binder plus a where-clause refutability check
			// ("case fresh of pattern -> true | _ -> false"), ANDed with
			// any original where clause.
			fresh := lw.freshName("gen")
			lw.pushLocal(fresh)

			trueID := lw.model.push(Expression{Kind: BoolLit, BoolValue: true, Ty: lw.tbl.Boolean(types.Par, types.NonOpt)})
			falseID := lw.model.push(Expression{Kind: BoolLit, BoolValue: false, Ty: lw.tbl.Boolean(types.Par, types.NonOpt)})
			scrutineeTy := bt.Patterns[g.Pattern]
			scrutinee := lw.model.push(Expression{Kind: LocalRef, LocalName: fresh, Ty: scrutineeTy})
			caseExpr := lw.model.push(Expression{
				Kind:      Case,
				Ty:        lw.tbl.Boolean(types.Par, types.NonOpt),
				Scrutinee: scrutinee,
				Arms: []CaseArm{
					{Pattern: pat, Result: trueID},
					{Pattern: hir.Pattern{Kind: hir.Wildcard}, Result: falseID},
				},
			})

			where := caseExpr
			if g.HasWhere {
				original := lw.lowerExpr(item, d, bt, g.Where)
				where = lw.model.push(Expression{
					Kind:      IfThenElse,
					Ty:        lw.tbl.Boolean(types.Par, types.NonOpt),
					Condition: caseExpr,
					Then:      original,
					Else:      falseID,
				})
			}

			out[i] = Generator{HasName: true, Name: fresh, Source: source, HasWhere: true, Where: where}
		}
	}
	return out
}

func (lw *lowerer) popGeneratorLocals(d *hir.ItemData, gens []hir.Generator) {
	for _, g := range gens {
		pat := d.Pattern(g.Pattern)
		if pat.Kind == hir.Wildcard {
			continue
		}
		lw.popLocal()
	}
}

// lowerLetBindings lowers each let binding. A Variable-pattern binding
// becomes a plain LetBinding; a destructuring (tuple/record) binding is
// rewritten to a synthetic LetBinding per named leaf, each an Accessor
// chain rooted directly at the already-lowered value (no intermediate
// binder is needed: ExprIDs are first-class addressable handles in the
// shared arena, unlike the assignment case where a top-level Declaration
// is the only addressable home for the RHS).
func (lw *lowerer) lowerLetBindings(item hir.ItemRef, d *hir.ItemData, bt *check.BodyTypes, bindings []hir.LetBinding) []LetBinding {
	var out []LetBinding
	for _, b := range bindings {
		value := lw.lowerExpr(item, d, bt, b.Value)
		pat := d.Pattern(b.Pattern)
		lw.emitLetAccessors(pat, b.Pattern, value, bt, &out)
	}
	return out
}

func (lw *lowerer) emitLetAccessors(pat hir.Pattern, patRef hir.PatternRef, source ExprID, bt *check.BodyTypes, out *[]LetBinding) {
	switch pat.Kind {
	case hir.Wildcard:
		return

	case hir.Variable:
		lw.pushLocal(pat.Name)
		*out = append(*out, LetBinding{HasName: true, Name: pat.Name, Value: source})

	case hir.TuplePattern:
		for i, subRef := range pat.Elements {
			subPat := lw.patternOf(subRef)
			subTy := bt.Patterns[subRef]
			accID := lw.model.push(Expression{Kind: Accessor, Ty: subTy, Target: source, IsTupleAccessor: true, Index: i})
			lw.emitLetAccessors(subPat, subRef, accID, bt, out)
		}

	case hir.RecordPattern:
		for _, pf := range pat.Fields {
			subPat := lw.patternOf(pf.Pattern)
			subTy := bt.Patterns[pf.Pattern]
			accID := lw.model.push(Expression{Kind: Accessor, Ty: subTy, Target: source, FieldName: pf.Name})
			lw.emitLetAccessors(subPat, pf.Pattern, accID, bt, out)
		}

	default:
		// Not legal let-binding grammar (constructor patterns only match
		// in case); nothing to lower.
	}
}

func (lw *lowerer) popLetLocals(d *hir.ItemData, bindings []hir.LetBinding) {
	for _, b := range bindings {
		countLocalBinders(d.Pattern(b.Pattern), lw)
	}
}

// countLocalBinders pops exactly as many locals as emitLetAccessors pushed
// for this pattern (one per named Variable leaf), mirroring its own
// recursion so the two stay in lockstep.
func countLocalBinders(pat hir.Pattern, lw *lowerer) {
	switch pat.Kind {
	case hir.Variable:
		lw.popLocal()
	case hir.TuplePattern:
		for _, subRef := range pat.Elements {
			countLocalBinders(lw.patternOf(subRef), lw)
		}
	case hir.RecordPattern:
		for _, pf := range pat.Fields {
			countLocalBinders(lw.patternOf(pf.Pattern), lw)
		}
	}
}

// synthesizeDefault builds the type-appropriate default value an
// if-then-without-else synthesizes for its missing branch (§4.7): "<>" for
// an opt type, true for bool, empty string/array/set, zero for numerics, a
// tuple/record of per-field defaults, and an empty annotation.
func (lw *lowerer) synthesizeDefault(ty types.Ty, origin hir.Origin) ExprID {
	if lw.tbl.Opt(ty) == types.Opt {
		return lw.model.push(Expression{Kind: AbsentLit, Ty: ty, Origin: origin})
	}

	switch {
	case lw.tbl.IsBoolean(ty):
		return lw.model.push(Expression{Kind: BoolLit, BoolValue: true, Ty: ty, Origin: origin})
	case lw.tbl.IsInteger(ty):
		return lw.model.push(Expression{Kind: IntLit, IntText: "0", Ty: ty, Origin: origin})
	case lw.tbl.IsFloat(ty):
		return lw.model.push(Expression{Kind: FloatLit, FloatValue: 0, Ty: ty, Origin: origin})
	case lw.tbl.IsString(ty):
		return lw.model.push(Expression{Kind: StringLit, StringValue: "", Ty: ty, Origin: origin})
	case lw.tbl.IsArray(ty):
		return lw.model.push(Expression{Kind: ArrayLit, Ty: ty, Origin: origin})
	case lw.tbl.IsSet(ty):
		return lw.model.push(Expression{Kind: SetLit, Ty: ty, Origin: origin})
	case lw.tbl.IsTuple(ty):
		fields := lw.tbl.TupleFields(ty)
		elems := make([]ExprID, len(fields))
		for i, f := range fields {
			elems[i] = lw.synthesizeDefault(f, origin)
		}
		return lw.model.push(Expression{Kind: TupleLit, Ty: ty, Elements: elems, Origin: origin})
	case lw.tbl.IsRecord(ty):
		fields := lw.tbl.RecordFields(ty)
		out := make([]RecordField, len(fields))
		for i, f := range fields {
			out[i] = RecordField{Name: f.Name, Value: lw.synthesizeDefault(f.Type, origin)}
		}
		return lw.model.push(Expression{Kind: RecordLit, Ty: ty, Fields: out, Origin: origin})
	case lw.tbl.IsAnnotation(ty):
		if item, ok := lw.stdlibItem(hir.EmptyAnnotation); ok {
			return lw.model.push(Expression{Kind: Ref, Ty: ty, RefTarget: item, Origin: origin})
		}
		return lw.model.push(Expression{Kind: AbsentLit, Ty: ty, Origin: origin})
	default:
		// Enum, function, tyvar, and error domains have no default-value
		// construction rule in §4.7 (enums in particular are a closed set
		// with no "zero" case); fall back to an absent marker rather than
		// fabricating a constructor call that may not exist.
		return lw.model.push(Expression{Kind: AbsentLit, Ty: ty, Origin: origin})
	}
}
