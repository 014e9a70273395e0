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

// Package check computes, for one item at a time, the public "signature"
// types of its declared patterns without entering expression bodies, and
// (once a signature is available) the bidirectional types of the bodies
// themselves.
package check

import (
	"fmt"

	"github.com/shackle-lang/go-shackle/pkg/diag"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/schedule"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// PatternTyKind tags what a bound pattern denotes at the signature level.
type PatternTyKind int

const (
	// Variable is an ordinary value binding (a declaration or a function
	// parameter) at a concrete type.
	Variable PatternTyKind = iota
	// EnumAtom is a nullary enum case.
	EnumAtom
	// AnnotationAtom is a nullary annotation.
	AnnotationAtom
	// AnnotationConstructor is a functional annotation; see Entry/Mirror.
	AnnotationConstructor
	// EnumConstructor is a functional enum case's six lifted overloads.
	EnumConstructor
	// EnumDestructure is the matching destructor family for an
	// EnumConstructor case.
	EnumDestructure
	// FunctionPattern is a user-defined function's single signature.
	FunctionPattern
	// TyVarPattern is a function's own type-inst-variable binder.
	TyVarPattern
	// TypeAliasPattern binds a name to an aliased domain.
	TypeAliasPattern
	// Destructuring is a tuple/record pattern with no standalone type of
	// its own; its shape is checked structurally against the matched
	// value instead.
	Destructuring
	// Computing is not produced by this checker; an identifier that
	// resolves back into an item mid-computation gets the error type
	// instead (see typeOfItem).
	Computing
)

// FunctionEntry is one overload signature synthesized for a constructor,
// destructor, function, or annotation pattern.
type FunctionEntry struct {
	Params []types.Ty
	Ret    types.Ty
	TyVars []types.TyVarDesc
}

// PatternTy is the computed signature-level meaning of one bound pattern.
type PatternTy struct {
	Kind PatternTyKind
	// Ty is meaningful for Variable, EnumAtom, AnnotationAtom, TyVarPattern
	// and TypeAliasPattern.
	Ty types.Ty
	// Entry is meaningful for FunctionPattern and AnnotationConstructor.
	Entry FunctionEntry
	// Mirror is AnnotationConstructor's destructuring counterpart: a
	// single-parameter entry taking `ann` and returning the constructor's
	// parameter tuple (or its lone parameter, if unary). Spec 4.4 asks for
	// this mirror without giving it a PatternTy tag of its own, so it
	// rides alongside the constructor entry rather than occupying a
	// separate pattern slot.
	Mirror *FunctionEntry
	// Entries is meaningful for EnumConstructor: the six par/var/opt/
	// var-opt/set/var-set constructor overloads.
	Entries []FunctionEntry
	// Destructor is EnumConstructor's destructuring counterpart — the
	// matching EnumDestructure family — carried alongside the constructor
	// entry rather than occupying a separate pattern slot, since this
	// model has no standalone pattern for an implicit destructor (compare
	// Mirror above for the analogous AnnotationConstructor case).
	Destructor []FunctionEntry
}

// SignatureTypes is the per-item result of signature typing.
type SignatureTypes struct {
	Patterns             map[hir.PatternRef]PatternTy
	Expressions          map[hir.ExprRef]types.Ty
	IdentifierResolution map[hir.ExprRef]hir.ItemRef
	PatternResolution    map[hir.PatternRef]hir.ItemRef
}

func newSignatureTypes() SignatureTypes {
	return SignatureTypes{
		Patterns:             make(map[hir.PatternRef]PatternTy),
		Expressions:          make(map[hir.ExprRef]types.Ty),
		IdentifierResolution: make(map[hir.ExprRef]hir.ItemRef),
		PatternResolution:    make(map[hir.PatternRef]hir.ItemRef),
	}
}

// ScopeProvider supplies the lexical scope an item's signature-position
// expressions resolve identifiers against. The surrounding compiler
// typically keeps one Scope per module/nesting level and hands back
// whichever applies to item.
type ScopeProvider interface {
	ScopeFor(item hir.ItemRef) hir.Scope
}

type itemStatus int

const (
	notStarted itemStatus = iota
	computingStatus
	doneStatus
)

type cacheEntry struct {
	status itemStatus
	sig    SignatureTypes
}

// Checker computes and memoizes SignatureTypes, one item at a time, calling
// back into itself (rather than the scheduler) to resolve a dependency's
// type on demand; the scheduler (pkg/schedule) is only responsible for
// choosing a safe order and reporting cycles, not for driving computation.
type Checker struct {
	Table    *types.Table
	NewTypes *intern.NewTypes
	Strings  *intern.Strings
	Model    *hir.Model
	Scopes   ScopeProvider
	Diags    *diag.Bag

	cache     map[hir.ItemRef]*cacheEntry
	bodyCache map[hir.ItemRef]*BodyTypes
	rangeOps  map[intern.StringID]bool
	// absentLits recognizes the reserved nullary "<>" (absent) literal,
	// which this HIR represents as a Call with no arguments against a
	// sentinel callee name rather than a dedicated ExprKind — mirroring
	// how rangeOps recognizes the range-operator spellings.
	absentLits map[intern.StringID]bool

	// activeTyVars holds the type-inst-variable bindings of the Function
	// item currently computing its own parameter/return domains; a
	// tyvar's name never resolves via Scope (it is not an item), so
	// domainIdentifier checks this first. Single-threaded per item:
	// signatureFunction sets it on entry and clears it on return, and a
	// Function's own domain expressions never recurse back into
	// signatureFunction for the same item.
	activeTyVars map[intern.StringID]types.Ty
}

// NewChecker constructs a signature/body checker over model. strs is the
// same interner the surrounding compiler used to intern identifier and
// callee names throughout model, so the checker can recognize the four
// reserved range-operator spellings, and the reserved "<>" absent-literal
// spelling, by StringID rather than by re-parsing text.
func NewChecker(tbl *types.Table, nt *intern.NewTypes, strs *intern.Strings, model *hir.Model, scopes ScopeProvider, diags *diag.Bag) *Checker {
	rangeOps := make(map[intern.StringID]bool, 4)
	for _, op := range []string{"..", "<..", "..<", "<..<"} {
		rangeOps[strs.Intern(op)] = true
	}

	absentLits := map[intern.StringID]bool{strs.Intern("<>"): true}

	return &Checker{
		Table:      tbl,
		NewTypes:   nt,
		Strings:    strs,
		Model:      model,
		Scopes:     scopes,
		Diags:      diags,
		cache:      make(map[hir.ItemRef]*cacheEntry),
		bodyCache:  make(map[hir.ItemRef]*BodyTypes),
		rangeOps:   rangeOps,
		absentLits: absentLits,
	}
}

// ComputeAll reports a TypeInferenceFailure for every item caught in a
// cycle (as detected by pkg/schedule), then computes every item's
// signature in the given order. order and cycles are normally both
// obtained from a single schedule.Scheduler.Run() call.
func (c *Checker) ComputeAll(order []hir.ItemRef, cycles []schedule.Cycle) {
	for _, cyc := range cycles {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.TypeInferenceFailure,
			Message: fmt.Sprintf("cyclic signature reference via item %d", cyc.Via),
			Item:    cyc.Item,
		})
	}

	for _, item := range order {
		c.Signatures(item)
	}
}

// Signatures returns item's fully computed SignatureTypes, computing it (and
// recursively any signature it depends on) on first request. Safe to call
// multiple times; subsequent calls return the memoized result.
func (c *Checker) Signatures(item hir.ItemRef) *SignatureTypes {
	e := c.entry(item)

	switch e.status {
	case doneStatus:
		return &e.sig
	case computingStatus:
		// A well-formed caller never re-enters a Computing item directly;
		// this only happens via typeOfItem's cycle guard below, which
		// returns the error type instead of recursing here.
		return &e.sig
	}

	e.status = computingStatus
	e.sig = newSignatureTypes()

	entryItem := c.Model.Item(item)
	scope := c.Scopes.ScopeFor(item)

	switch entryItem.Kind {
	case hir.Declaration:
		c.signatureDeclaration(item, entryItem, scope, &e.sig)
	case hir.Function:
		c.signatureFunction(item, entryItem, scope, &e.sig)
	case hir.Annotation:
		c.signatureAnnotation(item, entryItem, scope, &e.sig)
	case hir.Enumeration:
		c.signatureEnumeration(item, entryItem, scope, &e.sig)
	case hir.TypeAlias:
		c.signatureTypeAlias(item, entryItem, scope, &e.sig)
	case hir.Solve:
		c.signatureSolve(item, entryItem, scope, &e.sig)
	}

	e.status = doneStatus

	return &e.sig
}

func (c *Checker) entry(item hir.ItemRef) *cacheEntry {
	if e, ok := c.cache[item]; ok {
		return e
	}

	e := &cacheEntry{}
	c.cache[item] = e

	return e
}

// typeOfItem is how one item's domain expression refers to another item's
// declared type: its own Name pattern's PatternTy.Ty. A reference back into
// an item still being computed yields the error type rather than recursing
// (the scheduler reports the cycle itself; this just keeps D from looping).
func (c *Checker) typeOfItem(ref hir.ItemRef) types.Ty {
	e := c.entry(ref)
	if e.status == computingStatus {
		return c.Table.Error()
	}

	sig := c.Signatures(ref)

	data := &c.Model.Items[ref].Data
	if !data.HasName {
		return c.Table.Error()
	}

	pt, ok := sig.Patterns[data.Name]
	if !ok {
		return c.Table.Error()
	}

	return pt.Ty
}

// ----------------------------------------------------------------------------
// Declaration
// ----------------------------------------------------------------------------

func (c *Checker) signatureDeclaration(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	ty := c.domainType(item, d, scope, d.Root, sig)
	if d.HasName {
		sig.Patterns[d.Name] = PatternTy{Kind: Variable, Ty: ty}
	}
}

// ----------------------------------------------------------------------------
// Function
// ----------------------------------------------------------------------------

func (c *Checker) signatureFunction(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	tyVars := make([]types.TyVarDesc, len(d.TyVars))

	c.activeTyVars = make(map[intern.StringID]types.Ty, len(d.TyVars))
	defer func() { c.activeTyVars = nil }()

	for i, name := range d.TyVars {
		desc := types.TyVarDesc{
			ID:         c.NewTypes.InternFromPattern(uint64(item)<<32|uint64(i), "$"+c.Strings.Lookup(name)),
			Varifiable: true,
			Enumerable: true,
			Indexable:  true,
		}
		tyVars[i] = desc
		c.activeTyVars[name] = c.Table.TypeInstVar(desc)
	}

	params := make([]types.Ty, len(d.Params))

	for i, pref := range d.Params {
		pty := c.domainType(item, d, scope, d.ParamDomains[i], sig)
		sig.Patterns[pref] = PatternTy{Kind: Variable, Ty: pty}
		params[i] = pty
	}

	ret := c.domainType(item, d, scope, d.Root, sig)

	entry := FunctionEntry{Params: params, Ret: ret, TyVars: tyVars}

	if d.HasName {
		sig.Patterns[d.Name] = PatternTy{Kind: FunctionPattern, Entry: entry}
	}
}

// ----------------------------------------------------------------------------
// Annotation
// ----------------------------------------------------------------------------

func (c *Checker) signatureAnnotation(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	if len(d.Params) == 0 {
		if d.HasName {
			sig.Patterns[d.Name] = PatternTy{Kind: AnnotationAtom, Ty: c.Table.AnnotationTy(types.NonOpt)}
		}

		return
	}

	params := make([]types.Ty, len(d.Params))

	for i, pref := range d.Params {
		pty := c.domainType(item, d, scope, d.ParamDomains[i], sig)
		sig.Patterns[pref] = PatternTy{Kind: Variable, Ty: pty}
		params[i] = pty
	}

	entry := FunctionEntry{Params: params, Ret: c.Table.AnnotationTy(types.NonOpt)}

	mirrorRet := params[0]
	if len(params) > 1 {
		mirrorRet = c.Table.Tuple(params, types.NonOpt)
	}

	mirror := FunctionEntry{Params: []types.Ty{c.Table.AnnotationTy(types.NonOpt)}, Ret: mirrorRet}

	if d.HasName {
		sig.Patterns[d.Name] = PatternTy{Kind: AnnotationConstructor, Entry: entry, Mirror: &mirror}
	}
}

// ----------------------------------------------------------------------------
// Enumeration
// ----------------------------------------------------------------------------

func (c *Checker) signatureEnumeration(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	enumName := "enum"
	if d.HasName {
		enumName = c.Strings.Lookup(d.Pattern(d.Name).Name)
	}

	enumID := c.NewTypes.InternFromPattern(uint64(item)<<32, enumName)

	if d.HasName {
		elem := c.Table.Enum(types.Par, types.NonOpt, enumID)

		asSet, ok := c.Table.ParSet(elem, types.NonOpt)
		if !ok {
			asSet = c.Table.Error()
		}

		sig.Patterns[d.Name] = PatternTy{Kind: Variable, Ty: asSet}
	}

	for i, caseRef := range d.Cases {
		var domains []hir.ExprRef
		if i < len(d.CaseDomains) {
			domains = d.CaseDomains[i]
		}

		c.signatureEnumCase(item, d, scope, caseRef, domains, enumID, sig)
	}
}

func (c *Checker) signatureEnumCase(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, caseRef hir.PatternRef, domains []hir.ExprRef, enumID intern.NewTypeID, sig *SignatureTypes) {
	if len(domains) == 0 {
		sig.Patterns[caseRef] = PatternTy{Kind: EnumAtom, Ty: c.Table.Enum(types.Par, types.NonOpt, enumID)}
		return
	}

	params := make([]types.Ty, len(domains))

	for i, exprRef := range domains {
		params[i] = c.domainType(item, d, scope, exprRef, sig)

		if !c.Table.KnownPar(params[i]) || !c.Table.KnownEnumerable(params[i]) {
			c.Diags.Report(diag.Diagnostic{
				Kind:    diag.IllegalType,
				Message: "enum case parameters must be par and enumerable",
				Item:    item,
			})

			params[i] = c.Table.Error()
		}
	}

	ctor, _ := c.synthesizeEnumOverloads(enumID, params, false)
	dtor, _ := c.synthesizeEnumOverloads(enumID, params, true)

	sig.Patterns[caseRef] = PatternTy{Kind: EnumConstructor, Entries: ctor, Destructor: dtor}
}

// synthesizeEnumOverloads lifts params/the enum's own type through the six
// par/var/opt/var-opt/set/var-set overloads spec 4.4 asks for. destructor
// swaps params and return: a destructor accepts the enum value and returns
// the (lifted) parameter tuple (or lone parameter, if unary).
func (c *Checker) synthesizeEnumOverloads(enumID intern.NewTypeID, params []types.Ty, destructor bool) ([]FunctionEntry, bool) {
	variants := []struct {
		vr    types.VarType
		opt   types.OptType
		asSet bool
	}{
		{types.Par, types.NonOpt, false},
		{types.Var, types.NonOpt, false},
		{types.Par, types.Opt, false},
		{types.Var, types.Opt, false},
		{types.Par, types.NonOpt, true},
		{types.Var, types.NonOpt, true},
	}

	entries := make([]FunctionEntry, 0, len(variants))

	for _, v := range variants {
		lifted := make([]types.Ty, len(params))

		ok := true

		for i, p := range params {
			lp, lok := c.liftEnumParam(p, v.vr, v.opt, v.asSet)
			if !lok {
				ok = false
				break
			}

			lifted[i] = lp
		}

		if !ok {
			continue
		}

		enumTy := c.Table.Enum(v.vr, v.opt, enumID)
		if v.asSet {
			var sok bool

			enumTy, sok = c.Table.ParSet(c.Table.Enum(types.Par, v.opt, enumID), types.NonOpt)
			if sok && v.vr == types.Var {
				enumTy, sok = c.Table.WithInst(enumTy, types.Var)
			}

			if !sok {
				continue
			}
		}

		var entry FunctionEntry
		if destructor {
			ret := lifted[0]
			if len(lifted) > 1 {
				ret = c.Table.Tuple(lifted, types.NonOpt)
			}

			entry = FunctionEntry{Params: []types.Ty{enumTy}, Ret: ret}
		} else {
			entry = FunctionEntry{Params: lifted, Ret: enumTy}
		}

		entries = append(entries, entry)
	}

	return entries, len(entries) > 0
}

func (c *Checker) liftEnumParam(p types.Ty, vr types.VarType, opt types.OptType, asSet bool) (types.Ty, bool) {
	out := p

	if asSet {
		s, ok := c.Table.ParSet(out, types.NonOpt)
		if !ok {
			return 0, false
		}

		out = s
	}

	if vr == types.Var {
		v, ok := c.Table.WithInst(out, types.Var)
		if !ok {
			return 0, false
		}

		out = v
	}

	if opt == types.Opt {
		out = c.Table.WithOpt(out, types.Opt)
	}

	return out, true
}

// ----------------------------------------------------------------------------
// TypeAlias
// ----------------------------------------------------------------------------

func (c *Checker) signatureTypeAlias(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	ty := c.domainType(item, d, scope, d.Root, sig)
	if d.HasName {
		sig.Patterns[d.Name] = PatternTy{Kind: TypeAliasPattern, Ty: ty}
	}
}

// ----------------------------------------------------------------------------
// Solve
// ----------------------------------------------------------------------------

func (c *Checker) signatureSolve(item hir.ItemRef, it *hir.Item, scope hir.Scope, sig *SignatureTypes) {
	d := &it.Data

	objTy := c.domainType(item, d, scope, d.Root, sig)

	vfloat := c.Table.Float(types.Var, types.NonOpt)
	if !c.Table.IsSubtypeOf(objTy, vfloat) {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.TypeMismatch,
			Message: "solve objective must be a subtype of var float",
			Item:    item,
		})
	}
}

// ----------------------------------------------------------------------------
// Restricted domain-expression evaluator
// ----------------------------------------------------------------------------

// domainType computes the type of an expression occurring in signature
// position (a type ascription or an enum bound): literals, identifiers,
// compound literals, and range/indexing calls. It is deliberately narrower
// than the full body typer (E): signature position never needs control
// flow, comprehensions or lambdas, only the shapes a domain expression can
// take.
func (c *Checker) domainType(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, ref hir.ExprRef, sig *SignatureTypes) types.Ty {
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
		ty = c.domainIdentifier(item, scope, e, sig, ref)
	case hir.ArrayLit:
		ty = c.domainArrayLit(item, d, scope, e, sig)
	case hir.SetLit:
		ty = c.domainSetLit(item, d, scope, e, sig)
	case hir.TupleLit:
		ty = c.domainTupleLit(item, d, scope, e, sig)
	case hir.RecordLit:
		ty = c.domainRecordLit(item, d, scope, e, sig)
	case hir.Call:
		ty = c.domainCall(item, d, scope, e, sig)
	default:
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.IllegalType,
			Message: "expression is not valid in a type-ascription position",
			Item:    item,
			Primary: e.Origin,
		})

		ty = c.Table.Error()
	}

	sig.Expressions[ref] = ty

	return ty
}

func (c *Checker) domainIdentifier(item hir.ItemRef, scope hir.Scope, e hir.Expr, sig *SignatureTypes, ref hir.ExprRef) types.Ty {
	// A type-inst-variable binder (e.g. "$T") is never an item, so it never
	// resolves via Scope; a Function computing its own parameter/return
	// domains checks its own tyvar bindings first.
	if tv, ok := c.activeTyVars[e.Name]; ok {
		return tv
	}

	res, ok := scope.Resolve(e.Name)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.UndefinedIdentifier,
			Message: "undefined identifier in type-ascription position",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	if res.IsOverloadSet {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.IllegalType,
			Message: "a function or annotation name cannot appear in a type-ascription position",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	sig.IdentifierResolution[ref] = res.Variable

	ty := c.typeOfItem(res.Variable)

	// A bare enum-name reference ("E: x;") denotes the set of the enum's
	// values; the declared domain for a fresh binding is the element type
	// of that set, mirroring the enum's own Variable pattern being bound
	// to set_of(enum_type) in signatureEnumeration above.
	if c.Table.IsSet(ty) {
		return c.Table.SetElem(ty)
	}

	return ty
}

func (c *Checker) domainArrayLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, sig *SignatureTypes) types.Ty {
	if len(e.Elements) == 0 {
		return c.Table.Bottom(types.NonOpt)
	}

	elem := c.domainType(item, d, scope, e.Elements[0], sig)
	for _, el := range e.Elements[1:] {
		ety := c.domainType(item, d, scope, el, sig)

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

	dim := c.Table.Integer(types.Par, types.NonOpt)

	arr, ok := c.Table.Array(dim, elem, types.NonOpt)
	if !ok {
		return c.Table.Error()
	}

	return arr
}

func (c *Checker) domainSetLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, sig *SignatureTypes) types.Ty {
	if len(e.Elements) == 0 {
		s, _ := c.Table.ParSet(c.Table.Bottom(types.NonOpt), types.NonOpt)
		return s
	}

	elem := c.domainType(item, d, scope, e.Elements[0], sig)
	for _, el := range e.Elements[1:] {
		ety := c.domainType(item, d, scope, el, sig)

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

	s, ok := c.Table.ParSet(elem, types.NonOpt)
	if !ok {
		return c.Table.Error()
	}

	return s
}

func (c *Checker) domainTupleLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, sig *SignatureTypes) types.Ty {
	fields := make([]types.Ty, len(e.Elements))

	for i, el := range e.Elements {
		fields[i] = c.domainType(item, d, scope, el, sig)
	}

	return c.Table.Tuple(fields, types.NonOpt)
}

func (c *Checker) domainRecordLit(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, sig *SignatureTypes) types.Ty {
	fields := make([]types.RecordField, len(e.Fields))

	for i, f := range e.Fields {
		fields[i] = types.RecordField{Name: f.Name, Type: c.domainType(item, d, scope, f.Value, sig)}
	}

	rec, ok := c.Table.Record(fields, types.NonOpt)
	if !ok {
		c.Diags.Report(diag.Diagnostic{
			Kind:    diag.IllegalType,
			Message: "record type has duplicate field names",
			Item:    item,
			Primary: e.Origin,
		})

		return c.Table.Error()
	}

	return rec
}

// domainCall handles the range family (`..`, `<..`, `..<`, `<..<`): in
// signature position these describe a bound, not a container, so their
// type is simply int regardless of arity or operand values. Any other
// callee in signature position is rejected — arbitrary function calls
// belong to the body typer (E), not to domain computation.
func (c *Checker) domainCall(item hir.ItemRef, d *hir.ItemData, scope hir.Scope, e hir.Expr, sig *SignatureTypes) types.Ty {
	if c.rangeOps[e.Callee] {
		for _, argRef := range e.Args {
			c.domainType(item, d, scope, argRef, sig)
		}

		return c.Table.Integer(types.Par, types.NonOpt)
	}

	c.Diags.Report(diag.Diagnostic{
		Kind:    diag.IllegalType,
		Message: "function calls other than range operators are not valid in a type-ascription position",
		Item:    item,
		Primary: e.Origin,
	})

	return c.Table.Error()
}
