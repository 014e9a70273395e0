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
package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/shackle-lang/go-shackle/pkg/check"
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/schedule"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// A fixture is a hand-authored stand-in for what a real CST-to-HIR lowerer
// would produce: the same hir.Model shape, except every intern.StringID is
// spelled out as a plain string so a person can write one by hand. Loading a
// fixture interns those strings, builds the hir.Model the checker expects,
// and derives the one piece of infrastructure a real front end would also
// own: a flat global hir.Scope resolving every named top-level item.

// jItem mirrors hir.Item/hir.ItemData, field for field, with every name
// spelled as a string instead of a pre-interned StringID.
type jItem struct {
	Kind string `json:"kind"`
	Data jData  `json:"data"`
}

type jData struct {
	Exprs        []jExpr    `json:"exprs"`
	Patterns     []jPattern `json:"patterns"`
	Annotations  [][]int    `json:"annotations,omitempty"`
	Name         int        `json:"name"`
	HasName      bool       `json:"hasName"`
	Root         int        `json:"root"`
	Params       []int      `json:"params,omitempty"`
	ParamDomains []int      `json:"paramDomains,omitempty"`
	TyVars       []string   `json:"tyVars,omitempty"`
	Cases        []int      `json:"cases,omitempty"`
	CaseDomains  [][]int    `json:"caseDomains,omitempty"`
	Pure         bool       `json:"pure"`
}

type jPattern struct {
	Kind        string          `json:"kind"`
	Name        string          `json:"name,omitempty"`
	Elements    []int           `json:"elements,omitempty"`
	Fields      []jPatternField `json:"fields,omitempty"`
	Constructor string          `json:"constructor,omitempty"`
	Args        []int           `json:"args,omitempty"`
}

type jPatternField struct {
	Name    string `json:"name"`
	Pattern int    `json:"pattern"`
}

type jExpr struct {
	Kind               string        `json:"kind"`
	BoolValue          bool          `json:"boolValue,omitempty"`
	IntValue           string        `json:"intValue,omitempty"`
	FloatValue         float64       `json:"floatValue,omitempty"`
	StringValue        string        `json:"stringValue,omitempty"`
	Name               string        `json:"name,omitempty"`
	Elements           []int         `json:"elements,omitempty"`
	Fields             []jField      `json:"fields,omitempty"`
	Generators         []jGenerator  `json:"generators,omitempty"`
	Body               int           `json:"body,omitempty"`
	IsSet              bool          `json:"isSet,omitempty"`
	Target             int           `json:"target,omitempty"`
	IsTupleAccessor    bool          `json:"isTupleAccessor,omitempty"`
	Index              int           `json:"index,omitempty"`
	FieldName          string        `json:"fieldName,omitempty"`
	Condition          int           `json:"condition,omitempty"`
	Then               int           `json:"then,omitempty"`
	HasElse            bool          `json:"hasElse,omitempty"`
	Else               int           `json:"else,omitempty"`
	Scrutinee          int           `json:"scrutinee,omitempty"`
	Arms               []jCaseArm    `json:"arms,omitempty"`
	Callee             string        `json:"callee,omitempty"`
	Args               []int         `json:"args,omitempty"`
	Bindings           []jLetBinding `json:"bindings,omitempty"`
	LetBody            int           `json:"letBody,omitempty"`
	LambdaParams       []int         `json:"lambdaParams,omitempty"`
	LambdaParamDomains []int         `json:"lambdaParamDomains,omitempty"`
	LambdaBody         int           `json:"lambdaBody,omitempty"`
}

type jField struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type jGenerator struct {
	Pattern  int  `json:"pattern"`
	Source   int  `json:"source"`
	HasWhere bool `json:"hasWhere,omitempty"`
	Where    int  `json:"where,omitempty"`
}

type jCaseArm struct {
	Pattern int `json:"pattern"`
	Result  int `json:"result"`
}

type jLetBinding struct {
	Pattern int `json:"pattern"`
	Value   int `json:"value"`
}

// jModel is the top-level fixture document.
type jModel struct {
	Items []jItem `json:"items"`
}

var itemKinds = map[string]hir.ItemKind{
	"Annotation": hir.Annotation, "Assignment": hir.Assignment,
	"Constraint": hir.Constraint, "Declaration": hir.Declaration,
	"Enumeration": hir.Enumeration, "EnumAssignment": hir.EnumAssignment,
	"Function": hir.Function, "Output": hir.Output, "Solve": hir.Solve,
	"TypeAlias": hir.TypeAlias, "Include": hir.Include,
}

var patternKinds = map[string]hir.PatternKind{
	"Wildcard": hir.Wildcard, "Variable": hir.Variable,
	"TuplePattern": hir.TuplePattern, "RecordPattern": hir.RecordPattern,
	"EnumAtomPattern": hir.EnumAtomPattern, "EnumConstructorPattern": hir.EnumConstructorPattern,
	"AnnotationAtomPattern": hir.AnnotationAtomPattern, "AnnotationConstructorPattern": hir.AnnotationConstructorPattern,
}

var exprKinds = map[string]hir.ExprKind{
	"BoolLit": hir.BoolLit, "IntLit": hir.IntLit, "FloatLit": hir.FloatLit,
	"StringLit": hir.StringLit, "Identifier": hir.Identifier, "ArrayLit": hir.ArrayLit,
	"SetLit": hir.SetLit, "TupleLit": hir.TupleLit, "RecordLit": hir.RecordLit,
	"Comprehension": hir.Comprehension, "Accessor": hir.Accessor, "IfThenElse": hir.IfThenElse,
	"Case": hir.Case, "Call": hir.Call, "Let": hir.Let, "Lambda": hir.Lambda,
}

// Fixture bundles everything Load produces: the decoded model, the
// interners it populated while doing so, a fresh type table, and a global
// scope/dependency pair ready to hand to schedule.New and check.NewChecker.
type Fixture struct {
	Model    *hir.Model
	Strings  *intern.Strings
	NewTypes *intern.NewTypes
	Table    *types.Table
	Scopes   check.ScopeProvider
	Deps     schedule.Dependencies
}

// LoadFixture reads and decodes the JSON fixture at path.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}

	var jm jModel
	if err := json.Unmarshal(raw, &jm); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}

	strs := intern.NewStrings()
	model := &hir.Model{Items: make([]hir.Item, len(jm.Items))}

	for i, ji := range jm.Items {
		kind, ok := itemKinds[ji.Kind]
		if !ok {
			return nil, fmt.Errorf("item %d: unknown item kind %q", i, ji.Kind)
		}

		data, err := convertData(strs, ji.Data)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		model.Items[i] = hir.Item{Kind: kind, Data: data}
	}

	scope, deps := buildGlobalScope(model)

	return &Fixture{
		Model:    model,
		Strings:  strs,
		NewTypes: intern.NewNewTypes(),
		Table:    types.NewTable(),
		Scopes:   globalScopeProvider{scope},
		Deps:     deps,
	}, nil
}

func convertData(strs *intern.Strings, jd jData) (hir.ItemData, error) {
	d := hir.ItemData{
		Annotations:  make([][]hir.ExprRef, len(jd.Annotations)),
		Name:         hir.PatternRef(jd.Name),
		HasName:      jd.HasName,
		Root:         hir.ExprRef(jd.Root),
		Params:       intsToPatternRefs(jd.Params),
		ParamDomains: intsToExprRefs(jd.ParamDomains),
		Cases:        intsToPatternRefs(jd.Cases),
		Pure:         jd.Pure,
	}

	for i, a := range jd.Annotations {
		d.Annotations[i] = intsToExprRefs(a)
	}

	for _, name := range jd.TyVars {
		d.TyVars = append(d.TyVars, strs.Intern(name))
	}

	for _, c := range jd.CaseDomains {
		d.CaseDomains = append(d.CaseDomains, intsToExprRefs(c))
	}

	d.Patterns = make([]hir.Pattern, len(jd.Patterns))

	for i, jp := range jd.Patterns {
		kind, ok := patternKinds[jp.Kind]
		if !ok {
			return hir.ItemData{}, fmt.Errorf("pattern %d: unknown pattern kind %q", i, jp.Kind)
		}

		p := hir.Pattern{
			Kind:        kind,
			Name:        strs.Intern(jp.Name),
			Elements:    intsToPatternRefs(jp.Elements),
			Constructor: strs.Intern(jp.Constructor),
			Args:        intsToPatternRefs(jp.Args),
		}

		for _, pf := range jp.Fields {
			p.Fields = append(p.Fields, hir.PatternField{Name: strs.Intern(pf.Name), Pattern: hir.PatternRef(pf.Pattern)})
		}

		d.Patterns[i] = p
	}

	d.Exprs = make([]hir.Expr, len(jd.Exprs))

	for i, je := range jd.Exprs {
		kind, ok := exprKinds[je.Kind]
		if !ok {
			return hir.ItemData{}, fmt.Errorf("expr %d: unknown expr kind %q", i, je.Kind)
		}

		e := hir.Expr{
			Kind:            kind,
			BoolValue:       je.BoolValue,
			FloatValue:      je.FloatValue,
			StringValue:     je.StringValue,
			Name:            strs.Intern(je.Name),
			Elements:        intsToExprRefs(je.Elements),
			Body:            hir.ExprRef(je.Body),
			IsSet:           je.IsSet,
			Target:          hir.ExprRef(je.Target),
			IsTupleAccessor: je.IsTupleAccessor,
			Index:           je.Index,
			FieldName:       strs.Intern(je.FieldName),
			Condition:       hir.ExprRef(je.Condition),
			Then:            hir.ExprRef(je.Then),
			HasElse:         je.HasElse,
			Else:            hir.ExprRef(je.Else),
			Scrutinee:       hir.ExprRef(je.Scrutinee),
			Callee:          strs.Intern(je.Callee),
			Args:            intsToExprRefs(je.Args),
			LetBody:         hir.ExprRef(je.LetBody),
			LambdaParams:       intsToPatternRefs(je.LambdaParams),
			LambdaParamDomains: intsToExprRefs(je.LambdaParamDomains),
			LambdaBody:         hir.ExprRef(je.LambdaBody),
		}

		if je.IntValue != "" {
			v, ok := new(big.Int).SetString(je.IntValue, 10)
			if !ok {
				return hir.ItemData{}, fmt.Errorf("expr %d: invalid intValue %q", i, je.IntValue)
			}

			e.IntValue = v
		}

		for _, jf := range je.Fields {
			e.Fields = append(e.Fields, hir.RecordField{Name: strs.Intern(jf.Name), Value: hir.ExprRef(jf.Value)})
		}

		for _, jg := range je.Generators {
			e.Generators = append(e.Generators, hir.Generator{
				Pattern: hir.PatternRef(jg.Pattern), Source: hir.ExprRef(jg.Source),
				HasWhere: jg.HasWhere, Where: hir.ExprRef(jg.Where),
			})
		}

		for _, ja := range je.Arms {
			e.Arms = append(e.Arms, hir.CaseArm{Pattern: hir.PatternRef(ja.Pattern), Result: hir.ExprRef(ja.Result)})
		}

		for _, jb := range je.Bindings {
			e.Bindings = append(e.Bindings, hir.LetBinding{Pattern: hir.PatternRef(jb.Pattern), Value: hir.ExprRef(jb.Value)})
		}

		d.Exprs[i] = e
	}

	return d, nil
}

func intsToExprRefs(xs []int) []hir.ExprRef {
	if len(xs) == 0 {
		return nil
	}

	out := make([]hir.ExprRef, len(xs))
	for i, x := range xs {
		out[i] = hir.ExprRef(x)
	}

	return out
}

func intsToPatternRefs(xs []int) []hir.PatternRef {
	if len(xs) == 0 {
		return nil
	}

	out := make([]hir.PatternRef, len(xs))
	for i, x := range xs {
		out[i] = hir.PatternRef(x)
	}

	return out
}

// globalScope resolves every named top-level item (by its defining
// pattern's name) from a single flat namespace: a fixture has no modules or
// nested blocks, so every item is visible to every other item, matching the
// flatScopes test fixture already used throughout pkg/check/pkg/thir. Two or
// more Function items sharing a name form an overload set; every other kind
// must be unique.
type globalScope map[intern.StringID]hir.ScopeResult

func (s globalScope) Resolve(name intern.StringID) (hir.ScopeResult, bool) {
	res, ok := s[name]
	return res, ok
}

type globalScopeProvider struct{ scope globalScope }

func (p globalScopeProvider) ScopeFor(hir.ItemRef) hir.Scope { return p.scope }

func buildGlobalScope(model *hir.Model) (globalScope, schedule.Dependencies) {
	scope := make(globalScope)
	overloads := make(map[intern.StringID][]hir.ItemRef)

	for i, it := range model.Items {
		if !it.Data.HasName {
			continue
		}

		name := it.Data.Pattern(it.Data.Name).Name
		ref := hir.ItemRef(i)

		if it.Kind == hir.Function {
			overloads[name] = append(overloads[name], ref)
			continue
		}

		scope[name] = hir.ScopeResult{Variable: ref}
	}

	for name, refs := range overloads {
		if len(refs) == 1 {
			scope[name] = hir.ScopeResult{Variable: refs[0]}
			continue
		}

		scope[name] = hir.ScopeResult{IsOverloadSet: true, Overloads: refs}
	}

	deps := func(item hir.ItemRef) []hir.ItemRef {
		return domainDependencies(model, item, scope)
	}

	return scope, deps
}

// domainDependencies walks exactly the expressions signature.domainType
// itself walks for item (parameter/case domains, plus Root for every kind
// domainType treats as a domain expression), collecting the items any
// identifier or call callee resolves to. This mirrors domainType's own
// switch (pkg/check/signature.go) rather than scanning the whole item, since
// a Function/Constraint/Output/Solve body may legally reference anything
// (body typing has no acyclic requirement) and including it here would
// manufacture false signature cycles.
func domainDependencies(model *hir.Model, item hir.ItemRef, scope globalScope) []hir.ItemRef {
	d := &model.Items[item].Data

	var refs []hir.ExprRef

	switch model.Items[item].Kind {
	case hir.Declaration, hir.TypeAlias:
		refs = append(refs, d.Root)
	case hir.Function:
		refs = append(refs, d.ParamDomains...)
		refs = append(refs, d.Root)
	case hir.Annotation:
		refs = append(refs, d.ParamDomains...)
	case hir.Enumeration:
		for _, cd := range d.CaseDomains {
			refs = append(refs, cd...)
		}
	}

	seen := make(map[hir.ItemRef]bool)
	var out []hir.ItemRef

	var walk func(ref hir.ExprRef)
	walk = func(ref hir.ExprRef) {
		if int(ref) >= len(d.Exprs) {
			return
		}

		e := d.Expr(ref)

		switch e.Kind {
		case hir.Identifier:
			if res, ok := scope.Resolve(e.Name); ok {
				addRef(&out, seen, res)
			}
		case hir.ArrayLit, hir.SetLit, hir.TupleLit:
			for _, el := range e.Elements {
				walk(el)
			}
		case hir.RecordLit:
			for _, f := range e.Fields {
				walk(f.Value)
			}
		case hir.Call:
			if res, ok := scope.Resolve(e.Callee); ok {
				addRef(&out, seen, res)
			}

			for _, a := range e.Args {
				walk(a)
			}
		}
	}

	for _, r := range refs {
		walk(r)
	}

	return out
}

func addRef(out *[]hir.ItemRef, seen map[hir.ItemRef]bool, res hir.ScopeResult) {
	add := func(ref hir.ItemRef) {
		if !seen[ref] {
			seen[ref] = true
			*out = append(*out, ref)
		}
	}

	if res.IsOverloadSet {
		for _, o := range res.Overloads {
			add(o)
		}

		return
	}

	add(res.Variable)
}
