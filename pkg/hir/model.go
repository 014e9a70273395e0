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

// Package hir is the external input model consumed by the type checker: a
// flat array of top-level items, each owning an arena of expressions,
// patterns and type expressions addressed by typed handles, plus the two
// query interfaces (Scope, Stdlib) the checker uses to resolve identifiers.
package hir

import "github.com/shackle-lang/go-shackle/pkg/intern"

// ItemRef addresses one top-level item within a Model.
type ItemRef uint32

// ExprRef addresses one expression within an item's arena.
type ExprRef uint32

// PatternRef addresses one pattern within an item's arena.
type PatternRef uint32

// TypeExprRef addresses one type-ascription expression within an item's
// arena (domains are themselves expressions, e.g. "1..3" or "array[1..3] of
// int", so they share the Expr arena and this is simply a tagged alias).
type TypeExprRef = ExprRef

// ItemKind tags the syntactic category of a top-level item.
type ItemKind int

const (
	Annotation ItemKind = iota
	Assignment
	Constraint
	Declaration
	Enumeration
	EnumAssignment
	Function
	Output
	Solve
	TypeAlias
	Include
)

// ItemData is one item's private arena: every expression, pattern and
// annotation list it owns, addressed by the Ref types above. Items never
// share arena slots; cross-item references go through resolved identifiers,
// not shared indices.
type ItemData struct {
	Exprs       []Expr
	Patterns    []Pattern
	Annotations [][]ExprRef

	// Name is the item's own defining pattern, when it has one (absent for
	// Constraint/Output/Solve/Include).
	Name PatternRef
	// HasName reports whether Name is meaningful.
	HasName bool

	// Root is the item's principal expression or pattern, interpreted
	// per Kind: the declared domain for Declaration, the assigned
	// expression for Assignment, the boolean expression for Constraint,
	// both the return domain (signature typer) and the body (body typer)
	// for Function, the output expression for Output, the
	// objective for Solve, the aliased domain for TypeAlias.
	Root ExprRef

	// Params lists a Function/Annotation item's parameter patterns, in
	// order.
	Params []PatternRef
	// ParamDomains lists, parallel to Params, each parameter's declared
	// type-ascription expression within Exprs.
	ParamDomains []ExprRef
	// TyVars lists a Function item's type-inst-variable names, in the
	// order they were declared.
	TyVars []intern.StringID
	// Cases lists an Enumeration item's constructor patterns (atoms or
	// functions), in declaration order.
	Cases []PatternRef
	// CaseDomains lists, parallel to Cases, each case's declared
	// parameter-domain expressions within Exprs (empty for a nullary
	// case). A case pattern's own Args are sub-patterns for destructuring
	// match arms, not domain declarations, so the two live in separate
	// arenas just like Params/ParamDomains above.
	CaseDomains [][]ExprRef
	// Pure marks a Function item as side-effect free.
	Pure bool
}

// Expr returns the expression at ref within this item's arena.
func (d *ItemData) Expr(ref ExprRef) Expr {
	return d.Exprs[ref]
}

// Pattern returns the pattern at ref within this item's arena.
func (d *ItemData) Pattern(ref PatternRef) Pattern {
	return d.Patterns[ref]
}

// Item is one top-level entry in a Model.
type Item struct {
	Kind ItemKind
	Data ItemData
}

// Model is the flat collection of top-level items handed to the checker by
// the surrounding compiler.
type Model struct {
	Items []Item
}

// Item returns the item addressed by ref.
func (m *Model) Item(ref ItemRef) *Item {
	return &m.Items[ref]
}

// ScopeResult is what resolving an identifier at some position yields: a
// single variable-binding pattern, or an overload set of function/annotation
// -constructor-defining patterns sharing that name.
type ScopeResult struct {
	// IsOverloadSet distinguishes the two cases below.
	IsOverloadSet bool
	// Variable is the resolved item when IsOverloadSet is false.
	Variable ItemRef
	// Overloads is the candidate-defining items when IsOverloadSet is true.
	Overloads []ItemRef
}

// Scope resolves an identifier occurring at some expression or pattern
// position to the item(s) that define it. Implementations are supplied by
// the surrounding compiler (typically one Scope per lexical nesting level).
type Scope interface {
	Resolve(name intern.StringID) (ScopeResult, bool)
}

// WellKnown names a standard-library identifier the lowering pass (pkg/thir)
// must be able to find regardless of what the user's source does or does not
// import.
type WellKnown int

const (
	Forall WellKnown = iota
	Eq
	IndexSet
	IndexSetOfN
	SliceND
	EraseEnum
	AnnotatedExpression
	ShackleType
	EmptyAnnotation
	EmptyString
	Minus
)

// Stdlib resolves the well-known identifiers lowering depends on to their
// defining item, independent of user-level scoping.
type Stdlib interface {
	Lookup(name WellKnown) (ItemRef, bool)
}
