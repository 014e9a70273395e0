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

// Package thir is the typed, desugared IR produced by lowering a checked
// hir.Model: every expression carries its resolved type, destructuring and
// slicing have been rewritten to accessor calls, and every identifier
// occurrence carries a resolved handle rather than a name.
package thir

import (
	"github.com/shackle-lang/go-shackle/pkg/hir"
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// ExprID addresses one expression in a Model's single shared expression
// arena (unlike hir, where every item owns its own arena — §3.4 describes
// THIR's ownership as flatter: "items own their expression trees" via
// typed integer handles into one pool, matching the teacher's
// arena-of-handles discipline rather than pointer-linked trees).
type ExprID uint32

// ItemKind tags which per-kind slice of a Model owns an ItemRef.
type ItemKind int

const (
	DeclarationItem ItemKind = iota
	ConstraintItem
	FunctionItem
	AnnotationItem
	EnumerationItem
	OutputItem
	SolveItem
)

// ItemRef addresses one item: Kind selects the slice, Index the position
// within it.
type ItemRef struct {
	Kind  ItemKind
	Index uint32
}

// Declaration is a (possibly synthetic) named or anonymous value binding.
type Declaration struct {
	// Name is absent for an anonymous declaration synthesized by lowering
	// (e.g. a destructuring accessor's own intermediate node).
	HasName bool
	Name    intern.StringID
	Domain  types.Ty
	// HasDefinition reports whether Definition is meaningful; a
	// declaration with no definition is a free parameter awaiting a
	// solver assignment.
	HasDefinition bool
	Definition    ExprID
	TopLevel      bool
	Annotations   []ExprID
}

// Constraint is a top-level or local boolean assertion.
type Constraint struct {
	Expr        ExprID
	TopLevel    bool
	Annotations []ExprID
}

// Param is one parameter of a Function or user Annotation.
type Param struct {
	HasName bool
	Name    intern.StringID
	Domain  types.Ty
}

// Function is a named callable: parameters, return domain, optional body.
type Function struct {
	Name    intern.StringID
	Ret     types.Ty
	Params  []Param
	TyVars  []types.TyVarDesc
	HasBody bool
	Body    ExprID
	Pure    bool

	Annotations []ExprID
}

// Annotation is a user-defined annotation constructor (0+ parameters).
type Annotation struct {
	Name   intern.StringID
	Params []Param
}

// Constructor is one case of an Enumeration: an atom (no Params) or a
// function lifted over its declared parameter domains.
type Constructor struct {
	Name   intern.StringID
	Params []types.Ty
}

// Enumeration is a named closed set of Constructors.
type Enumeration struct {
	Name         intern.StringID
	Constructors []Constructor
}

// Output is a model-level output expression.
type Output struct {
	Expr ExprID
}

// SolveKind tags a Solve item's goal.
type SolveKind int

const (
	Satisfy SolveKind = iota
	Minimize
	Maximize
)

// Solve is the model's single optimization or satisfaction goal.
type Solve struct {
	Kind       SolveKind
	HasObjective bool
	Objective  ExprID
}

// ExprKind mirrors hir.ExprKind; the difference is every identifier/call
// occurrence below resolves to an ItemRef rather than a name.
type ExprKind int

const (
	BoolLit ExprKind = iota
	IntLit
	FloatLit
	StringLit
	// AbsentLit is the "<>" value; HIR represents it as a reserved
	// zero-argument Call (see pkg/check's absentLits), but THIR is under
	// no such constraint and gives it its own tag.
	AbsentLit
	Ref
	// LocalRef references the nearest enclosing lexical binder (a lambda
	// parameter, let binding, or comprehension generator) by name. HIR
	// identifier resolution (hir.Scope) only ever answers with a
	// top-level hir.ItemRef, so it has no way to name a purely local
	// binder; lowering tracks local binder names itself (see lowerer.locals)
	// and uses LocalRef wherever a name resolves to one of those instead
	// of a top-level item.
	LocalRef
	ArrayLit
	SetLit
	TupleLit
	RecordLit
	Comprehension
	Accessor
	// ArrayAccess is a non-slicing array index (every dimension scalar); a
	// slicing access is rewritten away into a Call before
	// lowering produces this arena at all, so this kind never carries a
	// set-typed index.
	ArrayAccess
	IfThenElse
	Case
	Call
	Let
	Lambda
)

// Generator is one "pattern in source [where cond]" clause, already
// refutable-binding-free: a destructuring HIR generator pattern has been
// split (§4.7) into a fresh Variable binder plus a Where clause, so a
// generator here binds at most a plain name (HasName/Name).
type Generator struct {
	HasName bool
	Name    intern.StringID
	Source  ExprID
	HasWhere bool
	Where   ExprID
}

// CaseArm is one "pattern -> result" arm. Unlike hir, Pattern stays a
// hir.Pattern tree (case's pattern surface is not flattened by lowering —
// §4.7 only removes destructuring from *generators* and *assignments*,
// never from case, whose whole purpose is refutable matching); its
// constructor occurrences keep their hir names.
type CaseArm struct {
	Pattern hir.Pattern
	Result  ExprID
}

// RecordField is one "name: value" entry of a RecordLit.
type RecordField struct {
	Name  intern.StringID
	Value ExprID
}

// Expression is one node of the shared expression arena. Every node
// carries its resolved Ty and source Origin.
type Expression struct {
	Kind   ExprKind
	Ty     types.Ty
	Origin hir.Origin

	BoolValue   bool
	IntText     string
	FloatValue  float64
	StringValue string

	// Ref (Kind == Ref): the item this identifier occurrence resolves to
	// (a Declaration, Function, Annotation atom, or Enumeration atom).
	RefTarget ItemRef

	// LocalRef (Kind == LocalRef): the name of the enclosing lambda
	// parameter, let binding, or comprehension generator it refers to.
	LocalName intern.StringID

	Elements []ExprID
	Fields   []RecordField

	Generators []Generator
	Body       ExprID
	IsSet      bool

	Target          ExprID
	IsTupleAccessor bool
	Index           int
	FieldName       intern.StringID
	// Indices (Kind == ArrayAccess): one scalar index expression per
	// dimension, in order.
	Indices []ExprID

	Condition ExprID
	Then      ExprID
	Else      ExprID

	Scrutinee ExprID
	Arms      []CaseArm

	// Call: CalleeTarget is the resolved Function/Annotation/Enumeration
	// constructor item; Overload its position within that item's
	// synthesized family (0 except for an enum constructor). IsRawCallee
	// covers the two reserved spellings the checker recognizes before
	// ever calling Scope.Resolve (range operators and the "<>" literal's
	// legacy Call encoding) and which therefore never appear in
	// check.BodyTypes.Calls; RawCallee then carries the literal spelling.
	// IsIndirectCallee covers the remaining case, an arbitrary expression
	// typed to a function (e.g. a let-bound lambda): Callee is evaluated
	// at CalleeExpr rather than resolved to an item or a reserved name.
	CalleeTarget     ItemRef
	Overload         int
	IsRawCallee      bool
	RawCallee        intern.StringID
	IsIndirectCallee bool
	CalleeExpr       ExprID
	Args             []ExprID

	Bindings []LetBinding
	LetBody  ExprID

	// Lambda: Params gives each parameter's resolved domain, LambdaBody the
	// lowered body expression (lambdas have no return ascription; the
	// body's own inferred type is the return type).
	Params     []Param
	LambdaBody ExprID
}

// LetBinding is one "name = value" clause, already stripped of
// destructuring the same way Generator is (a destructuring let binding is
// rewritten into one accessor binding per named leaf, rooted directly at
// the bound value, ahead of lowering the body that uses them).
type LetBinding struct {
	HasName bool
	Name    intern.StringID
	Value   ExprID
}

// Model is the flat, typed collection of lowered items sharing one
// Expression arena.
type Model struct {
	Declarations []Declaration
	Constraints  []Constraint
	Functions    []Function
	Annotations  []Annotation
	Enumerations []Enumeration
	Outputs      []Output
	Solves       []Solve

	Expressions []Expression
}

// Expr returns the expression addressed by id.
func (m *Model) Expr(id ExprID) Expression {
	return m.Expressions[id]
}

// push appends e to the shared arena and returns its handle.
func (m *Model) push(e Expression) ExprID {
	m.Expressions = append(m.Expressions, e)
	return ExprID(len(m.Expressions) - 1)
}

func (m *Model) addDeclaration(d Declaration) ItemRef {
	m.Declarations = append(m.Declarations, d)
	return ItemRef{Kind: DeclarationItem, Index: uint32(len(m.Declarations) - 1)}
}

func (m *Model) addConstraint(c Constraint) ItemRef {
	m.Constraints = append(m.Constraints, c)
	return ItemRef{Kind: ConstraintItem, Index: uint32(len(m.Constraints) - 1)}
}

func (m *Model) addFunction(f Function) ItemRef {
	m.Functions = append(m.Functions, f)
	return ItemRef{Kind: FunctionItem, Index: uint32(len(m.Functions) - 1)}
}

func (m *Model) addAnnotation(a Annotation) ItemRef {
	m.Annotations = append(m.Annotations, a)
	return ItemRef{Kind: AnnotationItem, Index: uint32(len(m.Annotations) - 1)}
}

func (m *Model) addEnumeration(e Enumeration) ItemRef {
	m.Enumerations = append(m.Enumerations, e)
	return ItemRef{Kind: EnumerationItem, Index: uint32(len(m.Enumerations) - 1)}
}

func (m *Model) addOutput(o Output) ItemRef {
	m.Outputs = append(m.Outputs, o)
	return ItemRef{Kind: OutputItem, Index: uint32(len(m.Outputs) - 1)}
}

func (m *Model) addSolve(s Solve) ItemRef {
	m.Solves = append(m.Solves, s)
	return ItemRef{Kind: SolveItem, Index: uint32(len(m.Solves) - 1)}
}
