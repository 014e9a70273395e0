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
package hir

import (
	"math/big"

	"github.com/shackle-lang/go-shackle/pkg/intern"
)

// ExprKind tags the syntactic shape of an Expr (spec 3.4's expression sum:
// literals, identifier references, compound literals, comprehensions,
// accessors, if-then-else, case, call, let, lambda).
type ExprKind int

const (
	BoolLit ExprKind = iota
	IntLit
	FloatLit
	StringLit
	Identifier
	ArrayLit
	SetLit
	TupleLit
	RecordLit
	Comprehension
	Accessor
	ArrayAccess
	IfThenElse
	Case
	Call
	Let
	Lambda
)

// Generator is one "pattern in source [where cond]" clause of a
// comprehension.
type Generator struct {
	Pattern PatternRef
	Source  ExprRef
	// HasWhere reports whether Where is meaningful.
	HasWhere bool
	Where    ExprRef
}

// CaseArm is one "pattern -> result" arm of a Case expression.
type CaseArm struct {
	Pattern PatternRef
	Result  ExprRef
}

// LetBinding is one "pattern = value" clause of a Let expression.
type LetBinding struct {
	Pattern PatternRef
	Value   ExprRef
}

// RecordField is one "name: value" entry of a RecordLit.
type RecordField struct {
	Name  intern.StringID
	Value ExprRef
}

// Origin is an opaque source-span token, supplied by the surrounding
// compiler and threaded through purely for diagnostic rendering; the
// checker never interprets it.
type Origin uint32

// Expr is one node of an item's expression tree. It is a closed tagged
// struct (mirroring pkg/types' Ty representation) rather than an interface,
// since every consumer (signature typer, body typer, lowering) switches
// exhaustively on Kind.
type Expr struct {
	Kind   ExprKind
	Origin Origin

	// Literal payloads (Kind is one of *Lit).
	BoolValue   bool
	IntValue    *big.Int
	FloatValue  float64
	StringValue string

	// Identifier (Kind == Identifier): the referenced name; resolution
	// happens via Scope/Stdlib, not stored here.
	Name intern.StringID

	// Compound literals (Kind is one of ArrayLit/SetLit/TupleLit).
	Elements []ExprRef
	// RecordLit.
	Fields []RecordField

	// Comprehension: Body over Generators, collected into an array (or a
	// set when IsSet).
	Generators []Generator
	Body       ExprRef
	IsSet      bool

	// Accessor: Target.Field (tuple index carried in Index, record field
	// name in FieldName — exactly one is meaningful, selected by
	// IsTupleAccessor).
	//
	// ArrayAccess: Target[Indices...], one expression per dimension, in
	// source order. A set-typed index selects a slice of that dimension; a
	// scalar index selects a single element. Target is shared with
	// Accessor, since both project out of a single aggregate expression.
	Target          ExprRef
	IsTupleAccessor bool
	Index           int
	FieldName       intern.StringID
	Indices         []ExprRef

	// IfThenElse.
	Condition   ExprRef
	Then        ExprRef
	HasElse     bool
	Else        ExprRef

	// Case.
	Scrutinee ExprRef
	Arms      []CaseArm

	// Call: Callee names the invoked function/annotation/enum constructor
	// when HasCalleeExpr is false; resolution (including overload
	// selection) happens via Scope/pkg/resolve, not stored here. When
	// HasCalleeExpr is true, the callee is an arbitrary sub-expression
	// (e.g. a let-bound lambda) that must be typed first and found to have
	// function type — Callee is meaningless in that case.
	Callee        intern.StringID
	HasCalleeExpr bool
	CalleeExpr    ExprRef
	Args          []ExprRef

	// Let.
	Bindings []LetBinding
	LetBody  ExprRef

	// Lambda. LambdaParamDomains is parallel to LambdaParams: each
	// parameter's declared type-ascription expression, exactly as a
	// Function item's Params/ParamDomains pair (hir.ItemData). A lambda
	// carries no return ascription in this model — its return is always
	// the body's inferred type (spec 4.5's "else the return is the
	// body's type" branch; the ascribed-return branch has no surface
	// syntax to produce it here).
	LambdaParams       []PatternRef
	LambdaParamDomains []ExprRef
	LambdaBody         ExprRef
}
