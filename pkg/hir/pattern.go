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

import "github.com/shackle-lang/go-shackle/pkg/intern"

// PatternKind tags the syntactic shape of a Pattern.
type PatternKind int

const (
	// Wildcard matches anything and binds nothing ("_").
	Wildcard PatternKind = iota
	// Variable binds Name to the matched value.
	Variable
	// TuplePattern destructures a tuple positionally.
	TuplePattern
	// RecordPattern destructures a record by field name.
	RecordPattern
	// EnumAtomPattern matches a nullary enum constructor.
	EnumAtomPattern
	// EnumConstructorPattern destructures a functional enum constructor's
	// arguments.
	EnumConstructorPattern
	// AnnotationAtomPattern matches a nullary annotation constructor.
	AnnotationAtomPattern
	// AnnotationConstructorPattern destructures a functional annotation
	// constructor's arguments.
	AnnotationConstructorPattern
)

// PatternField is one "name: pattern" entry of a RecordPattern.
type PatternField struct {
	Name    intern.StringID
	Pattern PatternRef
}

// Pattern is one node of a pattern tree: the left-hand side of a
// declaration, a function parameter, an enumeration case, a let binding, a
// lambda parameter, or a case arm.
type Pattern struct {
	Kind   PatternKind
	Origin Origin

	// Variable.
	Name intern.StringID

	// TuplePattern.
	Elements []PatternRef
	// RecordPattern.
	Fields []PatternField

	// EnumAtomPattern / AnnotationAtomPattern / EnumConstructorPattern /
	// AnnotationConstructorPattern: the constructor's name.
	Constructor intern.StringID
	// EnumConstructorPattern / AnnotationConstructorPattern: the
	// constructor's argument sub-patterns.
	Args []PatternRef
}
