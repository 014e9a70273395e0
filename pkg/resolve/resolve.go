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

// Package resolve selects, among a set of overload candidates for a call
// site, the single most-specific candidate whose parameters accept the
// call's argument types — instantiating any type-inst variables along the
// way.
package resolve

import (
	"github.com/shackle-lang/go-shackle/pkg/intern"
	"github.com/shackle-lang/go-shackle/pkg/types"
)

// Candidate is one overload of a callable: an ordered parameter list and a
// return type, optionally parameterised over a set of type-inst variables
// that may occur (possibly nested inside compound types) within Params/Ret.
type Candidate struct {
	// Params is the candidate's declared parameter types, as written (for a
	// polymorphic candidate these may reference the descriptors in TyVars).
	Params []types.Ty
	// Ret is the candidate's declared return type.
	Ret types.Ty
	// TyVars lists the type-inst variables this candidate is polymorphic
	// over. Empty for a monomorphic candidate.
	TyVars []types.TyVarDesc
	// SourceOrder is a caller-supplied ordering key (pkg/check derives it
	// from the defining item's ItemRef and the overload index); the lower
	// value wins a tie.
	SourceOrder int
}

// IsMonomorphic reports whether c has no type-inst variables to instantiate.
func (c Candidate) IsMonomorphic() bool {
	return len(c.TyVars) == 0
}

// RejectKind classifies why a candidate did not survive resolution.
type RejectKind int

const (
	// ArgumentCountMismatch means the candidate's arity differs from the
	// call site's argument count.
	ArgumentCountMismatch RejectKind = iota
	// IncompatibleTypeInstVariable means some type-inst variable had no
	// contributing argument, or its contributions admit no supremum.
	IncompatibleTypeInstVariable
	// ArgumentMismatch means an argument was not a subtype of the
	// (possibly instantiated) parameter type at Index.
	ArgumentMismatch
)

// Rejection records why one candidate was eliminated.
type Rejection struct {
	Candidate int
	Kind      RejectKind
	Index     int
	Expected  types.Ty
	Actual    types.Ty
}

// Outcome classifies the result of Resolve.
type Outcome int

const (
	// Ok means a unique most-specific candidate was found.
	Ok Outcome = iota
	// NoMatchingFunction means every candidate was rejected.
	NoMatchingFunction
	// AmbiguousOverloading means two or more incomparable (or tied)
	// candidates survived selection.
	AmbiguousOverloading
)

// Result is the outcome of a successful resolution.
type Result struct {
	// Candidate is the index into the original candidates slice.
	Candidate int
	// Instantiation maps each of the winning candidate's type-inst
	// variables to its concrete instantiation.
	Instantiation map[intern.NewTypeID]types.Ty
	// Params is the winning candidate's parameter types after
	// substitution.
	Params []types.Ty
	// Return is the winning candidate's return type after substitution.
	Return types.Ty
}

type survivor struct {
	index  int
	cand   Candidate
	inst   map[intern.NewTypeID]types.Ty
	params []types.Ty
	ret    types.Ty
}

// Resolve selects the most-specific candidate accepting args, per the
// four-step procedure: arity filter, type-inst-variable instantiation,
// subtyping check, most-specific selection with a deterministic tie-break.
func Resolve(tbl *types.Table, candidates []Candidate, args []types.Ty) (Outcome, *Result, []Rejection) {
	var (
		rejections []Rejection
		survivors  []survivor
	)

	for i, c := range candidates {
		if len(c.Params) != len(args) {
			rejections = append(rejections, Rejection{Candidate: i, Kind: ArgumentCountMismatch})
			continue
		}

		inst, ok := instantiate(tbl, c, args)
		if !ok {
			rejections = append(rejections, Rejection{Candidate: i, Kind: IncompatibleTypeInstVariable})
			continue
		}

		params := make([]types.Ty, len(c.Params))
		for j, p := range c.Params {
			params[j] = substitute(tbl, p, inst)
		}

		ret := substitute(tbl, c.Ret, inst)

		mismatched := false

		for j, p := range params {
			if !tbl.IsSubtypeOf(args[j], p) {
				rejections = append(rejections, Rejection{
					Candidate: i, Kind: ArgumentMismatch, Index: j, Expected: p, Actual: args[j],
				})

				mismatched = true
			}
		}

		if mismatched {
			continue
		}

		survivors = append(survivors, survivor{index: i, cand: c, inst: inst, params: params, ret: ret})
	}

	if len(survivors) == 0 {
		return NoMatchingFunction, nil, rejections
	}

	minimal := mostSpecific(tbl, survivors)
	if len(minimal) == 1 {
		return Ok, toResult(minimal[0]), nil
	}

	if winner, ok := tieBreak(minimal); ok {
		return Ok, toResult(winner), nil
	}

	return AmbiguousOverloading, nil, rejections
}

func toResult(s survivor) *Result {
	return &Result{Candidate: s.index, Instantiation: s.inst, Params: s.params, Return: s.ret}
}

// mostSpecific returns the subset of survivors not strictly dominated by any
// other survivor, where a strictly dominates b iff every parameter (and the
// return) of a is a subtype of the corresponding of b, with at least one
// strict.
func mostSpecific(tbl *types.Table, survivors []survivor) []survivor {
	var minimal []survivor

	for _, s := range survivors {
		dominated := false

		for _, o := range survivors {
			if o.index == s.index {
				continue
			}

			if strictlyMoreSpecific(tbl, o, s) {
				dominated = true
				break
			}
		}

		if !dominated {
			minimal = append(minimal, s)
		}
	}

	return minimal
}

func strictlyMoreSpecific(tbl *types.Table, a, b survivor) bool {
	if len(a.params) != len(b.params) {
		return false
	}

	strict := false

	for i := range a.params {
		if !tbl.IsSubtypeOf(a.params[i], b.params[i]) {
			return false
		}

		if a.params[i] != b.params[i] {
			strict = true
		}
	}

	if !tbl.IsSubtypeOf(a.ret, b.ret) {
		return false
	}

	if a.ret != b.ret {
		strict = true
	}

	return strict
}

// tieBreak applies when the most-specific set contains candidates whose
// substituted signatures are identical (a genuine tie, not merely
// incomparable): prefer the monomorphic candidate, else the one with the
// earliest SourceOrder.
func tieBreak(minimal []survivor) (survivor, bool) {
	for i := 1; i < len(minimal); i++ {
		if !sameSignature(minimal[0], minimal[i]) {
			return survivor{}, false
		}
	}

	winner := minimal[0]
	for _, s := range minimal[1:] {
		if better := preferTieBreak(winner, s); better.index != winner.index {
			winner = better
		}
	}

	return winner, true
}

func sameSignature(a, b survivor) bool {
	if len(a.params) != len(b.params) || a.ret != b.ret {
		return false
	}

	for i := range a.params {
		if a.params[i] != b.params[i] {
			return false
		}
	}

	return true
}

func preferTieBreak(a, b survivor) survivor {
	if a.cand.IsMonomorphic() != b.cand.IsMonomorphic() {
		if a.cand.IsMonomorphic() {
			return a
		}

		return b
	}

	if a.cand.SourceOrder <= b.cand.SourceOrder {
		return a
	}

	return b
}
