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

// Package schedule orders a model's top-level items so that every item's
// signature is computed before any item whose signature refers to it,
// detecting and reporting cyclic signature references along the way.
package schedule

import "github.com/shackle-lang/go-shackle/pkg/hir"

// state tags an item's visitation status during the depth-first walk.
type state int

const (
	unvisited state = iota
	computing
	done
)

// Dependencies reports, for one item, the other items its signature
// directly refers to (u -> v meaning v's signature mentions u). Supplied by
// the caller, typically derived by walking the item's type-ascription
// expressions and collecting the items any identifiers there resolve to.
type Dependencies func(item hir.ItemRef) []hir.ItemRef

// Cycle describes a signature-reference cycle detected during scheduling:
// the item being visited when a Computing node was re-entered, and the
// node that closed the cycle.
type Cycle struct {
	Item hir.ItemRef
	Via  hir.ItemRef
}

// Scheduler computes a deterministic topological order over a model's
// items, memoizing each item's position and reporting cycles.
type Scheduler struct {
	deps  Dependencies
	state []state
	order []hir.ItemRef
	index map[hir.ItemRef]int

	cycles []Cycle
}

// New constructs a Scheduler for a model of n items, with edges supplied by
// deps. Item indices are assumed to run 0..n-1 and tie-break in source
// order, since a lower ItemRef is defined earlier in the model.
func New(n int, deps Dependencies) *Scheduler {
	return &Scheduler{
		deps:  deps,
		state: make([]state, n),
		index: make(map[hir.ItemRef]int, n),
	}
}

// Run runs the DFS over every item (in ascending ItemRef order, so ties
// among independent subgraphs resolve deterministically by source
// position) and returns the resulting topological order plus any cycles
// detected. An item involved in a cycle still appears in the returned
// order, once its own visit finishes; callers fall back to the error type
// for its signature.
func (s *Scheduler) Run() ([]hir.ItemRef, []Cycle) {
	for i := range s.state {
		s.visit(hir.ItemRef(i))
	}

	return s.order, s.cycles
}

func (s *Scheduler) visit(item hir.ItemRef) {
	switch s.state[item] {
	case done:
		return
	case computing:
		s.cycles = append(s.cycles, Cycle{Item: item, Via: item})
		return
	}

	s.state[item] = computing

	for _, dep := range s.deps(item) {
		if s.state[dep] == computing {
			s.cycles = append(s.cycles, Cycle{Item: item, Via: dep})
			continue
		}

		s.visit(dep)
	}

	s.state[item] = done
	s.index[item] = len(s.order)
	s.order = append(s.order, item)
}

// PositionOf returns item's position in the computed topological order.
// Overload tie-breaking does not use it: the checker orders candidates by
// ItemRef (see pkg/check sourceOrder).
func (s *Scheduler) PositionOf(item hir.ItemRef) int {
	return s.index[item]
}
