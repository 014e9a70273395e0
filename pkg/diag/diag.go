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

// Package diag collects and renders the type checker's diagnostics: one
// fixed-kind record per root-cause mistake, ordered deterministically by
// source position regardless of the (possibly concurrent) order in which
// components reported them.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shackle-lang/go-shackle/pkg/hir"
)

// Kind is the fixed taxonomy of diagnostic kinds the checker can emit.
type Kind int

const (
	UndefinedIdentifier Kind = iota
	TypeMismatch
	BranchMismatch
	InvalidArrayLiteral
	IllegalType
	InvalidFieldAccess
	TypeInferenceFailure
	AmbiguousCall
	NoMatchingFunction
	SyntaxError
)

// String renders k using its descriptive (not machine-stable) name.
func (k Kind) String() string {
	switch k {
	case UndefinedIdentifier:
		return "UndefinedIdentifier"
	case TypeMismatch:
		return "TypeMismatch"
	case BranchMismatch:
		return "BranchMismatch"
	case InvalidArrayLiteral:
		return "InvalidArrayLiteral"
	case IllegalType:
		return "IllegalType"
	case InvalidFieldAccess:
		return "InvalidFieldAccess"
	case TypeInferenceFailure:
		return "TypeInferenceFailure"
	case AmbiguousCall:
		return "AmbiguousCall"
	case NoMatchingFunction:
		return "NoMatchingFunction"
	case SyntaxError:
		return "SyntaxError"
	default:
		return "Unknown"
	}
}

// Label annotates a secondary span with an explanatory note, e.g. pointing
// at a conflicting branch or an earlier definition.
type Label struct {
	Span hir.Origin
	Note string
}

// Diagnostic is one reported mistake.
type Diagnostic struct {
	Kind      Kind
	Message   string
	Primary   hir.Origin
	Secondary []Label
	// Item is the defining item this diagnostic was raised while
	// checking, used only to order diagnostics deterministically.
	Item hir.ItemRef
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Bag collects diagnostics from possibly-concurrent signature/body typing
// of independent items and reports them in a deterministic order.
type Bag struct {
	mu   sync.Mutex
	errs []Diagnostic
}

// NewBag constructs an empty Bag.
func NewBag() *Bag {
	return &Bag{}
}

// Report appends d to the bag. Safe for concurrent use.
func (b *Bag) Report(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, d)
}

// Empty reports whether no diagnostics have been reported.
func (b *Bag) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.errs) == 0
}

// Sorted returns every reported diagnostic ordered by defining item, then
// by primary span, then by report order — deterministic regardless of
// which goroutine reported first.
func (b *Bag) Sorted() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Diagnostic, len(b.errs))
	copy(out, b.errs)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Item != out[j].Item {
			return out[i].Item < out[j].Item
		}

		return out[i].Primary < out[j].Primary
	})

	return out
}
