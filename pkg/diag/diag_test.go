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
package diag

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/shackle-lang/go-shackle/pkg/hir"
)

func Test_Bag_SortedOrdersByItemThenSpan(t *testing.T) {
	b := NewBag()
	b.Report(Diagnostic{Kind: TypeMismatch, Item: 1, Primary: 5})
	b.Report(Diagnostic{Kind: UndefinedIdentifier, Item: 0, Primary: 9})
	b.Report(Diagnostic{Kind: IllegalType, Item: 0, Primary: 2})

	sorted := b.Sorted()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(sorted))
	}

	if sorted[0].Item != 0 || sorted[0].Primary != 2 {
		t.Fatalf("expected item 0/span 2 first, got %+v", sorted[0])
	}

	if sorted[1].Item != 0 || sorted[1].Primary != 9 {
		t.Fatalf("expected item 0/span 9 second, got %+v", sorted[1])
	}

	if sorted[2].Item != 1 {
		t.Fatalf("expected item 1 last, got %+v", sorted[2])
	}
}

func Test_Bag_ConcurrentReportsAreDeterministicallyOrdered(t *testing.T) {
	b := NewBag()

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(item hir.ItemRef) {
			defer wg.Done()
			b.Report(Diagnostic{Kind: SyntaxError, Item: item, Primary: hir.Origin(item)})
		}(hir.ItemRef(i))
	}

	wg.Wait()

	sorted := b.Sorted()
	if len(sorted) != 8 {
		t.Fatalf("expected 8 diagnostics, got %d", len(sorted))
	}

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Item > sorted[i].Item {
			t.Fatalf("expected ascending item order, got %v", sorted)
		}
	}
}

func Test_Bag_Empty(t *testing.T) {
	b := NewBag()
	if !b.Empty() {
		t.Fatalf("expected a fresh bag to be empty")
	}

	b.Report(Diagnostic{Kind: TypeMismatch})
	if b.Empty() {
		t.Fatalf("expected a non-empty bag after Report")
	}
}

func Test_Render_WritesEachDiagnostic(t *testing.T) {
	b := NewBag()
	b.Report(Diagnostic{Kind: TypeMismatch, Message: "expected int, found bool", Primary: 3})
	b.Report(Diagnostic{Kind: UndefinedIdentifier, Message: "no binding for 'x'", Primary: 7})

	var buf bytes.Buffer
	if err := Render(&buf, b); err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "TypeMismatch") || !strings.Contains(out, "expected int, found bool") {
		t.Fatalf("expected rendered output to mention the first diagnostic, got %q", out)
	}

	if !strings.Contains(out, "UndefinedIdentifier") || !strings.Contains(out, "no binding for 'x'") {
		t.Fatalf("expected rendered output to mention the second diagnostic, got %q", out)
	}
}
