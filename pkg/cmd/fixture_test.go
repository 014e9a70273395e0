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
	"os"
	"path/filepath"
	"testing"

	"github.com/shackle-lang/go-shackle/pkg/hir"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	return path
}

func Test_LoadFixture_DeclarationRoundTrips(t *testing.T) {
	path := writeFixture(t, `{
		"items": [
			{
				"kind": "Declaration",
				"data": {
					"patterns": [{"kind": "Variable", "name": "x"}],
					"exprs": [{"kind": "IntLit", "intValue": "3"}],
					"name": 0,
					"hasName": true,
					"root": 0
				}
			}
		]
	}`)

	fx, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	if len(fx.Model.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(fx.Model.Items))
	}

	item := fx.Model.Items[0]
	if item.Kind != hir.Declaration {
		t.Fatalf("expected Declaration, got %v", item.Kind)
	}

	name := item.Data.Pattern(item.Data.Name).Name
	if fx.Strings.Lookup(name) != "x" {
		t.Fatalf("expected pattern name %q, got %q", "x", fx.Strings.Lookup(name))
	}

	root := item.Data.Expr(item.Data.Root)
	if root.Kind != hir.IntLit || root.IntValue.Int64() != 3 {
		t.Fatalf("unexpected root expr: %+v", root)
	}
}

func Test_LoadFixture_UnknownItemKindFails(t *testing.T) {
	path := writeFixture(t, `{"items": [{"kind": "Bogus", "data": {}}]}`)

	if _, err := LoadFixture(path); err == nil {
		t.Fatalf("expected an error for an unknown item kind")
	}
}

func Test_LoadFixture_UnknownExprKindFails(t *testing.T) {
	path := writeFixture(t, `{
		"items": [
			{
				"kind": "Declaration",
				"data": {
					"patterns": [{"kind": "Variable", "name": "x"}],
					"exprs": [{"kind": "Bogus"}],
					"name": 0,
					"hasName": true,
					"root": 0
				}
			}
		]
	}`)

	if _, err := LoadFixture(path); err == nil {
		t.Fatalf("expected an error for an unknown expr kind")
	}
}

func Test_LoadFixture_MissingFileFails(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func Test_BuildGlobalScope_CollapsesFunctionOverloadsIntoOneSet(t *testing.T) {
	path := writeFixture(t, `{
		"items": [
			{
				"kind": "Function",
				"data": {
					"patterns": [{"kind": "Variable", "name": "f"}, {"kind": "Variable", "name": "p"}],
					"exprs": [{"kind": "BoolLit", "boolValue": true}, {"kind": "IntLit", "intValue": "1"}],
					"name": 0,
					"hasName": true,
					"params": [1],
					"paramDomains": [0],
					"root": 1
				}
			},
			{
				"kind": "Function",
				"data": {
					"patterns": [{"kind": "Variable", "name": "f"}, {"kind": "Variable", "name": "q"}],
					"exprs": [{"kind": "BoolLit", "boolValue": true}, {"kind": "FloatLit", "floatValue": 1.5}],
					"name": 0,
					"hasName": true,
					"params": [1],
					"paramDomains": [0],
					"root": 1
				}
			}
		]
	}`)

	fx, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	f := fx.Strings.Intern("f")

	res, ok := fx.Scopes.ScopeFor(0).Resolve(f)
	if !ok {
		t.Fatalf("expected f to resolve")
	}

	if !res.IsOverloadSet || len(res.Overloads) != 2 {
		t.Fatalf("expected a 2-member overload set, got %+v", res)
	}
}
