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
package types

import (
	"testing"

	"github.com/shackle-lang/go-shackle/pkg/util/assert"
)

func Test_Classify_KnownPar(t *testing.T) {
	tbl := NewTable()

	assert.True(t, tbl.KnownPar(tbl.Integer(Par, NonOpt)), "expected par int to be known-par")
	assert.False(t, tbl.KnownPar(tbl.Integer(Var, NonOpt)), "expected var int to not be known-par")

	arr := mustArr(tbl, tbl.Integer(Par, NonOpt), tbl.Integer(Var, NonOpt))
	assert.False(t, tbl.KnownPar(arr), "expected an array with a var element to not be known-par")
}

func Test_Classify_KnownOccurs(t *testing.T) {
	tbl := NewTable()

	assert.True(t, tbl.KnownOccurs(tbl.Integer(Par, NonOpt)), "expected non-opt int to be known-occurs")
	assert.False(t, tbl.KnownOccurs(tbl.Integer(Par, Opt)), "expected opt int to not be known-occurs")
}

func Test_Classify_KnownEnumerableAndIndexable(t *testing.T) {
	tbl := NewTable()

	assert.True(t, tbl.KnownEnumerable(tbl.Boolean(Par, NonOpt)), "expected bool to be known-enumerable")
	assert.False(t, tbl.KnownEnumerable(tbl.Boolean(Par, Opt)), "expected opt bool to not be known-enumerable")

	tup := tbl.Tuple([]Ty{tbl.Integer(Par, NonOpt), tbl.Boolean(Par, NonOpt)}, NonOpt)
	assert.True(t, tbl.KnownIndexable(tup), "expected a non-opt tuple of enumerables to be known-indexable")
	assert.False(t, tbl.KnownEnumerable(tup), "a tuple is indexable but not itself enumerable")
}

func Test_Classify_HasDefaultValue(t *testing.T) {
	tbl := NewTable()

	assert.True(t, tbl.HasDefaultValue(tbl.Boolean(Par, NonOpt)), "expected bool to have a default value")
	assert.False(t, tbl.HasDefaultValue(tbl.Integer(Par, NonOpt)), "expected non-opt int to have no default value")
	assert.True(t, tbl.HasDefaultValue(tbl.Integer(Par, Opt)), "expected opt int to have a default value (the absent marker)")

	rec, ok := tbl.Record([]RecordField{{Type: tbl.Boolean(Par, NonOpt)}}, NonOpt)
	if !ok {
		t.Fatalf("unexpected record construction failure")
	}

	assert.True(t, tbl.HasDefaultValue(rec), "expected a record of fields with defaults to itself have a default")
}

func Test_Classify_InvalidArrayLiteralShape(t *testing.T) {
	// Array invariant: dim must be known-par/occurs/indexable.
	tbl := NewTable()
	varDim := tbl.Integer(Var, NonOpt)

	if _, ok := tbl.Array(varDim, tbl.Integer(Par, NonOpt), NonOpt); ok {
		t.Fatalf("expected array construction to reject a var dim")
	}
}

func Test_Classify_DeeplyNestedArrayDoesNotOverflowTheStack(t *testing.T) {
	tbl := NewTable()

	ty := tbl.Integer(Par, NonOpt)
	for i := 0; i < maxStructuralDepth*4; i++ {
		var ok bool
		ty, ok = tbl.Array(tbl.Integer(Par, NonOpt), ty, NonOpt)
		if !ok {
			t.Fatalf("Array construction failed at depth %d", i)
		}
	}

	// Must return, not panic or hang; a type this deep is conservatively
	// reported as not known-par/occurs/defaulted past the ceiling.
	assert.False(t, tbl.KnownPar(ty), "expected KnownPar to report false past the recursion ceiling")
	assert.False(t, tbl.KnownOccurs(ty), "expected KnownOccurs to report false past the recursion ceiling")

	// HasDefaultValue never recurses into an array's element (an array
	// always has a default regardless of depth), so this returns true
	// immediately rather than via the ceiling — still must not hang.
	assert.True(t, tbl.HasDefaultValue(ty), "expected an array type to always have a default value")
}
