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

// Package types implements the semantic type algebra: interned types,
// constructors enforcing well-formedness, optionality/variability lifting,
// classification predicates, the subtype lattice and its supremum/infimum,
// and pretty-printing.
package types

import (
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/shackle-lang/go-shackle/pkg/intern"
)

// Ty is an opaque handle identifying a unique semantic type.  Equality of Ty
// values is equality of semantic type: two Ty values are == iff their
// underlying TyData is structurally equal.
type Ty uint32

// OptType is whether a type's values may be the absent marker <>.
type OptType uint8

const (
	// NonOpt values are never absent.
	NonOpt OptType = iota
	// Opt values may be the absent marker <>.
	Opt
)

// VarType is whether a type is a fixed parameter or a decision variable.
type VarType uint8

const (
	// Par ("parameter") values are fixed at solve time.
	Par VarType = iota
	// Var ("variable") values are decision variables.
	Var
)

type tyKind uint8

const (
	kindBoolean tyKind = iota
	kindInteger
	kindFloat
	kindEnum
	kindString
	kindAnnotation
	kindBottom
	kindArray
	kindSet
	kindTuple
	kindRecord
	kindFunction
	kindTyVar
	kindError
)

// TyVarDesc identifies a type-inst variable's declaration site plus the
// capability flags fixed when it was declared.
type TyVarDesc struct {
	ID         intern.NewTypeID
	Varifiable bool
	Enumerable bool
	Indexable  bool
}

// tyData is the closed sum of semantic type shapes.  It is stored by value
// (never boxed behind an interface) so that hash-consing can compare two
// variants for structural equality directly; see DESIGN.md component 2 for
// why this differs from the teacher's interface-per-variant Type surface.
type tyData struct {
	kind tyKind
	opt  OptType
	vr   VarType // Boolean / Integer / Float / Enum / Set
	enum intern.NewTypeID
	dim  Ty   // Array
	elem Ty   // Array / Set
	elems []Ty // Tuple fields, or Function parameters
	names []intern.StringID // Record field names, parallel to elems

	ret Ty // Function return

	tvOpt  optOverride // TyVar opt override
	tvVar  varOverride // TyVar var override
	tvDesc TyVarDesc
}

type optOverride struct {
	set   bool
	value OptType
}

type varOverride struct {
	set   bool
	value VarType
}

// Table is the interned store of semantic types for a single compilation.
// Interning is idempotent on structural equality and monotonic: entries are
// never removed, so a Ty remains valid for the table's lifetime.  Safe for
// concurrent use.
type Table struct {
	mu     sync.RWMutex
	data   []tyData
	keys   [][]byte
	byHash map[uint64][]Ty
}

// NewTable constructs an empty type table.
func NewTable() *Table {
	return &Table{byHash: make(map[uint64][]Ty)}
}

// maxStructuralDepth bounds the recursion depth of the structural
// operations over Ty that walk into array/set/tuple/record/function
// element types (MakePar, IsSubtypeOf, MostSpecificSupertype,
// MostGeneralSubtype, Printer.print): a defensive ceiling against a
// pathologically deep type reaching a stack overflow, mirroring
// pkg/config.Config.MaxTyVarDepth's default.
const maxStructuralDepth = 256

func (t *Table) get(ty Ty) tyData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.data[ty]
}

func (t *Table) intern(d tyData) Ty {
	key := encode(d)
	h := fnv1aBytes(key)
	//
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range t.byHash[h] {
		if bytesEqual(t.keys[id], key) {
			return id
		}
	}

	id := Ty(len(t.data))
	t.data = append(t.data, d)
	t.keys = append(t.keys, key)
	t.byHash[h] = append(t.byHash[h], id)

	return id
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func fnv1aBytes(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)

	return h.Sum64()
}

// encode produces a canonical byte representation of d, used both as the
// hash-cons equality key and as the input to the structural hash.  Fields
// irrelevant to d.kind are not written, which is safe because the kind byte
// itself is always written first and distinguishes the decoding.
func encode(d tyData) []byte {
	buf := make([]byte, 0, 32)
	buf = append(buf, byte(d.kind), byte(d.opt))

	switch d.kind {
	case kindBoolean, kindInteger, kindFloat:
		buf = append(buf, byte(d.vr))
	case kindEnum:
		buf = append(buf, byte(d.vr))
		buf = appendUint32(buf, uint32(d.enum))
	case kindString, kindAnnotation, kindBottom:
		// opt only, already written.
	case kindArray:
		buf = appendUint32(buf, uint32(d.dim))
		buf = appendUint32(buf, uint32(d.elem))
	case kindSet:
		buf = append(buf, byte(d.vr))
		buf = appendUint32(buf, uint32(d.elem))
	case kindTuple:
		for _, e := range d.elems {
			buf = appendUint32(buf, uint32(e))
		}
	case kindRecord:
		for i, e := range d.elems {
			buf = appendUint32(buf, uint32(d.names[i]))
			buf = appendUint32(buf, uint32(e))
		}
	case kindFunction:
		buf = appendUint32(buf, uint32(d.ret))
		for _, e := range d.elems {
			buf = appendUint32(buf, uint32(e))
		}
	case kindTyVar:
		buf = appendUint32(buf, uint32(d.tvDesc.ID))
		buf = appendBool(buf, d.tvDesc.Varifiable)
		buf = appendBool(buf, d.tvDesc.Enumerable)
		buf = appendBool(buf, d.tvDesc.Indexable)
		buf = appendBool(buf, d.tvOpt.set)

		if d.tvOpt.set {
			buf = append(buf, byte(d.tvOpt.value))
		}

		buf = appendBool(buf, d.tvVar.set)

		if d.tvVar.set {
			buf = append(buf, byte(d.tvVar.value))
		}
	case kindError:
		// no further payload; Error is a pure sentinel.
	}

	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)

	return append(buf, b[:]...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}

	return append(buf, 0)
}
