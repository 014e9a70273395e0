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
package intern

import "sync"

// NewTypeID is an opaque handle for a nominal entity: an enumeration or a
// type-inst variable.  Two NewTypeIDs are equal iff the kind+payload of the
// entities they identify are equal; the printed name is metadata only and
// does not participate in equality (per spec.md 3.1).
type NewTypeID uint32

// NewTypeKind distinguishes the two ways a nominal entity can be identified.
type NewTypeKind uint8

const (
	// NewTypeFromPattern identifies a new-type by a reference to the
	// source-level pattern that defines it (an enum declaration or a
	// function's type-inst-variable binder).
	NewTypeFromPattern NewTypeKind = iota
	// NewTypeFresh identifies a new-type introduced internally by the
	// compiler (e.g. during lowering), via a monotonically increasing
	// counter rather than a source pattern.
	NewTypeFresh
)

// newTypeKey is the structural payload two NewTypeIDs are compared by.
type newTypeKey struct {
	kind    NewTypeKind
	pattern uint64 // valid when kind == NewTypeFromPattern
	counter uint64 // valid when kind == NewTypeFresh
}

// NewTypes is a hash-consed table of nominal entities, plus a fresh-counter
// for compiler-introduced new-types.  Entries are never removed.  Safe for
// concurrent use.
type NewTypes struct {
	mu      sync.RWMutex
	keys    []newTypeKey
	names   []string
	byKey   map[newTypeKey]NewTypeID
	counter uint64
}

// NewNewTypes constructs an empty new-type table.
func NewNewTypes() *NewTypes {
	return &NewTypes{byKey: make(map[newTypeKey]NewTypeID)}
}

// InternFromPattern interns a new-type identified by a source pattern
// reference (e.g. an item and pattern index packed into a uint64).  Idempotent: calling this
// twice with the same patternRef returns the same NewTypeID.  name is the
// printed name to associate; it does not affect identity.
func (t *NewTypes) InternFromPattern(patternRef uint64, name string) NewTypeID {
	return t.intern(newTypeKey{kind: NewTypeFromPattern, pattern: patternRef}, name)
}

// Fresh allocates a brand-new compiler-introduced new-type with a unique
// counter value; it is never equal to any other new-type, including another
// Fresh() call.
func (t *NewTypes) Fresh(name string) NewTypeID {
	t.mu.Lock()
	t.counter++
	c := t.counter
	t.mu.Unlock()

	return t.intern(newTypeKey{kind: NewTypeFresh, counter: c}, name)
}

func (t *NewTypes) intern(key newTypeKey, name string) NewTypeID {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byKey[key]; ok {
		return id
	}

	id := NewTypeID(len(t.keys))
	t.keys = append(t.keys, key)
	t.names = append(t.names, name)
	t.byKey[key] = id

	return id
}

// Name returns the printed name associated with id.  This is metadata only
// and two distinct NewTypeIDs may carry the same printed name.
func (t *NewTypes) Name(id NewTypeID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.names[id]
}

// Kind returns whether id was derived from a source pattern or is a fresh
// compiler-introduced entity.
func (t *NewTypes) Kind(id NewTypeID) NewTypeKind {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.keys[id].kind
}
