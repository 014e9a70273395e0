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

import "github.com/shackle-lang/go-shackle/pkg/util"

// Arena is an append-only, O(1)-indexed store of values of type T.  Add
// returns the index of the newly stored item; Get retrieves it.  Arena is a
// thin wrapper around util.Array_1, which already provides exactly this
// push/index contract.
type Arena[T any] struct {
	items util.Array_1[T]
}

// NewArena constructs an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Add stores item and returns its index.
func (a *Arena[T]) Add(item T) uint {
	return a.items.Add(item)
}

// Get returns the item previously stored at index.
func (a *Arena[T]) Get(index uint) T {
	return a.items.Get(index)
}

// Len returns the number of items stored in this arena.
func (a *Arena[T]) Len() uint {
	return a.items.Len()
}
