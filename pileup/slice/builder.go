// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package slice

import (
	"github.com/grailbio/assembly/pileup"
)

type mutableSlice interface {
	Slice
	add(e Element) error
}

// Builder accumulates the Elements of one Slice.  A Builder must not be used
// after Build.
type Builder struct {
	s       mutableSlice
	call    pileup.Base
	hasCall bool
	storage Storage
}

// NewBuilder returns an empty Builder.  StorageAuto is treated as
// StorageObject; resolve it with ChooseStorage first when a depth hint is
// available.
func NewBuilder(storage Storage) *Builder {
	b := &Builder{storage: storage}
	if storage == StoragePacked {
		b.s = &packedSlice{}
	} else {
		b.storage = StorageObject
		b.s = newObjectSlice()
	}
	return b
}

// Storage returns the representation the built Slice will use.
func (b *Builder) Storage() Storage { return b.storage }

// Depth returns the number of elements added so far.
func (b *Builder) Depth() int { return b.s.Depth() }

// Add appends e.  It fails with errors.Invalid if an element with the same id
// was already added.
func (b *Builder) Add(e Element) error {
	return b.s.add(e)
}

// SetConsensus attaches a consensus call to the Slice being built.
func (b *Builder) SetConsensus(base pileup.Base) {
	b.call = base
	b.hasCall = true
}

// Build freezes the accumulated elements.
func (b *Builder) Build() Slice {
	if p, ok := b.s.(*packedSlice); ok {
		p.freeze()
	}
	var s Slice = b.s
	if b.hasCall {
		s = WithConsensus(s, b.call)
	}
	b.s = nil
	return s
}
