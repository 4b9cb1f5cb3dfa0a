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

// Slice is the set of Elements observed at one consensus coordinate, plus an
// optional consensus call.  A built Slice is immutable.
type Slice interface {
	// Depth returns the number of elements.
	Depth() int
	// Contains returns true iff an element with the given read id is present.
	Contains(id string) bool
	// Element returns the element with the given read id.
	Element(id string) (Element, bool)
	// Elements returns every element, in the order they were added.
	Elements() []Element
	// NucleotideCounts returns the number of elements carrying each base.
	NucleotideCounts() Counts
	// Consensus returns the consensus call, or ok=false when there is none.
	Consensus() (base pileup.Base, ok bool)
}

// Counts maps every base ordinal (gap and ambiguity codes included) to an
// occurrence count.
type Counts [pileup.NBaseEnum]int

// Get returns the count for b.
func (c Counts) Get(b pileup.Base) int {
	return c[b&ordinalMask]
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Majority returns the most frequent base, with ties going to the lowest
// ordinal.  ok is false when every count is zero.
func (c Counts) Majority() (base pileup.Base, ok bool) {
	best := 0
	for b, v := range c {
		if v > best {
			best = v
			base = pileup.Base(b)
		}
	}
	return base, best > 0
}

// Equal returns true iff a and b have the same depth, the same consensus call
// and the same elements keyed by read id.  Element order is ignored, and so is
// the storage form.
func Equal(a, b Slice) bool {
	if a.Depth() != b.Depth() {
		return false
	}
	aCall, aOK := a.Consensus()
	bCall, bOK := b.Consensus()
	if aOK != bOK || (aOK && aCall != bCall) {
		return false
	}
	// Ids are unique within a slice, so equal depth plus containment in one
	// direction implies set equality.
	for _, e := range a.Elements() {
		other, ok := b.Element(e.ID)
		if !ok || other != e {
			return false
		}
	}
	return true
}

// withConsensus decorates a Slice with a consensus call.  It costs one extra
// byte (plus the interface) over the undecorated slice.
type withConsensus struct {
	Slice
	call pileup.Base
}

func (s *withConsensus) Consensus() (pileup.Base, bool) {
	return s.call, true
}

// WithConsensus returns s with its consensus call set to call.
func WithConsensus(s Slice, call pileup.Base) Slice {
	if c, ok := s.(*withConsensus); ok {
		s = c.Slice
	}
	return &withConsensus{Slice: s, call: call}
}

// MajorityConsensus returns s with a majority-vote consensus call attached.
// An empty slice is returned unchanged (no call).
func MajorityConsensus(s Slice) Slice {
	counts := s.NucleotideCounts()
	base, ok := counts.Majority()
	if !ok {
		return s
	}
	return WithConsensus(s, base)
}

// Empty is the canonical element-less slice.  It has no consensus call.
var Empty Slice = &packedSlice{}
