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
package coverage

import (
	"fmt"

	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/base/errors"
)

// PosType is the coordinate type.
type PosType = interval.PosType

// Element is anything placed over a run of consecutive positions.  Elements
// are compared with ==, so implementations should be pointer types (or
// otherwise comparable).
type Element interface {
	// Begin is the first covered position.
	Begin() PosType
	// Len is the number of covered positions.
	Len() PosType
}

// ElementRange returns the inclusive range covered by e.
func ElementRange(e Element) interval.Range {
	return interval.NewRangeOfLength(e.Begin(), e.Len())
}

// elementEnd returns the last position covered by e.
func elementEnd(e Element) PosType {
	return e.Begin() + e.Len() - 1
}

// Region is an immutable inclusive interval together with the elements that
// cover all of it.  The element slice is shared with other Regions derived
// from it (e.g. by shifting) and must not be modified.
type Region struct {
	r     interval.Range
	elems []Element
}

// Start returns the first position of the region.
func (reg Region) Start() PosType { return reg.r.Start }

// End returns the last position of the region.
func (reg Region) End() PosType { return reg.r.End }

// Range returns [Start, End].
func (reg Region) Range() interval.Range { return reg.r }

// Len returns the number of positions in the region.
func (reg Region) Len() PosType { return reg.r.Len() }

// Coverage returns the read depth over the region.  It is always equal to
// len(reg.Elements()).
func (reg Region) Coverage() int { return len(reg.elems) }

// Elements returns the elements covering the region, in the order they
// entered the sweep.  The caller must not modify the returned slice.
func (reg Region) Elements() []Element { return reg.elems }

// Contains returns true iff e is one of the region's elements.
func (reg Region) Contains(e Element) bool {
	for _, x := range reg.elems {
		if x == e {
			return true
		}
	}
	return false
}

// ShiftLeft returns a copy of reg moved units positions to the left.  The
// element set is shared, not copied.
func (reg Region) ShiftLeft(units PosType) Region {
	return Region{r: reg.r.Shift(-units), elems: reg.elems}
}

// ShiftRight returns a copy of reg moved units positions to the right.
func (reg Region) ShiftRight(units PosType) Region {
	return Region{r: reg.r.Shift(units), elems: reg.elems}
}

func (reg Region) String() string {
	return fmt.Sprintf("%v x%d", reg.r, len(reg.elems))
}

// RegionBuilder accumulates the elements active over a span whose start is
// fixed at construction.  The end is set once the sweep reaches the next
// boundary; Build then snapshots an immutable Region.
type RegionBuilder struct {
	start  PosType
	end    PosType
	endSet bool
	elems  []Element
}

// NewRegionBuilder returns a builder starting at start with the given initial
// elements.
func NewRegionBuilder(start PosType, elems ...Element) *RegionBuilder {
	b := &RegionBuilder{start: start}
	b.elems = append(make([]Element, 0, len(elems)), elems...)
	return b
}

// Start returns the fixed start position.
func (b *RegionBuilder) Start() PosType { return b.start }

// Coverage returns the current number of elements.
func (b *RegionBuilder) Coverage() int { return len(b.elems) }

// CanSetEndTo returns true iff end is a legal end for this builder.  An end
// of start-1 is legal and denotes an empty region.
func (b *RegionBuilder) CanSetEndTo(end PosType) bool {
	return end >= b.start-1
}

// SetEnd fixes the region's end.  It fails with errors.Invalid when
// CanSetEndTo(end) is false.
func (b *RegionBuilder) SetEnd(end PosType) error {
	if !b.CanSetEndTo(end) {
		return errors.E(errors.Invalid, fmt.Sprintf("coverage.RegionBuilder: end %d precedes start %d", end, b.start))
	}
	b.end = end
	b.endSet = true
	return nil
}

// Add appends e to the working element set.
func (b *RegionBuilder) Add(e Element) {
	b.elems = append(b.elems, e)
}

// Remove deletes e from the working element set, preserving the order of the
// remaining elements.  It returns false if e was absent.
func (b *RegionBuilder) Remove(e Element) bool {
	for i, x := range b.elems {
		if x == e {
			copy(b.elems[i:], b.elems[i+1:])
			b.elems[len(b.elems)-1] = nil
			b.elems = b.elems[:len(b.elems)-1]
			return true
		}
	}
	return false
}

// RemoveAll deletes every element of es from the working set.
func (b *RegionBuilder) RemoveAll(es []Element) {
	for _, e := range es {
		b.Remove(e)
	}
}

// Build returns an immutable snapshot of the region.  It fails with
// errors.Precondition if SetEnd was never called.
func (b *RegionBuilder) Build() (Region, error) {
	if !b.endSet {
		return Region{}, errors.E(errors.Precondition, fmt.Sprintf("coverage.RegionBuilder: end of region starting at %d was never set", b.start))
	}
	elems := make([]Element, len(b.elems))
	copy(elems, b.elems)
	return Region{r: interval.NewRange(b.start, b.end), elems: elems}, nil
}
