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
	"sort"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Sweep-line construction.
//
// Every element contributes two events: it enters the active set at Begin()
// and leaves it at End()+1.  We keep one copy of the elements sorted by start
// ("entering" order) and another sorted by end ("leaving" order), and walk
// both in lock-step.  At each event coordinate c:
//   1. the in-progress RegionBuilder is closed at c-1;
//   2. every element leaving at c and every element entering at c is applied;
//   3. a new RegionBuilder is opened at c with the updated active set.
// All events at c are applied before the next builder is opened, so no Region
// ever has partial membership at a tied coordinate, and every emitted Region
// has a constant active set.  Event coordinates strictly increase between
// boundaries, so each closed builder spans at least one position.
//
// When the active set drains between two elements, the builder opened at the
// drain point has no elements and is closed at the next entry, producing a
// zero-coverage Region for the hole.  The builder opened after the last
// element leaves is discarded.

// Build sweeps elems into a Map.  Zero-length elements are discarded; a
// negative length fails with errors.Invalid.  elems itself is not modified.
func Build(elems []Element) (*Map, error) {
	entering := make([]Element, 0, len(elems))
	for _, e := range elems {
		n := e.Len()
		if n < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("coverage.Build: element at %d has negative length %d", e.Begin(), n))
		}
		if n == 0 {
			continue
		}
		entering = append(entering, e)
	}
	leaving := make([]Element, len(entering))
	copy(leaving, entering)
	sort.SliceStable(entering, func(i, j int) bool {
		return entering[i].Begin() < entering[j].Begin()
	})
	sort.SliceStable(leaving, func(i, j int) bool {
		return elementEnd(leaving[i]) < elementEnd(leaving[j])
	})

	var (
		regions []Region
		cur     *RegionBuilder
		active  []Element
	)
	nElem := len(entering)
	enterIdx, leaveIdx := 0, 0
	for enterIdx < nElem || leaveIdx < nElem {
		// Next event coordinate.  Leaving events are always pending while
		// anything is active, so leaveIdx < nElem here.
		next := elementEnd(leaving[leaveIdx]) + 1
		if enterIdx < nElem && entering[enterIdx].Begin() < next {
			next = entering[enterIdx].Begin()
		}
		if cur != nil {
			if err := cur.SetEnd(next - 1); err != nil {
				return nil, err
			}
			if next > cur.Start() {
				region, err := cur.Build()
				if err != nil {
					return nil, err
				}
				regions = append(regions, region)
			}
		}
		cur = NewRegionBuilder(next, active...)
		for leaveIdx < nElem && elementEnd(leaving[leaveIdx])+1 == next {
			cur.Remove(leaving[leaveIdx])
			leaveIdx++
		}
		for enterIdx < nElem && entering[enterIdx].Begin() == next {
			cur.Add(entering[enterIdx])
			enterIdx++
		}
		active = cur.elems
	}
	log.Debug.Printf("coverage.Build: %d element(s) swept into %d region(s)", nElem, len(regions))
	return newMap(regions), nil
}

// BuildReads is Build for placed reads.
func BuildReads(reads []pileup.PlacedRead) (*Map, error) {
	elems := make([]Element, len(reads))
	for i, r := range reads {
		elems[i] = r
	}
	return Build(elems)
}

// BuildFromIterator drains iter and builds a Map from its reads.
func BuildFromIterator(iter pileup.ReadIterator) (*Map, error) {
	var elems []Element
	for iter.Scan() {
		elems = append(elems, iter.Read())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return Build(elems)
}
