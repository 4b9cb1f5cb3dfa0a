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
	"sync"

	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/base/errors"
)

// float64Memo is a compute-once cell.  Concurrent first callers serialize on
// mu; exactly one of them runs compute, and every later caller gets the stored
// value without recomputation.
type float64Memo struct {
	mu   sync.Mutex
	done bool
	val  float64
}

func (m *float64Memo) get(compute func() float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.done {
		m.val = compute()
		m.done = true
	}
	return m.val
}

// Map is an immutable, sorted, gap-free tiling of Regions.  See the package
// documentation for the invariants.
type Map struct {
	regions []Region
	avg     float64Memo
}

func newMap(regions []Region) *Map {
	return &Map{regions: regions}
}

// NumRegions returns the number of regions.
func (m *Map) NumRegions() int { return len(m.regions) }

// IsEmpty returns true iff the map has no regions.
func (m *Map) IsEmpty() bool { return len(m.regions) == 0 }

// Region returns the i'th region, failing with errors.Invalid when i is out
// of range.
func (m *Map) Region(i int) (Region, error) {
	if i < 0 || i >= len(m.regions) {
		return Region{}, errors.E(errors.Invalid, fmt.Sprintf("coverage.Map.Region: index %d out of range [0, %d)", i, len(m.regions)))
	}
	return m.regions[i], nil
}

// Regions returns the full region sequence.  This is the only view coverage
// writers need.  The caller must not modify the returned slice.
func (m *Map) Regions() []Region { return m.regions }

// Range returns [first region start, last region end].  An empty map
// returns an empty range anchored at 0.
func (m *Map) Range() interval.Range {
	if len(m.regions) == 0 {
		return interval.NewRange(0, -1)
	}
	return interval.NewRange(m.regions[0].Start(), m.regions[len(m.regions)-1].End())
}

// RegionWhichCovers returns the region containing pos, treating pos as a
// single-position range.  ok is false if the map is empty or pos lies outside
// every region.  Regions tile the map's range, so a binary search by end finds
// the only candidate.
func (m *Map) RegionWhichCovers(pos PosType) (reg Region, ok bool) {
	i := sort.Search(len(m.regions), func(i int) bool { return m.regions[i].End() >= pos })
	if i == len(m.regions) || !m.regions[i].Range().Intersects(interval.Point(pos)) {
		return Region{}, false
	}
	return m.regions[i], true
}

// RegionsWhichIntersect returns, in order, every region sharing at least one
// position with r.  The scan stops at the first region starting after r.End.
func (m *Map) RegionsWhichIntersect(r interval.Range) []Region {
	var result []Region
	for _, reg := range m.regions {
		if reg.Start() > r.End {
			break
		}
		if reg.Range().Intersects(r) {
			result = append(result, reg)
		}
	}
	return result
}

// RegionsWithin returns, in order, every region lying entirely inside r.
func (m *Map) RegionsWithin(r interval.Range) []Region {
	var result []Region
	for _, reg := range m.regions {
		if reg.Start() > r.End {
			break
		}
		if r.ContainsRange(reg.Range()) {
			result = append(result, reg)
		}
	}
	return result
}

// ShiftLeft returns a new Map with every region moved units positions to the
// left.  Element sets are shared with m.
func (m *Map) ShiftLeft(units PosType) *Map {
	return m.shift(-units)
}

// ShiftRight returns a new Map with every region moved units positions to the
// right.  Element sets are shared with m.
func (m *Map) ShiftRight(units PosType) *Map {
	return m.shift(units)
}

func (m *Map) shift(delta PosType) *Map {
	regions := make([]Region, len(m.regions))
	for i, reg := range m.regions {
		regions[i] = Region{r: reg.r.Shift(delta), elems: reg.elems}
	}
	return newMap(regions)
}

// AverageCoverage returns sum(len*coverage)/sum(len) over all regions, or 0
// for an empty map.  It is computed on first use and cached; concurrent
// callers are safe.
func (m *Map) AverageCoverage() float64 {
	return m.avg.get(m.computeAverageCoverage)
}

func (m *Map) computeAverageCoverage() float64 {
	var totalLen, weighted int64
	for _, reg := range m.regions {
		n := int64(reg.Len())
		totalLen += n
		weighted += n * int64(reg.Coverage())
	}
	if totalLen == 0 {
		return 0
	}
	return float64(weighted) / float64(totalLen)
}

// MaxCoverage returns the largest region depth, or 0 for an empty map.
func (m *Map) MaxCoverage() int {
	max := 0
	for _, reg := range m.regions {
		if c := reg.Coverage(); c > max {
			max = c
		}
	}
	return max
}

// MinCoverage returns the smallest region depth.  An empty map reports 0 by
// convention rather than as a derived minimum.
func (m *Map) MinCoverage() int {
	if len(m.regions) == 0 {
		return 0
	}
	min := m.regions[0].Coverage()
	for _, reg := range m.regions[1:] {
		if c := reg.Coverage(); c < min {
			min = c
		}
	}
	return min
}

// RegionsWithCoverageBelow returns, in order, the regions whose depth is less
// than threshold.  Zero-coverage holes are included.
func (m *Map) RegionsWithCoverageBelow(threshold int) []Region {
	var result []Region
	for _, reg := range m.regions {
		if reg.Coverage() < threshold {
			result = append(result, reg)
		}
	}
	return result
}

// CoveredEndpoints returns the positions with depth >= minDepth as an
// interval endpoint union (see interval.UnionScanner).
func (m *Map) CoveredEndpoints(minDepth int) []interval.PosType {
	ranges := make([]interval.Range, 0, len(m.regions))
	for _, reg := range m.regions {
		if reg.Coverage() >= minDepth {
			ranges = append(ranges, reg.Range())
		}
	}
	return interval.RangesToEndpoints(ranges)
}
