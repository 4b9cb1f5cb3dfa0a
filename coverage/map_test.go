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
	"math/rand"
	"sync"
	"testing"

	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

type wantRegion struct {
	start, end PosType
	elems      []Element
}

func checkRegions(t *testing.T, m *Map, want []wantRegion) {
	t.Helper()
	assert.EQ(t, m.NumRegions(), len(want))
	for i, w := range want {
		reg, err := m.Region(i)
		assert.NoError(t, err)
		expect.EQ(t, reg.Start(), w.start, "region %d", i)
		expect.EQ(t, reg.End(), w.end, "region %d", i)
		expect.EQ(t, reg.Coverage(), len(w.elems), "region %d", i)
		for _, e := range w.elems {
			expect.True(t, reg.Contains(e), "region %d missing %v", i, e)
		}
	}
}

// checkTiling verifies the sorted, non-overlapping, gap-free invariants and
// that every region spans at least one position.
func checkTiling(t *testing.T, m *Map) {
	t.Helper()
	regions := m.Regions()
	for i, reg := range regions {
		assert.True(t, reg.Len() > 0, "region %v is empty", reg)
		assert.EQ(t, reg.Coverage(), len(reg.Elements()))
		if i > 0 {
			assert.EQ(t, regions[i-1].End()+1, reg.Start(), "regions %v and %v do not tile", regions[i-1], reg)
		}
	}
}

func TestBuildExample(t *testing.T) {
	r1 := newSpan("R1", 0, 9)
	r2 := newSpan("R2", 5, 14)
	r3 := newSpan("R3", 12, 19)
	m, err := Build([]Element{r3, r1, r2})
	assert.NoError(t, err)
	checkTiling(t, m)
	checkRegions(t, m, []wantRegion{
		{0, 4, []Element{r1}},
		{5, 9, []Element{r1, r2}},
		{10, 11, []Element{r2}},
		{12, 14, []Element{r2, r3}},
		{15, 19, []Element{r3}},
	})
	expect.EQ(t, m.AverageCoverage(), 1.4)
	expect.EQ(t, m.MaxCoverage(), 2)
	expect.EQ(t, m.MinCoverage(), 1)
	expect.EQ(t, m.Range(), interval.NewRange(0, 19))
}

func TestBuildHolesAndTies(t *testing.T) {
	a := newSpan("a", 0, 4)
	b := newSpan("b", 0, 2)
	c := newSpan("c", 0, 4)
	d := newSpan("d", 10, 14)
	zero := &span{name: "zero", begin: 7, len: 0}
	m, err := Build([]Element{a, b, c, d, zero})
	assert.NoError(t, err)
	checkTiling(t, m)
	checkRegions(t, m, []wantRegion{
		{0, 2, []Element{a, b, c}},
		{3, 4, []Element{a, c}},
		{5, 9, nil},
		{10, 14, []Element{d}},
	})
	expect.EQ(t, m.MinCoverage(), 0)
	expect.EQ(t, m.MaxCoverage(), 3)
	// (3*3 + 2*2 + 5*0 + 5*1) / 15
	expect.EQ(t, m.AverageCoverage(), 18.0/15.0)

	// Elements ending and starting at adjacent positions swap atomically.
	e := newSpan("e", 0, 4)
	f := newSpan("f", 5, 9)
	m, err = Build([]Element{f, e})
	assert.NoError(t, err)
	checkRegions(t, m, []wantRegion{
		{0, 4, []Element{e}},
		{5, 9, []Element{f}},
	})
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]Element{&span{name: "neg", begin: 3, len: -1}})
	expect.True(t, errors.Is(errors.Invalid, err))

	m, err := Build(nil)
	assert.NoError(t, err)
	expect.True(t, m.IsEmpty())
	expect.EQ(t, m.AverageCoverage(), 0.0)
	expect.EQ(t, m.MinCoverage(), 0)
	expect.EQ(t, m.MaxCoverage(), 0)
	_, ok := m.RegionWhichCovers(0)
	expect.False(t, ok)
	_, err = m.Region(0)
	expect.True(t, errors.Is(errors.Invalid, err))
	expect.True(t, m.Range().IsEmpty())
}

func TestBuildRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 100; iter++ {
		nElem := rng.Intn(40)
		elems := make([]Element, nElem)
		for i := range elems {
			elems[i] = &span{begin: PosType(rng.Intn(200)), len: PosType(rng.Intn(30))}
		}
		m, err := Build(elems)
		assert.NoError(t, err)
		checkTiling(t, m)
		// Depth at every position must match a brute-force count.
		for pos := PosType(-1); pos < 240; pos++ {
			var want []Element
			for _, e := range elems {
				if ElementRange(e).Contains(pos) {
					want = append(want, e)
				}
			}
			reg, ok := m.RegionWhichCovers(pos)
			if !ok {
				expect.EQ(t, len(want), 0, "pos %d", pos)
				continue
			}
			expect.EQ(t, reg.Coverage(), len(want), "pos %d", pos)
			for _, e := range want {
				expect.True(t, reg.Contains(e))
			}
		}
		if !m.IsEmpty() {
			first, _ := m.Region(0)
			last, _ := m.Region(m.NumRegions() - 1)
			expect.True(t, first.Coverage() > 0)
			expect.True(t, last.Coverage() > 0)
		}
	}
}

func TestQueries(t *testing.T) {
	r1 := newSpan("R1", 0, 9)
	r2 := newSpan("R2", 5, 14)
	r3 := newSpan("R3", 12, 19)
	m, err := Build([]Element{r1, r2, r3})
	assert.NoError(t, err)

	reg, ok := m.RegionWhichCovers(6)
	assert.True(t, ok)
	expect.EQ(t, reg.Range(), interval.NewRange(5, 9))
	_, ok = m.RegionWhichCovers(20)
	expect.False(t, ok)
	_, ok = m.RegionWhichCovers(-1)
	expect.False(t, ok)

	ranges := func(regions []Region) []interval.Range {
		var result []interval.Range
		for _, reg := range regions {
			result = append(result, reg.Range())
		}
		return result
	}
	expect.EQ(t, ranges(m.RegionsWhichIntersect(interval.NewRange(4, 10))),
		[]interval.Range{{Start: 0, End: 4}, {Start: 5, End: 9}, {Start: 10, End: 11}})
	expect.EQ(t, ranges(m.RegionsWithin(interval.NewRange(4, 12))),
		[]interval.Range{{Start: 5, End: 9}, {Start: 10, End: 11}})
	expect.EQ(t, len(m.RegionsWhichIntersect(interval.NewRange(30, 40))), 0)
	expect.EQ(t, ranges(m.RegionsWithCoverageBelow(2)),
		[]interval.Range{{Start: 0, End: 4}, {Start: 10, End: 11}, {Start: 15, End: 19}})
	expect.EQ(t, m.CoveredEndpoints(2), []PosType{5, 10, 12, 15})
	expect.EQ(t, m.CoveredEndpoints(1), []PosType{0, 20})
}

func TestShiftRoundTrip(t *testing.T) {
	r1 := newSpan("R1", 0, 9)
	r2 := newSpan("R2", 5, 14)
	m, err := Build([]Element{r1, r2})
	assert.NoError(t, err)
	for _, k := range []PosType{0, 1, 7, 1000} {
		right := m.ShiftRight(k)
		first, _ := right.Region(0)
		expect.EQ(t, first.Start(), k)
		back := right.ShiftLeft(k)
		assert.EQ(t, back.NumRegions(), m.NumRegions())
		for i, reg := range m.Regions() {
			got := back.Regions()[i]
			expect.EQ(t, got.Range(), reg.Range())
			expect.EQ(t, got.Elements(), reg.Elements())
		}
	}
	// The original is untouched.
	first, _ := m.Region(0)
	expect.EQ(t, first.Start(), PosType(0))
}

func TestAverageCoverageConcurrent(t *testing.T) {
	var elems []Element
	for i := 0; i < 100; i++ {
		elems = append(elems, newSpan("", PosType(i), PosType(i+10)))
	}
	m, err := Build(elems)
	assert.NoError(t, err)
	want := m.computeAverageCoverage()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ncalls  int
		results = make([]float64, 16)
	)
	compute := func() float64 {
		mu.Lock()
		ncalls++
		mu.Unlock()
		return m.computeAverageCoverage()
	}
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.avg.get(compute)
		}(i)
	}
	wg.Wait()
	expect.EQ(t, ncalls, 1)
	for _, got := range results {
		expect.EQ(t, got, want)
	}
	expect.True(t, m.avg.done)
	expect.EQ(t, m.AverageCoverage(), want)
	expect.EQ(t, ncalls, 1)
}

func TestBuildReads(t *testing.T) {
	r1, _ := pileup.NewRead("R1", 0, "AAAAAAAAAA", pileup.Forward)
	r2, _ := pileup.NewRead("R2", 5, "AAAAAAAAAA", pileup.Reverse)
	m, err := BuildReads([]pileup.PlacedRead{r1, r2})
	assert.NoError(t, err)
	checkRegions(t, m, []wantRegion{
		{0, 4, []Element{r1}},
		{5, 9, []Element{r1, r2}},
		{10, 14, []Element{r2}},
	})
	m2, err := BuildFromIterator(pileup.NewSliceIterator([]pileup.PlacedRead{r1, r2}))
	assert.NoError(t, err)
	expect.EQ(t, m2.NumRegions(), 3)
}
