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
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleReads(t *testing.T) []pileup.PlacedRead {
	r1, err := pileup.NewRead("R1", 0, strings.Repeat("A", 10), pileup.Forward)
	require.NoError(t, err)
	r2, err := pileup.NewRead("R2", 5, strings.Repeat("A", 10), pileup.Reverse)
	require.NoError(t, err)
	r3, err := pileup.NewRead("R3", 12, strings.Repeat("A", 8), pileup.Forward)
	require.NoError(t, err)
	return []pileup.PlacedRead{r1, r2, r3}
}

func exampleQuals() MapSource {
	return MapSource{
		"R1": bytes.Repeat([]byte{30}, 10),
		"R2": bytes.Repeat([]byte{20}, 10),
		"R3": bytes.Repeat([]byte{40}, 8),
	}
}

func TestBuildMapExample(t *testing.T) {
	for _, storage := range storages {
		t.Run(storage.String(), func(t *testing.T) {
			opts := DefaultOpts
			opts.Storage = storage
			m, err := BuildMap(pileup.NewSliceIterator(exampleReads(t)), 22, NewQualityLookup(exampleQuals(), GapLowestFlanking), opts)
			require.NoError(t, err)
			assert.Equal(t, 22, m.Len())

			s, err := m.Slice(6)
			require.NoError(t, err)
			assert.Equal(t, 2, s.Depth())
			assert.True(t, s.Contains("R1"))
			assert.True(t, s.Contains("R2"))
			assert.False(t, s.Contains("R3"))
			e, ok := s.Element("R1")
			require.True(t, ok)
			assert.Equal(t, pileup.BaseA, e.Base)
			assert.Equal(t, byte(30), e.Qual)
			e, _ = s.Element("R2")
			assert.Equal(t, pileup.Reverse, e.Dir)

			wantDepth := []int{1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1, 0, 0}
			for pos, want := range wantDepth {
				s, err := m.Slice(pos)
				require.NoError(t, err)
				assert.Equal(t, want, s.Depth(), "pos %d", pos)
			}
			assert.True(t, Empty == m.Slices()[21])

			_, err = m.Slice(22)
			assert.True(t, errors.Is(errors.Invalid, err))
			_, err = m.Slice(-1)
			assert.True(t, errors.Is(errors.Invalid, err))
		})
	}
}

func TestBuildMapStorageEquivalence(t *testing.T) {
	const length = 300
	rng := rand.New(rand.NewSource(0))
	var reads []pileup.PlacedRead
	quals := MapSource{}
	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(60)
		seq := make([]byte, n)
		for j := range seq {
			seq[j] = pileup.EnumToASCIITable[rng.Intn(pileup.NBaseEnum)]
		}
		id := string(rune('A'+i%26)) + strings.Repeat("x", i/26)
		dir := pileup.Direction(rng.Intn(2))
		read, err := pileup.NewRead(id, pileup.PosType(rng.Intn(length-n+1)), string(seq), dir)
		require.NoError(t, err)
		reads = append(reads, read)
		q := make([]byte, pileup.UngappedLen(read.Seq))
		rng.Read(q)
		quals[id] = q
	}
	build := func(storage Storage, reads []pileup.PlacedRead) *Map {
		m, err := BuildMap(pileup.NewSliceIterator(reads), length, NewQualityLookup(quals, GapLowestFlanking), Opts{Storage: storage})
		require.NoError(t, err)
		return m
	}
	obj := build(StorageObject, reads)
	packed := build(StoragePacked, reads)
	reversed := make([]pileup.PlacedRead, len(reads))
	for i, r := range reads {
		reversed[len(reads)-1-i] = r
	}
	packedReversed := build(StoragePacked, reversed)

	for pos := 0; pos < length; pos++ {
		a, _ := obj.Slice(pos)
		b, _ := packed.Slice(pos)
		c, _ := packedReversed.Slice(pos)
		require.Equal(t, a.Depth(), b.Depth(), "pos %d", pos)
		require.Equal(t, a.NucleotideCounts(), b.NucleotideCounts(), "pos %d", pos)
		for _, r := range reads {
			assert.Equal(t, a.Contains(r.ID()), b.Contains(r.ID()))
		}
		assert.True(t, Equal(a, b), "pos %d", pos)
		assert.True(t, Equal(a, c), "pos %d", pos)
		// Depth matches the reads spanning pos.
		n := 0
		for _, r := range reads {
			if pileup.ReadRange(r).Contains(pileup.PosType(pos)) {
				n++
				assert.True(t, a.Contains(r.ID()))
			}
		}
		assert.Equal(t, n, a.Depth())
	}
}

func TestBuildMapErrors(t *testing.T) {
	lookup := NewQualityLookup(exampleQuals(), GapZero)
	reads := exampleReads(t)

	// A read id missing from the quality source fails the whole build.
	quals := exampleQuals()
	delete(quals, "R3")
	m, err := BuildMap(pileup.NewSliceIterator(reads), 20, NewQualityLookup(quals, GapZero), DefaultOpts)
	assert.Nil(t, m)
	assert.True(t, errors.Is(errors.NotExist, err), "%v", err)

	// Read past the end.
	_, err = BuildMap(pileup.NewSliceIterator(reads), 19, lookup, DefaultOpts)
	assert.True(t, errors.Is(errors.Invalid, err))

	// Negative start.
	neg, _ := pileup.NewRead("R1", -1, "AA", pileup.Forward)
	_, err = BuildMap(pileup.NewSliceIterator([]pileup.PlacedRead{neg}), 20, FixedQuality(1), DefaultOpts)
	assert.True(t, errors.Is(errors.Invalid, err))

	// Two overlapping reads sharing an id.
	dup, _ := pileup.NewRead("R1", 3, "AA", pileup.Forward)
	_, err = BuildMap(pileup.NewSliceIterator(append(reads, dup)), 20, FixedQuality(1), DefaultOpts)
	assert.True(t, errors.Is(errors.Invalid, err))

	_, err = BuildMap(pileup.NewSliceIterator(reads), -1, lookup, DefaultOpts)
	assert.True(t, errors.Is(errors.Invalid, err))
	_, err = BuildMap(pileup.NewSliceIterator(reads), 20, lookup, Opts{Consensus: make([]pileup.Base, 19)})
	assert.True(t, errors.Is(errors.Invalid, err))
	_, err = BuildMap(pileup.NewSliceIterator(reads), 20, lookup, Opts{Consensus: make([]pileup.Base, 20), MajorityConsensus: true})
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestBuildMapConsensus(t *testing.T) {
	reads := exampleReads(t)
	ref := pileup.MustParseBases("ACGTACGTACGTACGTACGTAC")
	m, err := BuildMap(pileup.NewSliceIterator(reads), len(ref), FixedQuality(30), Opts{Consensus: ref})
	require.NoError(t, err)
	for pos, want := range ref {
		s, _ := m.Slice(pos)
		call, ok := s.Consensus()
		assert.True(t, ok)
		assert.Equal(t, want, call)
	}
	s, _ := m.Slice(21)
	assert.Equal(t, 0, s.Depth())

	m, err = BuildMap(pileup.NewSliceIterator(reads), 22, FixedQuality(30), Opts{MajorityConsensus: true})
	require.NoError(t, err)
	s, _ = m.Slice(6)
	call, ok := s.Consensus()
	assert.True(t, ok)
	assert.Equal(t, pileup.BaseA, call)
	s, _ = m.Slice(20)
	_, ok = s.Consensus()
	assert.False(t, ok, "empty slices have no majority call")
}

func TestNewMap(t *testing.T) {
	s := buildSlice(t, StorageObject, Element{ID: "a"})
	m := NewMap([]Slice{nil, s})
	assert.Equal(t, 2, m.Len())
	assert.True(t, Empty == m.Slices()[0])
	assert.Equal(t, 1, m.Slices()[1].Depth())
}
