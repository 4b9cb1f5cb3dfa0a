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
	"fmt"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Opts controls BuildMap.
type Opts struct {
	// Storage selects the slice representation.  StorageAuto resolves it
	// with ChooseStorage(ExpectedDepth).
	Storage Storage
	// ExpectedDepth is the caller's estimate of the typical read depth.
	ExpectedDepth int
	// Consensus, if non-nil, supplies an external consensus call for every
	// position.  It must have the map's length.
	Consensus []pileup.Base
	// MajorityConsensus attaches a majority-vote call to every nonempty
	// slice.  It cannot be combined with Consensus.
	MajorityConsensus bool
}

// DefaultOpts is the default BuildMap configuration.
var DefaultOpts = Opts{Storage: StorageAuto}

// Map is a dense, immutable sequence of Slices covering positions
// [0, Len()).
type Map struct {
	slices []Slice
}

// NewMap wraps slices in a Map.  nil entries are replaced by Empty.
func NewMap(slices []Slice) *Map {
	for i, s := range slices {
		if s == nil {
			slices[i] = Empty
		}
	}
	return &Map{slices: slices}
}

// Len returns the number of positions.
func (m *Map) Len() int { return len(m.slices) }

// Slice returns the slice at pos, failing with errors.Invalid when pos is out
// of range.
func (m *Map) Slice(pos int) (Slice, error) {
	if pos < 0 || pos >= len(m.slices) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("slice.Map.Slice: position %d out of range [0, %d)", pos, len(m.slices)))
	}
	return m.slices[pos], nil
}

// Slices returns every slice in position order.  The caller must not modify
// the returned slice.
func (m *Map) Slices() []Slice { return m.slices }

// BuildMap piles up the reads of iter over positions [0, length).  Each base i
// of a read starting at s becomes an Element at position s+i, with the quality
// quals reports for it.
//
// The build fails, returning no Map, when quals fails (for instance with
// errors.NotExist for an unknown read), when a read extends outside
// [0, length), or when two reads with the same id overlap.
func BuildMap(iter pileup.ReadIterator, length int, quals QualityLookup, opts Opts) (*Map, error) {
	if length < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("slice.BuildMap: negative length %d", length))
	}
	if opts.Consensus != nil {
		if len(opts.Consensus) != length {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("slice.BuildMap: consensus has length %d, want %d", len(opts.Consensus), length))
		}
		if opts.MajorityConsensus {
			return nil, errors.E(errors.Invalid, "slice.BuildMap: external and majority consensus are mutually exclusive")
		}
	}
	storage := opts.Storage
	if storage == StorageAuto {
		storage = ChooseStorage(opts.ExpectedDepth)
	}

	builders := make([]*Builder, length)
	nReads, nElems := 0, 0
	for iter.Scan() {
		read := iter.Read()
		bases := read.Bases()
		if len(bases) == 0 {
			continue
		}
		start := int(read.Begin())
		if start < 0 || start+len(bases) > length {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("slice.BuildMap: read %s covers [%d, %d), outside [0, %d)", read.ID(), start, start+len(bases), length))
		}
		id, dir := read.ID(), read.Direction()
		for i, base := range bases {
			qual, err := quals.Quality(read, i)
			if err != nil {
				return nil, errors.E(err, fmt.Sprintf("slice.BuildMap: quality of read %s offset %d", id, i))
			}
			pos := start + i
			b := builders[pos]
			if b == nil {
				b = NewBuilder(storage)
				builders[pos] = b
			}
			if err := b.Add(Element{ID: id, Base: base, Qual: qual, Dir: dir}); err != nil {
				return nil, errors.E(err, fmt.Sprintf("slice.BuildMap: position %d", pos))
			}
		}
		nReads++
		nElems += len(bases)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	slices := make([]Slice, length)
	nEmpty := 0
	for pos, b := range builders {
		var s Slice
		if b == nil {
			s = Empty
			nEmpty++
		} else {
			s = b.Build()
		}
		switch {
		case opts.Consensus != nil:
			s = WithConsensus(s, opts.Consensus[pos])
		case opts.MajorityConsensus:
			s = MajorityConsensus(s)
		}
		slices[pos] = s
	}
	log.Debug.Printf("slice.BuildMap: %d read(s), %d element(s) over %d position(s) (%d empty), %v storage",
		nReads, nElems, length, nEmpty, storage)
	return &Map{slices: slices}, nil
}
