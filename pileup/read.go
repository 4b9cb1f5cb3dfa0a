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
package pileup

import (
	"fmt"

	"github.com/grailbio/assembly/interval"
)

// PlacedRead is a read already positioned in the consensus coordinate space.
// Bases() is the gapped sequence as placed, i.e. already
// reverse-complemented for Reverse reads; base i sits at Begin()+i.
//
// PlacedRead also satisfies coverage.Element.
type PlacedRead interface {
	ID() string
	Begin() PosType
	Len() PosType
	Bases() []Base
	Direction() Direction
}

// Read is the plain PlacedRead implementation used by the encoding adapters
// and tests.
type Read struct {
	Name string
	Pos  PosType
	Seq  []Base
	Dir  Direction
}

// NewRead parses an ASCII gapped sequence into a Read.
func NewRead(name string, pos PosType, seq string, dir Direction) (*Read, error) {
	bases, err := ParseBases(seq)
	if err != nil {
		return nil, err
	}
	return &Read{Name: name, Pos: pos, Seq: bases, Dir: dir}, nil
}

// ID implements PlacedRead.
func (r *Read) ID() string { return r.Name }

// Begin implements PlacedRead.
func (r *Read) Begin() PosType { return r.Pos }

// Len implements PlacedRead.
func (r *Read) Len() PosType { return PosType(len(r.Seq)) }

// Bases implements PlacedRead.
func (r *Read) Bases() []Base { return r.Seq }

// Direction implements PlacedRead.
func (r *Read) Direction() Direction { return r.Dir }

func (r *Read) String() string {
	return fmt.Sprintf("%s%s@%d:%s", r.Name, r.Dir, r.Pos, BasesToString(r.Seq))
}

// ReadRange returns the inclusive consensus range covered by r.  Zero-length
// reads yield an empty range.
func ReadRange(r PlacedRead) interval.Range {
	return interval.NewRangeOfLength(r.Begin(), r.Len())
}

// UngappedIndex converts a gapped read offset to the offset of the same base
// in the ungapped read, counting from the left end of the placed sequence.
// It returns -1 if gappedIdx lands on a gap.
func UngappedIndex(bases []Base, gappedIdx int) int {
	if bases[gappedIdx].IsGap() {
		return -1
	}
	n := 0
	for _, b := range bases[:gappedIdx] {
		if !b.IsGap() {
			n++
		}
	}
	return n
}

// UngappedLen returns the number of non-gap bases.
func UngappedLen(bases []Base) int {
	n := 0
	for _, b := range bases {
		if !b.IsGap() {
			n++
		}
	}
	return n
}

// ReadIterator iterates over placed reads.  Usage:
//   for iter.Scan() {
//     r := iter.Read()
//     ...
//   }
//   if err := iter.Err(); err != nil { ... }
type ReadIterator interface {
	Scan() bool
	Read() PlacedRead
	Err() error
}

type sliceIterator struct {
	reads []PlacedRead
	idx   int
}

// NewSliceIterator returns a ReadIterator over an in-memory read set.
func NewSliceIterator(reads []PlacedRead) ReadIterator {
	return &sliceIterator{reads: reads, idx: -1}
}

func (it *sliceIterator) Scan() bool {
	if it.idx+1 >= len(it.reads) {
		it.idx = len(it.reads)
		return false
	}
	it.idx++
	return true
}

func (it *sliceIterator) Read() PlacedRead { return it.reads[it.idx] }

func (it *sliceIterator) Err() error { return nil }
