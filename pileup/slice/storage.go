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
	"strings"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
)

// Storage selects a Slice representation.
type Storage int

const (
	// StorageAuto picks object or packed storage from an expected-depth hint;
	// see ChooseStorage.
	StorageAuto Storage = iota
	// StorageObject keeps an id-indexed set of Elements.
	StorageObject
	// StoragePacked keeps parallel id and packed-value arrays.
	StoragePacked
)

// PackedDepthThreshold is the expected depth at which StorageAuto switches to
// packed storage.
const PackedDepthThreshold = 32

// ChooseStorage resolves StorageAuto for a given expected depth.
func ChooseStorage(expectedDepth int) Storage {
	if expectedDepth >= PackedDepthThreshold {
		return StoragePacked
	}
	return StorageObject
}

// ParseStorage parses "auto", "object" or "packed".
func ParseStorage(s string) (Storage, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return StorageAuto, nil
	case "object":
		return StorageObject, nil
	case "packed":
		return StoragePacked, nil
	}
	return StorageAuto, errors.E(errors.Invalid, fmt.Sprintf("slice.ParseStorage: unknown storage %q", s))
}

func (s Storage) String() string {
	switch s {
	case StorageAuto:
		return "auto"
	case StorageObject:
		return "object"
	case StoragePacked:
		return "packed"
	}
	return fmt.Sprintf("Storage(%d)", int(s))
}

// objectSlice stores Elements in insertion order, with an id index.
type objectSlice struct {
	elems []Element
	index map[string]int
}

func newObjectSlice() *objectSlice {
	return &objectSlice{index: make(map[string]int)}
}

func (s *objectSlice) add(e Element) error {
	if _, ok := s.index[e.ID]; ok {
		return duplicateError(e.ID)
	}
	s.index[e.ID] = len(s.elems)
	s.elems = append(s.elems, e)
	return nil
}

func (s *objectSlice) Depth() int { return len(s.elems) }

func (s *objectSlice) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *objectSlice) Element(id string) (Element, bool) {
	i, ok := s.index[id]
	if !ok {
		return Element{}, false
	}
	return s.elems[i], true
}

func (s *objectSlice) Elements() []Element {
	return append([]Element(nil), s.elems...)
}

func (s *objectSlice) NucleotideCounts() (c Counts) {
	for _, e := range s.elems {
		c[e.Base&ordinalMask]++
	}
	return
}

func (s *objectSlice) Consensus() (pileup.Base, bool) { return 0, false }

// packedSlice stores element i as (ids[i], values[i]).  Lookup by id is a
// linear scan.  seen indexes ids only while the slice is being built; freeze
// drops it.
type packedSlice struct {
	ids    []string
	values []uint16
	seen   map[string]struct{}
}

func (s *packedSlice) find(id string) int {
	for i, x := range s.ids {
		if x == id {
			return i
		}
	}
	return -1
}

func (s *packedSlice) add(e Element) error {
	if s.seen == nil {
		s.seen = make(map[string]struct{}, len(s.ids)+1)
		for _, id := range s.ids {
			s.seen[id] = struct{}{}
		}
	}
	if _, ok := s.seen[e.ID]; ok {
		return duplicateError(e.ID)
	}
	s.seen[e.ID] = struct{}{}
	s.ids = append(s.ids, e.ID)
	s.values = append(s.values, PackElement(e))
	return nil
}

// freeze drops the build-time id index and spare capacity left by append.
func (s *packedSlice) freeze() {
	s.seen = nil
	if cap(s.ids) != len(s.ids) {
		s.ids = append([]string(nil), s.ids...)
		s.values = append([]uint16(nil), s.values...)
	}
}

func (s *packedSlice) Depth() int { return len(s.ids) }

func (s *packedSlice) Contains(id string) bool { return s.find(id) >= 0 }

func (s *packedSlice) Element(id string) (Element, bool) {
	i := s.find(id)
	if i < 0 {
		return Element{}, false
	}
	return UnpackElement(id, s.values[i]), true
}

func (s *packedSlice) Elements() []Element {
	elems := make([]Element, len(s.ids))
	for i, id := range s.ids {
		elems[i] = UnpackElement(id, s.values[i])
	}
	return elems
}

func (s *packedSlice) NucleotideCounts() (c Counts) {
	for _, v := range s.values {
		c[(v>>8)&ordinalMask]++
	}
	return
}

func (s *packedSlice) Consensus() (pileup.Base, bool) { return 0, false }

func duplicateError(id string) error {
	return errors.E(errors.Invalid, fmt.Sprintf("slice: duplicate read id %q", id))
}
