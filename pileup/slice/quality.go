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

// QualityLookup returns the quality to record for base gappedIdx of read.
type QualityLookup interface {
	Quality(read pileup.PlacedRead, gappedIdx int) (byte, error)
}

// QualitySource returns the measured qualities of a read, one per ungapped
// base, in sequencing orientation (i.e. before any reverse-complementing done
// to place the read).  It fails with errors.NotExist for an unknown read id.
type QualitySource interface {
	Quals(id string) ([]byte, error)
}

// MapSource is an in-memory QualitySource.
type MapSource map[string][]byte

// Quals implements QualitySource.
func (m MapSource) Quals(id string) ([]byte, error) {
	q, ok := m[id]
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("slice.MapSource: no qualities for read %q", id))
	}
	return q, nil
}

// FixedQuality is a QualityLookup that reports the same quality everywhere,
// gaps included.
type FixedQuality byte

// Quality implements QualityLookup.
func (q FixedQuality) Quality(pileup.PlacedRead, int) (byte, error) {
	return byte(q), nil
}

// GapStrategy decides what quality a gap inside a read receives.
type GapStrategy int

const (
	// GapLowestFlanking gives a gap the lower quality of the nearest non-gap
	// bases on either side.  At a read end only one side exists; a read with
	// no non-gap base gets 0.
	GapLowestFlanking GapStrategy = iota
	// GapZero gives every gap quality 0.
	GapZero
)

// ParseGapStrategy parses "lowest" or "zero".
func ParseGapStrategy(s string) (GapStrategy, error) {
	switch strings.ToLower(s) {
	case "lowest", "":
		return GapLowestFlanking, nil
	case "zero":
		return GapZero, nil
	}
	return GapLowestFlanking, errors.E(errors.Invalid, fmt.Sprintf("slice.ParseGapStrategy: unknown strategy %q", s))
}

// GappedQuals expands the ungapped sequencing-orientation qualities of read
// into one quality per gapped base of read.Bases().  For a reverse read the
// last measured quality belongs to the first placed base.
func GappedQuals(read pileup.PlacedRead, quals []byte, gap GapStrategy) ([]byte, error) {
	bases := read.Bases()
	n := pileup.UngappedLen(bases)
	if len(quals) != n {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("slice.GappedQuals: read %s has %d bases but %d qualities", read.ID(), n, len(quals)))
	}
	reverse := read.Direction() == pileup.Reverse
	out := make([]byte, len(bases))
	u := 0
	for i, b := range bases {
		if b.IsGap() {
			continue
		}
		if reverse {
			out[i] = quals[n-1-u]
		} else {
			out[i] = quals[u]
		}
		u++
	}
	if gap == GapZero || n == len(bases) {
		return out, nil
	}
	// left[i] is the quality of the nearest non-gap base left of gap i, or -1.
	left := make([]int, len(bases))
	prev := -1
	for i, b := range bases {
		if b.IsGap() {
			left[i] = prev
		} else {
			prev = int(out[i])
		}
	}
	next := -1
	for i := len(bases) - 1; i >= 0; i-- {
		if !bases[i].IsGap() {
			next = int(out[i])
			continue
		}
		l, r := left[i], next
		switch {
		case l < 0 && r < 0:
			out[i] = 0
		case l < 0:
			out[i] = byte(r)
		case r < 0 || l < r:
			out[i] = byte(l)
		default:
			out[i] = byte(r)
		}
	}
	return out, nil
}

type readKey struct {
	id    string
	begin pileup.PosType
	n     int
	dir   pileup.Direction
}

// sourceLookup resolves qualities through a QualitySource.  BuildMap asks for
// every base of a read before moving to the next, so the expanded qualities
// of the most recent read are cached.
type sourceLookup struct {
	src    QualitySource
	gap    GapStrategy
	key    readKey
	gapped []byte
}

// NewQualityLookup returns a QualityLookup reading measured qualities from src
// and filling gaps according to gap.  The result is not safe for concurrent
// use.
func NewQualityLookup(src QualitySource, gap GapStrategy) QualityLookup {
	return &sourceLookup{src: src, gap: gap}
}

// Quality implements QualityLookup.
func (l *sourceLookup) Quality(read pileup.PlacedRead, gappedIdx int) (byte, error) {
	key := readKey{read.ID(), read.Begin(), len(read.Bases()), read.Direction()}
	if l.gapped == nil || key != l.key {
		quals, err := l.src.Quals(key.id)
		if err != nil {
			l.gapped = nil
			return 0, err
		}
		gapped, err := GappedQuals(read, quals, l.gap)
		if err != nil {
			l.gapped = nil
			return 0, err
		}
		l.key, l.gapped = key, gapped
	}
	if gappedIdx < 0 || gappedIdx >= len(l.gapped) {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("slice: offset %d outside read %s of length %d", gappedIdx, key.id, len(l.gapped)))
	}
	return l.gapped[gappedIdx], nil
}
