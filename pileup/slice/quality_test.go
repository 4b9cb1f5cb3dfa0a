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
	"testing"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestGappedQuals(t *testing.T) {
	tests := []struct {
		seq   string
		dir   pileup.Direction
		quals []byte
		gap   GapStrategy
		want  []byte
	}{
		{"ACGT", pileup.Forward, []byte{1, 2, 3, 4}, GapLowestFlanking, []byte{1, 2, 3, 4}},
		{"ACGT", pileup.Reverse, []byte{1, 2, 3, 4}, GapLowestFlanking, []byte{4, 3, 2, 1}},
		{"AC-GT", pileup.Forward, []byte{10, 20, 30, 40}, GapLowestFlanking, []byte{10, 20, 20, 30, 40}},
		{"AC-GT", pileup.Reverse, []byte{10, 20, 30, 40}, GapLowestFlanking, []byte{40, 30, 20, 20, 10}},
		{"AC--GT", pileup.Forward, []byte{10, 50, 30, 40}, GapLowestFlanking, []byte{10, 50, 30, 30, 30, 40}},
		{"-AC-", pileup.Forward, []byte{10, 20}, GapLowestFlanking, []byte{10, 10, 20, 20}},
		{"--", pileup.Forward, nil, GapLowestFlanking, []byte{0, 0}},
		{"AC-GT", pileup.Forward, []byte{10, 20, 30, 40}, GapZero, []byte{10, 20, 0, 30, 40}},
	}
	for _, test := range tests {
		read, err := pileup.NewRead("r", 0, test.seq, test.dir)
		assert.NoError(t, err)
		got, err := GappedQuals(read, test.quals, test.gap)
		assert.NoError(t, err)
		expect.EQ(t, got, test.want, "seq %s dir %v", test.seq, test.dir)
	}

	read, err := pileup.NewRead("r", 0, "ACG", pileup.Forward)
	assert.NoError(t, err)
	_, err = GappedQuals(read, []byte{1, 2}, GapZero)
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestQualityLookup(t *testing.T) {
	r1, _ := pileup.NewRead("R1", 0, "A-C", pileup.Forward)
	r2, _ := pileup.NewRead("R2", 5, "GT", pileup.Reverse)
	lookup := NewQualityLookup(MapSource{"R1": {7, 9}, "R2": {11, 12}}, GapLowestFlanking)

	for i, want := range []byte{7, 7, 9} {
		got, err := lookup.Quality(r1, i)
		assert.NoError(t, err)
		expect.EQ(t, got, want)
	}
	got, err := lookup.Quality(r2, 0)
	assert.NoError(t, err)
	expect.EQ(t, got, byte(12))
	// Switching back to an earlier read re-resolves its qualities.
	got, err = lookup.Quality(r1, 2)
	assert.NoError(t, err)
	expect.EQ(t, got, byte(9))

	_, err = lookup.Quality(r1, 3)
	expect.True(t, errors.Is(errors.Invalid, err))

	r3, _ := pileup.NewRead("R3", 0, "A", pileup.Forward)
	_, err = lookup.Quality(r3, 0)
	expect.True(t, errors.Is(errors.NotExist, err))

	fixed := FixedQuality(25)
	got, err = fixed.Quality(r1, 1)
	assert.NoError(t, err)
	expect.EQ(t, got, byte(25))
}

func TestParseGapStrategy(t *testing.T) {
	g, err := ParseGapStrategy("zero")
	assert.NoError(t, err)
	expect.EQ(t, g, GapZero)
	g, err = ParseGapStrategy("lowest")
	assert.NoError(t, err)
	expect.EQ(t, g, GapLowestFlanking)
	_, err = ParseGapStrategy("mean")
	expect.True(t, errors.Is(errors.Invalid, err))
}
