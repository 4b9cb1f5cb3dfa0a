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
package interval

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestRange(t *testing.T) {
	r := NewRange(5, 9)
	expect.EQ(t, r.Len(), PosType(5))
	expect.False(t, r.IsEmpty())
	expect.True(t, r.Contains(5))
	expect.True(t, r.Contains(9))
	expect.False(t, r.Contains(10))
	expect.True(t, r.Intersects(Point(9)))
	expect.False(t, r.Intersects(Point(4)))
	expect.EQ(t, r.Shift(-5), NewRange(0, 4))
	expect.EQ(t, NewRangeOfLength(5, 5), r)

	empty := NewRange(5, 4)
	expect.True(t, empty.IsEmpty())
	expect.EQ(t, empty.Len(), PosType(0))
	expect.False(t, empty.Intersects(r))
	expect.True(t, r.ContainsRange(empty))
	expect.True(t, r.ContainsRange(NewRange(6, 8)))
	expect.False(t, r.ContainsRange(NewRange(6, 10)))
}

func TestRangesToEndpoints(t *testing.T) {
	tests := []struct {
		ranges []Range
		want   []PosType
	}{
		{nil, nil},
		{[]Range{{0, 4}}, []PosType{0, 5}},
		{[]Range{{0, 4}, {5, 9}, {12, 14}}, []PosType{0, 10, 12, 15}},
		{[]Range{{0, 4}, {5, 4}, {7, 7}}, []PosType{0, 5, 7, 8}},
		{[]Range{{5, 9}, {0, 4}}, nil},
	}
	for _, tt := range tests {
		expect.EQ(t, RangesToEndpoints(tt.ranges), tt.want, "ranges %v", tt.ranges)
	}
	expect.EQ(t, EndpointsToRanges([]PosType{0, 10, 12, 15}), []Range{{0, 9}, {12, 14}})
}

func TestUnionScanner(t *testing.T) {
	endpoints := []PosType{5, 15, 17, 25}
	us := NewUnionScanner(endpoints)
	var start, end PosType
	var got []PosType
	for us.Scan(&start, &end, 22) {
		for pos := start; pos < end; pos++ {
			got = append(got, pos)
		}
	}
	expect.EQ(t, got, []PosType{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 17, 18, 19, 20, 21})
	expect.EQ(t, us.Pos(), PosType(22))
	got = got[:0]
	for us.Scan(&start, &end, 30) {
		for pos := start; pos < end; pos++ {
			got = append(got, pos)
		}
	}
	expect.EQ(t, got, []PosType{22, 23, 24})
	expect.EQ(t, us.Pos(), PosType(PosTypeMax))

	expect.True(t, EndpointsContain(endpoints, 5))
	expect.False(t, EndpointsContain(endpoints, 15))
	expect.True(t, EndpointsContain(endpoints, 24))
	expect.False(t, EndpointsContain(endpoints, 25))
}

func TestParseRegionString(t *testing.T) {
	tests := []struct {
		region  string
		refName string
		start0  PosType
		end     PosType
	}{
		{"chr1:1-1000", "chr1", 0, 1000},
		{"chr1:1000", "chr1", 999, 1000},
		{"chr1", "chr1", 0, math.MaxInt32 - 1},
		{"contig7:5-5", "contig7", 4, 5},
	}
	for _, tt := range tests {
		result, err := ParseRegionString(tt.region)
		assert.NoError(t, err)
		expect.EQ(t, tt.refName, result.RefName)
		expect.EQ(t, tt.start0, result.Start0)
		expect.EQ(t, tt.end, result.End)
	}
	for _, bad := range []string{"", ":1-5", "chr1:0", "chr1:5-4", "chr1:x-5"} {
		_, err := ParseRegionString(bad)
		expect.NotNil(t, err, "region %q", bad)
	}
	entry, err := ParseRegionString("chr1:11-20")
	assert.NoError(t, err)
	expect.EQ(t, entry.Range(), NewRange(10, 19))
}
