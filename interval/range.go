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

import "fmt"

// Range is an inclusive interval [Start, End].  End == Start-1 denotes an
// empty range anchored at Start; anything smaller is invalid.
type Range struct {
	Start PosType
	End   PosType
}

// NewRange returns the inclusive range [start, end].
func NewRange(start, end PosType) Range {
	return Range{Start: start, End: end}
}

// NewRangeOfLength returns the range of n positions beginning at start.
func NewRangeOfLength(start, n PosType) Range {
	return Range{Start: start, End: start + n - 1}
}

// Point returns the single-position range [pos, pos].
func Point(pos PosType) Range {
	return Range{Start: pos, End: pos}
}

// Len returns the number of positions covered by r.
func (r Range) Len() PosType {
	return r.End - r.Start + 1
}

// IsEmpty returns true iff r covers no positions.
func (r Range) IsEmpty() bool {
	return r.End < r.Start
}

// Contains returns true iff pos is in r.
func (r Range) Contains(pos PosType) bool {
	return r.Start <= pos && pos <= r.End
}

// ContainsRange returns true iff every position of o is in r.  Empty ranges
// are only contained when their anchor lies inside r.
func (r Range) ContainsRange(o Range) bool {
	if o.IsEmpty() {
		return r.Start <= o.Start && o.Start <= r.End+1
	}
	return r.Start <= o.Start && o.End <= r.End
}

// Intersects returns true iff r and o share at least one position.
func (r Range) Intersects(o Range) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.Start <= o.End && o.Start <= r.End
}

// Shift returns r translated by delta positions (negative delta moves left).
func (r Range) Shift(delta PosType) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// HalfOpen returns r's [start, end) endpoint pair.
func (r Range) HalfOpen() (start, end PosType) {
	return r.Start, r.End + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// RangesToEndpoints converts a sorted sequence of nonoverlapping ranges into an
// endpoint union, merging ranges that touch and skipping empty ones.  It
// returns nil if ranges isn't sorted.
func RangesToEndpoints(ranges []Range) []PosType {
	var endpoints []PosType
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}
		start, end := r.HalfOpen()
		n := len(endpoints)
		if n != 0 {
			if start < endpoints[n-1] {
				return nil
			}
			if start == endpoints[n-1] {
				endpoints[n-1] = end
				continue
			}
		}
		endpoints = append(endpoints, start, end)
	}
	return endpoints
}
