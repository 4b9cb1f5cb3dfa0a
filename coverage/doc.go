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

/*
Package coverage computes read-depth coverage maps over a consensus
coordinate space.

A Map is an ordered sequence of Regions.  Each Region is an inclusive
interval [Start, End] together with the set of elements (usually
pileup.PlacedReads) that span every position of it, so a Region's coverage is
simply the number of elements it references.  Maps are built by a sweep line
over the elements' start and end coordinates and satisfy:
  - regions are sorted by Start and pairwise non-overlapping;
  - adjacent regions tile: prev.End+1 == next.Start.  A stretch between
    elements that nothing covers is reported as a zero-coverage Region;
  - every Region covers at least one position.

Maps are immutable once built and safe for concurrent use.
*/
package coverage
