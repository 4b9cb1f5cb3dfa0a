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

// Package slice builds per-coordinate pileups ("slices") over a consensus.
//
// A Slice holds one Element per read covering a coordinate: the read id, its
// base, the base quality and the read orientation.  Slices come in two
// storage forms with identical behavior:
//
//   - object storage keeps Elements in an id-indexed, insertion-ordered set,
//     giving O(1) Element lookup;
//   - packed storage keeps parallel id and uint16 arrays (see Pack), trading
//     an O(depth) Element lookup for much less memory per element.
//
// A Map is a dense []Slice covering consensus positions [0, length); it is
// produced by BuildMap from placed reads and a QualityLookup, and is
// immutable afterwards.
package slice
