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

/*Package interval provides the coordinate types shared by the coverage and
  pileup packages.

  Two representations are used:
  - Range is an inclusive [Start, End] pair, the natural unit for coverage
    regions and read placements.  A Range with End == Start-1 is empty.
  - An endpoint union is a sorted []PosType of half-open [start, end)
    boundaries, which UnionScanner iterates over position by position.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
