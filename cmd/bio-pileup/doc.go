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
bio-pileup builds assembly pileups from the aligned reads of a BAM file.

Each reference in the BAM header is treated as a consensus coordinate space.
The "coverage" subcommand sweeps the reads of every reference into a coverage
map (a tiling of the reference by intervals of constant read depth) and
reports its statistics together with the low-coverage intervals.  The
"slices" subcommand builds a per-position pileup of every read's base,
quality and strand, optionally with consensus calls taken from a FASTA file
or from a majority vote.

Sample usage:
bio-pileup coverage     -min-depth 3     -out output-prefix     my.bam

bio-pileup slices     -fa consensus.fa     -region contig7:1000-2000     -out output-prefix     my.bam

Outputs:
  coverage: <prefix>.coverage.tsv (one line per coverage region) and
            <prefix>.lowcov.bed (intervals below -min-depth)
  slices:   <prefix>.pileup.tsv (one line per covered position) and
            <prefix>.<ref>.slices.rio (the full slice map of each reference)
*/
package main
