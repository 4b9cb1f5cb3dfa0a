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
	"io"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/tsv"
)

// PileupTSVHeader is the first line written by WritePileupTSV.
const PileupTSVHeader = "#CHROM\tPOS\tCONS\tDEPTH\tA\tC\tG\tT\tN\tGAP\tAMBIG\tBASES"

// WritePileupTSV writes one line per position of m that has reads or a
// consensus call.  POS is 1-based.  CONS is '.' without a call.  BASES lists
// every element's base in insertion order, lowercase for reverse reads.
func WritePileupTSV(w io.Writer, refName string, m *Map, writeHeader bool) error {
	out := tsv.NewWriter(w)
	if writeHeader {
		out.WriteString(PileupTSVHeader)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	var bases []byte
	for pos, s := range m.slices {
		call, hasCall := s.Consensus()
		if s.Depth() == 0 && !hasCall {
			continue
		}
		out.WriteString(refName)
		out.WriteUint32(uint32(pos + 1))
		if hasCall {
			out.WriteByte(call.ASCII())
		} else {
			out.WriteByte('.')
		}
		counts := s.NucleotideCounts()
		out.WriteUint32(uint32(s.Depth()))
		for b := pileup.BaseA; b <= pileup.BaseGap; b++ {
			out.WriteUint32(uint32(counts[b]))
		}
		ambig := 0
		for b := pileup.BaseR; b < pileup.NBaseEnum; b++ {
			ambig += counts[b]
		}
		out.WriteUint32(uint32(ambig))
		bases = bases[:0]
		for _, e := range s.Elements() {
			c := e.Base.ASCII()
			if e.Dir == pileup.Reverse && c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			bases = append(bases, c)
		}
		if len(bases) == 0 {
			out.WriteByte('.')
		} else {
			out.WriteString(string(bases))
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
