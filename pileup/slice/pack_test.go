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
	"github.com/grailbio/testutil/expect"
)

func TestPackRoundTrip(t *testing.T) {
	for b := pileup.Base(0); b < pileup.NBaseEnum; b++ {
		for q := 0; q < 256; q++ {
			for _, dir := range []pileup.Direction{pileup.Forward, pileup.Reverse} {
				v := Pack(b, byte(q), dir)
				gotBase, gotQual, gotDir := Unpack(v)
				if gotBase != b || gotQual != byte(q) || gotDir != dir {
					t.Fatalf("Pack(%v, %d, %v) = %#04x unpacked to (%v, %d, %v)", b, q, dir, v, gotBase, gotQual, gotDir)
				}
			}
		}
	}
}

func TestPackLayout(t *testing.T) {
	expect.EQ(t, Pack(pileup.BaseA, 0, pileup.Forward), uint16(0x0000))
	expect.EQ(t, Pack(pileup.BaseT, 40, pileup.Forward), uint16(0x0328))
	expect.EQ(t, Pack(pileup.BaseGap, 255, pileup.Reverse), uint16(0x85ff))
	expect.EQ(t, Pack(pileup.BaseV, 1, pileup.Reverse), uint16(0x8f01))

	e := Element{ID: "r", Base: pileup.BaseG, Qual: 33, Dir: pileup.Reverse}
	expect.EQ(t, UnpackElement("r", PackElement(e)), e)
}
