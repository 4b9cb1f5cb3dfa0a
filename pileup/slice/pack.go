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

import "github.com/grailbio/assembly/pileup"

// Packed element layout:
//
//   bits 15     reverse flag
//   bits 14-12  unused, always 0
//   bits 11-8   base ordinal
//   bits 7-0    quality
//
// Read as a signed byte, the high byte is negative exactly for reverse
// elements.
const (
	reverseFlag = 0x80
	ordinalMask = 0x0f
)

// Pack encodes (base, qual, dir) into 16 bits.
func Pack(base pileup.Base, qual byte, dir pileup.Direction) uint16 {
	high := byte(base) & ordinalMask
	if dir == pileup.Reverse {
		high |= reverseFlag
	}
	return uint16(high)<<8 | uint16(qual)
}

// Unpack is the inverse of Pack.
func Unpack(v uint16) (base pileup.Base, qual byte, dir pileup.Direction) {
	high := byte(v >> 8)
	base = pileup.Base(high & ordinalMask)
	qual = byte(v)
	dir = pileup.Forward
	if int8(high) < 0 {
		dir = pileup.Reverse
	}
	return
}

// PackElement packs e's base, quality and direction.  The id is not part of
// the packed value.
func PackElement(e Element) uint16 {
	return Pack(e.Base, e.Qual, e.Dir)
}

// UnpackElement rebuilds the Element with the given id from a packed value.
func UnpackElement(id string, v uint16) Element {
	base, qual, dir := Unpack(v)
	return Element{ID: id, Base: base, Qual: qual, Dir: dir}
}
