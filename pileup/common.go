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
package pileup

import (
	"fmt"

	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/base/errors"
)

// Common pileup components.

// PosType is the integer type used to represent consensus positions.
type PosType = interval.PosType

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = interval.PosTypeMax

// Base is a nucleotide ordinal.  Ordinals must fit in 4 bits, since the packed
// slice encoding stores them in the low nibble of a byte.
//
// The first four values match the natural packed 2-bit representation of
// A/C/G/T, so code that ignores ambiguity codes can index [NBase]-sized arrays
// directly.
type Base byte

const (
	// BaseA represents an A base.
	BaseA Base = iota
	// BaseC represents a C base.
	BaseC
	// BaseG represents a G base.
	BaseG
	// BaseT represents a T base.
	BaseT
	// BaseN is an unknown base.
	BaseN
	// BaseGap is an alignment gap.
	BaseGap
	// BaseR is A or G.
	BaseR
	// BaseY is C or T.
	BaseY
	// BaseK is G or T.
	BaseK
	// BaseM is A or C.
	BaseM
	// BaseS is C or G.
	BaseS
	// BaseW is A or T.
	BaseW
	// BaseB is not A.
	BaseB
	// BaseD is not C.
	BaseD
	// BaseH is not G.
	BaseH
	// BaseV is not T.
	BaseV
)

const (
	// NBase is the number of regular base types.
	NBase = 4
	// NBaseEnum counts every ordinal, including gap and ambiguity codes.
	NBaseEnum = 16
)

// EnumToASCIITable is the Base -> ASCII mapping.  Gaps are rendered as '-'.
var EnumToASCIITable = [NBaseEnum]byte{'A', 'C', 'G', 'T', 'N', '-', 'R', 'Y', 'K', 'M', 'S', 'W', 'B', 'D', 'H', 'V'}

// invalidBase marks bytes of asciiToEnumTable with no Base equivalent.
const invalidBase = 0xff

// asciiToEnumTable is the inverse of EnumToASCIITable, accepting lowercase
// letters and '*' as an alternative gap character.
var asciiToEnumTable [256]byte

func init() {
	for i := range asciiToEnumTable {
		asciiToEnumTable[i] = invalidBase
	}
	for b, c := range EnumToASCIITable {
		asciiToEnumTable[c] = byte(b)
		if c >= 'A' && c <= 'Z' {
			asciiToEnumTable[c+'a'-'A'] = byte(b)
		}
	}
	asciiToEnumTable['*'] = byte(BaseGap)
	asciiToEnumTable['.'] = byte(BaseGap)
}

// ASCII returns the character for b.
func (b Base) ASCII() byte {
	return EnumToASCIITable[b&0x0f]
}

// String implements fmt.Stringer.
func (b Base) String() string {
	return string(b.ASCII())
}

// IsGap returns true iff b is an alignment gap.
func (b Base) IsGap() bool {
	return b == BaseGap
}

// Valid returns true iff b is a defined ordinal.
func (b Base) Valid() bool {
	return b < NBaseEnum
}

// ParseBase converts an ASCII nucleotide (IUPAC letters, '-', '*', '.') to a
// Base.
func ParseBase(c byte) (Base, error) {
	v := asciiToEnumTable[c]
	if v == invalidBase {
		return 0, errors.E(errors.Invalid, fmt.Sprintf("pileup.ParseBase: invalid nucleotide %q", c))
	}
	return Base(v), nil
}

// ParseBases converts an ASCII nucleotide string to a []Base.
func ParseBases(s string) ([]Base, error) {
	bases := make([]Base, len(s))
	for i := 0; i < len(s); i++ {
		v := asciiToEnumTable[s[i]]
		if v == invalidBase {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("pileup.ParseBases: invalid nucleotide %q at offset %d", s[i], i))
		}
		bases[i] = Base(v)
	}
	return bases, nil
}

// MustParseBases is ParseBases for literals; it panics on error.
func MustParseBases(s string) []Base {
	bases, err := ParseBases(s)
	if err != nil {
		panic(err)
	}
	return bases
}

// BasesToString renders bases as ASCII.
func BasesToString(bases []Base) string {
	buf := make([]byte, len(bases))
	for i, b := range bases {
		buf[i] = b.ASCII()
	}
	return string(buf)
}

// Direction describes which strand a placed read was sequenced from,
// relative to the consensus.
type Direction byte

const (
	// Forward means the read agrees with the consensus orientation.
	Forward Direction = iota
	// Reverse means the read was reverse-complemented to be placed.
	Reverse
)

// DirectionToASCIITable is the Direction -> ASCII mapping.
var DirectionToASCIITable = [...]byte{'+', '-'}

// String implements fmt.Stringer.
func (d Direction) String() string {
	return string(DirectionToASCIITable[d&1])
}
