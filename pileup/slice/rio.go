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
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/recordio"
	"github.com/grailbio/base/recordio/recordiozstd"
)

const (
	rioRefNameHeader = "RefName"
	rioLengthHeader  = "Length"

	flagConsensus = 1
)

func init() {
	recordiozstd.Init()
}

// WriteMapRio writes m to out as a zstd-compressed recordio file with one
// record per position.  Each record is
//
//   flags byte | consensus byte | uvarint depth | depth x (uvarint len(id) | id | packed uint16 LE)
//
// so the on-disk element encoding is the packed in-memory one.
func WriteMapRio(m *Map, refName string, out io.Writer) error {
	w := recordio.NewWriter(out, recordio.WriterOpts{
		Marshal:      marshalSlice,
		Transformers: []string{recordiozstd.Name},
	})
	w.AddHeader(rioRefNameHeader, refName)
	w.AddHeader(rioLengthHeader, strconv.Itoa(m.Len()))
	for _, s := range m.slices {
		w.Append(s)
	}
	return w.Finish()
}

func marshalSlice(scratch []byte, v interface{}) ([]byte, error) {
	s := v.(Slice)
	buf := scratch[:0]
	var flags, call byte
	if base, ok := s.Consensus(); ok {
		flags |= flagConsensus
		call = byte(base)
	}
	buf = append(buf, flags, call)
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(s.Depth()))
	buf = append(buf, tmp[:n]...)
	for _, e := range s.Elements() {
		n = binary.PutUvarint(tmp[:], uint64(len(e.ID)))
		buf = append(buf, tmp[:n]...)
		buf = append(buf, e.ID...)
		packed := PackElement(e)
		buf = append(buf, byte(packed), byte(packed>>8))
	}
	return buf, nil
}

func unmarshalSlice(in []byte) (interface{}, error) {
	truncated := func() error {
		return errors.E(errors.Invalid, fmt.Sprintf("slice: truncated record of %d bytes", len(in)))
	}
	if len(in) < 3 {
		return nil, truncated()
	}
	flags, call := in[0], pileup.Base(in[1])
	depth, n := binary.Uvarint(in[2:])
	if n <= 0 {
		return nil, truncated()
	}
	off := 2 + n
	var s Slice = Empty
	if depth > 0 {
		// Every element takes at least 3 bytes, so a larger depth is a
		// truncated record.
		if depth > uint64(len(in)-off)/3 {
			return nil, truncated()
		}
		p := &packedSlice{
			ids:    make([]string, 0, depth),
			values: make([]uint16, 0, depth),
		}
		for i := uint64(0); i < depth; i++ {
			idLen, n := binary.Uvarint(in[off:])
			if n <= 0 {
				return nil, truncated()
			}
			off += n
			if idLen > uint64(len(in)-off) || len(in)-off-int(idLen) < 2 {
				return nil, truncated()
			}
			id := string(in[off : off+int(idLen)])
			off += int(idLen)
			e := UnpackElement(id, binary.LittleEndian.Uint16(in[off:off+2]))
			off += 2
			if err := p.add(e); err != nil {
				return nil, err
			}
		}
		p.freeze()
		s = p
	}
	if off != len(in) {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("slice: %d trailing bytes in record", len(in)-off))
	}
	if flags&flagConsensus != 0 {
		s = WithConsensus(s, call)
	}
	return s, nil
}

// ReadMapRio reads a Map written by WriteMapRio.  Slices come back in packed
// storage.
func ReadMapRio(rs io.ReadSeeker) (m *Map, refName string, err error) {
	scanner := recordio.NewScanner(rs, recordio.ScannerOpts{
		Unmarshal: unmarshalSlice,
	})
	length := -1
	for _, kv := range scanner.Header() {
		switch kv.Key {
		case rioRefNameHeader:
			refName = kv.Value.(string)
		case rioLengthHeader:
			if length, err = strconv.Atoi(kv.Value.(string)); err != nil {
				return nil, "", errors.E(errors.Invalid, err)
			}
		default:
			// recordio writes its own keys.
		}
	}
	var slices []Slice
	for scanner.Scan() {
		slices = append(slices, scanner.Get().(Slice))
	}
	if err = scanner.Err(); err != nil {
		return nil, "", err
	}
	if length >= 0 && length != len(slices) {
		return nil, "", errors.E(errors.Invalid, fmt.Sprintf("slice.ReadMapRio: header says %d positions, found %d", length, len(slices)))
	}
	return NewMap(slices), refName, nil
}
