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
package fastq

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// PhredOffset is the ASCII offset of Sanger/Illumina 1.8+ quality strings.
const PhredOffset = 33

// DecodeQual converts a phred+33 quality string to scores.  Characters below
// the offset fail with errors.Invalid.
func DecodeQual(qual string) ([]byte, error) {
	out := make([]byte, len(qual))
	for i := 0; i < len(qual); i++ {
		c := qual[i]
		if c < PhredOffset {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("fastq.DecodeQual: invalid quality character %q at offset %d", c, i))
		}
		out[i] = c - PhredOffset
	}
	return out, nil
}

// ReadID returns the id r's qualities are stored under.  It matches
// bamreads.ReadID: a name already ending in /1 or /2 is kept, and otherwise a
// Casava 1.8 comment ("1:N:0:..." or "2:N:0:...") appends the mate number.
func ReadID(r *Read) string {
	name := r.Name()
	if hasMateSuffix(name) {
		return name
	}
	comment := strings.TrimLeft(strings.TrimPrefix(r.ID, "@")[len(name):], " \t")
	if len(comment) >= 2 && comment[1] == ':' && (comment[0] == '1' || comment[0] == '2') {
		return name + "/" + comment[:1]
	}
	return name
}

func hasMateSuffix(id string) bool {
	return strings.HasSuffix(id, "/1") || strings.HasSuffix(id, "/2")
}

// QualSource holds decoded qualities keyed by ReadID.  It satisfies
// slice.QualitySource.
type QualSource struct {
	quals map[string][]byte
}

// NewQualSource returns an empty QualSource.
func NewQualSource() *QualSource {
	return &QualSource{quals: make(map[string][]byte)}
}

// Add decodes r's qualities and stores them under ReadID(r).  A repeated id
// fails with errors.Invalid.
func (q *QualSource) Add(r *Read) error {
	name := ReadID(r)
	if _, ok := q.quals[name]; ok {
		return errors.E(errors.Invalid, fmt.Sprintf("fastq.QualSource: duplicate read %q", name))
	}
	decoded, err := DecodeQual(r.Qual)
	if err != nil {
		return errors.E(err, fmt.Sprintf("read %s", name))
	}
	q.quals[name] = decoded
	return nil
}

// Len returns the number of reads held.
func (q *QualSource) Len() int { return len(q.quals) }

// Quals returns the qualities of the identified read, failing with
// errors.NotExist when it is unknown.  An id without a mate suffix also
// matches a first-of-pair entry, since single-end Casava reads carry "1:".
func (q *QualSource) Quals(id string) ([]byte, error) {
	quals, ok := q.quals[id]
	if !ok && !hasMateSuffix(id) {
		quals, ok = q.quals[id+"/1"]
	}
	if !ok {
		return nil, errors.E(errors.NotExist, fmt.Sprintf("fastq.QualSource: no qualities for read %q", id))
	}
	return quals, nil
}

// ReadQualSource scans every record of r into a QualSource.
func ReadQualSource(r io.Reader) (*QualSource, error) {
	src := NewQualSource()
	scanner := NewScanner(r)
	var read Read
	for scanner.Scan(&read) {
		if err := src.Add(&read); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(errors.Invalid, err, fmt.Sprintf("fastq: near line %d", scanner.Line()))
	}
	return src, nil
}

// LoadQualSource reads a (possibly gzipped) FASTQ file into a QualSource.
func LoadQualSource(ctx context.Context, path string) (src *QualSource, err error) {
	r, closer, err := pileup.OpenMaybeGzip(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	if src, err = ReadQualSource(r); err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("fastq: loaded qualities for %d read(s) from %s", src.Len(), path)
	return src, nil
}
