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

// Package bamreads converts aligned BAM records into placed reads and a
// quality source for the coverage and slice builders.
//
// A record becomes a read positioned at its alignment start, with one gapped
// base per reference position it spans: M, = and X operations contribute the
// read's bases, D and N contribute gaps, and I, S, H and P contribute nothing.
package bamreads

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/assembly/pileup/slice"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Opts controls which records are kept.
type Opts struct {
	// MinMapQ drops records with a lower mapping quality.
	MinMapQ byte
	// RemoveDups drops records flagged as duplicates.
	RemoveDups bool
	// Region, if RefName is nonempty, keeps only records overlapping it.
	Region interval.Entry
}

// DefaultOpts keeps every primary mapped record.
var DefaultOpts = Opts{}

// RefReads holds the reads placed on one reference.
type RefReads struct {
	Name  string
	Len   int
	Reads []pileup.PlacedRead
}

// Set is the result of reading a BAM file.
type Set struct {
	Header *sam.Header
	// Refs has one entry per header reference, in header order.
	Refs []*RefReads
	// Quals holds the qualities of every kept read, keyed by ReadID, in
	// sequencing orientation.
	Quals slice.MapSource
}

// ReadID returns the id a record's read is known by: its name, with a /1 or
// /2 suffix for the two ends of a pair so mates stay distinct.
func ReadID(rec *sam.Record) string {
	switch {
	case rec.Flags&sam.Read1 != 0:
		return rec.Name + "/1"
	case rec.Flags&sam.Read2 != 0:
		return rec.Name + "/2"
	}
	return rec.Name
}

// Convert returns the placed read for a mapped record, along with its
// ungapped qualities in sequencing orientation.  quals is nil when the
// record carries no qualities.
func Convert(rec *sam.Record) (read *pileup.Read, quals []byte, err error) {
	seq := rec.Seq.Expand()
	hasQual := len(rec.Qual) == len(seq) && (len(seq) == 0 || rec.Qual[0] != 0xff)
	read = &pileup.Read{Name: ReadID(rec), Pos: pileup.PosType(rec.Pos)}
	if rec.Flags&sam.Reverse != 0 {
		read.Dir = pileup.Reverse
	}
	if hasQual {
		quals = make([]byte, 0, len(seq))
	}
	i := 0
	for _, op := range rec.Cigar {
		n := op.Len()
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if i+n > len(seq) {
				return nil, nil, errors.E(errors.Invalid, fmt.Sprintf("bamreads.Convert: record %s: CIGAR %v overruns %d bases", rec.Name, rec.Cigar, len(seq)))
			}
			for _, c := range seq[i : i+n] {
				base, err := parseSeqBase(c)
				if err != nil {
					return nil, nil, errors.E(err, fmt.Sprintf("bamreads.Convert: record %s", rec.Name))
				}
				read.Seq = append(read.Seq, base)
			}
			if hasQual {
				quals = append(quals, rec.Qual[i:i+n]...)
			}
			i += n
		case sam.CigarDeletion, sam.CigarSkipped:
			for j := 0; j < n; j++ {
				read.Seq = append(read.Seq, pileup.BaseGap)
			}
		case sam.CigarInsertion, sam.CigarSoftClipped:
			i += n
		}
	}
	if read.Dir == pileup.Reverse {
		// BAM stores qualities in reference orientation.
		for l, r := 0, len(quals)-1; l < r; l, r = l+1, r-1 {
			quals[l], quals[r] = quals[r], quals[l]
		}
	}
	return read, quals, nil
}

// parseSeqBase maps a BAM sequence letter to a Base.  '=' (same as the
// reference) carries no base of its own and becomes N.
func parseSeqBase(c byte) (pileup.Base, error) {
	if c == '=' {
		return pileup.BaseN, nil
	}
	return pileup.ParseBase(c)
}

func (o *Opts) keep(rec *sam.Record) bool {
	if rec.Ref == nil || rec.Flags&(sam.Unmapped|sam.Secondary|sam.Supplementary) != 0 {
		return false
	}
	if rec.MapQ < o.MinMapQ {
		return false
	}
	if o.RemoveDups && rec.Flags&sam.Duplicate != 0 {
		return false
	}
	return true
}

func (o *Opts) inRegion(refName string, r interval.Range) bool {
	if o.Region.RefName == "" {
		return true
	}
	return refName == o.Region.RefName && r.Intersects(o.Region.Range())
}

// ReadAll reads every record of an uncompressed-stream BAM reader.
func ReadAll(r io.Reader, opts Opts) (*Set, error) {
	br, err := bam.NewReader(r, 1)
	if err != nil {
		return nil, err
	}
	defer br.Close() // nolint: errcheck
	header := br.Header()
	set := &Set{Header: header, Quals: slice.MapSource{}}
	byID := make(map[int]*RefReads)
	for _, ref := range header.Refs() {
		rr := &RefReads{Name: ref.Name(), Len: ref.Len()}
		set.Refs = append(set.Refs, rr)
		byID[ref.ID()] = rr
	}
	if opts.Region.RefName != "" {
		found := false
		for _, rr := range set.Refs {
			found = found || rr.Name == opts.Region.RefName
		}
		if !found {
			return nil, errors.E(errors.NotExist, fmt.Sprintf("bamreads: region reference %s not in BAM header", opts.Region.RefName))
		}
	}
	var nRecs, nKept, nOffEnd, nNoQual int
	seen := map[string]struct{}{}
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		nRecs++
		if !opts.keep(rec) {
			sam.PutInFreePool(rec)
			continue
		}
		rr := byID[rec.Ref.ID()]
		read, quals, err := Convert(rec)
		sam.PutInFreePool(rec)
		if err != nil {
			return nil, err
		}
		rng := pileup.ReadRange(read)
		if read.Len() == 0 || !opts.inRegion(rr.Name, rng) {
			continue
		}
		if rng.Start < 0 || int(rng.End) >= rr.Len {
			nOffEnd++
			continue
		}
		if _, ok := seen[read.Name]; ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("bamreads: duplicate read id %s", read.Name))
		}
		seen[read.Name] = struct{}{}
		if quals == nil {
			nNoQual++
		} else {
			set.Quals[read.Name] = quals
		}
		rr.Reads = append(rr.Reads, read)
		nKept++
	}
	if nOffEnd > 0 {
		log.Printf("bamreads: warning: dropped %d read(s) extending past their reference", nOffEnd)
	}
	if nNoQual > 0 {
		log.Printf("bamreads: warning: %d read(s) carry no base qualities", nNoQual)
	}
	log.Printf("bamreads: kept %d of %d record(s)", nKept, nRecs)
	return set, nil
}

// Load opens a BAM file and reads it with ReadAll.
func Load(ctx context.Context, path string, opts Opts) (set *Set, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	if set, err = ReadAll(in.Reader(ctx), opts); err != nil {
		return nil, errors.E(err, path)
	}
	return set, nil
}
