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
package main

import (
	"context"
	"fmt"
	"math"

	"github.com/grailbio/assembly/coverage"
	"github.com/grailbio/assembly/encoding/bamreads"
	"github.com/grailbio/assembly/encoding/fastq"
	"github.com/grailbio/assembly/pileup"
	"github.com/grailbio/assembly/pileup/slice"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

type slicesOpts struct {
	commonOpts
	faPath    string
	fastqPath string
	gapQual   string
	storage   string
	majority  bool
	noRio     bool
}

func rioPath(prefix, refName string) string {
	return fmt.Sprintf("%s.%s.slices.rio", prefix, refName)
}

func runSlices(ctx context.Context, opts slicesOpts, bamPath string) (err error) {
	gap, err := slice.ParseGapStrategy(opts.gapQual)
	if err != nil {
		return err
	}
	storage, err := slice.ParseStorage(opts.storage)
	if err != nil {
		return err
	}
	if opts.majority && opts.faPath != "" {
		return errors.E(errors.Invalid, "-majority and -fa are mutually exclusive")
	}
	set, err := loadReads(ctx, bamPath, opts.commonOpts)
	if err != nil {
		return err
	}
	refs := activeRefs(set)

	var quals slice.QualitySource = set.Quals
	if opts.fastqPath != "" {
		if quals, err = fastq.LoadQualSource(ctx, opts.fastqPath); err != nil {
			return err
		}
	}
	var consensus map[string][]pileup.Base
	if opts.faPath != "" {
		fa, err := pileup.LoadFa(ctx, opts.faPath)
		if err != nil {
			return err
		}
		names := make([]string, len(refs))
		for i, rr := range refs {
			names[i] = rr.Name
		}
		if consensus, err = pileup.FaToBaseMap(fa, names); err != nil {
			return err
		}
	}

	maps := make([]*slice.Map, len(refs))
	err = forEachRef(len(refs), opts.parallelism, func(i int) error {
		rr := refs[i]
		buildOpts := slice.DefaultOpts
		buildOpts.Storage = storage
		buildOpts.MajorityConsensus = opts.majority
		if call, ok := consensus[rr.Name]; ok {
			if len(call) != rr.Len {
				return errors.E(errors.Invalid, fmt.Sprintf("reference %s: consensus length %d differs from BAM header length %d", rr.Name, len(call), rr.Len))
			}
			buildOpts.Consensus = call
		}
		if storage == slice.StorageAuto {
			depth, err := expectedDepth(rr)
			if err != nil {
				return err
			}
			buildOpts.ExpectedDepth = depth
		}
		// Quality lookups cache per-read state, so each reference gets its own.
		lookup := slice.NewQualityLookup(quals, gap)
		m, err := slice.BuildMap(pileup.NewSliceIterator(rr.Reads), rr.Len, lookup, buildOpts)
		if err != nil {
			return errors.E(err, fmt.Sprintf("reference %s", rr.Name))
		}
		maps[i] = m
		if !opts.noRio {
			return writeRio(ctx, rioPath(opts.outPrefix, rr.Name), rr.Name, m)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return writePileupTSV(ctx, opts.outPrefix+".pileup.tsv", refs, maps)
}

// expectedDepth estimates a reference's typical depth as the average
// coverage over the positions its reads touch.
func expectedDepth(rr *bamreads.RefReads) (int, error) {
	m, err := coverage.BuildReads(rr.Reads)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(m.AverageCoverage())), nil
}

func writeRio(ctx context.Context, path, refName string, m *slice.Map) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return slice.WriteMapRio(m, refName, out.Writer(ctx))
}

func writePileupTSV(ctx context.Context, path string, refs []*bamreads.RefReads, maps []*slice.Map) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := out.Writer(ctx)
	for i, rr := range refs {
		if err = slice.WritePileupTSV(w, rr.Name, maps[i], i == 0); err != nil {
			return err
		}
	}
	if len(refs) == 0 {
		log.Printf("no reads; %s is empty", path)
	}
	return nil
}
