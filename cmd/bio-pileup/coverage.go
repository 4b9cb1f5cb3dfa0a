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

	"github.com/grailbio/assembly/coverage"
	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

type coverageOpts struct {
	commonOpts
	minDepth int
}

type refCoverage struct {
	name string
	len  int
	m    *coverage.Map
}

func buildCoverage(ctx context.Context, opts commonOpts, bamPath string) ([]refCoverage, error) {
	set, err := loadReads(ctx, bamPath, opts)
	if err != nil {
		return nil, err
	}
	refs := activeRefs(set)
	result := make([]refCoverage, len(refs))
	err = forEachRef(len(refs), opts.parallelism, func(i int) error {
		m, err := coverage.BuildReads(refs[i].Reads)
		if err != nil {
			return errors.E(err, fmt.Sprintf("reference %s", refs[i].Name))
		}
		result[i] = refCoverage{name: refs[i].Name, len: refs[i].Len, m: m}
		return nil
	})
	return result, err
}

// coveredBases counts the positions inside an endpoint union.
func coveredBases(endpoints []interval.PosType) int {
	us := interval.NewUnionScanner(endpoints)
	var start, end interval.PosType
	n := 0
	for us.Scan(&start, &end, interval.PosTypeMax) {
		n += int(end - start)
	}
	return n
}

// lowCoverage returns the half-open intervals of [0, refLen) with depth below
// minDepth, including the stretches before the first and after the last read.
func lowCoverage(m *coverage.Map, refLen, minDepth int) [][2]int {
	var result [][2]int
	add := func(start, end int) {
		if start >= end {
			return
		}
		if n := len(result); n > 0 && result[n-1][1] == start {
			result[n-1][1] = end
			return
		}
		result = append(result, [2]int{start, end})
	}
	if minDepth <= 0 {
		return nil
	}
	r := m.Range()
	add(0, int(r.Start))
	for _, reg := range m.RegionsWithCoverageBelow(minDepth) {
		start, end := reg.Range().HalfOpen()
		add(int(start), int(end))
	}
	add(int(r.End)+1, refLen)
	return result
}

func runCoverage(ctx context.Context, opts coverageOpts, bamPath string) (err error) {
	refs, err := buildCoverage(ctx, opts.commonOpts, bamPath)
	if err != nil {
		return err
	}
	for _, rc := range refs {
		m := rc.m
		log.Printf("%s: %d region(s), average coverage %.3f, min %d, max %d, %d/%d position(s) with depth >= %d",
			rc.name, m.NumRegions(), m.AverageCoverage(), m.MinCoverage(), m.MaxCoverage(),
			coveredBases(m.CoveredEndpoints(opts.minDepth)), rc.len, opts.minDepth)
	}

	covPath := opts.outPrefix + ".coverage.tsv"
	out, err := file.Create(ctx, covPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("#CHROM\tSTART\tEND\tDEPTH")
	if err = w.EndLine(); err != nil {
		return err
	}
	for _, rc := range refs {
		for _, reg := range rc.m.Regions() {
			start, end := reg.Range().HalfOpen()
			w.WriteString(rc.name)
			w.WriteUint32(uint32(start))
			w.WriteUint32(uint32(end))
			w.WriteUint32(uint32(reg.Coverage()))
			if err = w.EndLine(); err != nil {
				return err
			}
		}
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return writeLowCoverageBED(ctx, opts.outPrefix+".lowcov.bed", refs, opts.minDepth)
}

func writeLowCoverageBED(ctx context.Context, path string, refs []refCoverage, minDepth int) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	nLow := 0
	for _, rc := range refs {
		for _, iv := range lowCoverage(rc.m, rc.len, minDepth) {
			w.WriteString(rc.name)
			w.WriteUint32(uint32(iv[0]))
			w.WriteUint32(uint32(iv[1]))
			if err = w.EndLine(); err != nil {
				return err
			}
			nLow++
		}
	}
	log.Printf("%d low-coverage interval(s) written to %s", nLow, path)
	return w.Flush()
}
