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
	"runtime"

	"github.com/grailbio/assembly/encoding/bamreads"
	"github.com/grailbio/assembly/interval"
	"github.com/grailbio/base/traverse"
)

type commonOpts struct {
	region      string
	mapq        int
	removeDups  bool
	outPrefix   string
	parallelism int
}

func loadReads(ctx context.Context, bamPath string, opts commonOpts) (*bamreads.Set, error) {
	readOpts := bamreads.DefaultOpts
	readOpts.MinMapQ = byte(opts.mapq)
	readOpts.RemoveDups = opts.removeDups
	if opts.region != "" {
		var err error
		if readOpts.Region, err = interval.ParseRegionString(opts.region); err != nil {
			return nil, err
		}
	}
	return bamreads.Load(ctx, bamPath, readOpts)
}

// activeRefs returns the references with at least one read.
func activeRefs(set *bamreads.Set) []*bamreads.RefReads {
	var refs []*bamreads.RefReads
	for _, rr := range set.Refs {
		if len(rr.Reads) > 0 {
			refs = append(refs, rr)
		}
	}
	return refs
}

// forEachRef calls fn(i) for i in [0, nRef), running at most parallelism
// calls at once.  Each index is handled by exactly one goroutine.
func forEachRef(nRef, parallelism int, fn func(i int) error) error {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > nRef {
		parallelism = nRef
	}
	return traverse.Each(parallelism, func(jobIdx int) error {
		for i := jobIdx; i < nRef; i += parallelism {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}
