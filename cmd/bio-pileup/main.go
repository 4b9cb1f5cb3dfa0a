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
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

func addCommonFlags(cmd *cmdline.Command, opts *commonOpts) {
	cmd.Flags.StringVar(&opts.region, "region", "", "Restrict the pileup to reads overlapping the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>")
	cmd.Flags.IntVar(&opts.mapq, "mapq", 0, "Reads with MAPQ below this level are skipped")
	cmd.Flags.BoolVar(&opts.removeDups, "remove-dups", false, "Skip reads flagged as duplicates")
	cmd.Flags.StringVar(&opts.outPrefix, "out", "bio-pileup", "Output path prefix")
	cmd.Flags.IntVar(&opts.parallelism, "parallelism", 0, "Maximum number of references processed simultaneously; 0 = runtime.NumCPU()")
}

func newCmdCoverage() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "coverage",
		Short:    "Compute per-reference coverage maps",
		ArgsName: "bampath",
	}
	opts := coverageOpts{}
	addCommonFlags(cmd, &opts.commonOpts)
	cmd.Flags.IntVar(&opts.minDepth, "min-depth", 1, "Intervals with fewer reads are reported as low-coverage")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("coverage takes one BAM path, but got %v", argv)
		}
		return runCoverage(vcontext.Background(), opts, argv[0])
	})
	return cmd
}

func newCmdSlices() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "slices",
		Short:    "Compute per-position pileups (slice maps)",
		ArgsName: "bampath",
	}
	opts := slicesOpts{}
	addCommonFlags(cmd, &opts.commonOpts)
	cmd.Flags.StringVar(&opts.faPath, "fa", "", "Optional consensus FASTA; its sequences become the consensus calls of the matching references")
	cmd.Flags.StringVar(&opts.fastqPath, "fastq", "", "Optional FASTQ supplying base qualities by read name, instead of the BAM's")
	cmd.Flags.StringVar(&opts.gapQual, "gap-qual", "lowest", "Quality given to gaps inside reads: 'lowest' (lower of the flanking base qualities) or 'zero'")
	cmd.Flags.StringVar(&opts.storage, "storage", "auto", "Slice storage: 'object', 'packed', or 'auto' (chosen from the average coverage)")
	cmd.Flags.BoolVar(&opts.majority, "majority", false, "Attach majority-vote consensus calls; cannot be combined with -fa")
	cmd.Flags.BoolVar(&opts.noRio, "no-rio", false, "Skip writing the per-reference recordio slice maps")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("slices takes one BAM path, but got %v", argv)
		}
		return runSlices(vcontext.Background(), opts, argv[0])
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-pileup",
			Short:    "Assembly pileups: coverage maps and per-position slices",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdCoverage(),
				newCmdSlices(),
			},
		})
}
