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

// Package fasta contains code for parsing FASTA files holding consensus or
// reference sequences.  FASTA files consist of a number of named sequences
// that may be interrupted by newlines.  For example:
//
// >contig1
// ACGTAC
// GA-GAC
// GCG
// >contig2
// ACGT
//
// Consensus sequences produced by assemblers are gapped, so '-' and '*' are
// kept verbatim rather than being treated as malformed input.
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Fasta represents FASTA-formatted data, consisting of a set of named
// sequences.
type Fasta interface {
	// Get returns a substring of the given sequence name at the given
	// coordinates, which are treated as a 0-based half-open interval
	// [start, end). Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the names of all sequences, in the order of appearance in
	// the FASTA file.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New creates a new Fasta that holds all the FASTA data from the given reader
// in memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var (
		seqName string
		seq     strings.Builder
		inSeq   bool
		lineIdx int
	)
	flush := func() error {
		if !inSeq {
			return nil
		}
		if _, found := f.seqs[seqName]; found {
			return errors.Errorf("duplicate FASTA sequence name %s", seqName)
		}
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
		return nil
	}
	for scanner.Scan() {
		lineIdx++
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if err := flush(); err != nil {
				return nil, err
			}
			seqName = strings.Split(line[1:], " ")[0]
			if seqName == "" {
				return nil, errors.Errorf("malformed FASTA file: empty sequence name on line %d", lineIdx)
			}
			inSeq = true
			continue
		}
		if !inSeq {
			return nil, errors.Errorf("malformed FASTA file: sequence data before first header on line %d", lineIdx)
		}
		seq.WriteString(line)
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", errors.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
