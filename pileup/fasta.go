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
	"context"
	"fmt"
	"io"

	"github.com/grailbio/assembly/encoding/fasta"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// OpenMaybeGzip opens path for reading, transparently decompressing it when
// the name ends in .gz.  The returned closer must be called once reading is
// done.
func OpenMaybeGzip(ctx context.Context, path string) (r io.Reader, closer func() error, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	r = infile.Reader(ctx)
	closer = func() error { return infile.Close(ctx) }
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(r); err != nil {
			_ = infile.Close(ctx)
			return nil, nil, err
		}
		r = gz
		closer = func() error {
			if e := gz.Close(); e != nil {
				_ = infile.Close(ctx)
				return e
			}
			return infile.Close(ctx)
		}
	}
	return
}

// LoadFa is a thin wrapper around fasta.New().
func LoadFa(ctx context.Context, fapath string) (fa fasta.Fasta, err error) {
	var (
		reader io.Reader
		closer func() error
	)
	if reader, closer, err = OpenMaybeGzip(ctx, fapath); err != nil {
		return
	}
	defer func() {
		if e := closer(); e != nil && err == nil {
			err = e
		}
	}()
	return fasta.New(reader)
}

// FaBases returns the named sequence of fa as a []Base.  It's used to supply
// external consensus calls to slice.BuildMap.
func FaBases(fa fasta.Fasta, name string) ([]Base, error) {
	n, err := fa.Len(name)
	if err != nil {
		return nil, errors.E(errors.NotExist, err)
	}
	if n == 0 {
		return nil, nil
	}
	seq, err := fa.Get(name, 0, n)
	if err != nil {
		return nil, err
	}
	bases, err := ParseBases(seq)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("pileup.FaBases: sequence %s", name))
	}
	return bases, nil
}

// FaToBaseMap returns every sequence of fa whose name is in names, keyed by
// name.  Names absent from fa are skipped with a warning, since a BAM header
// commonly lists more references than a consensus FASTA holds.
func FaToBaseMap(fa fasta.Fasta, names []string) (map[string][]Base, error) {
	present := make(map[string]bool, len(fa.SeqNames()))
	for _, name := range fa.SeqNames() {
		present[name] = true
	}
	result := make(map[string][]Base, len(names))
	nMissing := 0
	for _, name := range names {
		if !present[name] {
			nMissing++
			continue
		}
		bases, err := FaBases(fa, name)
		if err != nil {
			return nil, err
		}
		result[name] = bases
	}
	if nMissing != 0 {
		log.Printf("pileup.FaToBaseMap: warning: %d reference(s) missing from .fa", nMissing)
	}
	return result, nil
}
