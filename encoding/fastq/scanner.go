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

// Package fastq reads FASTQ files and serves their base qualities, keyed by
// read name, to the pileup builders.
package fastq

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var (
	// ErrShort is returned when a truncated FASTQ record is encountered.
	ErrShort = errors.New("short FASTQ record")
	// ErrInvalid is returned when an ID or separator line is malformed.
	ErrInvalid = errors.New("invalid FASTQ record")
	// ErrLength is returned when a record's quality string and sequence
	// differ in length.
	ErrLength = errors.New("FASTQ sequence and quality lengths differ")
)

// Read is one FASTQ record.  ID keeps the leading '@' and any description.
type Read struct {
	ID, Seq, Qual string
}

// Name returns the read name: ID without the '@' and without the
// whitespace-separated description.  This is the name BAM records carry.
func (r *Read) Name() string {
	name := strings.TrimPrefix(r.ID, "@")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	return name
}

var errEOF = errors.New("eof")

// Scanner reads FASTQ records from a stream.  It requires ID lines to begin
// with '@', the third line to begin with '+', and the sequence and quality
// lines to have equal length.  Scanners are not threadsafe.
type Scanner struct {
	b    *bufio.Scanner
	err  error
	line int
}

// NewScanner returns a Scanner reading raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Scanner{b: b}
}

// Scan reads the next record into read.  Once Scan returns false it never
// returns true again; Err then tells whether the stream ended cleanly.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil {
		return false
	}
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		}
		return false
	}
	s.line++
	id := s.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		s.err = ErrInvalid
		return false
	}
	read.ID = string(id)
	if !s.next() {
		return false
	}
	read.Seq = s.b.Text()
	if !s.next() {
		return false
	}
	if sep := s.b.Bytes(); len(sep) == 0 || sep[0] != '+' {
		s.err = ErrInvalid
		return false
	}
	if !s.next() {
		return false
	}
	read.Qual = s.b.Text()
	if len(read.Qual) != len(read.Seq) {
		s.err = ErrLength
		return false
	}
	return true
}

func (s *Scanner) next() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = ErrShort
		}
		return false
	}
	s.line++
	return true
}

// Line returns the number of lines consumed so far.
func (s *Scanner) Line() int { return s.line }

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}
