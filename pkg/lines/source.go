// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lines reads text files one trimmed line at a time.
package lines

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📄 Record is a single line of input.
type Record struct {
	Number int    // 1-based line number
	Text   string // line text without surrounding whitespace
}

// OpenError reports a file that could not be opened for reading.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("opening %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports an I/O failure partway through a file.
type ReadError struct {
	Path string
	Line int // number of the line being read when the failure happened
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s at line %d: %v", e.Path, e.Line, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// 📖 Source yields the lines of a reader lazily. It can be ranged over once.
type Source struct {
	path   string
	reader *bufio.Reader
	closer io.Closer
	used   bool
}

// Open opens path for reading. The caller must Close the returned Source.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(&OpenError{Path: path, Err: err})
	}
	return NewFile(path, f), nil
}

// NewFile creates a Source that reads rc and reports errors against path.
// Closing the Source closes rc.
func NewFile(path string, rc io.ReadCloser) *Source {
	src := New(rc)
	src.path = path
	src.closer = rc
	return src
}

// New creates a Source over r. Closing the Source does not close r.
func New(r io.Reader) *Source {
	return &Source{
		reader: bufio.NewReader(r),
	}
}

// All returns the sequence of records. A read failure is yielded once as a
// *ReadError and ends the sequence. Calling All a second time yields nothing.
func (s *Source) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		if s.used {
			return
		}
		s.used = true

		number := 0
		for {
			text, err := s.reader.ReadString('\n')
			if err != nil && err != io.EOF {
				yield(Record{}, errors.WithStack(&ReadError{Path: s.path, Line: number + 1, Err: err}))
				return
			}
			if err == io.EOF && text == "" {
				return
			}

			number++
			if !yield(Record{Number: number, Text: strings.TrimSpace(text)}, nil) {
				return
			}
			if err == io.EOF {
				return
			}
		}
	}
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return errors.Errorf("closing %s: %w", s.path, err)
	}
	return nil
}
