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

// Package search parses line-editor style substitution expressions
// such as "s/foo/bar/g".
//
// The delimiter is whatever character follows the leading 's' and must
// appear exactly three times. There is no escaping: a delimiter inside the
// pattern or replacement changes the count and the expression is rejected.
// For the same reason 's' itself cannot be the delimiter, since the leading
// 's' would count as one of the three.
//
// An empty pattern is valid. It is contained in every line, so every line is
// offered and the replacement is inserted at the start of the line.
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

const (
	// MinLength is the length of the shortest valid expression, e.g. "s#a#b#".
	MinLength = 6

	// delimiterCount bounds the pattern, replacement and flags segments.
	delimiterCount = 3
)

// 🔍 Spec is a parsed substitution expression. It is never mutated after Parse.
type Spec struct {
	Pattern     string // literal text to search for
	Replacement string // text substituted for the first occurrence of Pattern
	Flags       string // accepted but not interpreted
	Delimiter   rune   // separator inferred from the character after 's'
	Raw         string // the expression as given
}

// ParseError reports a malformed substitution expression.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid search expression %q: %s", e.Raw, e.Reason)
}

func newParseError(raw, format string, args ...any) error {
	return errors.WithStack(&ParseError{Raw: raw, Reason: fmt.Sprintf(format, args...)})
}

// 🏭 Parse builds a Spec from raw.
func Parse(raw string) (*Spec, error) {
	if !strings.HasPrefix(raw, "s") {
		return nil, newParseError(raw, "must start with 's'")
	}
	if len(raw) < MinLength {
		return nil, newParseError(raw, "must have at least %d characters, got %d", MinLength, len(raw))
	}

	delim, _ := utf8.DecodeRuneInString(raw[1:])
	if delim == utf8.RuneError {
		return nil, newParseError(raw, "delimiter after 's' is not valid UTF-8")
	}
	if delim == 's' {
		return nil, newParseError(raw, "delimiter must not be 's'")
	}

	if n := strings.Count(raw, string(delim)); n != delimiterCount {
		return nil, newParseError(raw, "must have %d delimiters, assumed %q as the delimiter and found %d", delimiterCount, delim, n)
	}

	// four segments: "s", pattern, replacement, flags
	parts := strings.Split(raw, string(delim))

	return &Spec{
		Pattern:     parts[1],
		Replacement: parts[2],
		Flags:       parts[3],
		Delimiter:   delim,
		Raw:         raw,
	}, nil
}

// String re-joins the segments with the delimiter.
func (s *Spec) String() string {
	d := string(s.Delimiter)
	return strings.Join([]string{"s", s.Pattern, s.Replacement, s.Flags}, d)
}

// Matches reports whether line contains the pattern as a literal substring.
func (s *Spec) Matches(line string) bool {
	return strings.Contains(line, s.Pattern)
}

// Apply replaces the first occurrence of the pattern in line.
func (s *Spec) Apply(line string) string {
	return strings.Replace(line, s.Pattern, s.Replacement, 1)
}
