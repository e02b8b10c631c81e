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

// Package rewrite walks a file line by line, asks for a decision on every
// line that matches a search expression, and atomically replaces the file
// with the decided content.
package rewrite

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/vsed/pkg/lines"
	"github.com/walteh/vsed/pkg/search"
	"gitlab.com/tozd/go/errors"
)

// 💬 Prompter is the only interactive dependency of a Rewriter.
type Prompter interface {
	// Decide blocks until the user accepts (true) or rejects (false) the
	// candidate replacement for rec.
	Decide(ctx context.Context, path string, rec lines.Record, candidate string) (bool, error)

	// Passthrough is called for every line that does not match.
	Passthrough(ctx context.Context, path string, rec lines.Record)
}

// 📦 Job is one file to process with a shared, read-only spec.
type Job struct {
	Path string
	Spec *search.Spec
}

// 📊 Result describes what happened to a single file.
type Result struct {
	Path      string
	Lines     int
	Matched   int
	Accepted  int
	Rejected  int
	Committed bool
	DryRun    bool
	Diff      string // unified diff of the proposed changes, dry-run only
}

// Changed reports whether any replacement was accepted.
func (r *Result) Changed() bool {
	return r.Accepted > 0
}

// CommitError reports a failure to stage or persist the rewritten file.
// The original file is left untouched.
type CommitError struct {
	Path string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("committing %s: %v", e.Path, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Opener opens a line source for a path.
type Opener func(path string) (*lines.Source, error)

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithDryRun replaces the commit step with a diff of the proposed content.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) { r.dryRun = dryRun }
}

// WithOpener overrides how files are opened for reading.
func WithOpener(open Opener) Option {
	return func(r *Rewriter) { r.open = open }
}

// 🔧 Rewriter runs the scan, decide, stage and commit cycle for one file at a time.
type Rewriter struct {
	prompter Prompter
	open     Opener
	dryRun   bool
}

// 🏭 New creates a Rewriter that asks prompter about every match.
func New(prompter Prompter, opts ...Option) *Rewriter {
	r := &Rewriter{
		prompter: prompter,
		open:     lines.Open,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// 🔄 Rewrite processes job. On any error the original file is unchanged and
// the partial Result is still returned.
func (r *Rewriter) Rewrite(ctx context.Context, job Job) (*Result, error) {
	if job.Spec == nil {
		return nil, errors.Errorf("rewriting %s: search spec is required", job.Path)
	}

	logger := zerolog.Ctx(ctx).With().Str("path", job.Path).Logger()
	result := &Result{Path: job.Path, DryRun: r.dryRun}

	src, err := r.open(job.Path)
	if err != nil {
		return result, err
	}
	defer src.Close()

	stage, err := newStaging(job.Path)
	if err != nil {
		return result, errors.WithStack(&CommitError{Path: job.Path, Err: err})
	}
	defer stage.discard()

	logger.Debug().Str("staging", stage.name()).Msg("scanning")

	for rec, err := range src.All() {
		if err != nil {
			logger.Debug().Err(err).Int("line", result.Lines+1).Msg("aborted on read error")
			return result, err
		}
		if err := ctx.Err(); err != nil {
			return result, errors.Errorf("rewriting %s: %w", job.Path, err)
		}
		result.Lines++

		text := rec.Text
		if job.Spec.Matches(text) {
			result.Matched++
			candidate := job.Spec.Apply(text)

			accept, err := r.prompter.Decide(ctx, job.Path, rec, candidate)
			if err != nil {
				return result, errors.Errorf("deciding line %d of %s: %w", rec.Number, job.Path, err)
			}
			if accept {
				text = candidate
				result.Accepted++
			} else {
				result.Rejected++
			}
			logger.Debug().Int("line", rec.Number).Bool("accepted", accept).Msg("matched")
		} else {
			r.prompter.Passthrough(ctx, job.Path, rec)
		}

		if err := stage.append(text); err != nil {
			return result, errors.WithStack(&CommitError{Path: job.Path, Err: err})
		}
	}

	if r.dryRun {
		diff, err := stage.diff()
		if err != nil {
			return result, errors.Errorf("diffing %s: %w", job.Path, err)
		}
		result.Diff = diff
		logger.Debug().Int("accepted", result.Accepted).Msg("dry run, not committing")
		return result, nil
	}

	if err := stage.commit(); err != nil {
		logger.Debug().Err(err).Msg("aborted on commit")
		return result, errors.WithStack(&CommitError{Path: job.Path, Err: err})
	}
	result.Committed = true

	logger.Debug().
		Int("lines", result.Lines).
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Msg("committed")

	return result, nil
}
