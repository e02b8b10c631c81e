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

package operation

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/vsed/pkg/log"
	"github.com/walteh/vsed/pkg/paths"
	"github.com/walteh/vsed/pkg/prompt"
	"github.com/walteh/vsed/pkg/rewrite"
	"github.com/walteh/vsed/pkg/search"
	"github.com/walteh/vsed/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains everything a run needs
type Options struct {
	// Expression is the substitution, e.g. "s/foo/bar/g"
	Expression string
	// Files are paths, or a single glob pattern
	Files []string
	// DryRun prints diffs instead of writing files
	DryRun bool
	// KeepGoing continues with the next file after a failure
	KeepGoing bool
	// Prompter decides on every match
	Prompter rewrite.Prompter
	// DiffOut receives dry-run diffs, optional
	DiffOut io.Writer
}

// 🏃 Run processes every file sequentially and returns the report. The
// report is nil only when the expression or the file arguments are invalid.
func Run(ctx context.Context, opts Options) (*status.Report, error) {
	if opts.Prompter == nil {
		return nil, errors.Errorf("prompter is required")
	}
	logger := zerolog.Ctx(ctx)

	spec, err := search.Parse(opts.Expression)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("pattern", spec.Pattern).
		Str("replacement", spec.Replacement).
		Str("flags", spec.Flags).
		Msg("parsed expression")

	files, err := paths.Expand(opts.Files)
	if err != nil {
		return nil, errors.Errorf("resolving files: %w", err)
	}

	ui := log.FromContext(ctx)
	diffOut := opts.DiffOut
	if diffOut == nil {
		diffOut = io.Discard
	}

	report := status.NewReport(spec.Raw, opts.DryRun)
	rw := rewrite.New(opts.Prompter, rewrite.WithDryRun(opts.DryRun))

	ui.StartRun(ctx, log.RunOperation{Expression: spec.Raw, Files: len(files), DryRun: opts.DryRun})
	defer ui.EndRun(ctx)

	var errs []error
	stopped := false
	for i, path := range files {
		if stopped {
			report.Add(status.FileResult{Path: path, Status: status.StatusSkipped})
			continue
		}

		logger.Debug().Int("file", i+1).Int("total", len(files)).Str("path", path).Msg("processing")

		res, err := rw.Rewrite(ctx, rewrite.Job{Path: path, Spec: spec})
		entry := fileResult(path, res, err)
		report.Add(entry)
		ui.LogFileOperation(ctx, fileOperation(entry, err))

		if err != nil {
			errs = append(errs, err)
			switch {
			case errors.Is(err, prompt.ErrInputClosed):
				// no more answers can arrive, so later files could only fail the same way
				ui.Warning("input closed, no further questions can be asked")
				stopped = true
			case !opts.KeepGoing:
				stopped = true
			}
			if remaining := len(files) - i - 1; stopped && remaining > 0 {
				ui.Warningf("skipping %d remaining file(s) after %s", remaining, path)
			}
			continue
		}

		if res.Diff != "" {
			if _, err := fmt.Fprint(diffOut, res.Diff); err != nil {
				return report, errors.Errorf("writing diff for %s: %w", path, err)
			}
		}
	}

	if len(errs) == 1 {
		return report, errs[0]
	}
	return report, errors.Join(errs...)
}

func fileResult(path string, res *rewrite.Result, err error) status.FileResult {
	entry := status.FileResult{Path: path}
	if res != nil {
		entry.Lines = res.Lines
		entry.Matched = res.Matched
		entry.Accepted = res.Accepted
		entry.Rejected = res.Rejected
	}

	switch {
	case err != nil:
		entry.Status = status.StatusFailed
		entry.Error = err.Error()
	case res.DryRun:
		entry.Status = status.StatusDryRun
	case res.Changed():
		entry.Status = status.StatusModified
	default:
		entry.Status = status.StatusUnchanged
	}
	return entry
}

func fileOperation(entry status.FileResult, err error) log.FileOperation {
	op := log.FileOperation{
		Path:     entry.Path,
		Matched:  entry.Matched,
		Accepted: entry.Accepted,
		Rejected: entry.Rejected,
		Err:      err,
	}
	switch entry.Status {
	case status.StatusFailed:
		op.State = log.StateFailed
	case status.StatusDryRun:
		op.State = log.StateDryRun
	case status.StatusModified:
		op.State = log.StateModified
	default:
		op.State = log.StateUnchanged
	}
	return op
}
