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

package status

// 📊 FileStatus represents the outcome for a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // At least one replacement was committed
	StatusUnchanged            // Committed with no accepted replacement
	StatusDryRun               // Processed but not committed
	StatusFailed               // Aborted, original untouched
	StatusSkipped              // Not reached
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusDryRun:
		return "dry-run"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in json and yaml
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 📄 FileResult is the report entry for one file
type FileResult struct {
	Path     string     `json:"path" yaml:"path"`
	Status   FileStatus `json:"status" yaml:"status"`
	Lines    int        `json:"lines" yaml:"lines"`
	Matched  int        `json:"matched" yaml:"matched"`
	Accepted int        `json:"accepted" yaml:"accepted"`
	Rejected int        `json:"rejected" yaml:"rejected"`
	Error    string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// 🔢 Totals sums every file in a report
type Totals struct {
	Files    int `json:"files" yaml:"files"`
	Modified int `json:"modified" yaml:"modified"` // includes dry-run files that would change
	Failed   int `json:"failed" yaml:"failed"`
	Matched  int `json:"matched" yaml:"matched"`
	Accepted int `json:"accepted" yaml:"accepted"`
	Rejected int `json:"rejected" yaml:"rejected"`
}

// 📋 Report holds the results of one run
type Report struct {
	Expression string       `json:"expression" yaml:"expression"`
	DryRun     bool         `json:"dry_run" yaml:"dry_run"`
	Files      []FileResult `json:"files" yaml:"files"`
}

// 🏭 NewReport creates an empty report
func NewReport(expression string, dryRun bool) *Report {
	return &Report{
		Expression: expression,
		DryRun:     dryRun,
		Files:      []FileResult{},
	}
}

// Add records a file result
func (r *Report) Add(res FileResult) {
	r.Files = append(r.Files, res)
}

// Totals sums all recorded results
func (r *Report) Totals() Totals {
	t := Totals{Files: len(r.Files)}
	for _, f := range r.Files {
		switch f.Status {
		case StatusModified:
			t.Modified++
		case StatusDryRun:
			if f.Accepted > 0 {
				t.Modified++
			}
		case StatusFailed:
			t.Failed++
		}
		t.Matched += f.Matched
		t.Accepted += f.Accepted
		t.Rejected += f.Rejected
	}
	return t
}
