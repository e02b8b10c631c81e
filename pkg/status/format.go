package status

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🖨️ Format selects how a report is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatNone Format = "none"
)

// Formats lists every supported format
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatNone}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("unknown summary format %q (want one of %v)", name, Formats)
}

// Render writes the report to w in the given format
func (r *Report) Render(w io.Writer, format Format) error {
	switch format {
	case FormatNone:
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r.snapshot()); err != nil {
			return errors.Errorf("encoding report as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.snapshot()); err != nil {
			return errors.Errorf("encoding report as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return errors.Errorf("closing yaml encoder: %w", err)
		}
		return nil
	case FormatText:
		return r.renderText(w)
	default:
		return errors.Errorf("unknown summary format %q", format)
	}
}

// reportDocument is the serialized shape of a report
type reportDocument struct {
	Expression string       `json:"expression" yaml:"expression"`
	DryRun     bool         `json:"dry_run" yaml:"dry_run"`
	Files      []FileResult `json:"files" yaml:"files"`
	Totals     Totals       `json:"totals" yaml:"totals"`
}

func (r *Report) snapshot() reportDocument {
	totals := r.Totals()
	files := make([]FileResult, len(r.Files))
	copy(files, r.Files)
	return reportDocument{
		Expression: r.Expression,
		DryRun:     r.DryRun,
		Files:      files,
		Totals:     totals,
	}
}

func (r *Report) renderText(w io.Writer) error {
	doc := r.snapshot()

	data := pterm.TableData{{"File", "Status", "Matched", "Accepted", "Rejected"}}
	for _, f := range doc.Files {
		data = append(data, []string{
			f.Path,
			f.Status.String(),
			strconv.Itoa(f.Matched),
			strconv.Itoa(f.Accepted),
			strconv.Itoa(f.Rejected),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering table: %w", err)
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return errors.Errorf("writing table: %w", err)
	}
	if _, err := fmt.Fprintln(w, FormatTotals(doc.Totals, doc.DryRun)); err != nil {
		return errors.Errorf("writing totals: %w", err)
	}
	return nil
}

// FormatTotals formats the one-line summary printed under the table
func FormatTotals(t Totals, dryRun bool) string {
	verb := "modified"
	if dryRun {
		verb = "would modify"
	}
	msg := fmt.Sprintf("%d/%d replacements accepted, %s %d of %d file(s)",
		t.Accepted, t.Matched, verb, t.Modified, t.Files)
	if t.Failed > 0 {
		msg += fmt.Sprintf(", %d failed", t.Failed)
	}
	return msg
}
