// Package paths resolves file arguments into the list of files to rewrite.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// wildcards are the characters that make an argument a glob pattern.
const wildcards = "*?[{"

// IsGlob reports whether arg contains a glob wildcard.
func IsGlob(arg string) bool {
	return strings.ContainsAny(arg, wildcards)
}

// 📂 Expand returns the files named by args, in order and without duplicates.
//
// A single argument containing a wildcard is treated as a pattern (shells that
// do not glob pass it through unexpanded) and "**" matches any number of
// directories. Directories matched by a pattern are skipped. The result is
// never empty.
func Expand(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.Errorf("no files given")
	}

	files := args
	if len(args) == 1 && IsGlob(args[0]) {
		matches, err := glob(args[0])
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("no files match %q", args[0])
		}
		files = matches
	}

	return dedupe(files), nil
}

func glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, errors.Errorf("invalid glob pattern %q", pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Errorf("expanding %q: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, errors.Errorf("checking %s: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		key := filepath.Clean(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
