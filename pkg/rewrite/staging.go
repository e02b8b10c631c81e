package rewrite

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"gitlab.com/tozd/go/errors"
)

// diffContext is the number of unchanged lines shown around each hunk.
const diffContext = 3

// 💾 staging holds rewritten lines in a temporary file next to the target,
// so the final rename never crosses a filesystem boundary.
type staging struct {
	target string
	file   *os.File
	w      *bufio.Writer
	closed bool
	done   bool
}

func newStaging(target string) (*staging, error) {
	dir, base := filepath.Split(target)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".vsed-*")
	if err != nil {
		return nil, errors.Errorf("creating staging file: %w", err)
	}
	return &staging{
		target: target,
		file:   f,
		w:      bufio.NewWriter(f),
	}, nil
}

func (s *staging) name() string {
	return s.file.Name()
}

// append writes one line and flushes it to durable storage.
func (s *staging) append(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return errors.Errorf("writing staging file: %w", err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return errors.Errorf("writing staging file: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return errors.Errorf("flushing staging file: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return errors.Errorf("syncing staging file: %w", err)
	}
	return nil
}

func (s *staging) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return errors.Errorf("flushing staging file: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return errors.Errorf("closing staging file: %w", err)
	}
	return nil
}

// commit renames the staging file over the target, keeping the target's permissions.
func (s *staging) commit() error {
	if err := s.close(); err != nil {
		return err
	}

	info, err := os.Stat(s.target)
	if err != nil {
		return errors.Errorf("reading target mode: %w", err)
	}
	if err := os.Chmod(s.file.Name(), info.Mode().Perm()); err != nil {
		return errors.Errorf("setting staging file mode: %w", err)
	}

	if err := os.Rename(s.file.Name(), s.target); err != nil {
		return errors.Errorf("renaming staging file: %w", err)
	}
	s.done = true
	return nil
}

// diff returns a unified diff between the target and the staged content.
// It is empty when nothing changed.
func (s *staging) diff() (string, error) {
	if err := s.close(); err != nil {
		return "", err
	}

	original, err := os.ReadFile(s.target)
	if err != nil {
		return "", errors.Errorf("reading original: %w", err)
	}
	staged, err := os.ReadFile(s.file.Name())
	if err != nil {
		return "", errors.Errorf("reading staging file: %w", err)
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(staged)),
		FromFile: s.target,
		ToFile:   s.target + " (proposed)",
		Context:  diffContext,
	})
	if err != nil {
		return "", errors.Errorf("building diff: %w", err)
	}
	return out, nil
}

// discard removes the staging file unless it was committed.
func (s *staging) discard() {
	if s.done {
		return
	}
	_ = s.close()
	_ = os.Remove(s.file.Name())
	s.done = true
}
