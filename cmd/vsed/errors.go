package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/vsed/pkg/lines"
	"github.com/walteh/vsed/pkg/prompt"
	"github.com/walteh/vsed/pkg/rewrite"
	"github.com/walteh/vsed/pkg/search"
	"gitlab.com/tozd/go/errors"
)

// describeError turns a run error into the message printed on stderr.
// Joined errors from --keep-going get one line each.
func describeError(err error) string {
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		parts := make([]string, 0, len(multi.Unwrap()))
		for _, e := range multi.Unwrap() {
			parts = append(parts, describeError(e))
		}
		return strings.Join(parts, "\n")
	}

	prefix := color.New(color.FgRed, color.Bold).Sprint("error:")

	var (
		perr *search.ParseError
		oerr *lines.OpenError
		rerr *lines.ReadError
		cerr *rewrite.CommitError
	)
	switch {
	case errors.As(err, &perr):
		return fmt.Sprintf("%s %s", prefix, perr.Error())
	case errors.As(err, &oerr):
		return fmt.Sprintf("%s cannot open %s: %v", prefix, oerr.Path, oerr.Err)
	case errors.As(err, &rerr):
		return fmt.Sprintf("%s failed reading %s at line %d, file left unchanged: %v", prefix, rerr.Path, rerr.Line, rerr.Err)
	case errors.As(err, &cerr):
		return fmt.Sprintf("%s failed writing %s, file left unchanged: %v", prefix, cerr.Path, cerr.Err)
	case errors.Is(err, prompt.ErrInputClosed):
		return fmt.Sprintf("%s %v, file left unchanged", prefix, err)
	default:
		return fmt.Sprintf("%s %v", prefix, err)
	}
}
