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

// Package prompt asks the user to accept or reject replacements on a terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/vsed/pkg/lines"
	"gitlab.com/tozd/go/errors"
)

const (
	// clearScreen erases the display and moves the cursor to the top left.
	clearScreen = "\x1b[2J\x1b[1;1H"

	question = "Apply? y/n -> "
)

// ErrInputClosed is returned when input ends before a valid answer arrives.
var ErrInputClosed = errors.Base("input closed before an answer was given")

// InvalidInputError is an answer other than y or n. It is shown to the user
// and the question is asked again.
type InvalidInputError struct {
	Answer string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q, please enter y or n", e.Answer)
}

// 🖥️ Terminal prompts on a pair of streams, normally stdin and stdout.
type Terminal struct {
	in    *bufio.Reader
	out   io.Writer
	clear bool
}

// 🏭 NewTerminal creates a Terminal. When clear is set the screen is cleared
// around every question.
func NewTerminal(in io.Reader, out io.Writer, clear bool) *Terminal {
	return &Terminal{
		in:    bufio.NewReader(in),
		out:   out,
		clear: clear,
	}
}

// Decide shows the candidate and reads answers until one is y or n.
func (t *Terminal) Decide(ctx context.Context, path string, rec lines.Record, candidate string) (bool, error) {
	logger := zerolog.Ctx(ctx)

	t.clearScreen()
	defer t.clearScreen()

	for {
		fmt.Fprintf(t.out, "%s %s\n", color.New(color.Faint).Sprintf("%s:%d", path, rec.Number), color.New(color.Faint).Sprint(rec.Text))
		fmt.Fprintf(t.out, "%s%s\n", question, color.New(color.FgGreen, color.Bold).Sprint(candidate))

		answer, err := t.readAnswer()
		if err != nil {
			return false, err
		}

		accept, err := parseAnswer(answer)
		if err == nil {
			return accept, nil
		}

		logger.Debug().Str("answer", answer).Msg("invalid answer")
		fmt.Fprintln(t.out, color.New(color.FgYellow).Sprint(err.Error()))
	}
}

// Passthrough echoes a line that did not match.
func (t *Terminal) Passthrough(ctx context.Context, path string, rec lines.Record) {
	fmt.Fprintf(t.out, "Line %d: %s\n", rec.Number, rec.Text)
}

func (t *Terminal) readAnswer() (string, error) {
	answer, err := t.in.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if answer != "" {
				return answer, nil
			}
			return "", errors.WithStack(ErrInputClosed)
		}
		return "", errors.Errorf("reading answer: %w", err)
	}
	return answer, nil
}

func (t *Terminal) clearScreen() {
	if t.clear {
		fmt.Fprint(t.out, clearScreen)
	}
}

// parseAnswer accepts y or n in either case, ignoring surrounding whitespace.
func parseAnswer(answer string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
		return true, nil
	case "n":
		return false, nil
	default:
		return false, &InvalidInputError{Answer: strings.TrimSpace(answer)}
	}
}
