package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/vsed/pkg/log"
	"github.com/walteh/vsed/pkg/operation"
	"github.com/walteh/vsed/pkg/prompt"
	"github.com/walteh/vsed/pkg/status"
)

// debugEnv enables debug logging when set to a true value
const debugEnv = "VSED_DEBUG"

// rootOpts holds the flags of the root command
type rootOpts struct {
	dryRun    bool
	keepGoing bool
	noClear   bool
	debug     bool
	summary   string
}

// newRootCmd creates the vsed command reading answers from in
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &rootOpts{}

	cmd := &cobra.Command{
		Use:   "vsed PATTERN FILES...",
		Short: "Interactive sed for multiple files",
		Long: `vsed applies a substitution such as "s/foo/bar/g" to one or more files,
asking for confirmation on every line that contains the pattern.

The pattern is matched literally and only its first occurrence on a line is
replaced. Flags after the last delimiter are accepted but not interpreted.
An empty pattern, as in "s//> /", matches every line and inserts the
replacement at the start of the line. The delimiter may be any character
except 's' and must not appear in the pattern or the replacement.
Each file is rewritten in a single atomic step once every line is decided.

FILES may be a single quoted glob such as "src/**/*.go".`,
		Example: `  vsed 's/foo/bar/g' notes.txt todo.txt
  vsed 's#/usr/local#/opt#' '**/*.conf'
  vsed --dry-run 's/colour/color/' docs/*.md`,
		Args:          cobra.MinimumNArgs(2),
		Version:       GetVersionInfo().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, in, out, errOut)
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetVersionTemplate(FormatVersion())

	addRootFlags(cmd, opts)
	return cmd
}

// addRootFlags adds the flags of the root command
func addRootFlags(cmd *cobra.Command, opts *rootOpts) {
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "do not write files, print the proposed changes as a diff")
	cmd.Flags().BoolVarP(&opts.keepGoing, "keep-going", "k", false, "continue with the next file after a failure")
	cmd.Flags().BoolVar(&opts.noClear, "no-clear", false, "do not clear the screen around each question")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.summary, "summary", string(status.FormatText), "summary format: text, json, yaml or none")
}

// setupLogging configures zerolog based on flags and environment
func setupLogging(opts *rootOpts, errOut io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.debug || envEnabled(os.Getenv(debugEnv)) {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(level).With().Timestamp().Logger()
}

func envEnabled(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func run(cmd *cobra.Command, opts *rootOpts, args []string, in io.Reader, out, errOut io.Writer) error {
	logger := setupLogging(opts, errOut)
	ctx := logger.WithContext(cmd.Context())

	format, err := status.ParseFormat(opts.summary)
	if err != nil {
		return err
	}

	// console lines are enough unless debugging, errors are printed by main
	uiLevel := zerolog.Disabled
	if logger.GetLevel() == zerolog.DebugLevel {
		uiLevel = zerolog.DebugLevel
	}
	ui := log.New(out, errOut, uiLevel)
	ctx = log.NewContext(ctx, ui)

	report, runErr := operation.Run(ctx, operation.Options{
		Expression: args[0],
		Files:      args[1:],
		DryRun:     opts.dryRun,
		KeepGoing:  opts.keepGoing,
		Prompter:   prompt.NewTerminal(in, out, !opts.noClear),
		DiffOut:    out,
	})

	if report != nil {
		ui.LogNewline()
		if err := report.Render(out, format); err != nil {
			logger.Error().Err(err).Msg("rendering summary")
		}
	}

	return runErr
}
