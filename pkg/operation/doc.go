/*
Package operation runs a search expression over a set of files.

	+-------------+     +-----------+     +-----------+
	|  search     | --> | operation | --> |  status   |
	|  paths      |     |  (Run)    |     |  (Report) |
	+-------------+     +-----+-----+     +-----------+
	                          |
	                    +-----+-----+
	                    |  rewrite  |
	                    +-----------+

🔄 Flow:
1. Parse the expression; a malformed one stops the run before any file is touched
2. Resolve file arguments (glob expansion)
3. Rewrite each file in turn, one complete scan/commit cycle per file
4. Record every outcome in a status.Report

⚡ Failure policy:
By default the first failing file stops the run and the remaining files are
reported as skipped. With KeepGoing set, failures are collected and the next
file is processed; the returned error joins every failure. Closed input
always stops the run, since no further question could be answered.

📝 Output:
Per-file lines and warnings go to the log.Logger stored with log.NewContext.
Without one the run is silent apart from DiffOut.

🔍 Example:

	report, err := operation.Run(ctx, operation.Options{
		Expression: "s/foo/bar/g",
		Files:      []string{"*.txt"},
		Prompter:   prompt.NewTerminal(os.Stdin, os.Stdout, true),
	})
*/
package operation
