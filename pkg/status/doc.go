/*
Package status collects the outcome of every file in a run and renders it.

	+-----------+      +----------+      +-----------------+
	| operation | ---> |  Report  | ---> | text/json/yaml  |
	+-----------+      +----------+      +-----------------+

🎯 Purpose:
- Tracks one FileResult per processed file, in processing order
- Totals matches, accepted and rejected replacements
- Renders a summary for people (pterm table) or for tools (json, yaml)

📝 Notes:
Files that were never reached because an earlier file failed are recorded as
skipped, so the report always lists every resolved path.
*/
package status
