// Package output provides output formatting for ledwall-cli.
//
// Supported formats:
//
//   - table: aligned columns for Tabular values (default)
//   - json: indented JSON
//   - yaml: YAML with JSON field names
//
// Spinner and ProgressBar draw on stderr for long running commands.
package output
