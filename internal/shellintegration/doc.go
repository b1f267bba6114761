// Package shellintegration detects whether the shell wrapper that consumes
// the directive protocol (internal/directive) is active for the current
// invocation, and renders the diagnostic messages and install scripts for
// bash, zsh and fish.
//
// Grounded on original_source/src/output/shell_integration.rs's warning-
// message matrix (not installed / needs restart / explicit path / git
// subcommand) and the teacher's cmd/wt/init.go wrapper-function templates,
// rewritten to source WORKTRUNK_DIRECTIVE_FILE and replay directives after
// the binary exits instead of the teacher's single-purpose `wt cd` shim.
package shellintegration
