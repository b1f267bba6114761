// Package directive implements the post-exit shell directive protocol: a
// NUL-delimited record format written to the file named by
// WORKTRUNK_DIRECTIVE_FILE, which the shell wrapper reads after the binary
// exits and acts on (cd, exec). Directives never appear on stdout/stderr —
// this package is the only writer of that file and never touches the
// process's own standard streams.
package directive
