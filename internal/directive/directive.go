package directive

import (
	"fmt"
	"os"
	"strings"
)

// EnvVar is the environment variable naming the sink file.
const EnvVar = "WORKTRUNK_DIRECTIVE_FILE"

// Sink appends directive records to a wrapper-owned file.
type Sink struct {
	path string
}

// FromEnv returns a Sink reading its target path from WORKTRUNK_DIRECTIVE_FILE.
// Returns nil (not an error) when the variable is unset — callers must treat
// a nil *Sink as "shell integration not active" and skip emission entirely,
// never falling back to stdout/stderr.
func FromEnv() *Sink {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil
	}
	return &Sink{path: path}
}

// Active reports whether a directive sink is configured.
func (s *Sink) Active() bool {
	return s != nil && s.path != ""
}

// CD appends a `cd <path>` record.
func (s *Sink) CD(path string) error {
	return s.write("cd", path)
}

// Exec appends an `exec <argv>` record; argv is newline-joined per the wire
// format (the wrapper splits the payload on \n to reconstruct argv).
func (s *Sink) Exec(argv []string) error {
	return s.write("exec", strings.Join(argv, "\n"))
}

func (s *Sink) write(kind, payload string) error {
	if !s.Active() {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening directive file %s: %w", s.path, err)
	}
	defer f.Close()

	record := kind + "\x00" + payload + "\x00"
	if _, err := f.WriteString(record); err != nil {
		return fmt.Errorf("writing directive to %s: %w", s.path, err)
	}
	return nil
}
