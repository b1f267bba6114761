package directive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCDWritesNULDelimitedRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directives")
	s := &Sink{path: path}

	if err := s.CD("/tmp/feature"); err != nil {
		t.Fatalf("CD: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading directive file: %v", err)
	}
	want := "cd\x00/tmp/feature\x00"
	if string(data) != want {
		t.Errorf("directive file = %q, want %q", data, want)
	}
}

func TestExecJoinsArgvWithNewlines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directives")
	s := &Sink{path: path}

	if err := s.Exec([]string{"tmux", "attach", "-t", "main"}); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "exec\x00tmux\nattach\n-t\nmain\x00"
	if string(data) != want {
		t.Errorf("directive file = %q, want %q", data, want)
	}
}

func TestFromEnvNilWhenUnset(t *testing.T) {
	t.Setenv(EnvVar, "")
	if s := FromEnv(); s.Active() {
		t.Error("expected inactive sink when env var unset")
	}
}

func TestAppendsMultipleRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directives")
	s := &Sink{path: path}
	_ = s.CD("/a")
	_ = s.CD("/b")

	data, _ := os.ReadFile(path)
	want := "cd\x00/a\x00cd\x00/b\x00"
	if string(data) != want {
		t.Errorf("directive file = %q, want %q", data, want)
	}
}
