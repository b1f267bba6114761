package shellintegration

import (
	"strings"
	"testing"
)

func TestDetectGitSubcommandTakesPriority(t *testing.T) {
	s := Detect(true, "wt", "wt", true)
	if s.Active || s.Reason != ReasonGitSubcommand {
		t.Errorf("Detect() = %+v, want git-subcommand reason even with directive file set", s)
	}
}

func TestDetectActiveWhenDirectiveFileSet(t *testing.T) {
	s := Detect(true, "wt", "wt", false)
	if !s.Active || s.Reason != ReasonNone {
		t.Errorf("Detect() = %+v, want active", s)
	}
}

func TestDetectExplicitPath(t *testing.T) {
	s := Detect(false, "./target/debug/wt", "wt", false)
	if s.Active || s.Reason != ReasonExplicitPath {
		t.Errorf("Detect() = %+v, want explicit-path reason", s)
	}
}

func TestDetectNotInstalled(t *testing.T) {
	s := Detect(false, "wt", "wt", false)
	if s.Active || s.Reason != ReasonNotInstalled {
		t.Errorf("Detect() = %+v, want not-installed reason", s)
	}
}

func TestWarningMessageMatchesReason(t *testing.T) {
	s := Status{Reason: ReasonExplicitPath, InvokedPath: "./wt", WrappedName: "wt"}
	msg := WarningMessage(s)
	if msg == "" {
		t.Fatal("expected a warning message for an inactive status")
	}
	if got := Hint(s); got == "" {
		t.Fatal("expected a hint for an inactive status")
	}
}

func TestActiveStatusHasNoWarning(t *testing.T) {
	s := Status{Active: true}
	if WarningMessage(s) != "" || Hint(s) != "" {
		t.Error("active status should produce no warning or hint")
	}
}

func TestScriptRejectsUnsupportedShell(t *testing.T) {
	if _, err := Script(ShellPowerShell, "wt"); err == nil {
		t.Fatal("expected an error for an unsupported shell")
	}
}

func TestScriptBashContainsDirectiveFileEnvVar(t *testing.T) {
	out, err := Script(ShellBash, "wt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "WORKTRUNK_DIRECTIVE_FILE") {
		t.Error("bash wrapper script must set WORKTRUNK_DIRECTIVE_FILE")
	}
}
