package shellintegration

import (
	"os"
	"path/filepath"
	"strings"
)

// Shell identifies a supported login shell.
type Shell string

const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
	ShellUnknown    Shell = ""
)

// CurrentShell inspects $SHELL (or $PSModulePath as a Windows fallback) to
// name the invoking shell. Returns ShellUnknown if neither is recognized.
func CurrentShell() Shell {
	if path := os.Getenv("SHELL"); path != "" {
		switch strings.ToLower(filepath.Base(path)) {
		case "bash":
			return ShellBash
		case "zsh":
			return ShellZsh
		case "fish":
			return ShellFish
		default:
			return ShellUnknown
		}
	}
	if os.Getenv("PSModulePath") != "" {
		return ShellPowerShell
	}
	return ShellUnknown
}

// Reason names why the directive-sink shell wrapper isn't active for the
// current invocation, matching the exact strings the original Rust
// implementation surfaces to users.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNotInstalled      Reason = "shell integration not installed"
	ReasonNeedsRestart      Reason = "shell requires restart"
	ReasonExplicitPath      Reason = "explicit path"
	ReasonGitSubcommand     Reason = "git subcommand"
)

// Status is the resolved diagnostic for the current invocation.
type Status struct {
	Active          bool // directive sink is live: WORKTRUNK_DIRECTIVE_FILE is set
	Reason          Reason
	InvokedPath     string // argv[0] as received
	WrappedName     string // the name the shell function wraps, e.g. "wt"
	IsGitSubcommand bool
}

// Detect resolves the current invocation's shell-integration status.
// directiveFileSet reports whether WORKTRUNK_DIRECTIVE_FILE is present in
// the environment (the caller passes directive.FromEnv() != nil rather than
// re-reading the env var here, keeping this package decoupled from the
// wire-format sink).
func Detect(directiveFileSet bool, invokedPath, wrappedName string, isGitSubcommand bool) Status {
	s := Status{InvokedPath: invokedPath, WrappedName: wrappedName, IsGitSubcommand: isGitSubcommand}
	if isGitSubcommand {
		s.Reason = ReasonGitSubcommand
		return s
	}
	if directiveFileSet {
		s.Active = true
		return s
	}
	if wasInvokedWithExplicitPath(invokedPath, wrappedName) {
		s.Reason = ReasonExplicitPath
		return s
	}
	s.Reason = ReasonNotInstalled
	return s
}

// wasInvokedWithExplicitPath reports whether invokedPath names something
// other than the bare wrapped command name — i.e. the user ran
// "./wt" or "/usr/local/bin/wt" instead of letting the shell function
// named wrappedName intercept the call.
func wasInvokedWithExplicitPath(invokedPath, wrappedName string) bool {
	if invokedPath == "" {
		return false
	}
	return filepath.Base(invokedPath) != wrappedName || strings.ContainsAny(invokedPath, "/\\")
}

// WarningMessage renders the user-facing "cannot change directory" warning
// for Status, matching original_source's message matrix.
func WarningMessage(s Status) string {
	if s.Active {
		return ""
	}
	switch s.Reason {
	case ReasonGitSubcommand:
		return "cannot change directory — ran git " + s.WrappedName + "; running through git prevents cd"
	case ReasonExplicitPath:
		return "cannot change directory — ran " + s.InvokedPath + "; shell integration wraps " + s.WrappedName
	case ReasonNeedsRestart:
		return "cannot change directory — shell requires restart"
	default:
		return "cannot change directory — shell integration not installed"
	}
}

// Hint renders the accompanying hint for Status.
func Hint(s Status) string {
	if s.Active {
		return ""
	}
	switch s.Reason {
	case ReasonGitSubcommand:
		return "Use " + s.WrappedName + " directly (via shell function) for automatic cd"
	case ReasonExplicitPath:
		return "To change directory, run " + s.WrappedName + " switch <branch>"
	case ReasonNeedsRestart:
		return "Restart shell to activate shell integration"
	default:
		return "To enable automatic cd, run " + s.WrappedName + " config shell init <shell>"
	}
}
