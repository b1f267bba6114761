package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raphi011/wt/internal/approval"
	"github.com/raphi011/wt/internal/config"
	"github.com/raphi011/wt/internal/log"
	"github.com/raphi011/wt/internal/wttemplate"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Source distinguishes a user-config hook (trusted, never needs approval)
// from a project-config hook (untrusted, gated by ApprovalStore).
type Source string

const (
	SourceUser    Source = "user"
	SourceProject Source = "project"
)

// Spec is a single resolved hook bound to a phase.
type Spec struct {
	Name     string
	Source   Source
	Phase    Phase
	Command  string
	Approval string // "ask" (default), "always", "never"
}

// Engine resolves and runs hooks for a repository.
type Engine struct {
	Approvals *approval.Store
	ProjectID string
	LogDir    string // <git_common_dir>/wt-logs
}

// New constructs an Engine. logDir is the directory background hook logs
// are written to (<git_common_dir>/wt-logs).
func New(approvals *approval.Store, projectID, logDir string) *Engine {
	return &Engine{Approvals: approvals, ProjectID: projectID, LogDir: logDir}
}

// Resolve returns every hook bound to phase from user config then project
// config, in that order — user hooks first, so they run before project
// hooks when multiple match the same phase.
func Resolve(cfg *config.Config, phase Phase, nameFilter string) []Spec {
	var specs []Spec
	for name, h := range cfg.Hooks.Hooks {
		if !h.IsEnabled() {
			continue
		}
		if !matchesPhase(h.On, phase) {
			continue
		}
		source := Source(h.Source)
		if source == "" {
			source = SourceUser
		}
		if !matchesFilter(name, source, nameFilter) {
			continue
		}
		approvalMode := h.Approval
		if approvalMode == "" {
			approvalMode = "ask"
		}
		specs = append(specs, Spec{Name: name, Source: source, Phase: phase, Command: h.Command, Approval: approvalMode})
	}
	// User hooks run before project hooks within the same phase; stable
	// within each source group by name.
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].Source != specs[j].Source {
			return specs[i].Source == SourceUser
		}
		return specs[i].Name < specs[j].Name
	})
	return specs
}

func matchesPhase(on []string, phase Phase) bool {
	for _, p := range on {
		if p == "all" || Phase(p) == phase {
			return true
		}
	}
	return false
}

// matchesFilter supports "", "name", "user:", "project:", "user:name",
// "project:name".
func matchesFilter(name string, source Source, filter string) bool {
	if filter == "" {
		return true
	}
	if filter == string(source) {
		return true
	}
	if prefix := string(source) + ":"; strings.HasPrefix(filter, prefix) {
		return filter == prefix || strings.TrimPrefix(filter, prefix) == name
	}
	if !strings.Contains(filter, ":") {
		return filter == name
	}
	return false
}

// EnsureApproved checks each project-sourced spec against the ApprovalStore,
// prompting (via promptFn) for anything not yet approved. Returns an error
// if the user declines; user-sourced hooks never require approval.
func (e *Engine) EnsureApproved(specs []Spec, promptFn func(pending []Spec) (approveAll bool, approved map[string]bool, err error)) error {
	var pending []Spec
	for _, s := range specs {
		if s.Source != SourceProject || s.Approval == "never" {
			continue
		}
		if s.Approval == "always" {
			continue
		}
		if e.Approvals != nil && e.Approvals.Allowed(e.ProjectID, s.Command) {
			continue
		}
		pending = append(pending, s)
	}
	if len(pending) == 0 {
		return nil
	}
	approveAll, approved, err := promptFn(pending)
	if err != nil {
		return err
	}
	for _, s := range pending {
		if approveAll || approved[s.Name] {
			if e.Approvals != nil {
				if err := e.Approvals.Approve(e.ProjectID, s.Command); err != nil {
					return fmt.Errorf("persisting approval for %q: %w", s.Name, err)
				}
			}
			continue
		}
		return fmt.Errorf("hook %q declined by user", s.Name)
	}
	return nil
}

// Run executes every spec in order, honoring each phase's execution policy.
// vars is the whole template context; no extra variables are merged in.
func (e *Engine) Run(ctx context.Context, specs []Spec, vars wttemplate.Variables, verbose bool) error {
	l := log.FromContext(ctx)
	for _, s := range specs {
		expanded, err := wttemplate.Expand(s.Command, vars, wttemplate.Phase(s.Phase))
		if err != nil {
			return fmt.Errorf("hook %q: %w", s.Name, err)
		}

		l.Printf("Running %s %s...\n", s.Phase, s.Name)
		if verbose {
			l.Printf("  $ %s\n", expanded)
		}

		policy := PolicyFor(s.Phase)
		workDir := vars["worktree_path"]

		switch policy {
		case PolicyBackground:
			if err := e.runBackground(s, expanded, workDir); err != nil {
				l.Warn("failed to start background hook", "hook", s.Name, "error", err.Error())
			}
		default:
			err := runForeground(ctx, expanded, workDir)
			if err != nil {
				if policy == PolicyFailFast {
					return fmt.Errorf("hook %q failed: %w", s.Name, err)
				}
				l.Warn("hook failed (continuing)", "hook", s.Name, "error", err.Error())
			}
		}
	}
	return nil
}

func runForeground(ctx context.Context, command, workDir string) error {
	c := exec.CommandContext(ctx, "sh", "-c", command)
	c.Dir = workDir
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	return c.Run()
}

// runBackground spawns command detached from the parent's process group so
// it survives the CLI exiting, redirecting output to a rotated log file
// under LogDir. The caller does not wait for it and its exit status is
// discarded.
func (e *Engine) runBackground(s Spec, command, workDir string) error {
	if err := os.MkdirAll(e.LogDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(e.LogDir, fmt.Sprintf("%s-%s-%s.log", s.Source, s.Phase, s.Name))
	logger := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		Compress:   false,
	}

	c := exec.Command("sh", "-c", command)
	c.Dir = workDir
	c.Stdout = logger
	c.Stderr = logger
	setDetached(c)

	if err := c.Start(); err != nil {
		logger.Close()
		return err
	}
	// The log is not an *os.File, so os/exec copies the child's output into
	// it through pipes; Wait runs in a goroutine to finish that copying and
	// close the log. Its result is discarded.
	go func() {
		_ = c.Wait()
		logger.Close()
	}()
	return nil
}
