package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/wt/internal/config"
	"github.com/raphi011/wt/internal/directive"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/gitrepo"
	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/ui/prompt"
)

// cmdContext bundles the dependencies every core command resolves the same
// way: the repository, its config, a hook engine rooted at its log
// directory, and the directive sink the shell wrapper reads back.
type cmdContext struct {
	ctx       context.Context
	cfg       *config.Config
	repo      *gitrepo.Repository
	commonDir string
	hooks     *hooks.Engine
	directive *directive.Sink
}

func newCmdContext(cmd cmdRunContext) (*cmdContext, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	workDir := config.WorkDirFromContext(ctx)
	repo := gitrepo.New(ctx, workDir)

	commonDir, err := gitCommonDir(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	logDir := filepath.Join(commonDir, "wt-logs")
	engine := hooks.New(approvalStore, repo.ProjectIdentifier(), logDir)

	return &cmdContext{
		ctx:       ctx,
		cfg:       cfg,
		repo:      repo,
		commonDir: commonDir,
		hooks:     engine,
		directive: directive.FromEnv(),
	}, nil
}

// cmdRunContext is the subset of *cobra.Command newCmdContext needs; tests
// can satisfy it with any context.Context wrapper.
type cmdRunContext interface {
	Context() context.Context
}

// gitCommonDir resolves the absolute `--git-common-dir` for dir, following
// the pattern ProjectIdentifier uses for other one-shot `git config`/`git
// remote` lookups: shell out, trim, and return an error if dir isn't
// inside a repository.
func gitCommonDir(ctx context.Context, dir string) (string, error) {
	out, err := gitexec.Git(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", err
	}
	rel := strings.TrimSpace(string(out))
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	return filepath.Join(dir, rel), nil
}

// currentBranch returns the branch checked out at dir, or "" if dir is in
// detached HEAD state.
func currentBranch(ctx context.Context, dir string) string {
	out, err := gitexec.Git(ctx, dir, "branch", "--show-current")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// promptApproval is hooks.Engine.EnsureApproved's interactive prompt: it
// lists every pending project-sourced hook and asks once whether to approve
// all of them, declining the whole batch on anything but "y" or "yes". Uses a small
// bubbletea confirm view when stdin is a real terminal, falling back to a
// plain line read otherwise (piped input, scripted tests).
func promptApproval(pending []hooks.Spec) (approveAll bool, approved map[string]bool, err error) {
	lines := make([]string, 0, len(pending)+1)
	lines = append(lines, "The following project hooks require approval:")
	for _, s := range pending {
		lines = append(lines, fmt.Sprintf("  %s: %s", s.Name, s.Command))
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		result, err := prompt.Confirm("Run them?", lines...)
		if err != nil {
			return false, nil, err
		}
		if result.Cancelled {
			return false, nil, fmt.Errorf("approval cancelled")
		}
		return result.Confirmed, nil, nil
	}

	for _, l := range lines {
		fmt.Fprintln(os.Stderr, l)
	}
	fmt.Fprint(os.Stderr, "Run them? [y/N] ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes", nil, nil
}
