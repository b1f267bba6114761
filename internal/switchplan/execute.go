package switchplan

import (
	"context"
	"fmt"
	"os"

	"github.com/raphi011/wt/internal/directive"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/gitrepo"
	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/wttemplate"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ExecuteOptions carries the hook engine and directive sink ExecuteSwitch
// needs to finish the pipeline (post-create hooks, history recording, cd).
type ExecuteOptions struct {
	Hooks           *hooks.Engine
	PostCreateSpecs []hooks.Spec // resolved by the caller via hooks.Resolve(cfg, hooks.PhasePostCreate, "")
	Directive       *directive.Sink
	Verbose         bool
	CurrentBranch   string // used as NewPrevious when actually switching
}

// Result is returned by ExecuteSwitch.
type Result struct {
	Path      string
	Branch    string
	Created   bool
	Switched  bool // true for every Existing plan; whether the caller is already there is not checked
}

// ExecuteSwitch carries out plan: for Existing, it just records history and
// emits the cd directive; for Create, it runs `git worktree add` (handling
// clobber-backup, fork refs, and upstream detachment), then post-create
// hooks, then records history and emits the cd directive.
func ExecuteSwitch(ctx context.Context, repo *gitrepo.Repository, plan *Plan, opts ExecuteOptions) (*Result, error) {
	if plan.Existing {
		if err := repo.RecordSwitch(opts.CurrentBranch); err != nil {
			return nil, fmt.Errorf("recording switch history: %w", err)
		}
		if opts.Directive != nil {
			if err := opts.Directive.CD(plan.Path); err != nil {
				return nil, err
			}
		}
		return &Result{Path: plan.Path, Branch: plan.Branch, Switched: true}, nil
	}

	if plan.ClobberBackup != "" {
		if err := os.Rename(plan.Path, plan.ClobberBackup); err != nil {
			return nil, fmt.Errorf("backing up stale directory %s: %w", plan.Path, err)
		}
	}

	switch plan.Method {
	case MethodForkRef:
		if err := createForkWorktree(ctx, repo, plan); err != nil {
			return nil, err
		}
	default:
		if err := createRegularWorktree(ctx, repo, plan); err != nil {
			return nil, err
		}
	}

	if opts.Hooks != nil && len(opts.PostCreateSpecs) > 0 {
		vars := wttemplate.Variables{
			"repo":           repoBaseName(repo),
			"branch":         plan.Branch,
			"worktree_name":  plan.Branch,
			"worktree_path":  plan.Path,
			"default_branch": defaultBranchOrEmpty(repo),
			"base":           plan.BaseRef,
		}
		if err := opts.Hooks.Run(ctx, opts.PostCreateSpecs, vars, opts.Verbose); err != nil {
			return nil, err
		}
	}

	if err := repo.RecordSwitch(opts.CurrentBranch); err != nil {
		return nil, fmt.Errorf("recording switch history: %w", err)
	}
	if opts.Directive != nil {
		if err := opts.Directive.CD(plan.Path); err != nil {
			return nil, err
		}
	}
	return &Result{Path: plan.Path, Branch: plan.Branch, Created: true, Switched: true}, nil
}

func createRegularWorktree(ctx context.Context, repo *gitrepo.Repository, plan *Plan) error {
	if plan.BaseRef != "" {
		if err := gitexec.GitRun(ctx, repo.Path(), "worktree", "add", "-b", plan.Branch, plan.Path, plan.BaseRef); err != nil {
			return fmt.Errorf("creating worktree for new branch %s: %w", plan.Branch, err)
		}
		// If the base was a remote-tracking ref, detach the new branch's
		// upstream so it doesn't accidentally push back onto the base.
		if plan.BaseIsRemote {
			_ = gitexec.GitRun(ctx, repo.Path(), "branch", "--unset-upstream", plan.Branch)
		}
		return nil
	}

	// Existing local branch, or a single tracking remote ref with the same
	// name (DWIM fails in single-branch/bare clones, so pass it explicitly).
	if localBranchExistsAt(ctx, repo.Path(), plan.Branch) {
		return gitexec.GitRun(ctx, repo.Path(), "worktree", "add", plan.Path, plan.Branch)
	}
	if gitexec.HasRemote(ctx, repo.Path(), "origin") {
		remoteRef := "origin/" + plan.Branch
		if _, err := gitexec.Git(ctx, repo.Path(), "rev-parse", "--verify", remoteRef); err == nil {
			return gitexec.GitRun(ctx, repo.Path(), "worktree", "add", "-b", plan.Branch, plan.Path, remoteRef)
		}
	}
	return gitexec.GitRun(ctx, repo.Path(), "worktree", "add", plan.Path, plan.Branch)
}

func createForkWorktree(ctx context.Context, repo *gitrepo.Repository, plan *Plan) (err error) {
	remoteName := "origin"
	if plan.ForkOwner != "" {
		remoteName = plan.ForkOwner
	}

	if err := gitexec.GitRun(ctx, repo.Path(), "fetch", "origin", plan.FetchRefPath); err != nil {
		return fmt.Errorf("fetching %s: %w", plan.FetchRefPath, err)
	}
	if err := gitexec.GitRun(ctx, repo.Path(), "branch", plan.Branch, "FETCH_HEAD"); err != nil {
		return fmt.Errorf("creating local branch %s: %w", plan.Branch, err)
	}
	defer func() {
		if err != nil {
			_ = gitexec.GitRun(ctx, repo.Path(), "branch", "-D", plan.Branch)
		}
	}()

	if plan.ForkPushURL != "" {
		if cerr := gitexec.GitRun(ctx, repo.Path(), "config", "branch."+plan.Branch+".remote", remoteName); cerr != nil {
			return cerr
		}
		if cerr := gitexec.GitRun(ctx, repo.Path(), "config", "branch."+plan.Branch+".pushRemote", plan.ForkPushURL); cerr != nil {
			return cerr
		}
	}
	if cerr := gitexec.GitRun(ctx, repo.Path(), "config", "branch."+plan.Branch+".merge", "refs/heads/"+plan.Branch); cerr != nil {
		return cerr
	}

	if werr := gitexec.GitRun(ctx, repo.Path(), "worktree", "add", plan.Path, plan.Branch); werr != nil {
		err = fmt.Errorf("creating worktree for %s: %w", plan.Branch, werr)
		return err
	}
	return nil
}

func localBranchExistsAt(ctx context.Context, repoPath, branch string) bool {
	_, err := gitexec.Git(ctx, repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

func repoBaseName(repo *gitrepo.Repository) string {
	primary, err := repo.PrimaryWorktree()
	if err != nil {
		return ""
	}
	return baseName(primary)
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

func defaultBranchOrEmpty(repo *gitrepo.Repository) string {
	b, err := repo.DefaultBranch()
	if err != nil {
		return ""
	}
	return b
}
