package mergepipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/raphi011/wt/internal/directive"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/gitrepo"
	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/llmbridge"
	"github.com/raphi011/wt/internal/removeengine"
	"github.com/raphi011/wt/internal/wttemplate"
)

// StageFlags selects which pipeline stages run. All default to true in a
// plain `wt merge`; `wt step <name>` runs a single stage via these flags.
type StageFlags struct {
	Commit bool
	Squash bool
	Rebase bool
	Push   bool
	Remove bool
}

// StageKind ∈ {all, tracked, none} — what `git add` does before a commit.
type StageKind string

const (
	StageAll     StageKind = "all"
	StageTracked StageKind = "tracked"
	StageNone    StageKind = "none"
)

// Options configures a single pipeline run.
type Options struct {
	SourcePath    string // the worktree being merged (current worktree)
	SourceBranch  string
	TargetBranch  string
	GitCommonDir  string // for `git push <git_common_dir> HEAD:<target>`
	Stages        StageFlags
	Stage         StageKind
	DeleteBranch  bool
	LLM           *llmbridge.Bridge // nil = use the deterministic fallback
	PreMergeHooks []hooks.Spec
	PreRemoveHooks []hooks.Spec
	PostRemoveHooks []hooks.Spec
	PostMergeHooks []hooks.Spec
	Hooks         *hooks.Engine
	Directive     *directive.Sink
	Verbose       bool
}

// Pipeline drives the deterministic merge sequence for one invocation.
type Pipeline struct {
	repo *gitrepo.Repository
	opts Options
}

func New(repo *gitrepo.Repository, opts Options) *Pipeline {
	return &Pipeline{repo: repo, opts: opts}
}

// Run executes the full commit→squash→rebase→hooks→push→remove→post-hooks
// sequence, restoring any guard stash on every exit path.
func (p *Pipeline) Run(ctx context.Context) error {
	o := p.opts

	if err := p.validate(ctx); err != nil {
		return err
	}

	if o.Stages.Commit {
		if err := p.commitOrSquash(ctx); err != nil {
			return err
		}
	}

	if o.Stages.Rebase {
		if err := p.rebase(ctx); err != nil {
			return err
		}
	}

	if o.Hooks != nil && len(o.PreMergeHooks) > 0 {
		vars := p.templateVars()
		if err := o.Hooks.Run(ctx, o.PreMergeHooks, vars, o.Verbose); err != nil {
			return fmt.Errorf("pre-merge hooks: %w", err)
		}
	}

	if o.Stages.Push {
		guard, err := p.stashGuard(ctx)
		if err != nil {
			return err
		}
		pushErr := p.pushFastForward(ctx)
		restoreErr := guard.restore(ctx)
		if pushErr != nil {
			return pushErr
		}
		if restoreErr != nil {
			return restoreErr
		}
	}

	if o.Stages.Remove {
		if err := p.removeAndCleanup(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) validate(ctx context.Context) error {
	o := p.opts
	if o.TargetBranch == "" {
		return fmt.Errorf("merge target branch is required")
	}
	if o.SourceBranch == "" {
		return fmt.Errorf("cannot merge from a detached HEAD")
	}
	if _, err := gitexec.Git(ctx, o.SourcePath, "rev-parse", "--verify", o.TargetBranch); err != nil {
		return fmt.Errorf("target branch %q does not resolve: %w", o.TargetBranch, err)
	}
	return nil
}

func (p *Pipeline) commitOrSquash(ctx context.Context) error {
	o := p.opts
	if gitexec.IsDirty(ctx, o.SourcePath) {
		if err := p.stageChanges(ctx); err != nil {
			return err
		}
		msg, err := p.commitMessage(ctx)
		if err != nil {
			return err
		}
		if err := gitexec.GitRun(ctx, o.SourcePath, "commit", "-m", msg); err != nil {
			return fmt.Errorf("committing: %w", err)
		}
	}

	if !o.Stages.Squash {
		return nil
	}
	ahead, _, err := gitexec.AheadBehind(ctx, o.SourcePath, o.TargetBranch, o.SourceBranch)
	if err != nil {
		return fmt.Errorf("computing ahead count vs %s: %w", o.TargetBranch, err)
	}
	if ahead < 2 {
		return nil
	}

	if err := gitexec.GitRun(ctx, o.SourcePath, "update-ref", "refs/wt-backup/"+o.SourceBranch, "HEAD"); err != nil {
		return fmt.Errorf("writing backup ref: %w", err)
	}
	base, err := gitexec.MergeBase(ctx, o.SourcePath, o.TargetBranch, o.SourceBranch)
	if err != nil {
		return fmt.Errorf("finding merge-base with %s: %w", o.TargetBranch, err)
	}
	if err := gitexec.GitRun(ctx, o.SourcePath, "reset", "--soft", base); err != nil {
		return fmt.Errorf("soft-resetting to merge-base: %w", err)
	}
	msg, err := p.commitMessage(ctx)
	if err != nil {
		return err
	}
	if err := gitexec.GitRun(ctx, o.SourcePath, "commit", "-m", msg); err != nil {
		return fmt.Errorf("writing squash commit: %w", err)
	}
	return nil
}

func (p *Pipeline) stageChanges(ctx context.Context) error {
	switch p.opts.Stage {
	case StageNone:
		return nil
	case StageTracked:
		return gitexec.GitRun(ctx, p.opts.SourcePath, "add", "-u")
	default:
		return gitexec.GitRun(ctx, p.opts.SourcePath, "add", "-A")
	}
}

func (p *Pipeline) commitMessage(ctx context.Context) (string, error) {
	o := p.opts
	diff, _ := gitexec.Git(ctx, o.SourcePath, "diff", "--cached")
	subjects, _ := gitexec.GitLines(ctx, o.SourcePath, "log", "-n", "5", "--format=%s")
	stat, _ := gitexec.DiffStat(ctx, o.SourcePath, o.TargetBranch, "HEAD")

	if o.LLM == nil || o.LLM.Command == "" {
		return llmbridge.DeterministicFallback(o.SourceBranch, stat.FilesChanged), nil
	}
	msg, err := o.LLM.Generate(ctx, llmbridge.PromptInput{Diff: string(diff), RecentSubjects: subjects})
	if err != nil {
		if o.LLM.Explicit {
			return "", fmt.Errorf("commit message generation failed: %w", err)
		}
		return llmbridge.DeterministicFallback(o.SourceBranch, stat.FilesChanged), nil
	}
	return msg, nil
}

func (p *Pipeline) rebase(ctx context.Context) error {
	o := p.opts
	if err := gitexec.GitRun(ctx, o.SourcePath, "rebase", o.TargetBranch); err != nil {
		_ = gitexec.GitRun(ctx, o.SourcePath, "rebase", "--abort")
		return fmt.Errorf("rebase onto %s left conflicts, aborted: %w", o.TargetBranch, err)
	}
	return nil
}

// stashGuard is a scoped resource: construct it right before the push, and
// always call restore, on every exit path, so a guard stash never outlives
// the pipeline run (spec invariant: stash guard liveness).
type stashGuard struct {
	active bool
	path   string
}

func (p *Pipeline) stashGuard(ctx context.Context) (*stashGuard, error) {
	targetWorktree, ok := p.targetWorktreePath(ctx)
	if !ok {
		return &stashGuard{}, nil
	}
	if !gitexec.IsDirty(ctx, targetWorktree) {
		return &stashGuard{}, nil
	}
	if _, err := gitexec.Stash(ctx, targetWorktree, "wt merge guard"); err != nil {
		return nil, fmt.Errorf("stashing target worktree before push: %w", err)
	}
	return &stashGuard{active: true, path: targetWorktree}, nil
}

func (g *stashGuard) restore(ctx context.Context) error {
	if !g.active {
		return nil
	}
	if err := gitexec.StashPop(ctx, g.path); err != nil {
		return fmt.Errorf("restoring stash guard: %w", err)
	}
	return nil
}

func (p *Pipeline) targetWorktreePath(ctx context.Context) (string, bool) {
	worktrees, err := gitexec.ListWorktrees(ctx, p.repo.Path())
	if err != nil {
		return "", false
	}
	for _, wt := range worktrees {
		if wt.Branch == p.opts.TargetBranch {
			return wt.Path, true
		}
	}
	return "", false
}

func (p *Pipeline) pushFastForward(ctx context.Context) error {
	o := p.opts
	ok, err := gitexec.IsAncestor(ctx, o.SourcePath, o.TargetBranch, "HEAD")
	if err != nil {
		return fmt.Errorf("checking fast-forward eligibility: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s is not a fast-forward of %s; rebase first", o.SourceBranch, o.TargetBranch)
	}

	args := []string{"-c", "receive.denyCurrentBranch=updateInstead", "push", o.GitCommonDir, "HEAD:" + o.TargetBranch}
	if err := gitexec.GitRun(ctx, o.SourcePath, args...); err != nil {
		return fmt.Errorf("pushing to %s: %w", o.TargetBranch, err)
	}
	return nil
}

func (p *Pipeline) removeAndCleanup(ctx context.Context) error {
	o := p.opts

	if o.Hooks != nil && len(o.PreRemoveHooks) > 0 {
		if err := o.Hooks.Run(ctx, o.PreRemoveHooks, p.templateVars(), o.Verbose); err != nil {
			return fmt.Errorf("pre-remove hooks: %w", err)
		}
	}

	if err := removeengine.RemoveWorktree(ctx, p.repo.Path(), o.SourcePath, removeengine.RemoveOptions{
		Branch: o.SourceBranch,
	}); err != nil {
		return fmt.Errorf("removing worktree %s: %w", o.SourcePath, err)
	}
	if o.DeleteBranch {
		_ = gitexec.GitRun(ctx, p.repo.Path(), "branch", "-d", o.SourceBranch)
	}

	if o.Hooks != nil && len(o.PostRemoveHooks) > 0 {
		_ = o.Hooks.Run(ctx, o.PostRemoveHooks, p.templateVars(), o.Verbose)
	}
	if o.Hooks != nil && len(o.PostMergeHooks) > 0 {
		if err := o.Hooks.Run(ctx, o.PostMergeHooks, p.templateVars(), o.Verbose); err != nil {
			return fmt.Errorf("post-merge hooks (warn-on-failure): %w", err)
		}
	}
	return nil
}

func (p *Pipeline) templateVars() wttemplate.Variables {
	o := p.opts
	return wttemplate.Variables{
		"repo":          baseName(p.repo.Path()),
		"branch":        o.SourceBranch,
		"worktree_name": o.SourceBranch,
		"worktree_path": o.SourcePath,
		"target":        o.TargetBranch,
	}
}

func baseName(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}
