package removeengine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/raphi011/wt/internal/gitexec"
)

// SafetyReason names which check classified a branch as safe to delete.
type SafetyReason string

const (
	ReasonSameCommit SafetyReason = "same_commit"
	ReasonAncestor   SafetyReason = "ancestor"
	ReasonDiffEmpty  SafetyReason = "no_added_changes" // three-dot diff empty
	ReasonTreesEqual SafetyReason = "trees_match"
	ReasonMergeClean SafetyReason = "merge_adds_nothing"
	ReasonUnsafe     SafetyReason = ""
)

// ClassifyBranchSafety runs the five checks in increasing cost order,
// returning the first that passes. An empty reason means unsafe: the
// branch requires -D (force) to delete, or should be kept.
func ClassifyBranchSafety(ctx context.Context, repoDir, branch, target string) (SafetyReason, error) {
	branchCommit, err := gitexec.Git(ctx, repoDir, "rev-parse", branch)
	if err != nil {
		return ReasonUnsafe, fmt.Errorf("resolving %s: %w", branch, err)
	}
	targetCommit, err := gitexec.Git(ctx, repoDir, "rev-parse", target)
	if err != nil {
		return ReasonUnsafe, fmt.Errorf("resolving %s: %w", target, err)
	}
	if string(branchCommit) == string(targetCommit) {
		return ReasonSameCommit, nil
	}

	if ok, err := gitexec.IsAncestor(ctx, repoDir, branch, target); err == nil && ok {
		return ReasonAncestor, nil
	}

	if stat, err := gitexec.DiffStat(ctx, repoDir, target, branch); err == nil && stat.Empty() {
		return ReasonDiffEmpty, nil
	}

	if equal, err := gitexec.TreesEqual(ctx, repoDir, target, branch); err == nil && equal {
		return ReasonTreesEqual, nil
	}

	if conflicts, err := gitexec.MergeTreeConflicts(ctx, repoDir, target, branch); err == nil && len(conflicts) == 0 {
		// Clean merge-tree alone doesn't prove "adds nothing"; only treat it
		// as safe when the resulting tree equals the target's tree.
		if out, terr := gitexec.Git(ctx, repoDir, "merge-tree", "--write-tree", target, branch); terr == nil {
			if targetTree, e2 := gitexec.Git(ctx, repoDir, "rev-parse", target+"^{tree}"); e2 == nil && string(out) == string(targetTree) {
				return ReasonMergeClean, nil
			}
		}
	}
	return ReasonUnsafe, nil
}

// RemoveOptions controls worktree removal.
type RemoveOptions struct {
	Force      bool // pass --force to `git worktree remove` (ignore untracked files)
	Foreground bool // block instead of spawning detached
	LogDir     string
	Branch     string
}

// RemoveWorktree removes the worktree at path. By default it spawns a
// detached background process so the caller returns immediately; with
// Foreground set it blocks and returns the removal error directly.
func RemoveWorktree(ctx context.Context, repoDir, path string, opts RemoveOptions) error {
	args := []string{"worktree", "remove"}
	if opts.Force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if opts.Foreground {
		return gitexec.GitRun(ctx, repoDir, args...)
	}
	return removeInBackground(repoDir, args, opts)
}

func removeInBackground(repoDir string, args []string, opts RemoveOptions) error {
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0o755); err != nil {
			return err
		}
	}
	logPath := filepath.Join(opts.LogDir, fmt.Sprintf("%s-remove.log", opts.Branch))
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("creating removal log %s: %w", logPath, err)
	}

	c := exec.Command("git", args...)
	c.Dir = repoDir
	c.Stdout = logFile
	c.Stderr = logFile
	setDetached(c)

	if err := c.Start(); err != nil {
		logFile.Close()
		return fmt.Errorf("spawning background worktree removal: %w", err)
	}
	go func() {
		_ = c.Wait()
		logFile.Close()
	}()
	return nil
}
