package gitrepo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/raphi011/wt/internal/gitexec"
)

// Repository wraps a repo path and caches the facts resolved from it.
// Caches are immutable once populated and scoped to this instance.
type Repository struct {
	ctx  context.Context
	path string // repo root (worktree path, common dir for bare repos)

	defaultBranch      string
	defaultBranchErr   error
	defaultBranchKnown bool

	primaryWorktree      string
	primaryWorktreeKnown bool

	projectID      string
	projectIDKnown bool
}

// New constructs a Repository rooted at path. path should be the worktree
// (or bare repo) root, as returned by `git rev-parse --show-toplevel` or
// `--git-common-dir`.
func New(ctx context.Context, path string) *Repository {
	return &Repository{ctx: ctx, path: path}
}

// Path returns the root this Repository was constructed with.
func (r *Repository) Path() string { return r.path }

// DefaultBranch resolves and caches the project's default branch using the
// documented fallback chain, writing the result back to
// `worktrunk.default-branch` so subsequent invocations short-circuit on step 1.
func (r *Repository) DefaultBranch() (string, error) {
	if r.defaultBranchKnown {
		return r.defaultBranch, r.defaultBranchErr
	}
	r.defaultBranchKnown = true
	r.defaultBranch, r.defaultBranchErr = r.resolveDefaultBranch()
	return r.defaultBranch, r.defaultBranchErr
}

func (r *Repository) resolveDefaultBranch() (string, error) {
	ctx := r.ctx

	// 1. git config worktrunk.default-branch
	if out, err := gitexec.Git(ctx, r.path, "config", "worktrunk.default-branch"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			if r.branchExists(name) {
				return name, nil
			}
			// Configured but stale: fall through to re-resolution.
		}
	}

	// 2. Primary remote's HEAD symbolic-ref (requires no network).
	if out, err := gitexec.Git(ctx, r.path, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		ref := strings.TrimSpace(string(out))
		if name := strings.TrimPrefix(ref, "refs/remotes/origin/"); name != ref {
			r.cacheDefaultBranch(name)
			return name, nil
		}
	}

	// 3. git ls-remote --symref origin HEAD (network).
	if out, err := gitexec.Git(ctx, r.path, "ls-remote", "--symref", "origin", "HEAD"); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			if strings.HasPrefix(line, "ref: ") {
				fields := strings.Fields(strings.TrimPrefix(line, "ref: "))
				if len(fields) > 0 {
					name := strings.TrimPrefix(fields[0], "refs/heads/")
					r.cacheDefaultBranch(name)
					return name, nil
				}
			}
		}
	}

	// 4. Local inference.
	branches, _ := gitexec.GitLines(ctx, r.path, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if len(branches) == 1 {
		r.cacheDefaultBranch(branches[0])
		return branches[0], nil
	}
	for _, candidate := range []string{"main", "master", "develop", "trunk"} {
		if slicesContains(branches, candidate) {
			r.cacheDefaultBranch(candidate)
			return candidate, nil
		}
	}
	if out, err := gitexec.Git(ctx, r.path, "config", "init.defaultBranch"); err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			r.cacheDefaultBranch(name)
			return name, nil
		}
	}

	return "", fmt.Errorf("could not resolve default branch: no origin/HEAD, no remote symref, and no conventional local branch name found")
}

func (r *Repository) branchExists(name string) bool {
	_, err := gitexec.Git(r.ctx, r.path, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

func (r *Repository) cacheDefaultBranch(name string) {
	_ = gitexec.GitRun(r.ctx, r.path, "config", "worktrunk.default-branch", name)
}

func slicesContains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// PrimaryWorktree returns the main worktree for ordinary repos, or the
// default branch's worktree when path is a bare repository.
func (r *Repository) PrimaryWorktree() (string, error) {
	if r.primaryWorktreeKnown {
		return r.primaryWorktree, nil
	}
	worktrees, err := gitexec.ListWorktrees(r.ctx, r.path)
	if err != nil {
		return "", err
	}
	if len(worktrees) == 0 {
		return "", fmt.Errorf("no worktrees found for %s", r.path)
	}
	isBare, _ := gitexec.Git(r.ctx, r.path, "rev-parse", "--is-bare-repository")
	if strings.TrimSpace(string(isBare)) == "true" {
		branch, err := r.DefaultBranch()
		if err == nil {
			for _, wt := range worktrees {
				if wt.Branch == branch {
					r.primaryWorktree, r.primaryWorktreeKnown = wt.Path, true
					return wt.Path, nil
				}
			}
		}
	}
	r.primaryWorktree, r.primaryWorktreeKnown = worktrees[0].Path, true
	return worktrees[0].Path, nil
}

// SwitchPrevious reads the branch recorded by `worktrunk.history`.
func (r *Repository) SwitchPrevious() (string, bool) {
	out, err := gitexec.Git(r.ctx, r.path, "config", "worktrunk.history")
	if err != nil {
		return "", false
	}
	branch := strings.TrimSpace(string(out))
	return branch, branch != ""
}

// RecordSwitch updates `worktrunk.history` to from, the branch being left,
// so a subsequent `switch -` can return to it.
func (r *Repository) RecordSwitch(from string) error {
	if from == "" {
		return nil
	}
	return gitexec.GitRun(r.ctx, r.path, "config", "worktrunk.history", from)
}

// ProjectIdentifier returns a stable identifier for this project: the
// primary remote URL normalized to host/owner/repo, or a hash of the repo
// path when there is no remote.
func (r *Repository) ProjectIdentifier() string {
	if r.projectIDKnown {
		return r.projectID
	}
	r.projectIDKnown = true
	if out, err := gitexec.Git(r.ctx, r.path, "remote", "get-url", "origin"); err == nil {
		if id := normalizeRemoteURL(strings.TrimSpace(string(out))); id != "" {
			r.projectID = id
			return r.projectID
		}
	}
	sum := sha256.Sum256([]byte(r.path))
	r.projectID = hex.EncodeToString(sum[:8])
	return r.projectID
}

// normalizeRemoteURL turns git@host:owner/repo.git or https://host/owner/repo
// into host/owner/repo.
func normalizeRemoteURL(url string) string {
	url = strings.TrimSuffix(url, ".git")
	switch {
	case strings.HasPrefix(url, "git@"):
		rest := strings.TrimPrefix(url, "git@")
		rest = strings.Replace(rest, ":", "/", 1)
		return rest
	case strings.Contains(url, "://"):
		parts := strings.SplitN(url, "://", 2)
		return parts[len(parts)-1]
	default:
		return url
	}
}

// HasHint reports whether worktrunk.hints.<name> is set to true. It does not
// mark the hint as seen; SetHint does that.
func (r *Repository) HasHint(name string) bool {
	out, err := gitexec.Git(r.ctx, r.path, "config", "--bool", "worktrunk.hints."+name)
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// SetHint marks worktrunk.hints.<name> as seen so it fires only once.
func (r *Repository) SetHint(name string) error {
	return gitexec.GitRun(r.ctx, r.path, "config", "--bool", "worktrunk.hints."+name, "true")
}
