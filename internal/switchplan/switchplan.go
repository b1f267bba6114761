package switchplan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/wt/internal/forge"
	"github.com/raphi011/wt/internal/format"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/gitrepo"
	"github.com/raphi011/wt/internal/worktree"
)

// CreationMethod distinguishes a plain new branch from one created to track
// a pull/merge request ref.
type CreationMethod int

const (
	MethodRegular CreationMethod = iota
	MethodForkRef
)

// RefKind mirrors forge.RefKind for the part of a Create plan that came from
// a pr:/mr: target.
type RefKind = forge.RefKind

// Plan is the tagged union SwitchPlan: either an already-existing worktree
// to reuse, or one to create.
type Plan struct {
	Existing     bool
	Path         string
	Branch       string
	NewPrevious  string // not set by ResolveTarget; ExecuteSwitch records ExecuteOptions.CurrentBranch instead
	Method       CreationMethod
	BaseRef      string // resolved base ref, e.g. "origin/main" (Method == Regular)
	BaseIsRemote bool   // true when BaseRef is a remote-tracking ref
	ClobberBackup string // non-empty: path to rename the stale directory to before creating

	// Fork ref fields (Method == MethodForkRef).
	RefKind      RefKind
	RefNumber    int
	FetchRefPath string
	ForkPushURL  string
	ForkOwner    string
}

// ResolveTargetOptions controls target resolution.
type ResolveTargetOptions struct {
	Create    bool
	Base      string
	RepoURL   string // primary remote URL, used for pr:/mr: lookups
	FetchBase bool
	AutoFetch bool
	BaseRefConfig  string // "remote" or "local"
	WorktreeFormat string // folder-naming template, e.g. "{repo}-{branch}" or "../{repo}-{branch}"
}

// ResolveTarget interprets branchArg: a bare branch name, `pr:N`, `mr:N`,
// `-` (previous worktree), or `^` (default branch).
func ResolveTarget(ctx context.Context, repo *gitrepo.Repository, branchArg string, opts ResolveTargetOptions) (*Plan, error) {
	switch {
	case branchArg == "-":
		prev, ok := repo.SwitchPrevious()
		if !ok {
			return nil, fmt.Errorf("no previous worktree recorded")
		}
		return resolveBranchTarget(ctx, repo, prev, opts)
	case branchArg == "^":
		def, err := repo.DefaultBranch()
		if err != nil {
			return nil, err
		}
		return resolveBranchTarget(ctx, repo, def, opts)
	case strings.HasPrefix(branchArg, "pr:"):
		return resolveRefTarget(ctx, repo, forge.RefPullRequest, strings.TrimPrefix(branchArg, "pr:"), opts)
	case strings.HasPrefix(branchArg, "mr:"):
		return resolveRefTarget(ctx, repo, forge.RefMergeRequest, strings.TrimPrefix(branchArg, "mr:"), opts)
	default:
		return resolveBranchTarget(ctx, repo, branchArg, opts)
	}
}

func resolveRefTarget(ctx context.Context, repo *gitrepo.Repository, kind RefKind, numStr string, opts ResolveTargetOptions) (*Plan, error) {
	if opts.Create || opts.Base != "" {
		return nil, fmt.Errorf("--create/--base cannot be combined with a pr:/mr: target")
	}
	var number int
	if _, err := fmt.Sscanf(numStr, "%d", &number); err != nil {
		return nil, fmt.Errorf("invalid ref number %q: %w", numStr, err)
	}

	provider := forge.ProviderFor(kind)
	info, err := provider.FetchInfo(ctx, opts.RepoURL, number)
	if err != nil {
		return nil, err
	}

	branch := info.HeadRefName
	if info.IsFork {
		branch = forkLocalBranchName(ctx, repo, info)
	}

	if existing, ok := findExistingWorktree(ctx, repo, branch); ok {
		return &Plan{Existing: true, Path: existing, Branch: branch}, nil
	}

	path, err := worktreePath(ctx, repo, branch, opts)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Branch:       branch,
		Path:         path,
		Method:       MethodForkRef,
		RefKind:      kind,
		RefNumber:    number,
		FetchRefPath: info.FetchRefPath,
		ForkPushURL:  info.CloneURL,
		ForkOwner:    info.HeadOwner,
	}, nil
}

// forkLocalBranchName prefers the unprefixed branch name, falling back to
// owner/name only on collision with an existing local branch that points
// somewhere else.
func forkLocalBranchName(ctx context.Context, repo *gitrepo.Repository, info *forge.RefInfo) string {
	if !localBranchExists(ctx, repo, info.HeadRefName) {
		return info.HeadRefName
	}
	if info.HeadOwner == "" {
		return info.HeadRefName
	}
	return info.HeadOwner + "/" + info.HeadRefName
}

func localBranchExists(ctx context.Context, repo *gitrepo.Repository, name string) bool {
	_, err := gitexec.Git(ctx, repo.Path(), "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// suggestBranches ranks local branches against a typo'd target and returns
// the top few fuzzy matches, feeding the error message an external
// interactive picker could render as a candidate list.
func suggestBranches(ctx context.Context, repo *gitrepo.Repository, target string) []string {
	refs, err := gitexec.ForEachLocalBranch(ctx, repo.Path())
	if err != nil || len(refs) == 0 {
		return nil
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	matches := fuzzy.Find(target, names)
	const maxSuggestions = 3
	var out []string
	for i, m := range matches {
		if i >= maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func resolveBranchTarget(ctx context.Context, repo *gitrepo.Repository, branch string, opts ResolveTargetOptions) (*Plan, error) {
	if existing, ok := findExistingWorktree(ctx, repo, branch); ok {
		return &Plan{Existing: true, Path: existing, Branch: branch}, nil
	}

	if !opts.Create && !localBranchExists(ctx, repo, branch) {
		if suggestions := suggestBranches(ctx, repo, branch); len(suggestions) > 0 {
			return nil, fmt.Errorf("branch %q does not exist locally (use --create to create it); did you mean: %s?",
				branch, strings.Join(suggestions, ", "))
		}
		return nil, fmt.Errorf("branch %q does not exist locally (use --create to create it)", branch)
	}
	if opts.Create && localBranchExists(ctx, repo, branch) {
		return nil, fmt.Errorf("branch %q already exists (omit --create, or choose another name)", branch)
	}

	path, err := worktreePath(ctx, repo, branch, opts)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Branch: branch, Path: path, Method: MethodRegular}
	if opts.Create {
		base := opts.Base
		if base == "" {
			base, err = repo.DefaultBranch()
			if err != nil {
				return nil, err
			}
		}
		baseRef, isRemote, err := resolveBaseRef(ctx, repo, base, opts)
		if err != nil {
			return nil, err
		}
		plan.BaseRef = baseRef
		plan.BaseIsRemote = isRemote
	}

	if clobberBackup, needed := clobberPathIfOccupied(path); needed {
		plan.ClobberBackup = clobberBackup
	}
	return plan, nil
}

// resolveBaseRef mirrors the teacher's resolveBaseRef: fetch the base branch
// from origin if requested, then decide between the remote-tracking ref and
// the local ref per config.
func resolveBaseRef(ctx context.Context, repo *gitrepo.Repository, base string, opts ResolveTargetOptions) (ref string, isRemote bool, err error) {
	hasRemote := gitexec.HasRemote(ctx, repo.Path(), "origin")
	shouldFetch := opts.FetchBase || opts.AutoFetch
	if shouldFetch && hasRemote {
		if err := gitexec.GitRun(ctx, repo.Path(), "fetch", "origin", base); err != nil {
			return "", false, fmt.Errorf("fetching origin/%s: %w", base, err)
		}
	}
	useRemote := (shouldFetch || opts.BaseRefConfig != "local") && hasRemote
	if useRemote {
		return "origin/" + base, true, nil
	}
	return base, false, nil
}

func findExistingWorktree(ctx context.Context, repo *gitrepo.Repository, branch string) (string, bool) {
	worktrees, err := gitexec.ListWorktrees(ctx, repo.Path())
	if err != nil {
		return "", false
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt.Path, true
		}
	}
	return "", false
}

// worktreePath expands opts.WorktreeFormat against the repo name, origin
// name, and branch, then lays the result out relative to the primary
// worktree: "../{repo}-{branch}" siblings the repo, "~/..." centralizes
// under home, a leading "/" is absolute, and a bare name with none of these
// prefixes is also placed beside the repo, as if prefixed with "../".
func worktreePath(ctx context.Context, repo *gitrepo.Repository, branch string, opts ResolveTargetOptions) (string, error) {
	primary, err := repo.PrimaryWorktree()
	if err != nil {
		return "", err
	}
	repoName := filepath.Base(primary)

	tmpl := opts.WorktreeFormat
	if tmpl == "" {
		tmpl = format.DefaultWorktreeFormat
	}
	if err := format.ValidateFormat(tmpl); err != nil {
		return "", err
	}

	origin := repoName
	if opts.RepoURL != "" {
		if name := originRepoName(opts.RepoURL); name != "" {
			origin = name
		}
	}

	folder := format.FormatWorktreeName(tmpl, format.FormatParams{
		RepoName:   repoName,
		BranchName: branch,
		Origin:     origin,
	})

	// A bare folder name (no "../", "~/" or "/" prefix) places the worktree
	// as a sibling of the repo, matching how `git worktree add` is normally
	// used; opt into worktree.ResolvePath's other layouts (nested, home,
	// absolute) by giving WorktreeFormat an explicit prefix.
	if !strings.HasPrefix(folder, "../") && !strings.HasPrefix(folder, "~/") &&
		!strings.HasPrefix(folder, "/") && !strings.HasPrefix(folder, "./") {
		folder = "../" + folder
	}

	return worktree.ResolvePath(primary, repoName, branch, folder), nil
}

// originRepoName extracts "owner/repo"'s trailing "repo" segment from a
// remote URL, stripping a trailing ".git" (e.g.
// "git@github.com:owner/repo.git" -> "repo").
func originRepoName(remoteURL string) string {
	trimmed := strings.TrimSuffix(remoteURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// clobberPathIfOccupied reports whether path already exists on disk (as a
// directory not known to git worktree), and if so, the adjacent backup path
// it should be renamed to before the new worktree is created.
func clobberPathIfOccupied(path string) (string, bool) {
	if !pathExists(path) {
		return "", false
	}
	return path + ".bak", true
}
