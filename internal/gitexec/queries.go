package gitexec

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Worktree is one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path   string
	Head   string // commit sha, or "" for the initial/unborn branch
	Branch string // short branch name, "" if detached
	Bare   bool
	Locked bool
	Prunable bool
}

// ListWorktrees parses `git worktree list --porcelain` for repoDir.
func ListWorktrees(ctx context.Context, repoDir string) ([]Worktree, error) {
	out, err := Git(ctx, repoDir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	var result []Worktree
	var cur *Worktree
	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if cur != nil {
				result = append(result, *cur)
			}
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			cur.Bare = true
		case strings.HasPrefix(line, "locked"):
			cur.Locked = true
		case strings.HasPrefix(line, "prunable"):
			cur.Prunable = true
		}
	}
	if cur != nil {
		result = append(result, *cur)
	}
	return result, nil
}

// BranchRef is one row of batched branch metadata from for-each-ref.
type BranchRef struct {
	Name        string
	CommitID    string
	Upstream    string
	AheadCount  int
	BehindCount int
}

// ForEachLocalBranch issues a single `git for-each-ref` to list every local
// branch with its commit id and tracked upstream, then runs one
// `git rev-list --left-right --count` (via AheadBehind) per branch that has
// an upstream to fill in the ahead/behind counts against that upstream.
func ForEachLocalBranch(ctx context.Context, repoDir string) ([]BranchRef, error) {
	format := "%(refname:short)%00%(objectname)%00%(upstream:short)%00%(ahead-behind:HEAD)"
	// Only the first three fields are read; the ahead/behind counts against
	// each branch's upstream come from the AheadBehind loop below.
	out, err := Git(ctx, repoDir, "for-each-ref", "refs/heads/", "--format="+format)
	if err != nil {
		return nil, err
	}
	var refs []BranchRef
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x00")
		if len(parts) < 3 {
			continue
		}
		refs = append(refs, BranchRef{Name: parts[0], CommitID: parts[1], Upstream: parts[2]})
	}
	for i := range refs {
		if refs[i].Upstream == "" {
			continue
		}
		ahead, behind, err := AheadBehind(ctx, repoDir, refs[i].Upstream, refs[i].Name)
		if err == nil {
			refs[i].AheadCount, refs[i].BehindCount = ahead, behind
		}
	}
	return refs, nil
}

// AheadBehind returns how many commits `head` is ahead of and behind `base`.
func AheadBehind(ctx context.Context, repoDir, base, head string) (ahead, behind int, err error) {
	out, err := Git(ctx, repoDir, "rev-list", "--left-right", "--count", base+"..."+head)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", out)
	}
	behind, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	ahead, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// CommitTimestamp is one row of batched committer-date metadata.
type CommitTimestamp struct {
	Ref       string
	UnixEpoch int64
}

// BatchCommitTimestamps resolves the committer date (unix epoch) of each ref
// with a single `git log` call, then maps each ref to its commit hash with
// one `git rev-parse` per ref.
func BatchCommitTimestamps(ctx context.Context, repoDir string, refs []string) (map[string]int64, error) {
	if len(refs) == 0 {
		return map[string]int64{}, nil
	}
	args := append([]string{"log", "--no-walk", "--date=unix", "--format=%H %cd"}, refs...)
	out, err := Git(ctx, repoDir, args...)
	if err != nil {
		return nil, err
	}
	byHash := map[string]int64{}
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		if ts, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			byHash[fields[0]] = ts
		}
	}
	// Resolve each requested ref (may be a branch name, not a hash) to its hash.
	result := make(map[string]int64, len(refs))
	for _, ref := range refs {
		hash, err := Git(ctx, repoDir, "rev-parse", ref)
		if err != nil {
			continue
		}
		if ts, ok := byHash[string(hash)]; ok {
			result[ref] = ts
		}
	}
	return result, nil
}

// MergeBase returns the merge base of a and b.
func MergeBase(ctx context.Context, repoDir, a, b string) (string, error) {
	out, err := Git(ctx, repoDir, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// IsAncestor reports whether ancestor is an ancestor of descendant (or equal).
func IsAncestor(ctx context.Context, repoDir, ancestor, descendant string) (bool, error) {
	err := GitRun(ctx, repoDir, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	// merge-base --is-ancestor exits 1 (no stderr) for "not an ancestor" and
	// >1 for a real error; RunContext folds both into err, so re-probe with
	// rev-parse to distinguish "not an ancestor" from "bad ref".
	if _, perr := Git(ctx, repoDir, "rev-parse", "--verify", ancestor); perr != nil {
		return false, perr
	}
	if _, perr := Git(ctx, repoDir, "rev-parse", "--verify", descendant); perr != nil {
		return false, perr
	}
	return false, nil
}

// DiffShortstat is the parsed result of `git diff --shortstat`.
type DiffShortstat struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// Empty reports whether the diff touched nothing.
func (d DiffShortstat) Empty() bool {
	return d.FilesChanged == 0 && d.Insertions == 0 && d.Deletions == 0
}

// DiffStat returns the shortstat of the three-dot diff between base and head.
func DiffStat(ctx context.Context, repoDir, base, head string) (DiffShortstat, error) {
	out, err := Git(ctx, repoDir, "diff", "--shortstat", base+"..."+head)
	if err != nil {
		return DiffShortstat{}, err
	}
	return parseShortstat(string(out)), nil
}

func parseShortstat(s string) DiffShortstat {
	var d DiffShortstat
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(part, "file"):
			d.FilesChanged = n
		case strings.Contains(part, "insertion"):
			d.Insertions = n
		case strings.Contains(part, "deletion"):
			d.Deletions = n
		}
	}
	return d
}

// TreesEqual reports whether head and base point at identical trees, the
// strongest "already merged" signal: true even after a squash-merge that
// changes the commit graph but reproduces the same file contents.
func TreesEqual(ctx context.Context, repoDir, base, head string) (bool, error) {
	baseTree, err := Git(ctx, repoDir, "rev-parse", base+"^{tree}")
	if err != nil {
		return false, err
	}
	headTree, err := Git(ctx, repoDir, "rev-parse", head+"^{tree}")
	if err != nil {
		return false, err
	}
	return string(baseTree) == string(headTree), nil
}

// MergeTreeConflicts probes whether merging head into base would conflict,
// without touching the working tree or index (uses `git merge-tree`).
// Returns the conflicting paths, empty if the merge would be clean.
func MergeTreeConflicts(ctx context.Context, repoDir, base, head string) ([]string, error) {
	out, err := Git(ctx, repoDir, "merge-tree", "--write-tree", base, head)
	if err == nil {
		return nil, nil
	}
	// git merge-tree exits non-zero on conflicts and prints the conflicted
	// paths as part of its structured output; RunContext already folded
	// stderr into err, so fall back to re-running with --name-only semantics
	// via the legacy three-way form for the path list.
	lines, lerr := GitLines(ctx, repoDir, "merge-tree", base, head)
	if lerr != nil {
		return nil, err
	}
	var conflicts []string
	for _, l := range lines {
		if strings.Contains(l, "changed in both") || strings.HasPrefix(l, "added in both") {
			conflicts = append(conflicts, l)
		}
	}
	if conflicts == nil {
		conflicts = []string{"conflict"}
	}
	return conflicts, nil
}

// IsDirty reports whether repoDir has uncommitted changes (staged or not).
func IsDirty(ctx context.Context, repoDir string) bool {
	out, err := Git(ctx, repoDir, "status", "--porcelain")
	if err != nil {
		return false
	}
	return len(out) > 0
}

// Stash creates a stash entry (including untracked files) with message msg
// and returns how many files it captured.
func Stash(ctx context.Context, repoDir, msg string) (int, error) {
	if err := GitRun(ctx, repoDir, "stash", "push", "-u", "-m", msg); err != nil {
		return 0, fmt.Errorf("stashing changes in %s: %w", repoDir, err)
	}
	lines, err := GitLines(ctx, repoDir, "stash", "show", "--include-untracked", "--name-only")
	if err != nil {
		return 0, nil
	}
	count := 0
	for _, l := range lines {
		if l != "" {
			count++
		}
	}
	return count, nil
}

// StashPop applies and drops the most recent stash entry.
func StashPop(ctx context.Context, repoDir string) error {
	if err := GitRun(ctx, repoDir, "stash", "pop"); err != nil {
		return fmt.Errorf("restoring stash in %s: %w", repoDir, err)
	}
	return nil
}

// HasRemote reports whether repoDir has a remote named name.
func HasRemote(ctx context.Context, repoDir, name string) bool {
	remotes, err := GitLines(ctx, repoDir, "remote")
	if err != nil {
		return false
	}
	for _, r := range remotes {
		if r == name {
			return true
		}
	}
	return false
}
