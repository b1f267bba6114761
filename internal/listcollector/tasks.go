package listcollector

import (
	"context"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/raphi011/wt/internal/forge"
	"github.com/raphi011/wt/internal/gitexec"
)

// runTask executes a single deferred computation for item and returns the
// value destined for TaskResult.Value (interpreted by applyResult).
func runTask(ctx context.Context, opts Options, item *ListItem, kind TaskKind) (any, error) {
	ref := item.Branch
	if ref == "" {
		ref = item.Head
	}

	switch kind {
	case TaskCommit:
		return commitDetails(ctx, opts.RepoDir, ref)
	case TaskWorkingTree:
		return workingTreeDiff(ctx, item.Data.Path)
	case TaskAheadBehind:
		if opts.DefaultBranch == "" {
			return nil, nil
		}
		ahead, behind, err := gitexec.AheadBehind(ctx, opts.RepoDir, opts.DefaultBranch, ref)
		if err != nil {
			return nil, err
		}
		return AheadBehind{Ahead: ahead, Behind: behind}, nil
	case TaskBranchDiff:
		if opts.DefaultBranch == "" {
			return nil, nil
		}
		stat, err := gitexec.DiffStat(ctx, opts.RepoDir, opts.DefaultBranch, ref)
		if err != nil {
			return nil, err
		}
		return WorkingTreeDiff{Added: stat.Insertions, Removed: stat.Deletions}, nil
	case TaskTreesMatch:
		if opts.DefaultBranch == "" {
			return nil, nil
		}
		return gitexec.TreesEqual(ctx, opts.RepoDir, opts.DefaultBranch, ref)
	case TaskIsAncestor:
		if opts.DefaultBranch == "" {
			return nil, nil
		}
		return gitexec.IsAncestor(ctx, opts.RepoDir, ref, opts.DefaultBranch)
	case TaskWouldMergeAdd:
		if opts.DefaultBranch == "" {
			return nil, nil
		}
		// Merging adds something unless the merge result's tree equals the
		// default branch's own tree.
		merged, err := gitexec.Git(ctx, opts.RepoDir, "merge-tree", "--write-tree", opts.DefaultBranch, ref)
		if err != nil {
			return nil, err
		}
		defaultTree, err := gitexec.Git(ctx, opts.RepoDir, "rev-parse", opts.DefaultBranch+"^{tree}")
		if err != nil {
			return nil, err
		}
		return string(merged) != string(defaultTree), nil
	case TaskIsOrphan:
		return isOrphan(ctx, opts.RepoDir, ref)
	case TaskUpstreamStatus:
		return upstreamStatus(ctx, opts.RepoDir, ref)
	case TaskCIStatus:
		return ciStatus(ctx, opts, ref)
	case TaskURLStatus:
		return urlStatus(ctx, opts, item, ref)
	default:
		return nil, nil
	}
}

func commitDetails(ctx context.Context, repoDir, ref string) (*CommitDetails, error) {
	out, err := gitexec.Git(ctx, repoDir, "log", "-n", "1", "--format=%H%x00%s%x00%ct", ref)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(out), "\x00", 3)
	if len(parts) != 3 {
		return nil, nil
	}
	sha := parts[0]
	short := sha
	if len(short) > 7 {
		short = short[:7]
	}
	var ts time.Time
	if secs, err := parsePositiveInt(parts[2]); err == nil {
		ts = time.Unix(int64(secs), 0)
	}
	return &CommitDetails{SHA: sha, ShortSHA: short, Message: parts[1], Timestamp: ts}, nil
}

func workingTreeDiff(ctx context.Context, worktreePath string) (WorkingTreeDiff, error) {
	lines, err := gitexec.GitLines(ctx, worktreePath, "status", "--porcelain")
	if err != nil {
		return WorkingTreeDiff{}, err
	}
	var d WorkingTreeDiff
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		switch {
		case l[0] == '?' && l[1] == '?':
			d.Untracked++
		case l[0] == 'R' || l[1] == 'R':
			d.Renamed++
		case l[0] == 'D' || l[1] == 'D':
			d.Deleted++
		case l[0] != ' ':
			d.Staged++
		case l[1] != ' ':
			d.Modified++
		}
	}
	return d, nil
}

func isOrphan(ctx context.Context, repoDir, ref string) (bool, error) {
	out, err := gitexec.Git(ctx, repoDir, "log", "--oneline", "-n", "1", ref)
	if err != nil {
		return false, err
	}
	return len(out) == 0, nil
}

// ciStatus queries the configured forge for the PR/MR open against ref,
// surfacing its review state as a CIStatus. A branch without an open PR
// returns nil rather than an error.
func ciStatus(ctx context.Context, opts Options, branch string) (*CIStatus, error) {
	f := forge.ByName(opts.CIPlatform)
	pr, err := f.GetPRForBranch(opts.RepoURL, branch)
	if err != nil {
		return nil, err
	}
	if pr == nil || !pr.Fetched || pr.Number == 0 {
		return nil, nil
	}
	return &CIStatus{
		Status: strings.ToLower(pr.State),
		Source: opts.CIPlatform,
		Stale:  pr.IsStale(),
		URL:    pr.URL,
	}, nil
}

// urlResult carries TaskURLStatus's result into applyResult.
type urlResult struct {
	URL    string
	Active bool
}

// urlStatus renders opts.URLTemplate against the item and probes the
// resulting URL with a HEAD request, bounded to a few seconds so one dead
// link can't stall the whole drain loop past its deadline.
func urlStatus(ctx context.Context, opts Options, item *ListItem, branch string) (urlResult, error) {
	tmpl, err := template.New("url").Parse(opts.URLTemplate)
	if err != nil {
		return urlResult{}, err
	}
	var buf strings.Builder
	data := struct {
		Branch string
		Repo   string
	}{Branch: branch, Repo: opts.RepoURL}
	if err := tmpl.Execute(&buf, data); err != nil {
		return urlResult{}, err
	}
	url := buf.String()
	if url == "" {
		return urlResult{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return urlResult{URL: url}, nil
	}
	client := http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return urlResult{URL: url}, nil
	}
	defer resp.Body.Close()
	return urlResult{URL: url, Active: resp.StatusCode < 400}, nil
}

func upstreamStatus(ctx context.Context, repoDir, ref string) (*RemoteStatus, error) {
	out, err := gitexec.Git(ctx, repoDir, "rev-parse", "--abbrev-ref", ref+"@{upstream}")
	if err != nil {
		return nil, nil // no upstream configured is not an error condition
	}
	upstream := string(out)
	remote, branch, found := strings.Cut(upstream, "/")
	if !found {
		remote, branch = "origin", upstream
	}
	ahead, behind, err := gitexec.AheadBehind(ctx, repoDir, upstream, ref)
	if err != nil {
		return &RemoteStatus{Name: remote, Branch: branch}, nil
	}
	return &RemoteStatus{Name: remote, Branch: branch, Ahead: ahead, Behind: behind}, nil
}
