package listcollector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/wt/internal/gitexec"
)

// staleBehindThreshold is the default "behind the default branch" count past
// which a branch's expensive tasks are skipped (step 7 of 4.G).
const staleBehindThreshold = 50

func behindThreshold() int {
	if v := os.Getenv("WORKTRUNK_STALE_BEHIND_THRESHOLD"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			return n
		}
	}
	return staleBehindThreshold
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotANumber
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

var errNotANumber = errors.New("not a number")

// Options configures a single collection run.
type Options struct {
	RepoDir        string
	DefaultBranch  string
	IncludeBranches bool
	IncludeRemotes bool
	WorkerLimit    int // 0 = errgroup default (unbounded subject to semaphore in gitexec)
	DrainDeadline  time.Duration
	Renderer       Renderer // nil = collect silently (non-TTY / --format=json)

	// RepoURL and CIPlatform gate TaskCIStatus: both must be set for PR/MR
	// status to be queried via the forge CLI ("github" or "gitlab").
	RepoURL   string
	CIPlatform string
	// URLTemplate gates TaskURLStatus: a text/template string rendered per
	// item (branch, repo) and probed for reachability when non-empty.
	URLTemplate string
}

// Warning is a non-fatal error surfaced alongside the finished listing.
type Warning struct {
	ItemIndex int
	Kind      TaskKind
	Err       error
}

// Result is the finished listing: every item with its deferred fields filled
// in (to the extent tasks completed before the drain deadline), plus any
// non-fatal warnings and a column-hide count for the summary footer.
type Result struct {
	Items    []*ListItem
	Warnings []Warning
	TimedOut bool
}

// Collect runs the full ListCollector pipeline (spec 4.G, steps 1-10):
// parallel global fetch, batched timestamps, sort, skeleton render, stale
// skip, task fan-out, progressive drain, finalize.
func Collect(ctx context.Context, opts Options) (*Result, error) {
	if opts.DrainDeadline == 0 {
		opts.DrainDeadline = 30 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)

	var worktrees []gitexec.Worktree
	var localBranches []gitexec.BranchRef
	var isBare bool

	g.Go(func() error {
		wts, err := gitexec.ListWorktrees(gctx, opts.RepoDir)
		worktrees = wts
		return err
	})
	if opts.IncludeBranches {
		g.Go(func() error {
			refs, err := gitexec.ForEachLocalBranch(gctx, opts.RepoDir)
			localBranches = refs
			return err
		})
	}
	g.Go(func() error {
		out, err := gitexec.Git(gctx, opts.RepoDir, "rev-parse", "--is-bare-repository")
		isBare = string(out) == "true"
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := buildItems(worktrees, localBranches)

	// Batched timestamps (step 2): collect every HEAD commit id up front.
	var shas []string
	for _, it := range items {
		if it.Head != "" {
			shas = append(shas, it.Head)
		}
	}
	timestamps, _ := gitexec.BatchCommitTimestamps(ctx, opts.RepoDir, shas)

	primaryWorktree, _ := canonicalPrimaryWorktree(opts.RepoDir, isBare)
	sortItems(items, timestamps, primaryWorktree)
	for i, it := range items {
		it.Index = i
	}

	if opts.Renderer != nil {
		opts.Renderer.RenderSkeleton(items)
	}

	applyStaleSkip(ctx, opts, items)

	tasks := buildTasks(items, opts)
	sortTasksNetworkLast(tasks)

	results := make(chan TaskResult, len(tasks))
	runTasks(ctx, opts, items, tasks, results)

	return drain(opts, items, tasks, results)
}

func buildItems(worktrees []gitexec.Worktree, branches []gitexec.BranchRef) []*ListItem {
	var items []*ListItem
	seenBranch := map[string]bool{}
	for _, wt := range worktrees {
		it := &ListItem{
			Head:   wt.Head,
			Branch: wt.Branch,
			Kind:   KindWorktree,
			Data: &WorktreeData{
				Path:     wt.Path,
				Locked:   wt.Locked,
				Prunable: wt.Prunable,
				Detached: wt.Branch == "",
			},
		}
		if wt.Prunable {
			it.SkipTasks = true
		}
		items = append(items, it)
		if wt.Branch != "" {
			seenBranch[wt.Branch] = true
		}
	}
	for _, b := range branches {
		if seenBranch[b.Name] {
			continue // already represented by its worktree row
		}
		items = append(items, &ListItem{
			Head:   b.CommitID,
			Branch: b.Name,
			Kind:   KindBranch,
		})
	}
	return items
}

func canonicalPrimaryWorktree(repoDir string, isBare bool) (string, error) {
	if isBare {
		// Bare repos have no single "main worktree"; callers compare against
		// the default-branch worktree instead, resolved by gitrepo.
		return "", nil
	}
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// sortItems puts worktrees (main first, then by timestamp descending) ahead
// of branches (timestamp descending), per step 3. The current worktree gets
// no special position.
func sortItems(items []*ListItem, timestamps map[string]int64, primaryWorktree string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Kind == KindWorktree && b.Kind != KindWorktree {
			return true
		}
		if a.Kind != KindWorktree && b.Kind == KindWorktree {
			return false
		}
		if a.Kind == KindWorktree && b.Kind == KindWorktree {
			aMain := a.Data != nil && primaryWorktree != "" && a.Data.Path == primaryWorktree
			bMain := b.Data != nil && primaryWorktree != "" && b.Data.Path == primaryWorktree
			if aMain != bMain {
				return aMain
			}
		}
		return timestamps[a.Head] > timestamps[b.Head]
	})
}

// applyStaleSkip marks expensive tasks as skipped for branches sufficiently
// behind the default branch (step 7). It queries ahead/behind against the
// default branch with one AheadBehind call per item; nothing is batched.
func applyStaleSkip(ctx context.Context, opts Options, items []*ListItem) {
	threshold := behindThreshold()
	for _, it := range items {
		if it.SkipTasks || it.Branch == "" || opts.DefaultBranch == "" {
			continue
		}
		_, behind, err := gitexec.AheadBehind(ctx, opts.RepoDir, opts.DefaultBranch, it.Branch)
		if err != nil {
			continue
		}
		it.AheadBehindVsMain = &AheadBehind{Behind: behind}
		if behind > threshold {
			it.staleSkipExpensive = true
		}
	}
}

func buildTasks(items []*ListItem, opts Options) []Task {
	var tasks []Task
	for _, it := range items {
		if it.SkipTasks {
			continue
		}
		kinds := []TaskKind{TaskCommit, TaskIsOrphan, TaskUpstreamStatus}
		if it.Kind == KindWorktree {
			kinds = append(kinds, TaskWorkingTree)
		}
		kinds = append(kinds, TaskAheadBehind, TaskTreesMatch, TaskIsAncestor, TaskWouldMergeAdd, TaskBranchDiff)
		if opts.RepoURL != "" && opts.CIPlatform != "" {
			kinds = append(kinds, TaskCIStatus)
		}
		if opts.URLTemplate != "" {
			kinds = append(kinds, TaskURLStatus)
		}
		for _, k := range kinds {
			if it.staleSkipExpensive && expensiveTasks[k] {
				continue
			}
			tasks = append(tasks, Task{ItemIndex: it.Index, Kind: k})
		}
	}
	return tasks
}

// sortTasksNetworkLast orders tasks so purely local git queries run first and
// network-bound lookups (CI status, URL reachability) drain last (step 8).
func sortTasksNetworkLast(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return !networkTasks[tasks[i].Kind] && networkTasks[tasks[j].Kind]
	})
}

func runTasks(ctx context.Context, opts Options, items []*ListItem, tasks []Task, results chan<- TaskResult) {
	go func() {
		defer close(results)
		g, gctx := errgroup.WithContext(ctx)
		if opts.WorkerLimit > 0 {
			g.SetLimit(opts.WorkerLimit)
		}
		for _, t := range tasks {
			t := t
			item := items[t.ItemIndex]
			g.Go(func() error {
				value, err := runTask(gctx, opts, item, t.Kind)
				results <- TaskResult{ItemIndex: t.ItemIndex, Kind: t.Kind, Value: value, Err: err}
				return nil // errors travel via TaskResult, never fail the group
			})
		}
		_ = g.Wait()
	}()
}
