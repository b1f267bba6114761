package listcollector

import "time"

// ItemKind distinguishes a worktree row from a plain branch row.
type ItemKind string

const (
	KindWorktree ItemKind = "worktree"
	KindBranch   ItemKind = "branch"
)

// OperationState reports an in-progress git operation detected in a worktree.
type OperationState string

const (
	OperationNone     OperationState = "none"
	OperationRebase   OperationState = "rebase"
	OperationMerge    OperationState = "merge"
	OperationConflict OperationState = "conflicts"
)

// MainState classifies a branch's relationship to the default branch.
type MainState string

const (
	MainStateIsMain     MainState = "is_main"
	MainStateOrphan     MainState = "orphan"
	MainStateConflict   MainState = "would_conflict"
	MainStateEmpty      MainState = "empty"
	MainStateSameCommit MainState = "same_commit"
	MainStateIntegrated MainState = "integrated"
	MainStateDiverged   MainState = "diverged"
	MainStateAhead      MainState = "ahead"
	MainStateBehind      MainState = "behind"
)

// IntegrationReason explains why MainState is "integrated". Only meaningful
// when MainState == MainStateIntegrated.
type IntegrationReason string

const (
	ReasonAncestor         IntegrationReason = "ancestor"
	ReasonTreesMatch        IntegrationReason = "trees_match"
	ReasonNoAddedChanges    IntegrationReason = "no_added_changes"
	ReasonMergeAddsNothing  IntegrationReason = "merge_adds_nothing"
)

// WorkingTreeDiff summarizes uncommitted changes in a worktree.
type WorkingTreeDiff struct {
	Staged   int
	Modified int
	Untracked int
	Renamed  int
	Deleted  int
	Added    int // diff insertions
	Removed  int // diff deletions
}

// Empty reports whether the working tree has no changes of any kind.
func (d WorkingTreeDiff) Empty() bool {
	return d.Staged == 0 && d.Modified == 0 && d.Untracked == 0 && d.Renamed == 0 && d.Deleted == 0
}

// CommitDetails is the resolved commit a branch or worktree HEAD points at.
type CommitDetails struct {
	SHA       string
	ShortSHA  string
	Message   string
	Timestamp time.Time
}

// RemoteStatus reports a branch's relationship to its tracked upstream.
type RemoteStatus struct {
	Name   string
	Branch string
	Ahead  int
	Behind int
}

// CIStatus is the result of a CI-status lookup, when `[ci]` is configured.
type CIStatus struct {
	Status string // lowercased PR/MR state, e.g. "open", "merged", "closed"
	Source string // forge platform, "github" or "gitlab"
	Stale  bool
	URL    string
}

// WorktreeData is carried by items with Kind == KindWorktree.
type WorktreeData struct {
	Path                  string
	IsMain                bool
	IsCurrent             bool
	IsPrevious            bool
	Detached              bool
	Locked                bool
	Prunable              bool
	WorkingTreeDiff       WorkingTreeDiff
	ActiveGitOperation    OperationState
	BranchWorktreeMismatch bool
}

// ListItem is one row in the listing, identity fields populated
// synchronously before any task queues, deferred fields filled in as task
// results drain. Identity fields never change after creation; each deferred
// field is written at most once per run, except AheadBehindVsMain, which
// applyStaleSkip may pre-fill before its task result overwrites it.
type ListItem struct {
	Index  int
	Head   string
	Branch string
	Kind   ItemKind
	Data   *WorktreeData // non-nil iff Kind == KindWorktree

	// Deferred fields — set by TaskResult application (see above).
	CommitDetails     *CommitDetails
	AheadBehindVsMain *AheadBehind
	BranchDiffStats   *WorkingTreeDiff
	TreesMatch        *bool
	HasFileChanges    *bool
	IsAncestorOfTarget *bool
	WouldMergeAdd     *bool
	IsOrphan          *bool
	UpstreamStatus    *RemoteStatus
	PRStatus          *CIStatus
	URL               string
	URLActive         bool

	MainState         MainState
	IntegrationReason IntegrationReason
	OperationState    OperationState
	StatusSymbols     string
	Display           string

	SkipTasks bool // prunable items and explicit skips never queue tasks

	staleSkipExpensive bool // step 7: behind-threshold heuristic skips expensive tasks
}

// AheadBehind is a directed pair of commit counts.
type AheadBehind struct {
	Ahead  int
	Behind int
}

// TaskKind enumerates the deferred-field computations a Task can perform.
type TaskKind string

const (
	TaskCommit         TaskKind = "commit"
	TaskAheadBehind    TaskKind = "ahead_behind"
	TaskBranchDiff     TaskKind = "branch_diff"
	TaskWorkingTree    TaskKind = "working_tree"
	TaskTreesMatch     TaskKind = "trees_match"
	TaskIsAncestor     TaskKind = "is_ancestor"
	TaskWouldMergeAdd  TaskKind = "would_merge_add"
	TaskIsOrphan       TaskKind = "is_orphan"
	TaskUpstreamStatus TaskKind = "upstream_status"
	TaskCIStatus       TaskKind = "ci_status"
	TaskURLStatus      TaskKind = "url_status"
)

// expensive marks tasks skipped by the stale-branch heuristic (step 7).
var expensiveTasks = map[TaskKind]bool{
	TaskWorkingTree:   true,
	TaskIsAncestor:    true,
	TaskWouldMergeAdd: true,
	TaskBranchDiff:    true,
}

// networkTasks run last in the fan-out sort (step 8: network_tasks_last).
var networkTasks = map[TaskKind]bool{
	TaskCIStatus:  true,
	TaskURLStatus: true,
}

// Task is one unit of deferred work, addressed to an ListItem by index.
type Task struct {
	ItemIndex int
	Kind      TaskKind
}

// TaskResult is produced by exactly one worker per registered Task.
type TaskResult struct {
	ItemIndex int
	Kind      TaskKind
	Value     any
	Err       error
}
