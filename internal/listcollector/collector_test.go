package listcollector

import (
	"testing"

	"github.com/raphi011/wt/internal/gitexec"
)

func TestParsePositiveInt(t *testing.T) {
	n, err := parsePositiveInt("123")
	if err != nil || n != 123 {
		t.Fatalf("parsePositiveInt(123) = %d, %v", n, err)
	}
	if _, err := parsePositiveInt("abc"); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestSortTasksNetworkLast(t *testing.T) {
	tasks := []Task{
		{Kind: TaskCIStatus},
		{Kind: TaskCommit},
		{Kind: TaskURLStatus},
		{Kind: TaskAheadBehind},
	}
	sortTasksNetworkLast(tasks)
	for i, task := range tasks {
		if networkTasks[task.Kind] {
			for _, later := range tasks[i:] {
				if !networkTasks[later.Kind] {
					t.Fatalf("non-network task %v found after network task %v", later.Kind, task.Kind)
				}
			}
		}
	}
}

func TestBuildItemsSkipsDuplicateBranches(t *testing.T) {
	worktrees := []gitexec.Worktree{{Path: "/repo", Head: "abc123", Branch: "main"}}
	branches := []gitexec.BranchRef{{Name: "main", CommitID: "abc123"}, {Name: "feature", CommitID: "def456"}}

	items := buildItems(worktrees, branches)
	if len(items) != 2 {
		t.Fatalf("buildItems() produced %d items, want 2 (main deduped, feature kept)", len(items))
	}
	if items[0].Kind != KindWorktree || items[1].Kind != KindBranch {
		t.Errorf("buildItems() kinds = %v, %v", items[0].Kind, items[1].Kind)
	}
}

func TestClassifyMainStateIsMain(t *testing.T) {
	it := &ListItem{Kind: KindWorktree, Data: &WorktreeData{IsMain: true}}
	state, reason := classifyMainState(it, Options{})
	if state != MainStateIsMain || reason != "" {
		t.Errorf("classifyMainState() = %q, %q", state, reason)
	}
}

func TestClassifyMainStateIntegratedByAncestor(t *testing.T) {
	ancestor := true
	it := &ListItem{IsAncestorOfTarget: &ancestor, AheadBehindVsMain: &AheadBehind{Ahead: 3}}
	state, reason := classifyMainState(it, Options{})
	if state != MainStateIntegrated || reason != ReasonAncestor {
		t.Errorf("classifyMainState() = %q, %q", state, reason)
	}
}

func TestClassifyMainStateDiverged(t *testing.T) {
	it := &ListItem{AheadBehindVsMain: &AheadBehind{Ahead: 2, Behind: 3}}
	state, _ := classifyMainState(it, Options{})
	if state != MainStateDiverged {
		t.Errorf("classifyMainState() = %q, want diverged", state)
	}
}

func TestStatusSymbolsUnknownIsMiddleDot(t *testing.T) {
	it := &ListItem{}
	if got := statusSymbols(it); got != "·" {
		t.Errorf("statusSymbols() = %q, want middle dot", got)
	}
}

func TestChooseColumnsAlwaysKeepsBranch(t *testing.T) {
	cols, _ := chooseColumns(1)
	if len(cols) != 1 || cols[0].header != "BRANCH" {
		t.Fatalf("chooseColumns(1) = %+v, want just BRANCH", cols)
	}
}

func TestChooseColumnsWideTerminalKeepsAll(t *testing.T) {
	cols, hidden := chooseColumns(1000)
	if hidden != 0 || len(cols) != len(columns()) {
		t.Errorf("chooseColumns(1000) hidden=%d len=%d, want all columns kept", hidden, len(cols))
	}
}
