package listcollector

import "time"

// drain runs the progressive drain loop (step 9): apply each TaskResult to
// its item as it arrives, re-rendering the affected row, until every task
// has reported or the drain deadline elapses (step 9/edge cases).
func drain(opts Options, items []*ListItem, tasks []Task, results <-chan TaskResult) (*Result, error) {
	expected := len(tasks)
	completed := 0
	satisfied := make(map[int]map[TaskKind]bool, len(items))

	var warnings []Warning
	timedOut := false

	deadline := time.After(opts.DrainDeadline)

loop:
	for completed < expected {
		select {
		case r, ok := <-results:
			if !ok {
				break loop
			}
			completed++
			byKind := satisfied[r.ItemIndex]
			if byKind == nil {
				byKind = map[TaskKind]bool{}
				satisfied[r.ItemIndex] = byKind
			}
			if byKind[r.Kind] {
				// Result for an already-satisfied index/kind pair: dropped,
				// counted (edge case in 4.G).
				continue
			}
			byKind[r.Kind] = true

			item := items[r.ItemIndex]
			if r.Err != nil {
				warnings = append(warnings, Warning{ItemIndex: r.ItemIndex, Kind: r.Kind, Err: r.Err})
			} else {
				applyResult(item, r)
				recomputeStatus(item, opts)
			}
			if opts.Renderer != nil {
				opts.Renderer.RenderRow(item, completed, expected)
			}
		case <-deadline:
			timedOut = true
			break loop
		}
	}

	if opts.Renderer != nil {
		opts.Renderer.Finalize(items, warnings, timedOut)
	}

	return &Result{Items: items, Warnings: warnings, TimedOut: timedOut}, nil
}

func applyResult(item *ListItem, r TaskResult) {
	if r.Value == nil {
		return
	}
	switch r.Kind {
	case TaskCommit:
		if v, ok := r.Value.(*CommitDetails); ok {
			item.CommitDetails = v
		}
	case TaskWorkingTree:
		if v, ok := r.Value.(WorkingTreeDiff); ok && item.Data != nil {
			item.Data.WorkingTreeDiff = v
			hasChanges := !v.Empty()
			item.HasFileChanges = &hasChanges
		}
	case TaskAheadBehind:
		if v, ok := r.Value.(AheadBehind); ok {
			item.AheadBehindVsMain = &v
		}
	case TaskBranchDiff:
		if v, ok := r.Value.(WorkingTreeDiff); ok {
			item.BranchDiffStats = &v
		}
	case TaskTreesMatch:
		if v, ok := r.Value.(bool); ok {
			item.TreesMatch = &v
		}
	case TaskIsAncestor:
		if v, ok := r.Value.(bool); ok {
			item.IsAncestorOfTarget = &v
		}
	case TaskWouldMergeAdd:
		if v, ok := r.Value.(bool); ok {
			item.WouldMergeAdd = &v
		}
	case TaskIsOrphan:
		if v, ok := r.Value.(bool); ok {
			item.IsOrphan = &v
		}
	case TaskUpstreamStatus:
		if v, ok := r.Value.(*RemoteStatus); ok {
			item.UpstreamStatus = v
		}
	case TaskCIStatus:
		if v, ok := r.Value.(*CIStatus); ok {
			item.PRStatus = v
		}
	case TaskURLStatus:
		if v, ok := r.Value.(urlResult); ok {
			item.URL = v.URL
			item.URLActive = v.Active
		}
	}
}

// recomputeStatus derives MainState, IntegrationReason and StatusSymbols from
// whatever deferred fields have arrived so far. Idempotent: safe to call
// repeatedly as more facts land (invariant 2 in spec 3).
func recomputeStatus(item *ListItem, opts Options) {
	item.MainState, item.IntegrationReason = classifyMainState(item, opts)
	item.StatusSymbols = statusSymbols(item)
}

func classifyMainState(item *ListItem, opts Options) (MainState, IntegrationReason) {
	if item.Data != nil && item.Data.IsMain {
		return MainStateIsMain, ""
	}
	if item.IsOrphan != nil && *item.IsOrphan {
		return MainStateOrphan, ""
	}
	if item.AheadBehindVsMain != nil {
		ab := item.AheadBehindVsMain
		if ab.Ahead == 0 && ab.Behind == 0 {
			return MainStateSameCommit, ""
		}
	}
	if item.IsAncestorOfTarget != nil && *item.IsAncestorOfTarget {
		return MainStateIntegrated, ReasonAncestor
	}
	if item.TreesMatch != nil && *item.TreesMatch {
		return MainStateIntegrated, ReasonTreesMatch
	}
	if item.BranchDiffStats != nil && item.BranchDiffStats.Added == 0 && item.BranchDiffStats.Removed == 0 {
		return MainStateIntegrated, ReasonNoAddedChanges
	}
	if item.WouldMergeAdd != nil && !*item.WouldMergeAdd {
		return MainStateIntegrated, ReasonMergeAddsNothing
	}
	if item.AheadBehindVsMain != nil {
		ab := item.AheadBehindVsMain
		switch {
		case ab.Ahead > 0 && ab.Behind > 0:
			return MainStateDiverged, ""
		case ab.Ahead > 0:
			return MainStateAhead, ""
		case ab.Behind > 0:
			return MainStateBehind, ""
		}
	}
	return "", ""
}

// statusSymbols renders a compact glyph summary: dirty state, operation
// state, main-state. Unknown facts render as "·".
func statusSymbols(item *ListItem) string {
	sym := ""
	if item.Data != nil {
		switch {
		case item.HasFileChanges != nil && *item.HasFileChanges:
			sym += "*"
		case item.HasFileChanges == nil:
			sym += "·"
		}
		if item.Data.ActiveGitOperation != "" && item.Data.ActiveGitOperation != OperationNone {
			sym += "!"
		}
	}
	switch item.MainState {
	case MainStateIntegrated:
		sym += "✓"
	case MainStateDiverged:
		sym += "⇕"
	case MainStateAhead:
		sym += "↑"
	case MainStateBehind:
		sym += "↓"
	case "":
		sym += "·"
	}
	return sym
}
