package listcollector

import "time"

// JSONItem is the `--format=json` serialization of one ListItem, matching
// the explicit schema in spec 4.G.
type JSONItem struct {
	Branch            string        `json:"branch"`
	Path              string        `json:"path,omitempty"`
	Kind              ItemKind      `json:"kind"`
	Commit            *jsonCommit   `json:"commit,omitempty"`
	WorkingTree       *jsonWorking  `json:"working_tree,omitempty"`
	MainState         MainState     `json:"main_state,omitempty"`
	IntegrationReason IntegrationReason `json:"integration_reason,omitempty"`
	OperationState    OperationState `json:"operation_state"`
	Main              jsonAheadBehind `json:"main"`
	Remote            *jsonRemote   `json:"remote,omitempty"`
	Worktree          *jsonWorktreeState `json:"worktree,omitempty"`
	IsMain            bool          `json:"is_main"`
	IsCurrent         bool          `json:"is_current"`
	IsPrevious        bool          `json:"is_previous"`
	CI                *jsonCI       `json:"ci,omitempty"`
	URL               string        `json:"url,omitempty"`
	URLActive         bool          `json:"url_active,omitempty"`
	Statusline        string        `json:"statusline"`
	Symbols           string        `json:"symbols"`
}

type jsonCommit struct {
	SHA       string    `json:"sha"`
	ShortSHA  string    `json:"short_sha"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type jsonWorking struct {
	Staged    int        `json:"staged"`
	Modified  int        `json:"modified"`
	Untracked int        `json:"untracked"`
	Renamed   int        `json:"renamed"`
	Deleted   int        `json:"deleted"`
	Diff      jsonDiff   `json:"diff"`
}

type jsonDiff struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

type jsonAheadBehind struct {
	Ahead int `json:"ahead"`
	Behind int `json:"behind"`
	Diff  *jsonDiff `json:"diff,omitempty"`
}

type jsonRemote struct {
	Name   string `json:"name"`
	Branch string `json:"branch"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
}

type jsonWorktreeState struct {
	State    string `json:"state"`
	Reason   string `json:"reason,omitempty"`
	Detached bool   `json:"detached"`
}

type jsonCI struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Stale  bool   `json:"stale"`
	URL    string `json:"url"`
}

// ToJSON converts a ListItem into its JSON wire representation.
func ToJSON(it *ListItem) JSONItem {
	j := JSONItem{
		Branch:            it.Branch,
		Kind:              it.Kind,
		MainState:         it.MainState,
		IntegrationReason: it.IntegrationReason,
		OperationState:    it.OperationState,
		URL:               it.URL,
		URLActive:         it.URLActive,
		Statusline:        it.Display,
		Symbols:           it.StatusSymbols,
	}
	if it.CommitDetails != nil {
		j.Commit = &jsonCommit{
			SHA:       it.CommitDetails.SHA,
			ShortSHA:  it.CommitDetails.ShortSHA,
			Message:   it.CommitDetails.Message,
			Timestamp: it.CommitDetails.Timestamp,
		}
	}
	if it.AheadBehindVsMain != nil {
		j.Main.Ahead = it.AheadBehindVsMain.Ahead
		j.Main.Behind = it.AheadBehindVsMain.Behind
	}
	if it.BranchDiffStats != nil {
		j.Main.Diff = &jsonDiff{Added: it.BranchDiffStats.Added, Deleted: it.BranchDiffStats.Removed}
	}
	if it.UpstreamStatus != nil {
		j.Remote = &jsonRemote{
			Name:   it.UpstreamStatus.Name,
			Branch: it.UpstreamStatus.Branch,
			Ahead:  it.UpstreamStatus.Ahead,
			Behind: it.UpstreamStatus.Behind,
		}
	}
	if it.PRStatus != nil {
		j.CI = &jsonCI{Status: it.PRStatus.Status, Source: it.PRStatus.Source, Stale: it.PRStatus.Stale, URL: it.PRStatus.URL}
	}
	if it.Data != nil {
		j.Path = it.Data.Path
		j.IsMain = it.Data.IsMain
		j.IsCurrent = it.Data.IsCurrent
		j.IsPrevious = it.Data.IsPrevious
		j.OperationState = it.Data.ActiveGitOperation
		j.WorkingTree = &jsonWorking{
			Staged:    it.Data.WorkingTreeDiff.Staged,
			Modified:  it.Data.WorkingTreeDiff.Modified,
			Untracked: it.Data.WorkingTreeDiff.Untracked,
			Renamed:   it.Data.WorkingTreeDiff.Renamed,
			Deleted:   it.Data.WorkingTreeDiff.Deleted,
			Diff:      jsonDiff{Added: it.Data.WorkingTreeDiff.Added, Deleted: it.Data.WorkingTreeDiff.Removed},
		}
		state := "ok"
		if it.Data.BranchWorktreeMismatch {
			state = "mismatch"
		}
		j.Worktree = &jsonWorktreeState{State: state, Detached: it.Data.Detached}
	}
	return j
}
