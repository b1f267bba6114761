package switchplan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/raphi011/wt/internal/gitrepo"
)

func TestOriginRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:raphi011/wt.git", "wt"},
		{"https://github.com/raphi011/wt.git", "wt"},
		{"https://github.com/raphi011/wt", "wt"},
		{"wt", "wt"},
	}
	for _, tt := range tests {
		if got := originRepoName(tt.url); got != tt.want {
			t.Errorf("originRepoName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSuggestBranchesNotAGitRepo(t *testing.T) {
	// ForEachLocalBranch shells out to git; outside a repo it errors, and
	// suggestBranches must degrade to nil rather than panic.
	repo := gitrepo.New(context.Background(), t.TempDir())
	if got := suggestBranches(context.Background(), repo, "feature"); got != nil {
		t.Errorf("suggestBranches() outside a git repo = %v, want nil", got)
	}
}

func TestClobberPathIfOccupiedAbsentPath(t *testing.T) {
	dir := t.TempDir()
	backup, needed := clobberPathIfOccupied(filepath.Join(dir, "does-not-exist"))
	if needed {
		t.Errorf("expected no clobber needed for absent path, got backup=%q", backup)
	}
}

func TestClobberPathIfOccupiedExistingPath(t *testing.T) {
	dir := t.TempDir()
	backup, needed := clobberPathIfOccupied(dir)
	if !needed {
		t.Fatal("expected clobber needed for an existing directory")
	}
	if backup != dir+".bak" {
		t.Errorf("clobberPathIfOccupied() backup = %q", backup)
	}
}

func TestBaseName(t *testing.T) {
	if got := baseName("/a/b/c"); got != "c" {
		t.Errorf("baseName() = %q", got)
	}
	if got := baseName("plain"); got != "plain" {
		t.Errorf("baseName() = %q", got)
	}
}
