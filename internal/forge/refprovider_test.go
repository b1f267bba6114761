package forge

import "testing"

func TestRefPaths(t *testing.T) {
	if got := GitHubRefProvider{}.RefPath(42); got != "refs/pull/42/head" {
		t.Errorf("GitHub RefPath = %q", got)
	}
	if got := GitLabRefProvider{}.RefPath(7); got != "refs/merge-requests/7/head" {
		t.Errorf("GitLab RefPath = %q", got)
	}
}

func TestProviderForDispatchesByKind(t *testing.T) {
	if p := ProviderFor(RefPullRequest); p.Kind() != RefPullRequest {
		t.Errorf("expected PR provider, got %v", p.Kind())
	}
	if p := ProviderFor(RefMergeRequest); p.Kind() != RefMergeRequest {
		t.Errorf("expected MR provider, got %v", p.Kind())
	}
}

func TestLastPathSegment(t *testing.T) {
	if got := lastPathSegment("owner/sub/repo"); got != "repo" {
		t.Errorf("lastPathSegment() = %q", got)
	}
}
