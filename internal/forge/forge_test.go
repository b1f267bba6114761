package forge

import (
	"testing"
)

func TestNormalizeGitLabState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"opened", "OPEN"},
		{"merged", "MERGED"},
		{"closed", "CLOSED"},
		// case insensitivity
		{"OPENED", "OPEN"},
		{"Merged", "MERGED"},
		{"Closed", "CLOSED"},
		// unknown state gets uppercased
		{"unknown", "UNKNOWN"},
		{"custom", "CUSTOM"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got := normalizeGitLabState(tt.input)
			if got != tt.want {
				t.Errorf("normalizeGitLabState(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractGitLabProject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@gitlab.com:group/project.git", "group/project"},
		{"https://gitlab.com/group/project.git", "group/project"},
		{"https://gitlab.com/group/subgroup/project", "group/subgroup/project"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			got := extractGitLabProject(tt.url)
			if got != tt.want {
				t.Errorf("extractGitLabProject(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestGitHub_Name(t *testing.T) {
	t.Parallel()

	gh := &GitHub{}
	if got := gh.Name(); got != "github" {
		t.Errorf("GitHub.Name() = %q, want %q", got, "github")
	}
}

func TestGitLab_Name(t *testing.T) {
	t.Parallel()

	gl := &GitLab{}
	if got := gl.Name(); got != "gitlab" {
		t.Errorf("GitLab.Name() = %q, want %q", got, "gitlab")
	}
}
