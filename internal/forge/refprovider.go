package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/raphi011/wt/internal/cmd"
)

// RefKind distinguishes a pull-request ref from a merge-request ref.
type RefKind string

const (
	RefPullRequest  RefKind = "pr"
	RefMergeRequest RefKind = "mr"
)

// RefInfo describes the fetchable ref for a pr:N / mr:N target, including
// enough fork metadata for SwitchPlanner to configure tracking without
// rejecting cross-repository contributions.
type RefInfo struct {
	Number       int
	HeadRefName  string // the author's branch name, unqualified
	IsFork       bool
	HeadOwner    string // fork owner/namespace, "" when not a fork
	FetchRefPath string // e.g. refs/pull/42/head or refs/merge-requests/42/head
	CloneURL     string // fork's clone URL, used as the push remote for fork branches
}

// RefProvider resolves pr:N / mr:N targets against a specific forge without
// branchless ad hoc prefix parsing — SwitchPlanner dispatches through this
// interface per ref kind rather than special-casing GitHub/GitLab inline.
type RefProvider interface {
	Kind() RefKind
	RefPath(number int) string
	FetchInfo(ctx context.Context, repoURL string, number int) (*RefInfo, error)
}

// GitHubRefProvider resolves pr:N targets via the gh CLI.
type GitHubRefProvider struct{}

func (GitHubRefProvider) Kind() RefKind { return RefPullRequest }

func (GitHubRefProvider) RefPath(number int) string {
	return fmt.Sprintf("refs/pull/%d/head", number)
}

func (GitHubRefProvider) FetchInfo(ctx context.Context, repoURL string, number int) (*RefInfo, error) {
	c := exec.CommandContext(ctx, "gh", "pr", "view",
		fmt.Sprintf("%d", number),
		"-R", repoURL,
		"--json", "headRefName,isCrossRepository,headRepositoryOwner,headRepository")
	output, err := cmd.Output(c)
	if err != nil {
		return nil, fmt.Errorf("gh pr view %d failed: %w", number, err)
	}

	var result struct {
		HeadRefName       string `json:"headRefName"`
		IsCrossRepository bool   `json:"isCrossRepository"`
		HeadRepositoryOwner struct {
			Login string `json:"login"`
		} `json:"headRepositoryOwner"`
		HeadRepository struct {
			Name string `json:"name"`
		} `json:"headRepository"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing gh pr view output: %w", err)
	}
	if result.HeadRefName == "" {
		return nil, fmt.Errorf("PR #%d has no head branch", number)
	}

	info := &RefInfo{
		Number:       number,
		HeadRefName:  result.HeadRefName,
		IsFork:       result.IsCrossRepository,
		FetchRefPath: fmt.Sprintf("refs/pull/%d/head", number),
	}
	if info.IsFork {
		info.HeadOwner = result.HeadRepositoryOwner.Login
		if info.HeadOwner != "" && result.HeadRepository.Name != "" {
			info.CloneURL = fmt.Sprintf("https://github.com/%s/%s.git", info.HeadOwner, result.HeadRepository.Name)
		}
	}
	return info, nil
}

// GitLabRefProvider resolves mr:N targets via the glab CLI.
type GitLabRefProvider struct{}

func (GitLabRefProvider) Kind() RefKind { return RefMergeRequest }

func (GitLabRefProvider) RefPath(number int) string {
	return fmt.Sprintf("refs/merge-requests/%d/head", number)
}

func (GitLabRefProvider) FetchInfo(ctx context.Context, repoURL string, number int) (*RefInfo, error) {
	project := extractGitLabProject(repoURL)
	c := exec.CommandContext(ctx, "glab", "mr", "view",
		fmt.Sprintf("%d", number),
		"-R", project,
		"-F", "json")
	output, err := cmd.Output(c)
	if err != nil {
		return nil, fmt.Errorf("glab mr view %d failed: %w", number, err)
	}

	var result struct {
		SourceBranch      string `json:"source_branch"`
		SourceProjectID   int    `json:"source_project_id"`
		TargetProjectID   int    `json:"target_project_id"`
		SourceProjectPath string `json:"source_project_full_path"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("parsing glab mr view output: %w", err)
	}
	if result.SourceBranch == "" {
		return nil, fmt.Errorf("MR !%d has no source branch", number)
	}

	isFork := result.SourceProjectID != 0 && result.TargetProjectID != 0 && result.SourceProjectID != result.TargetProjectID
	info := &RefInfo{
		Number:       number,
		HeadRefName:  result.SourceBranch,
		IsFork:       isFork,
		FetchRefPath: fmt.Sprintf("refs/merge-requests/%d/head", number),
	}
	if isFork {
		info.HeadOwner = strings.TrimSuffix(result.SourceProjectPath, "/"+lastPathSegment(result.SourceProjectPath))
		if info.HeadOwner != "" {
			info.CloneURL = fmt.Sprintf("https://gitlab.com/%s.git", result.SourceProjectPath)
		}
	}
	return info, nil
}

func lastPathSegment(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) == 0 {
		return p
	}
	return parts[len(parts)-1]
}

// ProviderFor returns the RefProvider for kind.
func ProviderFor(kind RefKind) RefProvider {
	switch kind {
	case RefMergeRequest:
		return GitLabRefProvider{}
	default:
		return GitHubRefProvider{}
	}
}
