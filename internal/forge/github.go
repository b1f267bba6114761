package forge

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/wt/internal/cmd"
)

// GitHub implements Forge for GitHub repositories using the gh CLI.
type GitHub struct{}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Check verifies that gh CLI is available and authenticated
func (g *GitHub) Check() error {
	_, err := exec.LookPath("gh")
	if err != nil {
		return fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")
	}

	c := exec.Command("gh", "auth", "status")
	if err := cmd.Run(c); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no accounts") {
			return fmt.Errorf("gh not authenticated: please run 'gh auth login'")
		}
		return fmt.Errorf("gh auth check failed: %s", errMsg)
	}

	return nil
}

// GetPRForBranch fetches PR info for a branch using gh CLI
func (g *GitHub) GetPRForBranch(repoURL, branch string) (*PRInfo, error) {
	c := exec.Command("gh", "pr", "list",
		"-R", repoURL,
		"--head", branch,
		"--state", "all",
		"--json", "number,state,isDraft,url,author,comments,reviewDecision",
		"--limit", "1")

	output, err := cmd.Output(c)
	if err != nil {
		return nil, fmt.Errorf("gh command failed: %v", err)
	}

	var prs []struct {
		Number  int    `json:"number"`
		State   string `json:"state"`
		IsDraft bool   `json:"isDraft"`
		URL     string `json:"url"`
		Author  struct {
			Login string `json:"login"`
		} `json:"author"`
		Comments       []any  `json:"comments"` // just need the count
		ReviewDecision string `json:"reviewDecision"`
	}
	if err := json.Unmarshal(output, &prs); err != nil {
		return nil, fmt.Errorf("failed to parse gh output: %w", err)
	}

	if len(prs) == 0 {
		// No PR found - return marker indicating we checked
		return &PRInfo{
			Fetched:  true,
			CachedAt: time.Now(),
		}, nil
	}

	pr := prs[0]
	return &PRInfo{
		Number:       pr.Number,
		State:        pr.State, // GitHub already uses OPEN, MERGED, CLOSED
		IsDraft:      pr.IsDraft,
		URL:          pr.URL,
		Author:       pr.Author.Login,
		CommentCount: len(pr.Comments),
		HasReviews:   pr.ReviewDecision != "",
		IsApproved:   pr.ReviewDecision == "APPROVED",
		CachedAt:     time.Now(),
		Fetched:      true,
	}, nil
}
