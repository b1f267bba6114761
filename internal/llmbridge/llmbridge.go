package llmbridge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"text/template"
)

// DefaultMaxDiffBytes bounds how much of the diff is embedded in the prompt
// before truncation, keeping the prompt within a reasonable token budget.
const DefaultMaxDiffBytes = 8000

// DefaultPromptTemplate is used when no override is configured.
const DefaultPromptTemplate = `Write a concise, conventional commit message summarizing the
following diff. Match the style of these recent commit subjects where
sensible. Reply with only the commit message, no commentary.

Recent commits:
{{range .RecentSubjects}}- {{.}}
{{end}}
Diff:
{{.Diff}}
`

// PromptInput supplies the values available to the prompt template.
type PromptInput struct {
	Diff           string
	RecentSubjects []string
}

// Bridge generates commit messages via a configured subprocess.
type Bridge struct {
	// Command is a shell command invoked as `sh -c Command`; the rendered
	// prompt is piped to its stdin.
	Command string
	// PromptTemplate overrides DefaultPromptTemplate when non-empty.
	PromptTemplate string
	// MaxDiffBytes overrides DefaultMaxDiffBytes when non-zero.
	MaxDiffBytes int
	// Explicit reports whether Command was explicitly configured by the
	// user (vs. unset) — an explicit command's failure is fatal, with no
	// fallback to the deterministic message.
	Explicit bool
}

// RenderPrompt truncates the diff to MaxDiffBytes and renders PromptTemplate
// (or DefaultPromptTemplate) against it.
func (b *Bridge) RenderPrompt(in PromptInput) (string, error) {
	tmplSrc := b.PromptTemplate
	if tmplSrc == "" {
		tmplSrc = DefaultPromptTemplate
	}
	maxBytes := b.MaxDiffBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxDiffBytes
	}
	diff := in.Diff
	if len(diff) > maxBytes {
		diff = diff[:maxBytes] + "\n... (truncated)"
	}

	t, err := template.New("prompt").Parse(tmplSrc)
	if err != nil {
		return "", fmt.Errorf("invalid commit prompt template: %w", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, PromptInput{Diff: diff, RecentSubjects: in.RecentSubjects}); err != nil {
		return "", fmt.Errorf("rendering commit prompt: %w", err)
	}
	return sb.String(), nil
}

// Generate renders the prompt, invokes Command with it on stdin, and returns
// the trimmed stdout. An empty command means "not configured": the caller
// should use a deterministic fallback instead of calling Generate.
func (b *Bridge) Generate(ctx context.Context, in PromptInput) (string, error) {
	prompt, err := b.RenderPrompt(in)
	if err != nil {
		return "", err
	}

	c := exec.CommandContext(ctx, "sh", "-c", b.Command)
	c.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("commit message generator failed: %s", msg)
		}
		return "", fmt.Errorf("commit message generator failed: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("commit message generator produced no output")
	}
	return out, nil
}

// DeterministicFallback builds a minimal, non-LLM commit message when no
// generator is configured or a non-explicit generator fails.
func DeterministicFallback(branch string, filesChanged int) string {
	if filesChanged == 1 {
		return fmt.Sprintf("wip: update on %s", branch)
	}
	return fmt.Sprintf("wip: update %d files on %s", filesChanged, branch)
}
