package llmbridge

import (
	"context"
	"strings"
	"testing"
)

func TestRenderPromptTruncatesLongDiff(t *testing.T) {
	b := &Bridge{MaxDiffBytes: 10}
	out, err := b.RenderPrompt(PromptInput{Diff: "0123456789abcdef"})
	if err != nil {
		t.Fatalf("RenderPrompt: %v", err)
	}
	if !strings.Contains(out, "truncated") {
		t.Errorf("expected truncation marker, got %q", out)
	}
}

func TestGenerateReturnsTrimmedOutput(t *testing.T) {
	b := &Bridge{Command: "echo '  feat: add thing  '"}
	got, err := b.Generate(context.Background(), PromptInput{Diff: "diff"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "feat: add thing" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestGenerateErrorsOnEmptyOutput(t *testing.T) {
	b := &Bridge{Command: "true"}
	_, err := b.Generate(context.Background(), PromptInput{Diff: "diff"})
	if err == nil {
		t.Fatal("expected error for empty stdout")
	}
}

func TestGenerateErrorsOnNonZeroExit(t *testing.T) {
	b := &Bridge{Command: "echo oops 1>&2; exit 1"}
	_, err := b.Generate(context.Background(), PromptInput{Diff: "diff"})
	if err == nil || !strings.Contains(err.Error(), "oops") {
		t.Fatalf("expected error containing stderr, got %v", err)
	}
}

func TestDeterministicFallbackSingular(t *testing.T) {
	if got := DeterministicFallback("feature", 1); got != "wip: update on feature" {
		t.Errorf("DeterministicFallback() = %q", got)
	}
}
