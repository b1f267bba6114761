package mergepipeline

import (
	"context"
	"testing"
)

func TestBaseNameMergePipeline(t *testing.T) {
	if got := baseName("/a/b/repo"); got != "repo" {
		t.Errorf("baseName() = %q", got)
	}
	if got := baseName("repo"); got != "repo" {
		t.Errorf("baseName() = %q", got)
	}
}

func TestStashGuardInactiveRestoreIsNoop(t *testing.T) {
	g := &stashGuard{}
	if err := g.restore(context.Background()); err != nil {
		t.Errorf("restore() on inactive guard = %v, want nil", err)
	}
}

func TestPipelineValidateRequiresTargetAndBranch(t *testing.T) {
	ctx := context.Background()
	p := &Pipeline{opts: Options{SourcePath: "/tmp"}}
	if err := p.validate(ctx); err == nil {
		t.Fatal("expected error when TargetBranch is empty")
	}

	p = &Pipeline{opts: Options{SourcePath: "/tmp", TargetBranch: "main"}}
	if err := p.validate(ctx); err == nil {
		t.Fatal("expected error when SourceBranch is empty (detached HEAD)")
	}
}
