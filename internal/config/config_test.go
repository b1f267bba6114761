package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Switch.WorktreeFormat != DefaultWorktreeFormat {
		t.Errorf("WorktreeFormat = %q, want %q", cfg.Switch.WorktreeFormat, DefaultWorktreeFormat)
	}
	if cfg.Forge.Default != "github" {
		t.Errorf("Forge.Default = %q, want github", cfg.Forge.Default)
	}
	if cfg.Remove.StaleBehindThreshold != 50 {
		t.Errorf("Remove.StaleBehindThreshold = %d, want 50", cfg.Remove.StaleBehindThreshold)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	t.Setenv("WORKTRUNK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))
	cfg, unknown, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
	if cfg.Switch.WorktreeFormat != DefaultWorktreeFormat {
		t.Errorf("got defaults mutated: %+v", cfg)
	}
}

func TestLoadUserAndProjectMerge(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "config.toml")
	err := os.WriteFile(userPath, []byte(`
default_sort = "branch"

[merge]
strategy = "rebase"

[hooks.global]
command = "echo global"
on = ["post-switch"]
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("WORKTRUNK_CONFIG_PATH", userPath)

	repoRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(repoRoot, ".config"), 0o755); err != nil {
		t.Fatal(err)
	}
	projPath := ProjectConfigPath(repoRoot)
	err = os.WriteFile(projPath, []byte(`
[merge]
strategy = "squash"

[hooks.project]
command = "echo project"
on = ["post-switch"]
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(repoRoot)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultSort != "branch" {
		t.Errorf("DefaultSort = %q, want branch (from user config)", cfg.DefaultSort)
	}
	if cfg.Merge.Strategy != "squash" {
		t.Errorf("Merge.Strategy = %q, want squash (project overrides user)", cfg.Merge.Strategy)
	}
	if _, ok := cfg.Hooks.Hooks["global"]; !ok {
		t.Error("expected global hook to survive merge")
	}
	if _, ok := cfg.Hooks.Hooks["project"]; !ok {
		t.Error("expected project hook to be appended")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("WORKTRUNK_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("WORKTRUNK_COMMIT__GENERATION__COMMAND", "llm-cli")
	t.Setenv("WORKTRUNK_MERGE__STRATEGY", "rebase")

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Commit.GenerationCommand != "llm-cli" {
		t.Errorf("Commit.GenerationCommand = %q, want llm-cli", cfg.Commit.GenerationCommand)
	}
	if cfg.Merge.Strategy != "rebase" {
		t.Errorf("Merge.Strategy = %q, want rebase", cfg.Merge.Strategy)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Forge.Default = "bitbucket"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for invalid forge.default")
	}
}

func TestSchemaKeyHint(t *testing.T) {
	if hint := SchemaKeyHint("strategy"); hint == "" {
		t.Error("expected a hint for the 'strategy' leaf key")
	}
}
