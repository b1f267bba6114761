package hooks

import (
	"testing"

	"github.com/raphi011/wt/internal/config"
)

func TestMatchesFilter(t *testing.T) {
	cases := []struct {
		name, filter string
		source       Source
		want         bool
	}{
		{"build", "", SourceUser, true},
		{"build", "user", SourceUser, true},
		{"build", "project", SourceUser, false},
		{"build", "user:build", SourceUser, true},
		{"build", "user:other", SourceUser, false},
		{"build", "user:", SourceUser, true},
		{"build", "project:", SourceProject, true},
		{"build", "build", SourceUser, true},
		{"build", "other", SourceUser, false},
	}
	for _, c := range cases {
		got := matchesFilter(c.name, c.source, c.filter)
		if got != c.want {
			t.Errorf("matchesFilter(%q, %q, %q) = %v, want %v", c.name, c.source, c.filter, got, c.want)
		}
	}
}

func TestResolveOrdersUserBeforeProject(t *testing.T) {
	cfg := &config.Config{Hooks: config.HooksConfig{Hooks: map[string]config.Hook{
		"z-user":    {Command: "echo a", On: []string{"post-switch"}, Source: "user"},
		"a-project": {Command: "echo b", On: []string{"post-switch"}, Source: "project"},
	}}}

	specs := Resolve(cfg, PhasePostSwitch, "")
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Source != SourceUser || specs[1].Source != SourceProject {
		t.Errorf("expected user hooks before project hooks, got %+v", specs)
	}
}

func TestResolveSkipsDisabledAndWrongPhase(t *testing.T) {
	disabled := false
	cfg := &config.Config{Hooks: config.HooksConfig{Hooks: map[string]config.Hook{
		"off":        {Command: "echo a", On: []string{"post-switch"}, Enabled: &disabled, Source: "user"},
		"wrongphase": {Command: "echo b", On: []string{"pre-merge"}, Source: "user"},
	}}}

	specs := Resolve(cfg, PhasePostSwitch, "")
	if len(specs) != 0 {
		t.Fatalf("expected 0 specs, got %+v", specs)
	}
}

func TestEnsureApprovedSkipsUserAndNever(t *testing.T) {
	e := &Engine{ProjectID: "proj"}
	specs := []Spec{
		{Name: "u", Source: SourceUser, Command: "echo a"},
		{Name: "never", Source: SourceProject, Command: "echo b", Approval: "never"},
	}
	called := false
	err := e.EnsureApproved(specs, func(pending []Spec) (bool, map[string]bool, error) {
		called = true
		return true, nil, nil
	})
	if err != nil {
		t.Fatalf("EnsureApproved: %v", err)
	}
	if called {
		t.Error("promptFn should not be called when nothing needs approval")
	}
}
