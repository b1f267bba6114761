package wttemplate

import "testing"

func TestExpandBasic(t *testing.T) {
	vars := Variables{"branch": "feature/x", "repo": "wt"}
	got, err := Expand("echo {{ branch }} in {{ repo }}", vars, "post-switch")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := "echo 'feature/x' in 'wt'"
	if got != want {
		t.Errorf("Expand() = %q, want %q", got, want)
	}
}

func TestExpandRawFilterSkipsQuoting(t *testing.T) {
	vars := Variables{"x": "a b"}
	got, err := Expand("{{ x | raw }}", vars, "post-switch")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "a b" {
		t.Errorf("Expand() = %q, want unquoted %q", got, "a b")
	}
}

func TestExpandSanitizeFilter(t *testing.T) {
	vars := Variables{"branch": "feature/x"}
	got, err := Expand("{{ branch | sanitize }}", vars, "post-switch")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "'feature-x'" {
		t.Errorf("Expand() = %q, want %q", got, "'feature-x'")
	}
}

func TestExpandUnknownVariableErrors(t *testing.T) {
	_, err := Expand("{{ nope }}", Variables{}, "post-switch")
	if err == nil {
		t.Fatal("expected error for unknown variable")
	}
}

func TestExpandConditional(t *testing.T) {
	got, err := Expand("{% if target %}merging into {{ target }}{% endif %}", Variables{"target": "main"}, "pre-merge")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "merging into 'main'" {
		t.Errorf("Expand() = %q", got)
	}

	got, err = Expand("{% if target %}merging into {{ target }}{% endif %}", Variables{"target": ""}, "pre-merge")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "" {
		t.Errorf("Expand() with empty target = %q, want empty", got)
	}
}

func TestSanitizeDBStableAndValid(t *testing.T) {
	a := sanitizeDB("123-Feature!")
	b := sanitizeDB("123-feature!")
	if a == b {
		t.Error("different inputs should not collide after sanitizeDB")
	}
	if a[0] >= '0' && a[0] <= '9' {
		t.Errorf("sanitizeDB result must not start with a digit: %q", a)
	}
}

func TestHashPortRange(t *testing.T) {
	p := hashPort("some/worktree/path")
	if p == "" {
		t.Fatal("expected non-empty port")
	}
}
