package listcollector

import (
	"context"
	"testing"
)

func TestURLStatusEmptyTemplate(t *testing.T) {
	got, err := urlStatus(context.Background(), Options{URLTemplate: ""}, &ListItem{}, "main")
	if err != nil {
		t.Fatalf("urlStatus() error = %v", err)
	}
	if got.URL != "" || got.Active {
		t.Errorf("urlStatus() = %+v, want empty result", got)
	}
}

func TestURLStatusRendersBranchAndRepo(t *testing.T) {
	opts := Options{URLTemplate: "http://127.0.0.1:1/{{.Repo}}/{{.Branch}}", RepoURL: "myrepo"}
	got, err := urlStatus(context.Background(), opts, &ListItem{}, "feature-x")
	if err != nil {
		t.Fatalf("urlStatus() error = %v", err)
	}
	want := "http://127.0.0.1:1/myrepo/feature-x"
	if got.URL != want {
		t.Errorf("urlStatus() URL = %q, want %q", got.URL, want)
	}
	if got.Active {
		t.Error("urlStatus() Active = true for an unreachable host, want false")
	}
}

func TestURLStatusBadTemplate(t *testing.T) {
	_, err := urlStatus(context.Background(), Options{URLTemplate: "{{.Nope"}, &ListItem{}, "main")
	if err == nil {
		t.Fatal("expected a parse error for malformed template")
	}
}

func TestBuildTasksOmitsCIAndURLWhenUnconfigured(t *testing.T) {
	items := []*ListItem{{Index: 0}}
	tasks := buildTasks(items, Options{})
	for _, task := range tasks {
		if task.Kind == TaskCIStatus || task.Kind == TaskURLStatus {
			t.Errorf("buildTasks() with no CI/URL config queued %v", task.Kind)
		}
	}
}

func TestBuildTasksQueuesCIAndURLWhenConfigured(t *testing.T) {
	items := []*ListItem{{Index: 0}}
	tasks := buildTasks(items, Options{RepoURL: "org/repo", CIPlatform: "github", URLTemplate: "http://x/{{.Branch}}"})
	var hasCI, hasURL bool
	for _, task := range tasks {
		hasCI = hasCI || task.Kind == TaskCIStatus
		hasURL = hasURL || task.Kind == TaskURLStatus
	}
	if !hasCI || !hasURL {
		t.Errorf("buildTasks() hasCI=%v hasURL=%v, want both true", hasCI, hasURL)
	}
}
