package approval

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// deprecatedAliases maps an old template variable name to its canonical
// replacement, so approvals recorded before a rename still match.
var deprecatedAliases = map[string]string{
	"worktree":      "worktree_path",
	"repo_dir":      "repo_path",
	"main_repo":     "repo_path",
	"worktree-dir":  "worktree_path",
	"repo-dir":      "repo_path",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize strips surrounding whitespace, collapses internal whitespace
// runs, and rewrites deprecated template variable names to their canonical
// form, so an approval recorded against an old-form command still matches
// the same command expressed with renamed variables.
func Normalize(template string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(template), " ")
	for old, canonical := range deprecatedAliases {
		s = strings.ReplaceAll(s, "{{ "+old+" }}", "{{ "+canonical+" }}")
		s = strings.ReplaceAll(s, "{{"+old+"}}", "{{"+canonical+"}}")
	}
	return s
}

// Store persists, per project, the set of hook command templates the user
// has approved. Approvals are read once per process into memory; Approve
// writes through to disk immediately (atomic write-temp-then-rename under a
// cross-process flock) but the in-memory set is what Allowed consults for
// the rest of the run.
type Store struct {
	path     string
	projects map[string]map[string]bool // project_id -> normalized template -> approved
}

// fileFormat is the on-disk shape of approvals.toml.
type fileFormat struct {
	Projects map[string][]string `toml:"projects"`
}

// DefaultPath returns ~/.config/worktrunk/approvals.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "worktrunk", "approvals.toml"), nil
}

// Load reads the approval store from path, creating an empty in-memory
// store if the file doesn't exist yet.
func Load(path string) (*Store, error) {
	s := &Store{path: path, projects: map[string]map[string]bool{}}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for project, templates := range f.Projects {
		set := make(map[string]bool, len(templates))
		for _, t := range templates {
			set[Normalize(t)] = true
		}
		s.projects[project] = set
	}
	return s, nil
}

// Allowed reports whether template is already approved for projectID. The
// in-memory set is authoritative for the process, so approvals granted
// earlier in the same run (before any persistence) are honored immediately.
func (s *Store) Allowed(projectID, template string) bool {
	set, ok := s.projects[projectID]
	if !ok {
		return false
	}
	return set[Normalize(template)]
}

// Approve records template as approved for projectID, both in memory and
// persisted to disk.
func (s *Store) Approve(projectID, template string) error {
	norm := Normalize(template)
	if s.projects[projectID] == nil {
		s.projects[projectID] = map[string]bool{}
	}
	s.projects[projectID][norm] = true
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	f := fileFormat{Projects: map[string][]string{}}
	for project, set := range s.projects {
		templates := make([]string, 0, len(set))
		for t := range set {
			templates = append(templates, t)
		}
		f.Projects[project] = templates
	}

	tmp := s.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := toml.NewEncoder(file)
	if err := enc.Encode(f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// PendingDecision is a single command awaiting user approval.
type PendingDecision struct {
	HookName string
	Template string
}

// Decision is the outcome of the grouped approval prompt.
type Decision int

const (
	DecisionDeny Decision = iota
	DecisionApproveOne
	DecisionApproveAll
)
