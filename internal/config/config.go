package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type cfgKey struct{}
type workDirKey struct{}

// WithConfig returns a new context with cfg stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, cfgKey{}, cfg)
}

// FromContext returns the config from context, or nil if none is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(cfgKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

// WithWorkDir returns a new context with the working directory stored in it.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// WorkDirFromContext returns the working directory from context, falling
// back to os.Getwd() if not stored.
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok && dir != "" {
		return dir
	}
	wd, _ := os.Getwd()
	return wd
}

// ProjectConfigFileName is the per-repo project config, relative to the
// repo root's .config directory.
const ProjectConfigFileName = "wt.toml"

// Hook defines a lifecycle hook.
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"` // lifecycle phases this hook runs on (empty = only via explicit `wt hook`)
	Enabled     *bool    `toml:"enabled"`
	Approval    string   `toml:"approval"` // "ask" (default), "always", "never"
	Source      string   `toml:"-"`        // "user" or "project", stamped during Load
}

// IsEnabled reports whether the hook is enabled (default true).
func (h *Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook definitions, keyed by name, parsed from [hooks.NAME].
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"`
}

// ForgeRule maps a glob pattern to forge settings.
type ForgeRule struct {
	Pattern string `toml:"pattern"`
	Type    string `toml:"type"` // "github" or "gitlab"
	User    string `toml:"user"`
}

// ForgeConfig configures PR/MR provider selection.
type ForgeConfig struct {
	Default    string      `toml:"default"`
	DefaultOrg string      `toml:"default_org"`
	Rules      []ForgeRule `toml:"rules"`
}

// CommitConfig configures the LLM bridge used by `wt step commit`/`squash`.
type CommitConfig struct {
	GenerationCommand string `toml:"generation_command"`
	Template          string `toml:"template"`
	SquashTemplate    string `toml:"squash_template"`
	Stage             string `toml:"stage"` // "all" (default), "tracked" or "none"
	RequireOutput     bool   `toml:"require_output"`
}

// MergeConfig configures `wt merge`.
type MergeConfig struct {
	Strategy string `toml:"strategy"` // "squash", "rebase", "merge"
}

// RemoveConfig configures `wt remove`.
type RemoveConfig struct {
	DeleteLocalBranches bool `toml:"delete_local_branches"`
	StaleBehindThreshold int `toml:"stale_behind_threshold"`
}

// ListConfig configures `wt list` display.
type ListConfig struct {
	URL       string `toml:"url"`
	StaleDays int    `toml:"stale_days"`
}

// CIConfig configures CI status surfacing in list output.
type CIConfig struct {
	Platform string `toml:"platform"`
}

// PreserveConfig configures git-ignored file carry-over into new worktrees.
type PreserveConfig struct {
	Patterns []string `toml:"patterns"`
	Exclude  []string `toml:"exclude"`
}

// SwitchConfig configures `wt switch`.
type SwitchConfig struct {
	WorktreeFormat string `toml:"worktree_format"`
	BaseRef        string `toml:"base_ref"` // "local" or "remote"
	AutoFetch      bool   `toml:"auto_fetch"`
	SetUpstream    *bool  `toml:"set_upstream"`
}

// ShouldSetUpstream reports whether upstream tracking should be set
// (default true).
func (c *SwitchConfig) ShouldSetUpstream() bool {
	return c.SetUpstream == nil || *c.SetUpstream
}

// Config is worktrunk's merged configuration.
type Config struct {
	WorktreeDir   string            `toml:"worktree_dir"`
	DefaultSort   string            `toml:"default_sort"`
	Switch        SwitchConfig      `toml:"switch"`
	Commit        CommitConfig      `toml:"commit"`
	Forge         ForgeConfig       `toml:"forge"`
	Merge         MergeConfig       `toml:"merge"`
	Remove        RemoveConfig      `toml:"remove"`
	List          ListConfig        `toml:"list"`
	CI            CIConfig          `toml:"ci"`
	Preserve      PreserveConfig    `toml:"preserve"`
	Hosts         map[string]string `toml:"hosts"`
	Hooks         HooksConfig       `toml:"-"`

	// Unknown holds top-level keys that did not map onto any known field,
	// surfaced by `wt config show` as warnings.
	Unknown []string `toml:"-"`
}

// DefaultWorktreeFormat is the default worktree folder naming template.
const DefaultWorktreeFormat = "{repo}-{branch}"

// Default returns the built-in configuration (load order step 1).
func Default() Config {
	return Config{
		Switch: SwitchConfig{WorktreeFormat: DefaultWorktreeFormat, BaseRef: "remote"},
		Forge:  ForgeConfig{Default: "github"},
		Merge:  MergeConfig{Strategy: "squash"},
		Remove: RemoveConfig{StaleBehindThreshold: 50},
		List:   ListConfig{StaleDays: 14},
	}
}

// UserConfigPath returns the user config path: $WORKTRUNK_CONFIG_PATH if
// set, otherwise ~/.config/worktrunk/config.toml.
func UserConfigPath() (string, error) {
	if p := os.Getenv("WORKTRUNK_CONFIG_PATH"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "worktrunk", "config.toml"), nil
}

// ProjectConfigPath returns <repoRoot>/.config/wt.toml.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".config", ProjectConfigFileName)
}

// rawConfig mirrors Config but keeps hooks as a raw map so [hooks.NAME]
// sections can be decoded manually after the structural fields parse.
type rawConfig struct {
	WorktreeDir string         `toml:"worktree_dir"`
	DefaultSort string         `toml:"default_sort"`
	Switch      SwitchConfig   `toml:"switch"`
	Commit      CommitConfig   `toml:"commit"`
	Forge       ForgeConfig    `toml:"forge"`
	Merge       MergeConfig    `toml:"merge"`
	Remove      RemoveConfig   `toml:"remove"`
	List        ListConfig     `toml:"list"`
	CI          CIConfig       `toml:"ci"`
	Preserve    PreserveConfig `toml:"preserve"`
	Hosts       map[string]string `toml:"hosts"`
	Hooks       map[string]any    `toml:"hooks"`
}

// Load performs the full load order: defaults, user TOML, WORKTRUNK_ env
// overrides, then project TOML for repoRoot (empty repoRoot skips step 4).
func Load(repoRoot string) (Config, []string, error) {
	cfg := Default()

	userPath, err := UserConfigPath()
	if err != nil {
		return cfg, nil, err
	}
	var unknown []string
	if data, err := os.ReadFile(userPath); err == nil {
		parsed, u, perr := parseTOML(data)
		if perr != nil {
			return cfg, nil, fmt.Errorf("parsing %s: %w", userPath, perr)
		}
		cfg = parsed
		stampHookSource(cfg.Hooks.Hooks, "user")
		unknown = append(unknown, u...)
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, nil, fmt.Errorf("reading %s: %w", userPath, err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, nil, err
	}

	if repoRoot != "" {
		projPath := ProjectConfigPath(repoRoot)
		if data, err := os.ReadFile(projPath); err == nil {
			proj, u, perr := parseTOML(data)
			if perr != nil {
				return cfg, nil, fmt.Errorf("parsing %s: %w", projPath, perr)
			}
			stampHookSource(proj.Hooks.Hooks, "project")
			mergeProject(&cfg, proj)
			unknown = append(unknown, u...)
		} else if !errors.Is(err, os.ErrNotExist) {
			return cfg, nil, fmt.Errorf("reading %s: %w", projPath, err)
		}
	}

	cfg.Unknown = unknown
	return cfg, unknown, nil
}

func parseTOML(data []byte) (Config, []string, error) {
	var raw rawConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, nil, err
	}

	cfg := Config{
		WorktreeDir: raw.WorktreeDir,
		DefaultSort: raw.DefaultSort,
		Switch:      raw.Switch,
		Commit:      raw.Commit,
		Forge:       raw.Forge,
		Merge:       raw.Merge,
		Remove:      raw.Remove,
		List:        raw.List,
		CI:          raw.CI,
		Preserve:    raw.Preserve,
		Hosts:       raw.Hosts,
		Hooks:       parseHooksConfig(raw.Hooks),
	}
	if cfg.Switch.WorktreeFormat == "" {
		cfg.Switch.WorktreeFormat = DefaultWorktreeFormat
	}
	if cfg.Switch.BaseRef == "" {
		cfg.Switch.BaseRef = "remote"
	}
	if cfg.Forge.Default == "" {
		cfg.Forge.Default = "github"
	}
	if cfg.Merge.Strategy == "" {
		cfg.Merge.Strategy = "squash"
	}
	if cfg.Remove.StaleBehindThreshold == 0 {
		cfg.Remove.StaleBehindThreshold = 50
	}
	if cfg.List.StaleDays == 0 {
		cfg.List.StaleDays = 14
	}

	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return cfg, unknown, nil
}

// stampHookSource tags every hook in hooks with source ("user" or
// "project"), so the HookEngine can tell which hooks need approval.
func stampHookSource(hooks map[string]Hook, source string) {
	for name, h := range hooks {
		h.Source = source
		hooks[name] = h
	}
}

// parseHooksConfig extracts hook definitions from the raw [hooks.NAME] map.
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{Hooks: make(map[string]Hook)}
	for name, value := range raw {
		table, ok := value.(map[string]any)
		if !ok {
			continue
		}
		h := Hook{Approval: "ask"}
		if v, ok := table["command"].(string); ok {
			h.Command = v
		}
		if v, ok := table["description"].(string); ok {
			h.Description = v
		}
		if v, ok := table["approval"].(string); ok {
			h.Approval = v
		}
		if on, ok := table["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					h.On = append(h.On, s)
				}
			}
		}
		if v, ok := table["enabled"].(bool); ok {
			h.Enabled = &v
		}
		hc.Hooks[name] = h
	}
	return hc
}

// mergeProject merges a parsed project Config onto base: scalars and
// overridable sections replace the global value; hooks append (global
// hooks first, then project hooks with the same name overriding).
func mergeProject(base *Config, proj Config) {
	if proj.WorktreeDir != "" {
		base.WorktreeDir = proj.WorktreeDir
	}
	if proj.DefaultSort != "" {
		base.DefaultSort = proj.DefaultSort
	}
	if proj.Switch.WorktreeFormat != "" && proj.Switch.WorktreeFormat != DefaultWorktreeFormat {
		base.Switch.WorktreeFormat = proj.Switch.WorktreeFormat
	}
	if proj.Switch.BaseRef != "" {
		base.Switch.BaseRef = proj.Switch.BaseRef
	}
	if proj.Switch.SetUpstream != nil {
		base.Switch.SetUpstream = proj.Switch.SetUpstream
	}
	base.Switch.AutoFetch = base.Switch.AutoFetch || proj.Switch.AutoFetch
	if proj.Commit.GenerationCommand != "" {
		base.Commit = proj.Commit
	}
	if proj.Merge.Strategy != "" {
		base.Merge.Strategy = proj.Merge.Strategy
	}
	if proj.List.URL != "" {
		base.List.URL = proj.List.URL
	}
	if proj.CI.Platform != "" {
		base.CI.Platform = proj.CI.Platform
	}
	if len(proj.Preserve.Patterns) > 0 {
		base.Preserve = proj.Preserve
	}
	for host, forge := range proj.Hosts {
		if base.Hosts == nil {
			base.Hosts = map[string]string{}
		}
		base.Hosts[host] = forge
	}
	if base.Hooks.Hooks == nil {
		base.Hooks.Hooks = map[string]Hook{}
	}
	for name, hook := range proj.Hooks.Hooks {
		base.Hooks.Hooks[name] = hook
	}
}

// applyEnvOverrides applies WORKTRUNK_ environment variable overrides.
// A single underscore separates the prefix from the first key segment;
// double underscores separate nested key segments, and the segments after
// the section are joined with "_" to name the key, so
// WORKTRUNK_COMMIT__GENERATION__COMMAND overrides commit.generation_command.
func applyEnvOverrides(cfg *Config) error {
	const prefix = "WORKTRUNK_"
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, prefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key, val := kv[len(prefix):eq], kv[eq+1:]
		path := strings.Split(strings.ToLower(key), "__")
		applyOverride(cfg, path, val)
	}
	return nil
}

func applyOverride(cfg *Config, path []string, val string) {
	if len(path) == 0 {
		return
	}
	switch path[0] {
	case "worktree_dir":
		cfg.WorktreeDir = val
	case "default_sort":
		cfg.DefaultSort = val
	case "commit":
		if len(path) < 2 {
			return
		}
		switch strings.Join(path[1:], "_") {
		case "generation_command":
			cfg.Commit.GenerationCommand = val
		case "template":
			cfg.Commit.Template = val
		case "squash_template":
			cfg.Commit.SquashTemplate = val
		case "stage":
			cfg.Commit.Stage = val
		}
	case "merge":
		if len(path) >= 2 && path[1] == "strategy" {
			cfg.Merge.Strategy = val
		}
	case "switch":
		if len(path) < 2 {
			return
		}
		switch strings.Join(path[1:], "_") {
		case "worktree_format":
			cfg.Switch.WorktreeFormat = val
		case "base_ref":
			cfg.Switch.BaseRef = val
		}
	case "forge":
		if len(path) >= 2 && path[1] == "default" {
			cfg.Forge.Default = val
		}
	}
}

// GetForgeTypeForRepo returns the forge type for a repo spec, matching
// rules in order and falling back to the configured default.
func (c *ForgeConfig) GetForgeTypeForRepo(repoSpec string) string {
	for _, rule := range c.Rules {
		if matchPattern(rule.Pattern, repoSpec) && rule.Type != "" {
			return rule.Type
		}
	}
	return c.Default
}

// matchPattern supports "*", a "prefix/*" glob, and exact match.
func matchPattern(pattern, repoSpec string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(repoSpec, strings.TrimSuffix(pattern, "*"))
	default:
		return pattern == repoSpec
	}
}
