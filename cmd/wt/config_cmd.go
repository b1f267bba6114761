package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/config"
	"github.com/raphi011/wt/internal/directive"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/shellintegration"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration and shell integration",
		GroupID: GroupConfig,
	}
	cmd.AddCommand(newConfigShellCmd())
	cmd.AddCommand(newConfigCreateCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigStateCmd())
	return cmd
}

func newConfigShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Install or inspect the shell wrapper",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "init <bash|zsh|fish>",
		Short:     "Print the shell wrapper function for the given shell",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := shellintegration.Script(shellintegration.Shell(args[0]), "wt")
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether shell integration is active for this invocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := shellintegration.Detect(
				directive.FromEnv() != nil,
				os.Args[0],
				"wt",
				os.Getenv("GIT_PREFIX") != "" && os.Getenv("GIT_EXEC_PATH") != "",
			)
			printer := output.FromContext(cmd.Context())
			if status.Active {
				printer.Println("shell integration active")
				return nil
			}
			printer.Println(shellintegration.WarningMessage(status))
			printer.Println(shellintegration.Hint(status))
			return nil
		},
	})
	return cmd
}

func newConfigCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Scaffold a project config file at .config/wt.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir := config.WorkDirFromContext(cmd.Context())
			root, err := gitexec.Git(cmd.Context(), workDir, "rev-parse", "--show-toplevel")
			if err != nil {
				return fmt.Errorf("not inside a git repository: %w", err)
			}
			path := config.ProjectConfigPath(string(root))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(projectConfigTemplate), 0o644); err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Printf("Created %s\n", path)
			return nil
		},
	}
}

const projectConfigTemplate = `# worktrunk project configuration — see "wt config show" for the merged result.

[switch]
worktree_format = "{repo}-{branch}"

[merge]
strategy = "squash"

# [hooks.test]
# command = "go test ./..."
# on = ["pre-merge"]
# approval = "ask"
`

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return fmt.Errorf("no configuration loaded")
			}
			printer := output.FromContext(cmd.Context())
			printer.Printf("worktree_dir = %q\n", cfg.WorktreeDir)
			printer.Printf("switch.worktree_format = %q\n", cfg.Switch.WorktreeFormat)
			printer.Printf("switch.base_ref = %q\n", cfg.Switch.BaseRef)
			printer.Printf("merge.strategy = %q\n", cfg.Merge.Strategy)
			printer.Printf("remove.stale_behind_threshold = %d\n", cfg.Remove.StaleBehindThreshold)
			printer.Printf("list.stale_days = %d\n", cfg.List.StaleDays)
			printer.Printf("forge.default = %q\n", cfg.Forge.Default)
			for _, key := range cfg.Unknown {
				if hint := config.SchemaKeyHint(key); hint != "" {
					printer.Printf("warning: unknown key %q (did you mean %s?)\n", key, hint)
					continue
				}
				printer.Printf("warning: unknown key %q\n", key)
			}
			return nil
		},
	}
}

func newConfigStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print persisted per-repo state (default branch, switch history)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			printer := output.FromContext(cmd.Context())
			defaultBranch, _ := cc.repo.DefaultBranch()
			printer.Printf("worktrunk.default-branch = %s\n", defaultBranch)
			if prev, ok := cc.repo.SwitchPrevious(); ok {
				printer.Printf("worktrunk.history = %s\n", prev)
			}
			return nil
		},
	}
}
