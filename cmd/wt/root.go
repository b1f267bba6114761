package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/approval"
	"github.com/raphi011/wt/internal/config"
	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/log"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/ui/styles"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	chdir      string
	configPath string

	// approvalStore is loaded once in Execute and consulted by hook.Engine
	// instances constructed per command.
	approvalStore *approval.Store
)

// Command group IDs for organizing help output.
const (
	GroupCore   = "core"
	GroupStep   = "step"
	GroupConfig = "config"
)

var rootCmd = &cobra.Command{
	Use:   "wt",
	Short: "Manage many parallel git worktrees",
	Long: `wt manages a fleet of git worktrees for one repository: switching
between branches and pull/merge requests, listing their status at a
glance, and merging and removing them once integrated.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		return gitexec.RunContext(cmd.Context(), "", "git", "rev-parse", "--is-inside-work-tree")
	},
}

// Execute wires the process environment (cwd, config, logger, output,
// approvals, signal-cancellable context) and runs the command tree.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt: failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	if chdir != "" {
		workDir = chdir
	}
	ctx = config.WithWorkDir(ctx, workDir)

	if configPath != "" {
		os.Setenv("WORKTRUNK_CONFIG_PATH", configPath)
	}
	repoRoot := discoverRepoRoot(ctx, workDir)
	cfg, unknown, err := config.Load(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt: %v\n", err)
		os.Exit(1)
	}
	for _, key := range unknown {
		fmt.Fprintf(os.Stderr, "wt: warning: unknown config key %q\n", key)
	}
	ctx = config.WithConfig(ctx, &cfg)

	logger := log.New(os.Stderr, verbose, quiet)
	ctx = log.WithLogger(ctx, logger)
	ctx = output.WithPrinter(ctx, os.Stdout)

	approvalsPath, err := approval.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt: %v\n", err)
		os.Exit(1)
	}
	approvalStore, err = approval.Load(approvalsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt: %v\n", err)
		os.Exit(1)
	}

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

// discoverRepoRoot resolves the toplevel for workDir, or "" if workDir
// isn't inside a repository (config.Load then skips project config).
func discoverRepoRoot(ctx context.Context, workDir string) string {
	out, err := gitexec.Git(ctx, workDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return ""
	}
	root := string(out)
	for len(root) > 0 && (root[len(root)-1] == '\n' || root[len(root)-1] == '\r') {
		root = root[:len(root)-1]
	}
	return root
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVarP(&chdir, "chdir", "C", "", "Run as if wt was started in <dir>")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the user config file")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupStep, Title: "Pipeline Step Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newSwitchCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newStepCmd())
	rootCmd.AddCommand(newHookCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
