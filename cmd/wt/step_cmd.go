package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/mergepipeline"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/preserve"
)

// newStepCmd groups the individual merge-pipeline stages so each can be run
// standalone, outside a full `wt merge`.
func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "step",
		Short:   "Run a single merge-pipeline stage",
		GroupID: GroupStep,
	}
	cmd.AddCommand(
		newStepStageCmd("commit", mergepipeline.StageFlags{Commit: true}),
		newStepStageCmd("squash", mergepipeline.StageFlags{Commit: true, Squash: true}),
		newStepStageCmd("rebase", mergepipeline.StageFlags{Rebase: true}),
		newStepStageCmd("push", mergepipeline.StageFlags{Push: true}),
		newCopyIgnoredCmd(),
		newForEachCmd(),
	)
	return cmd
}

func newStepStageCmd(name string, stages mergepipeline.StageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <target>",
		Short: fmt.Sprintf("Run only the %s stage against <target>", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			sourceBranch := currentBranch(cc.ctx, cc.repo.Path())
			pipeline := mergepipeline.New(cc.repo, mergepipeline.Options{
				SourcePath:   cc.repo.Path(),
				SourceBranch: sourceBranch,
				TargetBranch: target,
				GitCommonDir: cc.commonDir,
				Stages:       stages,
				Stage:        mergepipeline.StageKind(cc.cfg.Commit.Stage),
				LLM:          llmBridge(cc),
				Hooks:        cc.hooks,
				Directive:    cc.directive,
				Verbose:      verbose,
			})
			if err := pipeline.Run(cc.ctx); err != nil {
				return err
			}
			output.FromContext(cc.ctx).Printf("%s: done\n", name)
			return nil
		},
	}
}

func newCopyIgnoredCmd() *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "copy-ignored",
		Short: "Copy git-ignored files matching preserve patterns into this worktree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			dest := target
			if dest == "" {
				dest = cc.repo.Path()
			}
			source, err := preserve.FindSourceWorktree(cc.ctx, cc.commonDir, dest)
			if err != nil {
				return err
			}
			copied, err := preserve.PreserveFiles(cc.ctx, cc.cfg.Preserve, source, dest)
			if err != nil {
				return err
			}
			printer := output.FromContext(cc.ctx)
			for _, f := range copied {
				printer.Printf("copied %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Worktree to copy files into (default: current)")
	return cmd
}

func newForEachCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "for-each -- <command...>",
		Short: "Run a shell command in every worktree concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			worktrees, err := gitexec.ListWorktrees(cc.ctx, cc.repo.Path())
			if err != nil {
				return err
			}
			printer := output.FromContext(cc.ctx)

			g, ctx := errgroup.WithContext(cc.ctx)
			if workers > 0 {
				g.SetLimit(workers)
			}
			shellCmd := strings.Join(args, " ")
			for _, wt := range worktrees {
				wt := wt
				g.Go(func() error {
					out, runErr := gitexec.OutputContext(ctx, wt.Path, "sh", "-c", shellCmd)
					if runErr != nil {
						printer.Printf("%s: %v\n", wt.Path, runErr)
						return nil
					}
					if len(out) > 0 {
						printer.Printf("%s:\n%s\n", wt.Path, out)
					}
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Maximum concurrent commands (0 = unbounded)")
	return cmd
}
