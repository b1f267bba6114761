package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/gitexec"
	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/removeengine"
)

func newRemoveCmd() *cobra.Command {
	var force bool
	var deleteBranch bool

	cmd := &cobra.Command{
		Use:     "remove <branch>",
		Short:   "Remove a worktree and optionally its branch",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := args[0]
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}

			worktrees, err := gitexec.ListWorktrees(cc.ctx, cc.repo.Path())
			if err != nil {
				return err
			}
			path := ""
			for _, w := range worktrees {
				if w.Branch == branch {
					path = w.Path
					break
				}
			}
			if path == "" {
				return fmt.Errorf("no worktree checked out for branch %q", branch)
			}

			if !force {
				defaultBranch, err := cc.repo.DefaultBranch()
				if err != nil {
					return err
				}
				reason, err := removeengine.ClassifyBranchSafety(cc.ctx, cc.repo.Path(), branch, defaultBranch)
				if err != nil {
					return err
				}
				if reason == removeengine.ReasonUnsafe {
					return fmt.Errorf("%s has unmerged changes relative to %s; pass --force to remove anyway", branch, defaultBranch)
				}
			}

			preRemove := hooks.Resolve(cc.cfg, hooks.PhasePreRemove, "")
			if err := cc.hooks.EnsureApproved(preRemove, promptApproval); err != nil {
				return err
			}
			if err := cc.hooks.Run(cc.ctx, preRemove, nil, verbose); err != nil {
				return err
			}

			if err := removeengine.RemoveWorktree(cc.ctx, cc.repo.Path(), path, removeengine.RemoveOptions{
				Force:      force,
				Foreground: true,
				LogDir:     cc.hooks.LogDir,
				Branch:     branch,
			}); err != nil {
				return err
			}

			if deleteBranch {
				deleteArgs := []string{"branch", "-d", branch}
				if force {
					deleteArgs[1] = "-D"
				}
				if err := gitexec.GitRun(cc.ctx, cc.repo.Path(), deleteArgs...); err != nil {
					return err
				}
			}

			postRemove := hooks.Resolve(cc.cfg, hooks.PhasePostRemove, "")
			_ = cc.hooks.Run(cc.ctx, postRemove, nil, verbose)

			output.FromContext(cc.ctx).Printf("Removed worktree %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the safety check and ignore untracked files")
	cmd.Flags().BoolVarP(&deleteBranch, "delete-branch", "d", false, "Also delete the local branch")
	return cmd
}
