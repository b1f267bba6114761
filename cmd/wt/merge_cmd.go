package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/llmbridge"
	"github.com/raphi011/wt/internal/mergepipeline"
	"github.com/raphi011/wt/internal/output"
)

func newMergeCmd() *cobra.Command {
	var deleteBranch bool

	cmd := &cobra.Command{
		Use:     "merge <target>",
		Short:   "Commit, squash, rebase, push and remove the current worktree",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			sourceBranch := currentBranch(cc.ctx, cc.repo.Path())

			preMerge := hooks.Resolve(cc.cfg, hooks.PhasePreMerge, "")
			if err := cc.hooks.EnsureApproved(preMerge, promptApproval); err != nil {
				return err
			}
			preRemove := hooks.Resolve(cc.cfg, hooks.PhasePreRemove, "")
			if err := cc.hooks.EnsureApproved(preRemove, promptApproval); err != nil {
				return err
			}

			pipeline := mergepipeline.New(cc.repo, mergepipeline.Options{
				SourcePath:      cc.repo.Path(),
				SourceBranch:    sourceBranch,
				TargetBranch:    target,
				GitCommonDir:    cc.commonDir,
				Stages:          mergepipeline.StageFlags{Commit: true, Squash: cc.cfg.Merge.Strategy == "squash", Rebase: true, Push: true, Remove: true},
				Stage:           mergepipeline.StageKind(cc.cfg.Commit.Stage),
				DeleteBranch:    deleteBranch || cc.cfg.Remove.DeleteLocalBranches,
				LLM:             llmBridge(cc),
				PreMergeHooks:   preMerge,
				PreRemoveHooks:  preRemove,
				PostRemoveHooks: hooks.Resolve(cc.cfg, hooks.PhasePostRemove, ""),
				PostMergeHooks:  hooks.Resolve(cc.cfg, hooks.PhasePostMerge, ""),
				Hooks:           cc.hooks,
				Directive:       cc.directive,
				Verbose:         verbose,
			})
			if err := pipeline.Run(cc.ctx); err != nil {
				return err
			}
			output.FromContext(cc.ctx).Printf("Merged %s into %s\n", sourceBranch, target)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&deleteBranch, "delete-branch", "d", false, "Delete the local source branch after merging")
	return cmd
}

// llmBridge constructs the commit-message generator from the loaded
// commit config, or nil to fall back to llmbridge.DeterministicFallback.
func llmBridge(cc *cmdContext) *llmbridge.Bridge {
	if cc.cfg.Commit.GenerationCommand == "" {
		return nil
	}
	return &llmbridge.Bridge{
		Command:        cc.cfg.Commit.GenerationCommand,
		PromptTemplate: cc.cfg.Commit.Template,
		Explicit:       true,
	}
}
