package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/forge"
	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/switchplan"
)

func newSwitchCmd() *cobra.Command {
	var create bool
	var base string

	cmd := &cobra.Command{
		Use:     "switch <branch|pr:N|mr:N|-|^>",
		Short:   "Switch to a worktree, creating one if needed",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			repoURL, _ := forge.GetOriginURL(cc.repo.Path())

			plan, err := switchplan.ResolveTarget(cc.ctx, cc.repo, args[0], switchplan.ResolveTargetOptions{
				Create:        create,
				Base:          base,
				RepoURL:       repoURL,
				FetchBase:      cc.cfg.Switch.AutoFetch,
				AutoFetch:      cc.cfg.Switch.AutoFetch,
				BaseRefConfig:  cc.cfg.Switch.BaseRef,
				WorktreeFormat: cc.cfg.Switch.WorktreeFormat,
			})
			if err != nil {
				return err
			}

			postCreate := hooks.Resolve(cc.cfg, hooks.PhasePostCreate, "")
			result, err := switchplan.ExecuteSwitch(cc.ctx, cc.repo, plan, switchplan.ExecuteOptions{
				Hooks:           cc.hooks,
				PostCreateSpecs: postCreate,
				Directive:       cc.directive,
				Verbose:         verbose,
				CurrentBranch:   currentBranch(cc.ctx, cc.repo.Path()),
			})
			if err != nil {
				return err
			}

			printer := output.FromContext(cc.ctx)
			if result.Created {
				printer.Printf("Created worktree for %s at %s\n", result.Branch, result.Path)
			} else if result.Switched {
				printer.Printf("Switched to %s at %s\n", result.Branch, result.Path)
			}
			if cc.directive == nil || !cc.directive.Active() {
				fmt.Fprintf(cmd.OutOrStdout(), "cd %s\n", result.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "Create the branch if it doesn't exist")
	cmd.Flags().StringVar(&base, "base", "", "Base ref for a newly created branch")
	return cmd
}
