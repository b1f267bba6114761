package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/hooks"
	"github.com/raphi011/wt/internal/output"
	"github.com/raphi011/wt/internal/wttemplate"
)

var allPhases = []hooks.Phase{
	hooks.PhasePreSwitch, hooks.PhasePostCreate, hooks.PhasePostStart, hooks.PhasePostSwitch,
	hooks.PhasePreCommit, hooks.PhasePreMerge, hooks.PhasePostMerge,
	hooks.PhasePreRemove, hooks.PhasePostRemove,
}

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hook",
		Short:   "Run or inspect lifecycle hooks",
		GroupID: GroupStep,
	}
	for _, phase := range allPhases {
		cmd.AddCommand(newHookPhaseCmd(phase))
	}
	cmd.AddCommand(newHookShowCmd())
	cmd.AddCommand(newHookApprovalsCmd())
	return cmd
}

func newHookPhaseCmd(phase hooks.Phase) *cobra.Command {
	var name string
	c := &cobra.Command{
		Use:   string(phase),
		Short: fmt.Sprintf("Run the %s hooks explicitly", phase),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			specs := hooks.Resolve(cc.cfg, phase, name)
			if err := cc.hooks.EnsureApproved(specs, promptApproval); err != nil {
				return err
			}
			vars := wttemplate.Variables{
				"repo":          cc.repo.Path(),
				"worktree_path": cc.repo.Path(),
				"branch":        currentBranch(cc.ctx, cc.repo.Path()),
			}
			return cc.hooks.Run(cc.ctx, specs, vars, verbose)
		},
	}
	c.Flags().StringVar(&name, "name", "", "Only run hooks matching this name or source:name filter")
	return c
}

func newHookShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every configured hook by phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			printer := output.FromContext(cc.ctx)
			for _, phase := range allPhases {
				for _, s := range hooks.Resolve(cc.cfg, phase, "") {
					printer.Printf("%s\t%s:%s\t%s\n", phase, s.Source, s.Name, s.Command)
				}
			}
			return nil
		},
	}
}

func newHookApprovalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approvals",
		Short: "List project-sourced hooks and their approval status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			printer := output.FromContext(cc.ctx)
			for _, phase := range allPhases {
				for _, s := range hooks.Resolve(cc.cfg, phase, "") {
					if s.Source != hooks.SourceProject {
						continue
					}
					status := "pending"
					if s.Approval == "always" || approvalStore.Allowed(cc.repo.ProjectIdentifier(), s.Command) {
						status = "approved"
					} else if s.Approval == "never" {
						status = "never"
					}
					printer.Printf("%s\t%s\t%s\n", s.Name, status, s.Command)
				}
			}
			return nil
		},
	}
}
