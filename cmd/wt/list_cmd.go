package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/wt/internal/forge"
	"github.com/raphi011/wt/internal/listcollector"
	"github.com/raphi011/wt/internal/output"
)

func newListCmd() *cobra.Command {
	var jsonOut bool
	var allBranches bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List worktrees and their status",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCmdContext(cmd)
			if err != nil {
				return err
			}
			defaultBranch, err := cc.repo.DefaultBranch()
			if err != nil {
				return err
			}

			var renderer listcollector.Renderer
			if !jsonOut && listcollector.IsInteractive() {
				renderer = listcollector.NewTerminalRenderer(120)
			}

			repoURL, _ := forge.GetOriginURL(cc.repo.Path())

			result, err := listcollector.Collect(cc.ctx, listcollector.Options{
				RepoDir:         cc.repo.Path(),
				DefaultBranch:   defaultBranch,
				IncludeBranches: allBranches,
				DrainDeadline:   30 * time.Second,
				Renderer:        renderer,
				RepoURL:         repoURL,
				CIPlatform:      cc.cfg.CI.Platform,
				URLTemplate:     cc.cfg.List.URL,
			})
			if err != nil {
				return err
			}

			printer := output.FromContext(cc.ctx)
			if jsonOut {
				items := make([]listcollector.JSONItem, 0, len(result.Items))
				for _, it := range result.Items {
					items = append(items, listcollector.ToJSON(it))
				}
				enc := json.NewEncoder(printer.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if renderer == nil {
				for _, it := range result.Items {
					printer.Printf("%s\t%s\t%s\n", it.Branch, it.MainState, it.Display)
				}
			}
			for _, w := range result.Warnings {
				printer.Printf("warning: item %d: %s: %v\n", w.ItemIndex, w.Kind, w.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON instead of a table")
	cmd.Flags().BoolVar(&allBranches, "all", false, "Include local branches without a worktree")
	return cmd
}
