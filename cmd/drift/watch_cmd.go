package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Live view of branch divergence",
		Aliases: []string{"w"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Show a live view of every local branch with its ahead/behind counts
relative to the checked out branch.

Branches are re-listed periodically, so new branches and moved tips show
up on their own. Press / to filter, y to copy a branch name, p to pause
background comparisons, and q to quit.`,
		Example: `  drift watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("watch requires a terminal, use 'drift status' instead")
			}

			repoRoot, err := resolveRepoRoot(ctx, dir)
			if err != nil {
				return err
			}

			return runWatch(ctx, cfg, repoRoot)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Repository directory (defaults to the working directory)")

	return cmd
}
