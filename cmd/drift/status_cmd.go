package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/drift/internal/ui/progress"
)

func newStatusCmd() *cobra.Command {
	var (
		dir        string
		jsonOutput bool
		noCache    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Compare every branch against the checked out one",
		Aliases: []string{"st"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Compare every local branch against the checked out branch and print
ahead/behind counts.

Previously computed pairs are read from the repo cache, so repeated runs
only pay for branches that moved. Output falls back to tab-separated
columns when stdout is not a terminal.`,
		Example: `  drift status              # Table of ahead/behind counts
  drift status --json       # Output as JSON
  drift status --no-cache   # Ignore the persisted cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			repoRoot, err := resolveRepoRoot(ctx, dir)
			if err != nil {
				return err
			}

			tty := isatty.IsTerminal(os.Stdout.Fd())

			opts := statusOptions{
				jsonOutput: jsonOutput,
				plain:      !tty && !jsonOutput,
				noCache:    noCache,
				timeout:    timeout,
			}
			if tty && !jsonOutput {
				opts.spin = progress.NewSpinner("comparing branches")
				opts.spin.Start()
				defer opts.spin.Stop()
			}

			return runStatus(ctx, cfg, repoRoot, opts)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Repository directory (defaults to the working directory)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the persisted cache")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")

	return cmd
}
