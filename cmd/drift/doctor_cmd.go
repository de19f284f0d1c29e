package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/doctor"
	"github.com/raphi011/drift/internal/git"
	"github.com/raphi011/drift/internal/output"
	"github.com/raphi011/drift/internal/store"
)

func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose and repair cache issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose problems with drift's setup and persisted cache.

Checks:
- git is installed
- the config file parses
- cached comparisons are well-formed, fresh, and reference commits
  the repository still has`,
		Example: `  drift doctor          # Check for issues
  drift doctor --fix    # Remove bad cache entries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			printer := output.FromContext(ctx)
			problems := 0

			printer.Println("Running diagnostics...")
			printer.Println()

			if err := git.CheckGit(); err != nil {
				printer.Printf("x git not found: %v\n", err)
				problems++
			} else {
				printer.Println("+ git is available")
			}

			if _, err := config.Load(); err != nil {
				printer.Printf("x config does not parse: %v\n", err)
				problems++
			} else {
				printer.Println("+ config is valid")
			}

			repoRoot, err := resolveRepoRoot(ctx, "")
			if err != nil {
				printer.Println("- not inside a repository, skipping cache checks")
				return summarize(printer, problems)
			}

			s, unlock, err := store.LoadWithLock(repoRoot)
			if err != nil {
				printer.Printf("x cache does not load: %v\n", err)
				return summarize(printer, problems+1)
			}
			defer unlock()

			resolve := func(sha string) bool { return git.ObjectExists(ctx, repoRoot, sha) }
			report := doctor.Check(s, time.Now(), resolve)

			printer.Printf("+ %d valid cache entries\n", report.Valid)
			for _, issue := range report.Issues {
				printer.Printf("x [%s] %s: %s\n", issue.Category, issue.Key, issue.Description)
			}
			problems += len(report.Issues)

			if fix && len(report.Issues) > 0 {
				removed := doctor.Fix(s, report.Issues)
				if err := store.Save(repoRoot, s); err != nil {
					return fmt.Errorf("save cache: %w", err)
				}
				printer.Printf("\nRemoved %d cache entries\n", removed)
				problems -= removed
			}

			return summarize(printer, problems)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Remove bad cache entries")

	return cmd
}

func summarize(printer *output.Printer, problems int) error {
	printer.Println()
	if problems == 0 {
		printer.Println("No issues found")
		return nil
	}
	return fmt.Errorf("%d issues found", problems)
}
