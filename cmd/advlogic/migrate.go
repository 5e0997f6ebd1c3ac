package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/document"
)

func newMigrateCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "migrate [collection...]",
		Short: "Rewrite documents in the current format",
		Long: `Loads each collection and saves it back. Legacy parameter blocks become
flat fields, unreadable records are dropped and one-sided connections are
repaired. Documents that need none of this are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := collections(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, c := range cs {
				path := c.Path(a.cfg.ProjectDir)
				graphs, report, err := document.LoadFile(path, a.logger)
				if err != nil {
					return err
				}
				if report.Missing {
					dimColor.Fprintf(w, "%s: no document at %s\n", c, path)
					continue
				}
				if len(report.Migrated) == 0 && report.Clean() {
					fmt.Fprintf(w, "%s: up to date\n", c)
					continue
				}
				summary := fmt.Sprintf("%s: %d migrated, %d dropped, %d repaired",
					c, len(report.Migrated), len(report.Skipped), len(report.Repaired))
				if dryRun {
					warnColor.Fprintf(w, "%s (dry run)\n", summary)
					continue
				}
				if err := document.SaveFile(path, graphs); err != nil {
					return err
				}
				okColor.Fprintf(w, "%s → %s\n", summary, path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing")
	return cmd
}
