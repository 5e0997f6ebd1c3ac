package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [collection...]",
		Short: "Check graph documents",
		Long: `Loads each collection (logic, dialogue; both by default) and reports
skipped records, repaired connections, legacy records, unknown node types
and parameter values that do not match the command catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := collections(args)
			if err != nil {
				return err
			}
			return a.runValidate(cmd.OutOrStdout(), cs)
		},
	}
}

func (a *app) runValidate(w io.Writer, cs []document.Collection) error {
	cat := a.catalog.Catalog()
	problems := 0
	for _, c := range cs {
		path := c.Path(a.cfg.ProjectDir)
		graphs, report, err := document.LoadFile(path, a.logger)
		if err != nil {
			errColor.Fprintf(w, "%s: %v\n", c, err)
			problems++
			continue
		}
		if report.Missing {
			dimColor.Fprintf(w, "%s: no document at %s\n", c, path)
			continue
		}
		fmt.Fprintf(w, "%s: %d graph(s), %d node(s)\n", c, report.Graphs, report.Nodes)

		for _, s := range report.Skipped {
			errColor.Fprintf(w, "  skipped %s record %d %s: %s\n", s.Graph, s.Index, s.NodeID, s.Reason)
		}
		for _, p := range report.Repaired {
			errColor.Fprintf(w, "  repaired %s\n", p)
		}
		problems += len(report.Skipped) + len(report.Repaired)

		if len(report.Migrated) > 0 {
			warnColor.Fprintf(w, "  legacy records (run migrate): %v\n", report.Migrated)
		}
		if len(report.Generic) > 0 {
			warnColor.Fprintf(w, "  unknown node types kept as-is: %v\n", report.Generic)
		}
		for _, g := range graphs {
			problems += checkParams(w, g, cat)
		}
	}
	if problems > 0 {
		return fmt.Errorf("validation found %d problem(s)", problems)
	}
	okColor.Fprintln(w, "✓ documents are valid")
	return nil
}

func checkParams(w io.Writer, g *graph.Graph, cat *catalog.Catalog) int {
	n := 0
	for _, node := range g.Nodes() {
		if _, name, ok := graph.Command(node); ok && name == "" {
			warnColor.Fprintf(w, "  %s/%s: no command chosen\n", g.ID, node.ID)
			continue
		}
		issues, err := graph.ValidateParams(node, cat)
		if errors.Is(err, catalog.ErrCommandNotFound) {
			_, name, _ := graph.Command(node)
			errColor.Fprintf(w, "  %s/%s: unknown command %q\n", g.ID, node.ID, name)
			n++
			continue
		}
		if err != nil {
			errColor.Fprintf(w, "  %s/%s: %v\n", g.ID, node.ID, err)
			n++
			continue
		}
		for _, issue := range issues {
			errColor.Fprintf(w, "  %s/%s: %v\n", g.ID, node.ID, issue)
			n++
		}
	}
	return n
}
