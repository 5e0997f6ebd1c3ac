package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

var kindColors = map[graph.Kind]*color.Color{
	graph.KindDialogue:  color.New(color.FgGreen, color.Bold),
	graph.KindCondition: color.New(color.FgRed, color.Bold),
	graph.KindAction:    color.New(color.FgBlue, color.Bold),
	graph.KindGeneric:   color.New(color.Bold),
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <collection> <graph-id>",
		Short: "Print a graph as an outline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.findGraph(args[0], args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%d nodes, %d edges)\n", g.ID, g.Len(), g.EdgeCount())
			printTree(w, g, a.catalog.Catalog(), g.Tree(), 1)
			return nil
		},
	}
}

func printTree(w io.Writer, g *graph.Graph, cat *catalog.Catalog, nodes []*graph.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, tn := range nodes {
		if tn.Revisit {
			dimColor.Fprintf(w, "%s↺ %s\n", indent, tn.ID)
			continue
		}
		kindColors[tn.Kind].Fprint(w, indent+tn.ID)
		summary, _, _ := strings.Cut(graph.Summary(g.Node(tn.ID), cat), "\n")
		fmt.Fprintf(w, "  %s\n", summary)
		printTree(w, g, cat, tn.Children, depth+1)
	}
}
