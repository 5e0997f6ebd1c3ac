package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/raster"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output   string
		outDir   string
		all      bool
		workers  int
		margin   int
		selected []string
	)
	cmd := &cobra.Command{
		Use:   "render <collection> [graph-id]",
		Short: "Render graphs to PNG",
		Long: `Renders one graph to a PNG file, or with --all every graph of the
collection into --out-dir as <graph-id>.png, with the id path-escaped.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			opts := raster.Options{Margin: margin, Selected: selected}
			w := cmd.OutOrStdout()

			if all {
				c, err := document.ParseCollection(args[0])
				if err != nil {
					return err
				}
				graphs, _, err := document.LoadFile(c.Path(a.cfg.ProjectDir), a.logger)
				if err != nil {
					return err
				}
				var failed error
				for _, r := range raster.RenderAll(cmd.Context(), graphs, a.catalog.Catalog(), opts, outDir, workers) {
					if r.Err != nil {
						errColor.Fprintf(w, "%s: %v\n", r.Graph, r.Err)
						failed = errors.Join(failed, r.Err)
						continue
					}
					okColor.Fprintf(w, "wrote %s\n", r.Path)
				}
				return failed
			}

			if len(args) != 2 {
				return errors.New("render: graph id required (or use --all)")
			}
			g, err := a.findGraph(args[0], args[1])
			if err != nil {
				return err
			}
			if output == "" {
				output = url.PathEscape(g.ID) + ".png"
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()
			if err := raster.RenderPNG(f, g, a.catalog.Catalog(), opts); err != nil {
				return fmt.Errorf("render %s: %w", g.ID, err)
			}
			okColor.Fprintf(w, "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <graph-id>.png)")
	cmd.Flags().BoolVar(&all, "all", false, "Render every graph of the collection")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Output directory for --all")
	cmd.Flags().IntVarP(&workers, "workers", "j", runtime.NumCPU(), "Concurrent renders for --all")
	cmd.Flags().IntVar(&margin, "margin", 20, "Margin around the graph in pixels")
	cmd.Flags().StringSliceVar(&selected, "selected", nil, "Node ids to draw as selected")
	return cmd
}
