package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/advlogic/internal/canvas"
	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/config"
	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/workspace"
)

// app carries the flags and the environment shared by every subcommand.
type app struct {
	configPath string
	projectDir string
	logLevel   string

	configs *config.Loader
	cfg     *config.Config
	level   *slog.LevelVar
	logger  *slog.Logger
	catalog *catalog.Loader
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "advlogic",
		Short: "Logic graph tooling",
		Long: `advlogic reads the LogicGraphs.json and DialogueGraphs.json documents of a
project, checks and migrates them, prints and renders graphs, and serves a
read-only HTTP view of the project.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Editor config YAML (built-in defaults when empty)")
	root.PersistentFlags().StringVar(&a.projectDir, "dir", "", "Project directory (overrides project_dir)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides log_level)")

	root.AddCommand(
		newValidateCmd(a),
		newMigrateCmd(a),
		newTreeCmd(a),
		newRenderCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	configs, err := config.NewLoader(a.configPath, nil)
	if err != nil {
		return err
	}
	cfg := *configs.Config()
	if a.projectDir != "" {
		cfg.ProjectDir = a.projectDir
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := config.Validate(&cfg); err != nil {
		return err
	}
	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.level = new(slog.LevelVar)
	a.level.Set(lvl)
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), a.level, cfg.LogFormat)

	a.catalog, err = catalog.NewLoader(cfg.CatalogPath, a.logger)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	a.configs = configs
	a.cfg = &cfg
	return nil
}

func (a *app) openWorkspace() (*workspace.Workspace, error) {
	c := a.cfg.Canvas
	return workspace.Open(a.cfg.ProjectDir, workspace.Options{
		Logger:  a.logger,
		Catalog: a.catalog,
		IDs:     graph.NewIDGenerator(graph.IDStyle(a.cfg.IDs.Style), a.cfg.IDs.Prefix),
		Canvas: canvas.Options{
			GridSnap:      c.GridSnap,
			GridSize:      c.GridSize,
			DragThreshold: c.DragThreshold,
			DefaultWidth:  c.DefaultNodeWidth,
			DefaultHeight: c.DefaultNodeHeight,
		},
	})
}

// collections parses collection arguments; none selects all of them.
func collections(args []string) ([]document.Collection, error) {
	if len(args) == 0 {
		return document.Collections, nil
	}
	out := make([]document.Collection, 0, len(args))
	for _, s := range args {
		c, err := document.ParseCollection(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (a *app) findGraph(collection, id string) (*graph.Graph, error) {
	c, err := document.ParseCollection(collection)
	if err != nil {
		return nil, err
	}
	graphs, _, err := document.LoadFile(c.Path(a.cfg.ProjectDir), a.logger)
	if err != nil {
		return nil, err
	}
	for _, g := range graphs {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%s graph %q: %w", c, id, workspace.ErrGraphNotFound)
}
