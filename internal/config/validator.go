package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
)

// ValidationError lists every problem found in a config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation errors:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

// Validate checks the config for:
//   - a known log level and format
//   - positive canvas sizes and a non-negative drag threshold
//   - a known id style
func Validate(cfg *Config) error {
	var errs []string

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("log_level: unknown level %q", cfg.LogLevel))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log_format: must be text or json, got %q", cfg.LogFormat))
	}

	c := cfg.Canvas
	if c.GridSize < 1 {
		errs = append(errs, fmt.Sprintf("canvas.grid_size: must be positive, got %d", c.GridSize))
	}
	if c.DragThreshold < 0 {
		errs = append(errs, fmt.Sprintf("canvas.drag_threshold: must not be negative, got %d", c.DragThreshold))
	}
	if c.DefaultNodeWidth < 1 || c.DefaultNodeHeight < 1 {
		errs = append(errs, fmt.Sprintf("canvas: default node size must be positive, got %dx%d",
			c.DefaultNodeWidth, c.DefaultNodeHeight))
	}

	switch graph.IDStyle(cfg.IDs.Style) {
	case graph.IDSequential, graph.IDUUID:
	default:
		errs = append(errs, fmt.Sprintf("ids.style: must be %s or %s, got %q", graph.IDSequential, graph.IDUUID, cfg.IDs.Style))
	}

	if len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}
