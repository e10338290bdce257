// Command gosolve solves equations, systems and inequalities step by step.
//
// Usage:
//
//	gosolve solve "x^2 - 4 = 0"
//	gosolve solve --batch --file problems.txt --format json
//	gosolve sample "y = 1/x" --min -5 --max 5
//	gosolve serve --addr :8080
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/gosolve"
	"github.com/njchilds90/gosolve/config"
)

// app is the state shared by every subcommand once the root pre-run hook
// has loaded the configuration.
type app struct {
	configPath string
	verbose    bool
	format     string
	color      string

	cfg    *config.Config
	logger *zap.Logger
	engine *gosolve.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gosolve",
		Short: "gosolve - step-by-step algebra solver",
		Long: `gosolve parses equations, systems of equations and inequalities from
plain text and prints every step on the way to the solution: the given
clauses, the simplified and factored forms, the discriminant of a quadratic,
and the exact or numeric roots.

Clauses are separated by newlines, commas or semicolons.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.Version = Version

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.format, "format", "f", "text", "output format (text|json|msgpack)")
	root.PersistentFlags().StringVar(&a.color, "color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(a.solveCmd())
	root.AddCommand(a.sampleCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) init() error {
	a.format = strings.ToLower(a.format)
	switch a.format {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or msgpack)", a.format)
	}
	switch a.color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", a.color)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.BuildLogger(a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.engine = gosolve.NewEngine(cfg.EngineOptions(), logger)
	logger.Debug("configuration loaded",
		zap.String("path", a.configPath),
		zap.String("format", a.format),
		zap.Int("workers", cfg.Batch.Workers))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gosolve:", err)
		os.Exit(1)
	}
}
