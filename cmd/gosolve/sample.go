package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gosolve"
)

func (a *app) sampleCmd() *cobra.Command {
	var (
		lo, hi float64
		count  int
	)
	cmd := &cobra.Command{
		Use:   "sample [expr]",
		Short: "Sample a function on a grid for plotting",
		Long: `Evaluates "y = f(x)" or a bare expression on evenly spaced points and
marks its real roots. Points where the function is undefined are reported as
undefined; the domain and point count default to the engine configuration.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.engine.Options()
			if cmd.Flags().Changed("min") {
				opts.DomainMin = lo
			}
			if cmd.Flags().Changed("max") {
				opts.DomainMax = hi
			}
			if cmd.Flags().Changed("count") {
				opts.SampleCount = count
			}
			if opts.DomainMin >= opts.DomainMax {
				return fmt.Errorf("--min %g must be below --max %g", opts.DomainMin, opts.DomainMax)
			}
			if opts.SampleCount < 2 {
				return fmt.Errorf("--count must be at least 2, got %d", opts.SampleCount)
			}

			s, err := gosolve.NewEngine(opts, a.logger).Sample(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.renderer(cmd.OutOrStdout()).sample(s)
		},
	}
	cmd.Flags().Float64Var(&lo, "min", 0, "domain start")
	cmd.Flags().Float64Var(&hi, "max", 0, "domain end")
	cmd.Flags().IntVar(&count, "count", 0, "number of grid points")
	return cmd
}
