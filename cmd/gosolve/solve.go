package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gosolve"
)

func (a *app) solveCmd() *cobra.Command {
	var (
		file  string
		batch bool
	)
	cmd := &cobra.Command{
		Use:   "solve [input]",
		Short: "Solve equations, a system or inequalities step by step",
		Long: `Solves the clauses given as arguments, in --file, or on stdin.

Without --batch the whole input is one request: several equations form a
system. With --batch every non-blank line is an independent request; the
requests are solved concurrently and printed in input order.

Examples:
  gosolve solve "x^2 - 4 = 0"
  gosolve solve "x + y = 2, x - y = 0"
  echo "x^2 < 4" | gosolve solve --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			inputs := []string{text}
			if batch {
				inputs = splitBatch(text)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no input")
			}

			views, err := a.solveAll(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			if err := a.renderer(cmd.OutOrStdout()).requests(views); err != nil {
				return err
			}

			failed := 0
			for _, v := range views {
				if len(v.Steps) == 1 && v.Steps[0].Kind == gosolve.StepError.String() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(views))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read input from file ('-' for stdin)")
	cmd.Flags().BoolVar(&batch, "batch", false, "treat every line as a separate request")
	return cmd
}

// readInput joins the arguments, or reads the file or stdin when there are
// none.
func readInput(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		if file != "" {
			return "", fmt.Errorf("give input either as arguments or with --file, not both")
		}
		return strings.Join(args, " "), nil
	}
	r := stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func splitBatch(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// solveAll solves every input with at most Batch.Workers requests in flight.
// Each request logs under its own request ID; results keep input order.
func (a *app) solveAll(ctx context.Context, inputs []string) ([]requestView, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	views := make([]requestView, len(inputs))
	opts := a.engine.Options()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(a.cfg.Batch.Workers, len(inputs))))
	for i, input := range inputs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			id := uuid.NewString()
			log := a.logger.With(zap.String("request_id", id))
			report := gosolve.NewEngine(opts, log).Solve(input)
			views[i] = requestView{ID: id, Input: input, Steps: report.Views(opts.SignificantDigits)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}
