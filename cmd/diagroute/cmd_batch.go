package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/shahar-caura/diagroute/internal/batch"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var concurrency int
	var offline bool

	cmd := &cobra.Command{
		Use:   "batch <questions.yaml>",
		Short: "Classify a file of diagram requests",
		Long: `Classify every request in a YAML file and print one JSON line per request,
in input order. The file is a list of entries:

  - question: Draw the state diagram for a sequence detector FSM
    hint: electrical
  - question: Plot y = sin(x) for x in [0, 2pi]
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := batch.LoadRequests(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			r, err := a.newRouter(ctx, offline)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Batch.Concurrency
			}
			if concurrency <= 0 {
				return fmt.Errorf("--concurrency must be positive, got %d", concurrency)
			}

			rep := batch.Classify(ctx, r, reqs, concurrency, a.logger)
			out := cmd.OutOrStdout()
			for _, it := range rep.Items {
				if err := writeJSON(out, it, false); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", batch.DefaultConcurrency, "maximum requests classified at once")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the primary classifier")
	return cmd
}
