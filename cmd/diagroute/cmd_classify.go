package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	var hint string
	var offline, asJSON, explain bool

	cmd := &cobra.Command{
		Use:   "classify <question...>",
		Short: "Classify a single diagram request",
		Long: `Classify a diagram request and print the rendering decision.

The configured primary classifier gets one bounded attempt. Any failure falls
back to the keyword classifier. --explain skips the primary and prints the
keyword scores behind the fallback decision.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			r, err := a.newRouter(ctx, offline || explain)
			if err != nil {
				return err
			}

			if explain {
				return writeJSON(out, r.Fallback().Explain(question, hint), true)
			}

			res := r.Classify(ctx, question, hint)
			if asJSON {
				return writeJSON(out, res, false)
			}
			printResult(out, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "domain hint (e.g. electrical)")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the primary classifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the keyword scores behind the fallback decision")
	return cmd
}

func printResult(w io.Writer, res diagram.Result) {
	fmt.Fprintf(w, "Domain:       %s\n", res.Domain)
	fmt.Fprintf(w, "Type:         %s\n", res.DiagramType)
	fmt.Fprintf(w, "Tool:         %s (%s)\n", res.PreferredTool, res.Lib)
	fmt.Fprintf(w, "AI suitable:  %t\n", res.AISuitable)
	fmt.Fprintf(w, "Source:       %s\n", res.Source)
}

func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
