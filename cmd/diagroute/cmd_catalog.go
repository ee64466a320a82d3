package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/shahar-caura/diagroute/internal/tooltable"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate the routing catalog",
	}
	cmd.AddCommand(
		newCatalogCheckCmd(a),
		newCatalogResolveCmd(a),
		newCatalogTypesCmd(a),
	)
	return cmd
}

func newCatalogCheckCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a catalog file",
		Long: `Validate a catalog file and report every problem found. Without a path the
catalog in effect is checked. --watch keeps running and re-validates the file
each time it is saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.catalogSource()
			if len(args) == 1 {
				path = args[0]
			}
			out := cmd.OutOrStdout()

			if !watch {
				var cat *catalog.Catalog
				var err error
				if path == "" {
					cat, err = catalog.Default()
				} else {
					cat, err = catalog.Load(path)
				}
				if err != nil {
					return err
				}
				printCatalogSummary(out, path, cat)
				return nil
			}

			if path == "" {
				return fmt.Errorf("--watch needs a catalog file")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", path)
			return catalog.Watch(ctx, path, func(cat *catalog.Catalog, err error) {
				if err != nil {
					fmt.Fprintf(out, "INVALID %s\n%v\n", path, err)
					return
				}
				printCatalogSummary(out, path, cat)
			}, a.logger)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-validate on every save")
	return cmd
}

func printCatalogSummary(w io.Writer, path string, cat *catalog.Catalog) {
	if path == "" {
		path = "built-in catalog"
	}
	fmt.Fprintf(w, "OK %s (version %s): %d domains, %d reachable types, %d code-better types\n",
		path, cat.Version, len(cat.Domains), len(cat.Reachable()), len(cat.CodeBetterTypes))
}

func newCatalogResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <domain> <diagram_type>",
		Short: "Show the rendering backend for a domain and diagram type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}

			domain, ok := cat.CanonicalDomain(args[0])
			if !ok {
				return fmt.Errorf("unknown domain %q; valid domains: %v", args[0], cat.Domains)
			}
			diagramType, ok := diagram.CanonicalLabel(args[1])
			if !ok {
				return fmt.Errorf("invalid diagram type %q", args[1])
			}

			res := tooltable.New(cat).Resolve(domain, diagramType)
			cb := tooltable.NewCodeBetter(cat)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s/%s -> %s (%s)", domain, diagramType, res.Tool, res.Lib)
			if res.Defaulted {
				fmt.Fprint(out, " [domain default]")
			}
			if cb.Contains(diagramType) {
				fmt.Fprint(out, " [code-better]")
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newCatalogTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List every diagram type the keyword classifier can produce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}

			table := tooltable.New(cat)
			cb := tooltable.NewCodeBetter(cat)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-18s  %-28s  %-12s  %-24s  %s\n", "DOMAIN", "TYPE", "TOOL", "LIB", "CODE")
			for _, p := range cat.Reachable() {
				m := table.Resolve(p.Domain, p.DiagramType)
				marker := ""
				if cb.Contains(p.DiagramType) {
					marker = "*"
				}
				fmt.Fprintf(out, "%-18s  %-28s  %-12s  %-24s  %s\n", p.Domain, p.DiagramType, m.Tool, m.Lib, marker)
			}
			return nil
		},
	}
}
