package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shahar-caura/diagroute/internal/config"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := newRootCmd(logger, level).Execute(); err != nil {
		logger.Error("diagroute failed", "error", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	logger *slog.Logger
	level  *slog.LevelVar

	configPath  string
	catalogPath string
	verbose     bool

	cfg *config.Config
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	a := &app{logger: logger, level: level}

	root := &cobra.Command{
		Use:           "diagroute",
		Short:         "Route diagram requests to a rendering backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "path to a catalog file replacing the built-in one")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newClassifyCmd(a),
		newBatchCmd(a),
		newCatalogCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	config.LoadEnvFiles(config.DefaultEnvFiles()...)

	cfg, err := config.LoadOrDefault(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if a.verbose {
		lvl = slog.LevelDebug
	}
	a.level.Set(lvl)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the diagroute version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "diagroute", version)
			return err
		},
	}
}
