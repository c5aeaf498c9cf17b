package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ARTM2000/acorn"
)

const (
	flagEnvFile       = "env-file"
	flagMaxIterations = "max-iterations"
	flagVerbose       = "verbose"
	flagNoColor       = "no-color"
)

// app carries the state shared by every sub-command.
type app struct {
	envFiles      []string
	maxIterations int
	verbose       bool
	noColor       bool

	cfg acorn.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "acorn [sub-command]",
		Short: "Build, inspect and reload a sample object graph",
		Long: `acorn wires a small layered application (config, logger, database,
repository, service and a produced mailer) from unordered constructors
and lets you look at the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringArrayVar(&a.envFiles, flagEnvFile, nil, "load environment from this file (repeatable, default .env)")
	flags.IntVar(&a.maxIterations, flagMaxIterations, 0, "override the resolution requeue bound")
	flags.BoolVarP(&a.verbose, flagVerbose, "v", false, "enable debug logging")
	flags.BoolVar(&a.noColor, flagNoColor, false, "disable colored output")

	cmd.AddCommand(newGraphCmd(a), newReloadCmd(a), newServeCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.noColor {
		color.NoColor = true
	}

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := acorn.LoadConfig(a.envFiles...)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	if cmd.Flags().Changed(flagMaxIterations) {
		cfg.MaxIterations = a.maxIterations
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	return nil
}

// bootstrap builds the demo graph.
func (a *app) bootstrap() (*acorn.Container, error) {
	cat, err := demoCatalog(a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	return acorn.BootstrapCatalog(cat, acorn.WithLogger(a.log))
}
