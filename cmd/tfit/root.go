package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/datasource"
	"github.com/tfit-bio/tfit/internal/datasource/biogrid"
	"github.com/tfit-bio/tfit/internal/datasource/biomart"
	"github.com/tfit-bio/tfit/internal/datasource/hippie"
	"github.com/tfit-bio/tfit/internal/datasource/stringdb"
	"github.com/tfit-bio/tfit/internal/fetch"
)

// app holds state shared by all subcommands, resolved once in the root
// command's persistent pre-run.
type app struct {
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger

	hippie   *hippie.Source
	biomart  *biomart.Source
	stringdb *stringdb.Source
	biogrid  *biogrid.Source
	registry *datasource.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "tfit",
		Short: "Assess the combinatorial potential of transcription factors",
		Long: `TFit downloads protein-protein interaction and gene identifier mapping
datasets (HIPPIE, BioMart, STRING, BioGRID), caches them locally, and
offers identifier conversion and interaction-edge extraction for building
network subgraphs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize()
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgPath, "config", "",
		fmt.Sprintf("Path to tfit JSON config file (env %s)", config.EnvVar))
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Enable debug logging")

	cmd.AddCommand(newInitCmd(a))
	cmd.AddCommand(newSetupCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newDownloadCmd(a))
	cmd.AddCommand(newConvertCmd(a))
	cmd.AddCommand(newEdgesCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initialize builds the logger, loads the config file (falling back to an
// empty config with a warning on errors), and wires the data sources.
func (a *app) initialize() error {
	logCfg := zap.NewDevelopmentConfig()
	if !a.verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger

	path := a.cfgPath
	if path == "" {
		path = os.Getenv(config.EnvVar)
	}

	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			// A broken config file should not make every command unusable.
			a.logger.Warn("config error, using defaults", zap.Error(err))
			a.cfg = &config.Config{}
		} else {
			a.logger.Debug("loaded config", zap.String("path", path))
			a.cfg = cfg
		}
	} else {
		a.cfg = &config.Config{}
	}

	a.hippie = hippie.New()
	a.biomart = biomart.New()
	a.stringdb = stringdb.New()
	a.biogrid = biogrid.New()
	for _, s := range []interface{ SetLogger(*zap.Logger) }{
		a.hippie, a.biomart, a.stringdb, a.biogrid,
	} {
		s.SetLogger(a.logger)
	}

	a.registry = datasource.NewRegistry(a.hippie, a.biomart, a.stringdb, a.biogrid)
	a.registry.SetLogger(a.logger)

	return nil
}

// fetcher builds the download client used by setup and download commands.
func (a *app) fetcher() *fetch.Fetcher {
	return fetch.New(
		fetch.WithLogger(a.logger),
		fetch.WithProgress(true),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tfit version %s (%s) built %s\n", version, commit, date)
		},
	}
}
