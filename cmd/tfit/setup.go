package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfit-bio/tfit/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a blank config file",
		Long: `Write a blank JSON config template. Edit it and point tfit at it with
--config or the ` + config.EnvVar + ` environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := output
			if dst == "" {
				var err error
				dst, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}
			path, err := config.WriteTemplate(dst)
			if err != nil {
				return err
			}
			fmt.Printf("Blank config created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "",
		"Output config file path (default ~/.config/tfit/config.json)")

	return cmd
}

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Download all required datasets",
		Long:  "Download every missing data source so the toolkit is ready to run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.registry.EnsureAll(cmd.Context(), a.cfg, a.fetcher()); err != nil {
				return err
			}
			fmt.Println("All data ready!")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-source dataset readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, st := range a.registry.Status(a.cfg) {
				switch {
				case st.Err != nil:
					fmt.Printf("%-10s error: %v\n", st.Name, st.Err)
				case st.Ready:
					fmt.Printf("%-10s ready\n", st.Name)
				default:
					fmt.Printf("%-10s missing\n", st.Name)
				}
			}
			return nil
		},
	}
}

func newDownloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download <source>",
		Short: "Download a single dataset",
		Long:  "Download one data source by name: hippie, biomart, stringdb, or biogrid.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, ok := a.registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown data source %q", args[0])
			}
			return src.Download(cmd.Context(), a.cfg, a.fetcher())
		},
	}
}
