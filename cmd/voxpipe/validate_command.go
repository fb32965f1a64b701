package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/internal/logging"
)

func newValidateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Build the pipeline without running it",
		Long:  "Loads the pipeline file, resolves every stage through the registry and checks the manifest flow, reporting configuration errors without touching any manifest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logging.Options{Level: "error", Format: flags.logFormat})
			if err != nil {
				return err
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if _, err := buildPipeline(log, cfg, nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "pipeline valid: %d stages\n", len(cfg.Stages))
			return nil
		},
	}
}
