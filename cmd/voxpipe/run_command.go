package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/internal/logging"
	"github.com/voxpipe/voxpipe/pkg/pipeline/drawer"
	"github.com/voxpipe/voxpipe/pkg/pipeline/measure"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

func newRunCommand(flags *rootFlags) *cobra.Command {
	var (
		workers   int
		chunkSize int
		drawPath  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline stage by stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logging.Options{Level: flags.logLevel, Format: flags.logFormat})
			if err != nil {
				return err
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if chunkSize > 0 {
				cfg.ChunkSize = chunkSize
			}

			msr := measure.NewDefaultMeasure()
			opts := []model.PipelineOption{measure.PipelineMeasure(msr)}
			if drawPath != "" {
				opts = append(opts, drawer.PipelineDrawer(drawer.NewDotDrawer(drawPath), msr))
			}

			progress := newProgressRenderer()
			onProgress := func(stage string, completed, total int) {
				log.Debug("chunk completed", "stage", stage, "completed", completed, "total", total)
				progress.update(stage, completed, total)
			}
			pipe, err := buildPipeline(log, cfg, onProgress, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := pipe.Run(ctx); err != nil {
				return err
			}
			progress.finish()

			for name, metric := range msr.AllMetrics() {
				in, out := metric.Records()
				log.Info("stage summary", "stage", name, "records_in", in, "records_out", out, "elapsed", metric.Elapsed())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Override the worker pool size for all per-record stages")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Override the dispatcher chunk size for all per-record stages")
	cmd.Flags().StringVar(&drawPath, "draw", "", "Write a Graphviz DOT file of the stage graph")

	return cmd
}
