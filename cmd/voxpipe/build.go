package main

import (
	"log/slog"

	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
	"github.com/voxpipe/voxpipe/pkg/stages"
)

// buildPipeline resolves every configured stage through the registry and
// wires it into a pipeline. All configuration errors surface here, before
// any manifest is touched.
func buildPipeline(log *slog.Logger, cfg *config.Pipeline, progress func(stage string, completed, total int), opts ...model.PipelineOption) (*pipeline.Pipeline, error) {
	pipe, err := pipeline.New(log, opts...)
	if err != nil {
		return nil, err
	}

	registry := stages.NewRegistry()
	for _, stageCfg := range cfg.Stages {
		workers := stageCfg.Workers
		if workers == 0 {
			workers = cfg.Workers
		}
		chunkSize := stageCfg.ChunkSize
		if chunkSize == 0 {
			chunkSize = cfg.ChunkSize
		}

		stage, err := registry.Build(stages.Config{
			Name:           stageCfg.Name,
			ID:             stageCfg.ID,
			InputManifest:  stageCfg.InputManifest,
			OutputManifest: stageCfg.OutputManifest,
			Workers:        workers,
			ChunkSize:      chunkSize,
			Params:         stageCfg.Params,
			Progress:       progress,
		})
		if err != nil {
			return nil, err
		}
		if err := pipe.AddStage(stage); err != nil {
			return nil, err
		}
	}
	return pipe, nil
}
