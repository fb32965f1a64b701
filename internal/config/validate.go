package config

import (
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// Validate checks the structural requirements every stage shares. Stage
// parameter blocks are validated later by the stage factories.
func (p *Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return pipeline.NewConfigurationError("", "pipeline has no stages")
	}
	for i, stage := range p.Stages {
		if stage.Name == "" {
			return pipeline.NewConfigurationError("", "stage %d has no name", i)
		}
		if stage.InputManifest == "" {
			return pipeline.NewConfigurationError(stage.Name, "input_manifest is required")
		}
		if stage.OutputManifest == "" {
			return pipeline.NewConfigurationError(stage.Name, "output_manifest is required")
		}
		if stage.InputManifest == stage.OutputManifest {
			return pipeline.NewConfigurationError(stage.Name, "input and output manifest must differ")
		}
		if stage.Workers < 0 {
			return pipeline.NewConfigurationError(stage.Name, "workers must not be negative")
		}
		if stage.ChunkSize < 0 {
			return pipeline.NewConfigurationError(stage.Name, "chunk_size must not be negative")
		}
	}
	return nil
}
