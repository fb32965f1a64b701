package stages

import (
	"context"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// NewKeepFields builds a whole-manifest stage retaining only the listed
// fields in every record. Typically the final stage of a pipeline, saving
// just the fields downstream training consumes. A record lacking one of the
// fields aborts the stage.
func NewKeepFields(id, inputManifest, outputManifest string, fields []string) pipeline.Stage {
	return newManifestStage(id, inputManifest, outputManifest, nil, func(_ context.Context, records []*manifest.Record) ([]*manifest.Record, error) {
		output := make([]*manifest.Record, len(records))
		for i, rec := range records {
			projected := manifest.NewRecord()
			for _, field := range fields {
				value, ok := rec.Get(field)
				if !ok {
					return nil, manifest.NewMissingField(field, rec)
				}
				projected.Set(field, value)
			}
			output[i] = projected
		}
		return output, nil
	})
}

// NewDropFields builds a whole-manifest stage removing the listed fields from
// every record. Dropping an absent field is a no-op.
func NewDropFields(id, inputManifest, outputManifest string, fields []string) pipeline.Stage {
	return newManifestStage(id, inputManifest, outputManifest, nil, func(_ context.Context, records []*manifest.Record) ([]*manifest.Record, error) {
		output := make([]*manifest.Record, len(records))
		for i, rec := range records {
			cleaned := rec.Clone()
			for _, field := range fields {
				cleaned.Delete(field)
			}
			output[i] = cleaned
		}
		return output, nil
	})
}

func newKeepFieldsStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		FieldsToKeep []string `yaml:"fields_to_keep"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if len(params.FieldsToKeep) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "fields_to_keep must not be empty")
	}
	return NewKeepFields(cfg.id(), cfg.InputManifest, cfg.OutputManifest, params.FieldsToKeep), nil
}

func newDropFieldsStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		FieldsToDrop []string `yaml:"fields_to_drop"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if len(params.FieldsToDrop) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "fields_to_drop must not be empty")
	}
	return NewDropFields(cfg.id(), cfg.InputManifest, cfg.OutputManifest, params.FieldsToDrop), nil
}
