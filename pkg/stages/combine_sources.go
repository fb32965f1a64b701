package stages

import (
	"context"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// DefaultNAIndicator marks a source field value as unavailable.
const DefaultNAIndicator = "n/a"

// SourceSpec is one candidate field for CombineSources, in order of
// preference.
type SourceSpec struct {
	Field       string `yaml:"field"`
	OriginLabel string `yaml:"origin_label"`
}

// CombineSources populates a target field from the first candidate source
// whose value is present and differs from the unavailable indicator, and tags
// the chosen source in "<target>_origin". When no source is available both
// the target and the origin get the indicator itself.
type CombineSources struct {
	Sources     []SourceSpec
	Target      string
	NAIndicator string
}

func (c *CombineSources) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	out := rec.Clone()
	originField := c.Target + "_origin"

	for _, source := range c.Sources {
		value, ok := out.Get(source.Field)
		if !ok {
			continue
		}
		if text, isString := value.(string); isString && text == c.NAIndicator {
			continue
		}
		out.Set(c.Target, value)
		out.Set(originField, source.OriginLabel)
		return []*manifest.Record{out}, nil
	}

	out.Set(c.Target, c.NAIndicator)
	out.Set(originField, c.NAIndicator)
	return []*manifest.Record{out}, nil
}

func newCombineSourcesStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		Sources     []SourceSpec `yaml:"sources"`
		Target      string       `yaml:"target"`
		NAIndicator string       `yaml:"na_indicator"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if len(params.Sources) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "at least one source is required")
	}
	if params.Target == "" {
		return nil, pipeline.NewConfigurationError(cfg.id(), "target field is required")
	}
	if params.NAIndicator == "" {
		params.NAIndicator = DefaultNAIndicator
	}

	transformer := &CombineSources{
		Sources:     params.Sources,
		Target:      params.Target,
		NAIndicator: params.NAIndicator,
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, transformer, cfg.stageOptions()...), nil
}
