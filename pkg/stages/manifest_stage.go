package stages

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

// manifestStage runs an operation over the fully materialized manifest.
// Whole-manifest operators are defined over the complete, order-sensitive
// set of records, so there is no chunking and no worker pool here.
type manifestStage struct {
	info  *model.StageInfo
	apply func(ctx context.Context, records []*manifest.Record) ([]*manifest.Record, error)
}

func newManifestStage(id, inputManifest, outputManifest string, extraInputs []string, apply func(ctx context.Context, records []*manifest.Record) ([]*manifest.Record, error)) *manifestStage {
	return &manifestStage{
		info: &model.StageInfo{
			Type:           model.ManifestStageType,
			Name:           id,
			InputManifest:  inputManifest,
			OutputManifest: outputManifest,
			ExtraInputs:    extraInputs,
		},
		apply: apply,
	}
}

func (s *manifestStage) Info() *model.StageInfo { return s.info }

func (s *manifestStage) Run(ctx context.Context) (model.StageStats, error) {
	start := time.Now()

	records, err := manifest.Read(s.info.InputManifest)
	if err != nil {
		return model.StageStats{}, errors.Wrap(err, "unable to read input manifest")
	}

	output, err := s.apply(ctx, records)
	if err != nil {
		return model.StageStats{}, err
	}

	if err := manifest.Write(s.info.OutputManifest, output); err != nil {
		return model.StageStats{}, errors.Wrap(err, "unable to write output manifest")
	}

	return model.StageStats{
		RecordsIn:  len(records),
		RecordsOut: len(output),
		Elapsed:    time.Since(start),
	}, nil
}
