package stages

import (
	"context"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// SplitOnFixedDuration fans one audio entry out into fixed-length segment
// entries. It does not touch the audio itself: each derived record gets the
// segment "duration" and a computed "offset", which downstream training code
// uses to slice the audio on the fly.
type SplitOnFixedDuration struct {
	// SegmentDuration is the desired duration of each segment, in seconds.
	SegmentDuration float64
	// DropLast drops the shorter remainder segment when the total duration is
	// not divisible by SegmentDuration.
	DropLast bool
	// DropText removes the "text" field from derived records since the
	// transcript no longer matches a sub-segment.
	DropText bool
}

func (s *SplitOnFixedDuration) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	total, err := rec.Float("duration")
	if err != nil {
		return nil, err
	}

	segments := int(total / s.SegmentDuration)
	out := make([]*manifest.Record, 0, segments+1)
	for idx := 0; idx < segments; idx++ {
		derived := rec.Clone()
		derived.Set("duration", s.SegmentDuration)
		derived.Set("offset", float64(idx)*s.SegmentDuration)
		if s.DropText {
			derived.Delete("text")
		}
		out = append(out, derived)
	}

	remainder := total - s.SegmentDuration*float64(segments)
	if !s.DropLast && remainder > 0 {
		derived := rec.Clone()
		derived.Set("duration", remainder)
		derived.Set("offset", s.SegmentDuration*float64(segments))
		if s.DropText {
			derived.Delete("text")
		}
		out = append(out, derived)
	}

	return out, nil
}

func newSplitOnFixedDurationStage(cfg Config) (pipeline.Stage, error) {
	params := struct {
		SegmentDuration float64 `yaml:"segment_duration"`
		DropLast        *bool   `yaml:"drop_last"`
		DropText        *bool   `yaml:"drop_text"`
	}{}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.SegmentDuration <= 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "segment_duration must be greater than 0")
	}

	transformer := &SplitOnFixedDuration{
		SegmentDuration: params.SegmentDuration,
		DropLast:        true,
		DropText:        true,
	}
	if params.DropLast != nil {
		transformer.DropLast = *params.DropLast
	}
	if params.DropText != nil {
		transformer.DropText = *params.DropText
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, transformer, cfg.stageOptions()...), nil
}
