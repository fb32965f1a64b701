package stages

import (
	"context"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// AddConstantFields sets the same fixed fields on every record, e.g. a
// language label for downstream training.
type AddConstantFields struct {
	Fields []constantField
}

func (a *AddConstantFields) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	out := rec.Clone()
	for _, field := range a.Fields {
		out.Set(field.Key, field.Value)
	}
	return []*manifest.Record{out}, nil
}

// DuplicateFields copies fields under new names, e.g. keep "text" and work on
// a "text_no_pc" copy downstream. A missing source field aborts the stage.
type DuplicateFields struct {
	Fields []fieldPair
}

func (d *DuplicateFields) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	out := rec.Clone()
	for _, pair := range d.Fields {
		value, ok := out.Get(pair.Src)
		if !ok {
			return nil, manifest.NewMissingField(pair.Src, rec)
		}
		out.Set(pair.Dst, value)
	}
	return []*manifest.Record{out}, nil
}

// RenameFields moves field values under new names. A missing source field
// aborts the stage.
type RenameFields struct {
	Fields []fieldPair
}

func (r *RenameFields) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	out := rec.Clone()
	for _, pair := range r.Fields {
		value, ok := out.Get(pair.Src)
		if !ok {
			return nil, manifest.NewMissingField(pair.Src, rec)
		}
		out.Set(pair.Dst, value)
		out.Delete(pair.Src)
	}
	return []*manifest.Record{out}, nil
}

// MakeLowercase lowercases one text field.
type MakeLowercase struct {
	TextKey string
}

func (m *MakeLowercase) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	text, err := rec.String(m.TextKey)
	if err != nil {
		return nil, err
	}
	out := rec.Clone()
	out.Set(m.TextKey, strings.ToLower(text))
	return []*manifest.Record{out}, nil
}

func newAddConstantFieldsStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		Fields yaml.Node `yaml:"fields"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	fields, err := orderedConstants(cfg.id(), params.Fields)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "fields must not be empty")
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, &AddConstantFields{Fields: fields}, cfg.stageOptions()...), nil
}

func newDuplicateFieldsStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		DuplicateFields yaml.Node `yaml:"duplicate_fields"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	pairs, err := orderedStringPairs(cfg.id(), params.DuplicateFields)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "duplicate_fields must not be empty")
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, &DuplicateFields{Fields: pairs}, cfg.stageOptions()...), nil
}

func newRenameFieldsStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		RenameFields yaml.Node `yaml:"rename_fields"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	pairs, err := orderedStringPairs(cfg.id(), params.RenameFields)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, pipeline.NewConfigurationError(cfg.id(), "rename_fields must not be empty")
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, &RenameFields{Fields: pairs}, cfg.stageOptions()...), nil
}

func newMakeLowercaseStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		TextKey string `yaml:"text_key"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.TextKey == "" {
		params.TextKey = "text"
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, &MakeLowercase{TextKey: params.TextKey}, cfg.stageOptions()...), nil
}
