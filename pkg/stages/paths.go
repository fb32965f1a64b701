package stages

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// audioFilepathField is the conventional field holding the audio file path.
const audioFilepathField = "audio_filepath"

// ChangeToRelativePath rewrites audio file paths relative to a base
// directory, typically the directory the manifest will be stored in.
type ChangeToRelativePath struct {
	BaseDir string
}

func (c *ChangeToRelativePath) Transform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	path, err := rec.String(audioFilepathField)
	if err != nil {
		return nil, err
	}
	relative, err := filepath.Rel(c.BaseDir, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to relativize %q against %q", path, c.BaseDir)
	}
	out := rec.Clone()
	out.Set(audioFilepathField, relative)
	return []*manifest.Record{out}, nil
}

func newChangeToRelativePathStage(cfg Config) (pipeline.Stage, error) {
	var params struct {
		BaseDir string `yaml:"base_dir"`
	}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.BaseDir == "" {
		return nil, pipeline.NewConfigurationError(cfg.id(), "base_dir is required")
	}
	return pipeline.NewTransformerStage(cfg.id(), cfg.InputManifest, cfg.OutputManifest, &ChangeToRelativePath{BaseDir: params.BaseDir}, cfg.stageOptions()...), nil
}
