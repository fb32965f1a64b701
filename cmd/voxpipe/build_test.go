package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

func stageParams(t *testing.T, src string) yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	return node
}

func TestBuildPipelineRunsConfiguredStages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "in.json")
	middle := filepath.Join(dir, "mid.json")
	output := filepath.Join(dir, "out.json")

	rec := manifest.NewRecord()
	rec.Set("audio_filepath", "a.wav")
	rec.Set("text", "HELLO World")
	require.NoError(t, manifest.Write(input, []*manifest.Record{rec}))

	cfg := &config.Pipeline{
		Workers: 2,
		Stages: []config.Stage{
			{Name: "make_lowercase", InputManifest: input, OutputManifest: middle},
			{Name: "drop_fields", InputManifest: middle, OutputManifest: output, Params: stageParams(t, "fields_to_drop: [audio_filepath]")},
		},
	}

	pipe, err := buildPipeline(nil, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, pipe.Run(context.Background()))

	got, err := manifest.Read(output)
	require.NoError(t, err)
	require.Len(t, got, 1)
	data, err := got[0].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hello world"}`, string(data))
}

func TestBuildPipelineRejectsUnknownStage(t *testing.T) {
	t.Parallel()

	cfg := &config.Pipeline{
		Stages: []config.Stage{
			{Name: "no_such_stage", InputManifest: "in.json", OutputManifest: "out.json"},
		},
	}

	_, err := buildPipeline(nil, cfg, nil)
	var cfgErr *pipeline.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildPipelineSameStageTwiceNeedsIDs(t *testing.T) {
	t.Parallel()

	stageCfg := func(id, in, out string) config.Stage {
		return config.Stage{Name: "make_lowercase", ID: id, InputManifest: in, OutputManifest: out}
	}

	cfg := &config.Pipeline{
		Stages: []config.Stage{
			stageCfg("", "a.json", "b.json"),
			stageCfg("", "b.json", "c.json"),
		},
	}
	_, err := buildPipeline(nil, cfg, nil)
	var cfgErr *pipeline.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	cfg = &config.Pipeline{
		Stages: []config.Stage{
			stageCfg("lower_first", "a.json", "b.json"),
			stageCfg("lower_second", "b.json", "c.json"),
		},
	}
	_, err = buildPipeline(nil, cfg, nil)
	assert.NoError(t, err)
}
