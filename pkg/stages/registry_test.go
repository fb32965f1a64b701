package stages_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxpipe/voxpipe/pkg/pipeline"
	"github.com/voxpipe/voxpipe/pkg/stages"
)

func TestRegistryUnknownStage(t *testing.T) {
	t.Parallel()

	_, err := stages.NewRegistry().Build(stages.Config{Name: "no_such_stage"})
	var cfgErr *pipeline.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "no_such_stage")
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := stages.NewRegistry()
	err := registry.Register("make_lowercase", func(cfg stages.Config) (pipeline.Stage, error) {
		return nil, nil
	})
	var cfgErr *pipeline.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	require.NoError(t, registry.Register("custom_stage", func(cfg stages.Config) (pipeline.Stage, error) {
		return nil, nil
	}))
	assert.Contains(t, registry.Names(), "custom_stage")
}

func TestRegistryNamesListsBuiltins(t *testing.T) {
	t.Parallel()

	names := stages.NewRegistry().Names()
	for _, want := range []string{
		"add_constant_fields",
		"apply_inner_join",
		"change_to_relative_path",
		"combine_sources",
		"drop_fields",
		"duplicate_fields",
		"keep_fields",
		"make_lowercase",
		"rename_fields",
		"sort_manifest",
		"split_on_fixed_duration",
		"subprocess",
	} {
		assert.Contains(t, names, want)
	}
	assert.IsIncreasing(t, names)
}

func TestRegistryStageUsesConfiguredID(t *testing.T) {
	t.Parallel()

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "make_lowercase",
		ID:             "lowercase_pred",
		InputManifest:  "in.json",
		OutputManifest: "out.json",
	})
	require.NoError(t, err)
	assert.Equal(t, "lowercase_pred", stage.Info().Name)
}

func TestRegistryStageReportsProgress(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input,
		`{"text":"One"}`,
		`{"text":"Two"}`,
		`{"text":"Three"}`,
	)

	var (
		mu      sync.Mutex
		stageID string
		updates int
	)
	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "make_lowercase",
		InputManifest:  input,
		OutputManifest: output,
		ChunkSize:      1,
		Workers:        2,
		Progress: func(stage string, completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			stageID = stage
			updates++
		},
	})
	require.NoError(t, err)

	stats, err := stage.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.RecordsIn)
	assert.Equal(t, 3, stats.RecordsOut)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "make_lowercase", stageID)
	assert.Equal(t, 3, updates)
}
