package stages_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
	"github.com/voxpipe/voxpipe/pkg/stages"
)

func segmentFields(t *testing.T, rec *manifest.Record) (duration, offset float64) {
	t.Helper()
	duration, err := rec.Float("duration")
	require.NoError(t, err)
	offset, err = rec.Float("offset")
	require.NoError(t, err)
	return duration, offset
}

func TestSplitOnFixedDurationKeepsRemainder(t *testing.T) {
	t.Parallel()

	transformer := &stages.SplitOnFixedDuration{SegmentDuration: 2, DropLast: false, DropText: false}
	out, err := transformOne(t, transformer, `{"audio_filepath":"a.wav","duration":7,"text":"hello"}`)
	require.NoError(t, err)
	require.Len(t, out, 4)

	wantDurations := []float64{2, 2, 2, 1}
	wantOffsets := []float64{0, 2, 4, 6}
	for i, rec := range out {
		duration, offset := segmentFields(t, rec)
		assert.InDelta(t, wantDurations[i], duration, 1e-9)
		assert.InDelta(t, wantOffsets[i], offset, 1e-9)
		assert.True(t, rec.Has("text"))
	}
}

func TestSplitOnFixedDurationDropsLastAndText(t *testing.T) {
	t.Parallel()

	transformer := &stages.SplitOnFixedDuration{SegmentDuration: 2, DropLast: true, DropText: true}
	out, err := transformOne(t, transformer, `{"audio_filepath":"a.wav","duration":7,"text":"hello"}`)
	require.NoError(t, err)
	require.Len(t, out, 3)

	for _, rec := range out {
		assert.False(t, rec.Has("text"))
	}
}

func TestSplitOnFixedDurationExactMultiple(t *testing.T) {
	t.Parallel()

	// no zero-length remainder segment when the total divides evenly
	transformer := &stages.SplitOnFixedDuration{SegmentDuration: 2, DropLast: false, DropText: false}
	out, err := transformOne(t, transformer, `{"audio_filepath":"a.wav","duration":6,"text":"hello"}`)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestSplitOnFixedDurationShorterThanSegment(t *testing.T) {
	t.Parallel()

	transformer := &stages.SplitOnFixedDuration{SegmentDuration: 10, DropLast: true, DropText: true}
	out, err := transformOne(t, transformer, `{"audio_filepath":"a.wav","duration":3,"text":"hello"}`)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSplitOnFixedDurationMissingDuration(t *testing.T) {
	t.Parallel()

	transformer := &stages.SplitOnFixedDuration{SegmentDuration: 2}
	_, err := transformOne(t, transformer, `{"audio_filepath":"a.wav"}`)
	require.Error(t, err)
}

func TestSplitOnFixedDurationFactoryDefaults(t *testing.T) {
	t.Parallel()

	registry := stages.NewRegistry()

	_, err := registry.Build(stages.Config{
		Name:           "split_on_fixed_duration",
		InputManifest:  "in.json",
		OutputManifest: "out.json",
		Params:         paramsNode(t, "segment_duration: 0"),
	})
	var cfgErr *pipeline.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = registry.Build(stages.Config{
		Name:           "split_on_fixed_duration",
		InputManifest:  "in.json",
		OutputManifest: "out.json",
		Params:         paramsNode(t, "segment_duration: 20.5"),
	})
	require.NoError(t, err)
}
