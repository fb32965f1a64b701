package stages_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
	"github.com/voxpipe/voxpipe/pkg/stages"
)

func TestAddConstantFields(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input,
		`{"audio_filepath":"a.wav","text":"hi"}`,
		`{"audio_filepath":"b.wav","text":"there","lang":"de"}`,
	)

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "add_constant_fields",
		InputManifest:  input,
		OutputManifest: output,
		Params: paramsNode(t, `
fields:
  lang: en
  sample_rate: 16000
`),
	})
	require.NoError(t, err)

	_, err = stage.Run(context.Background())
	require.NoError(t, err)

	// new fields append in declaration order; an existing field keeps its slot
	assert.Equal(t, []string{
		`{"audio_filepath":"a.wav","text":"hi","lang":"en","sample_rate":16000}`,
		`{"audio_filepath":"b.wav","text":"there","lang":"en","sample_rate":16000}`,
	}, readManifest(t, output))
}

func TestDuplicateFields(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input, `{"text":"Hello.","duration":1.5}`)

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "duplicate_fields",
		InputManifest:  input,
		OutputManifest: output,
		Params: paramsNode(t, `
duplicate_fields:
  text: text_pc
`),
	})
	require.NoError(t, err)

	_, err = stage.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{`{"text":"Hello.","duration":1.5,"text_pc":"Hello."}`}, readManifest(t, output))
}

func TestDuplicateFieldsMissingSourceAborts(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input,
		`{"text":"ok"}`,
		`{"audio_filepath":"b.wav"}`,
	)

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "duplicate_fields",
		InputManifest:  input,
		OutputManifest: output,
		Params: paramsNode(t, `
duplicate_fields:
  text: text_copy
`),
	})
	require.NoError(t, err)

	_, err = stage.Run(context.Background())
	var missing *manifest.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "text", missing.Field)

	// a failing stage leaves no output manifest behind
	assert.NoFileExists(t, output)
}

func TestRenameFields(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input, `{"audio_filepath":"a.wav","answer":"hello"}`)

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "rename_fields",
		InputManifest:  input,
		OutputManifest: output,
		Params: paramsNode(t, `
rename_fields:
  answer: text
`),
	})
	require.NoError(t, err)

	_, err = stage.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{`{"audio_filepath":"a.wav","text":"hello"}`}, readManifest(t, output))
}

func TestRenameFieldsMissingSourceAborts(t *testing.T) {
	t.Parallel()

	input, output := manifestPaths(t)
	writeManifest(t, input, `{"audio_filepath":"a.wav"}`)

	stage, err := stages.NewRegistry().Build(stages.Config{
		Name:           "rename_fields",
		InputManifest:  input,
		OutputManifest: output,
		Params: paramsNode(t, `
rename_fields:
  answer: text
`),
	})
	require.NoError(t, err)

	_, err = stage.Run(context.Background())
	var missing *manifest.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "answer", missing.Field)
}

func TestMakeLowercase(t *testing.T) {
	t.Parallel()

	transformer := &stages.MakeLowercase{TextKey: "text"}
	out, err := transformOne(t, transformer, `{"text":"Hello Привет 123"}`)
	require.NoError(t, err)
	require.Len(t, out, 1)

	text, err := out[0].String("text")
	require.NoError(t, err)
	assert.Equal(t, "hello привет 123", text)
}

func TestMakeLowercaseCustomKey(t *testing.T) {
	t.Parallel()

	transformer := &stages.MakeLowercase{TextKey: "answer"}
	out, err := transformOne(t, transformer, `{"answer":"YES","text":"Untouched"}`)
	require.NoError(t, err)
	require.Len(t, out, 1)

	answer, err := out[0].String("answer")
	require.NoError(t, err)
	assert.Equal(t, "yes", answer)
	text, err := out[0].String("text")
	require.NoError(t, err)
	assert.Equal(t, "Untouched", text)
}

func TestMakeLowercaseNonStringField(t *testing.T) {
	t.Parallel()

	transformer := &stages.MakeLowercase{TextKey: "text"}
	_, err := transformOne(t, transformer, `{"text":42}`)
	var typeErr *manifest.FieldTypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestFieldStagesRejectEmptyParams(t *testing.T) {
	t.Parallel()

	registry := stages.NewRegistry()
	for _, name := range []string{"add_constant_fields", "duplicate_fields", "rename_fields"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := registry.Build(stages.Config{
				Name:           name,
				InputManifest:  "in.json",
				OutputManifest: "out.json",
			})
			var cfgErr *pipeline.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}
