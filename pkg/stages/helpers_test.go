package stages_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// jsonRecord builds a record from one manifest line.
func jsonRecord(t *testing.T, line string) *manifest.Record {
	t.Helper()
	rec := manifest.NewRecord()
	require.NoError(t, rec.UnmarshalJSON([]byte(line)))
	return rec
}

func writeManifest(t *testing.T, path string, lines ...string) {
	t.Helper()
	records := make([]*manifest.Record, len(lines))
	for i, line := range lines {
		records[i] = jsonRecord(t, line)
	}
	require.NoError(t, manifest.Write(path, records))
}

func readManifest(t *testing.T, path string) []string {
	t.Helper()
	records, err := manifest.Read(path)
	require.NoError(t, err)
	lines := make([]string, len(records))
	for i, rec := range records {
		data, err := rec.MarshalJSON()
		require.NoError(t, err)
		lines[i] = string(data)
	}
	return lines
}

// paramsNode parses a YAML params block the way the pipeline file loader
// hands it to a stage factory.
func paramsNode(t *testing.T, src string) yaml.Node {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &node))
	return node
}

// transformOne runs a transformer on a single record built from line and
// returns the derived records.
func transformOne(t *testing.T, transformer pipeline.RecordTransformer, line string) ([]*manifest.Record, error) {
	t.Helper()
	return transformer.Transform(context.Background(), jsonRecord(t, line))
}

func manifestPaths(t *testing.T) (input, output string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "in.json"), filepath.Join(dir, "out.json")
}
