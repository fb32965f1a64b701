package pipeline_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

func makeRecords(t *testing.T, total int) []*manifest.Record {
	t.Helper()
	records := make([]*manifest.Record, total)
	for i := 0; i < total; i++ {
		rec := manifest.NewRecord()
		rec.Set("id", json.Number(strconv.Itoa(i)))
		rec.Set("text", "utterance "+strconv.Itoa(i))
		records[i] = rec
	}
	return records
}

func recordIDs(t *testing.T, records []*manifest.Record) []int {
	t.Helper()
	ids := make([]int, len(records))
	for i, rec := range records {
		id, err := rec.Int("id")
		require.NoError(t, err)
		ids[i] = int(id)
	}
	return ids
}

func identityTransform(_ context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	return []*manifest.Record{rec.Clone()}, nil
}

var _ pipeline.RecordTransformer = pipeline.TransformFunc(identityTransform)
