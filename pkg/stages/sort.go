package stages

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// NewSortManifest builds a whole-manifest stage that stably sorts records by
// one field. Ties keep their original relative order; stability is part of
// the contract, not incidental. A record lacking the sort field aborts the
// stage.
func NewSortManifest(id, inputManifest, outputManifest, sortBy string, descending bool) pipeline.Stage {
	return newManifestStage(id, inputManifest, outputManifest, nil, func(_ context.Context, records []*manifest.Record) ([]*manifest.Record, error) {
		keys := make([]any, len(records))
		for i, rec := range records {
			value, ok := rec.Get(sortBy)
			if !ok {
				return nil, manifest.NewMissingField(sortBy, rec)
			}
			keys[i] = value
		}

		sorted := make([]*manifest.Record, len(records))
		copy(sorted, records)
		indices := make([]int, len(records))
		for i := range indices {
			indices[i] = i
		}
		sort.SliceStable(indices, func(i, j int) bool {
			cmp := compareValues(keys[indices[i]], keys[indices[j]])
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
		for pos, idx := range indices {
			sorted[pos] = records[idx]
		}
		return sorted, nil
	})
}

// compareValues orders two field values deterministically: numerically when
// both are numbers, lexically otherwise, with values of different kinds
// falling back to their compact JSON encoding.
func compareValues(a, b any) int {
	fa, aIsNum := numericValue(a)
	fb, bIsNum := numericValue(b)
	if aIsNum && bIsNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}

	sa, aIsStr := a.(string)
	sb, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.Compare(sa, sb)
	}

	ba, aIsBool := a.(bool)
	bb, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		switch {
		case !ba && bb:
			return -1
		case ba && !bb:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(encodeForCompare(a), encodeForCompare(b))
}

// numericValue normalizes the numeric representations a field value can
// carry: json.Number from the manifest reader, float64 or int from values set
// in memory by other stages.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func encodeForCompare(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func newSortManifestStage(cfg Config) (pipeline.Stage, error) {
	params := struct {
		AttributeSortBy string `yaml:"attribute_sort_by"`
		Descending      *bool  `yaml:"descending"`
	}{}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.AttributeSortBy == "" {
		return nil, pipeline.NewConfigurationError(cfg.id(), "attribute_sort_by is required")
	}
	descending := true
	if params.Descending != nil {
		descending = *params.Descending
	}
	return NewSortManifest(cfg.id(), cfg.InputManifest, cfg.OutputManifest, params.AttributeSortBy, descending), nil
}
