package stages

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// NewApplyInnerJoin builds a whole-manifest stage computing the inner
// equi-join of the input manifest (left) with a second manifest (right).
//
// When keys is empty the join keys default to the intersection of the two
// manifests' field-name sets. Output order follows the left manifest, with
// matching right records in their own order. One output record is produced
// per matching pair, carrying all fields from both sides; on a non-key field
// name collision the left value wins and the right value is discarded.
func NewApplyInnerJoin(id, inputManifest, outputManifest, rightManifest string, keys []string) pipeline.Stage {
	return newManifestStage(id, inputManifest, outputManifest, []string{rightManifest}, func(_ context.Context, left []*manifest.Record) ([]*manifest.Record, error) {
		right, err := manifest.Read(rightManifest)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read right manifest")
		}

		joinKeys := keys
		if len(joinKeys) == 0 {
			joinKeys = commonFields(left, right)
			if len(joinKeys) == 0 {
				return nil, pipeline.NewConfigurationError(id, "manifests share no field to join on")
			}
		}

		index := make(map[string][]*manifest.Record)
		for _, rec := range right {
			key, ok := joinKey(rec, joinKeys)
			if !ok {
				continue
			}
			index[key] = append(index[key], rec)
		}

		var output []*manifest.Record
		for _, leftRec := range left {
			key, ok := joinKey(leftRec, joinKeys)
			if !ok {
				continue
			}
			for _, rightRec := range index[key] {
				combined := leftRec.Clone()
				for _, field := range rightRec.Keys() {
					if combined.Has(field) {
						continue
					}
					value, _ := rightRec.Get(field)
					combined.Set(field, value)
				}
				output = append(output, combined)
			}
		}
		return output, nil
	})
}

// commonFields returns the sorted intersection of the field names appearing
// anywhere in each manifest.
func commonFields(left, right []*manifest.Record) []string {
	leftFields := fieldSet(left)
	rightFields := fieldSet(right)

	var common []string
	for field := range leftFields {
		if _, ok := rightFields[field]; ok {
			common = append(common, field)
		}
	}
	sort.Strings(common)
	return common
}

func fieldSet(records []*manifest.Record) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rec := range records {
		for _, field := range rec.Keys() {
			set[field] = struct{}{}
		}
	}
	return set
}

// joinKey builds a composite key from the record's values of the join
// fields. A record missing any join field cannot match and is skipped.
func joinKey(rec *manifest.Record, keys []string) (string, bool) {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value, ok := rec.Get(key)
		if !ok {
			return "", false
		}
		parts = append(parts, encodeForCompare(value))
	}
	return strings.Join(parts, "\x1f"), true
}

func newApplyInnerJoinStage(cfg Config) (pipeline.Stage, error) {
	params := struct {
		RightManifestFile string    `yaml:"right_manifest_file"`
		ColumnID          yaml.Node `yaml:"column_id"`
	}{}
	if err := decodeParams(cfg, &params); err != nil {
		return nil, err
	}
	if params.RightManifestFile == "" {
		return nil, pipeline.NewConfigurationError(cfg.id(), "right_manifest_file is required")
	}
	keys, err := stringList(cfg.id(), params.ColumnID)
	if err != nil {
		return nil, err
	}

	return NewApplyInnerJoin(cfg.id(), cfg.InputManifest, cfg.OutputManifest, params.RightManifestFile, keys), nil
}
