package model

import "time"

type StageType string

const (
	// TransformerStageType marks a stage that applies a per-record transform
	// under the parallel dispatcher.
	TransformerStageType StageType = "transformer"
	// ManifestStageType marks a stage that needs the whole manifest at once
	// (sort, join, projection).
	ManifestStageType StageType = "manifest"
)

// StageInfo describes one stage of a pipeline.
type StageInfo struct {
	Type           StageType
	Name           string
	InputManifest  string
	OutputManifest string
	// ExtraInputs lists additional manifests a stage reads, e.g. the right
	// side of a join.
	ExtraInputs []string
	Workers     int
	ChunkSize   int
}

// StageStats summarises a finished stage run.
type StageStats struct {
	RecordsIn  int
	RecordsOut int
	Elapsed    time.Duration
}
