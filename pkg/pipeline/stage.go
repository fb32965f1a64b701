package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/manifest"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

// Stage is one step of a pipeline: an independent, restartable unit that
// reads a manifest and writes a manifest.
type Stage interface {
	Info() *model.StageInfo
	Run(ctx context.Context) (model.StageStats, error)
}

// RecordTransformer is the per-record stage contract: one input record in,
// zero or more derived records out. Implementations must be deterministic,
// must not depend on any record other than the one passed in, and must not
// write shared state; the dispatcher relies on this to run them in parallel.
//
// Zero outputs filter the record out, one output mutates it in place, many
// outputs fan it out. Derived records must be copies (Record.Clone); they
// must not alias the input.
type RecordTransformer interface {
	Transform(ctx context.Context, rec *manifest.Record) ([]*manifest.Record, error)
}

// TransformFunc adapts a plain function to the RecordTransformer interface.
type TransformFunc func(ctx context.Context, rec *manifest.Record) ([]*manifest.Record, error)

func (f TransformFunc) Transform(ctx context.Context, rec *manifest.Record) ([]*manifest.Record, error) {
	return f(ctx, rec)
}

// ProgressFunc is called as dispatcher chunks complete. Observability only;
// it never affects ordering.
type ProgressFunc func(completed, total int)

// TransformerStage runs a RecordTransformer over a whole manifest: read,
// dispatch across workers, write.
type TransformerStage struct {
	info        *model.StageInfo
	transformer RecordTransformer
	progress    ProgressFunc
}

// StageOption configures a TransformerStage.
type StageOption func(s *TransformerStage)

// StageWorkers bounds the dispatcher worker pool.
func StageWorkers(workers int) StageOption {
	return func(s *TransformerStage) {
		s.info.Workers = workers
	}
}

// StageChunkSize sets the number of records handed to a worker at once.
func StageChunkSize(size int) StageOption {
	return func(s *TransformerStage) {
		s.info.ChunkSize = size
	}
}

// StageProgress registers a chunk-completion callback.
func StageProgress(fn ProgressFunc) StageOption {
	return func(s *TransformerStage) {
		s.progress = fn
	}
}

// NewTransformerStage builds a per-record stage from a transformer.
func NewTransformerStage(name, inputManifest, outputManifest string, transformer RecordTransformer, opts ...StageOption) *TransformerStage {
	stage := &TransformerStage{
		info: &model.StageInfo{
			Type:           model.TransformerStageType,
			Name:           name,
			InputManifest:  inputManifest,
			OutputManifest: outputManifest,
		},
		transformer: transformer,
	}
	for _, opt := range opts {
		opt(stage)
	}
	return stage
}

func (s *TransformerStage) Info() *model.StageInfo { return s.info }

// Run executes the stage. The output manifest is only written once every
// record has been transformed; a failing transform aborts the stage and
// leaves no output behind.
func (s *TransformerStage) Run(ctx context.Context) (model.StageStats, error) {
	start := time.Now()

	records, err := manifest.Read(s.info.InputManifest)
	if err != nil {
		return model.StageStats{}, errors.Wrap(err, "unable to read input manifest")
	}

	dispatcher := &Dispatcher{
		Workers:    s.info.Workers,
		ChunkSize:  s.info.ChunkSize,
		OnProgress: s.progress,
	}
	output, err := dispatcher.Run(ctx, s.transformer, records)
	if err != nil {
		return model.StageStats{}, err
	}

	if err := manifest.Write(s.info.OutputManifest, output); err != nil {
		return model.StageStats{}, errors.Wrap(err, "unable to write output manifest")
	}

	return model.StageStats{
		RecordsIn:  len(records),
		RecordsOut: len(output),
		Elapsed:    time.Since(start),
	}, nil
}
