package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

// Pipeline is an ordered list of stages executed sequentially. One stage runs
// to completion before the next starts; stages communicate only through the
// manifest files they read and write.
type Pipeline struct {
	runID     string
	log       *slog.Logger
	opts      []model.PipelineOption
	stages    []Stage
	flow      graph.Graph[string, string]
	producers map[string]string
	startTime time.Time
}

// New creates a new pipeline. A nil logger falls back to slog.Default().
func New(log *slog.Logger, opts ...model.PipelineOption) (*Pipeline, error) {
	if log == nil {
		log = slog.Default()
	}
	pipe := &Pipeline{
		runID:     uuid.NewString(),
		log:       log,
		opts:      opts,
		flow:      graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		producers: make(map[string]string),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// RunID identifies this pipeline run in logs.
func (p *Pipeline) RunID() string { return p.runID }

// AddStage appends a stage. Stage wiring is validated here, at build time: a
// duplicate output manifest or a manifest flow that loops back to an earlier
// stage is a ConfigurationError before anything runs.
func (p *Pipeline) AddStage(stage Stage) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}
	if stage == nil {
		return ErrStageMustBeSet
	}
	info := stage.Info()
	if info.Name == "" {
		return NewConfigurationError("", "stage must have a name")
	}

	if err := p.flow.AddVertex(info.Name); err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return NewConfigurationError(info.Name, "duplicate stage name")
		}
		return errors.Wrap(err, "unable to add stage vertex")
	}

	var parents []string
	inputs := append([]string{info.InputManifest}, info.ExtraInputs...)
	for _, input := range inputs {
		producer, ok := p.producers[input]
		if !ok {
			continue
		}
		parents = append(parents, producer)
		if err := p.flow.AddEdge(producer, info.Name); err != nil {
			if errors.Is(err, graph.ErrEdgeCreatesCycle) {
				return NewConfigurationError(info.Name, "manifest %s creates a cycle", input)
			}
			if !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return errors.Wrap(err, "unable to add stage edge")
			}
		}
	}
	if producer, ok := p.producers[info.OutputManifest]; ok {
		return NewConfigurationError(info.Name, "output manifest %s already written by stage %q", info.OutputManifest, producer)
	}
	p.producers[info.OutputManifest] = info.Name

	for _, opt := range p.opts {
		if err := opt.PrepareStage(parents, info); err != nil {
			return errors.Wrap(err, "unable to prepare stage")
		}
	}

	p.stages = append(p.stages, stage)
	return nil
}

// Run executes the stages in order and waits for each to finish. It stops on
// the first stage failure.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, stage := range p.stages {
		info := stage.Info()
		p.log.Info("stage started",
			"run_id", p.runID,
			"stage", info.Name,
			"input", info.InputManifest,
			"output", info.OutputManifest,
		)

		stats, err := stage.Run(ctx)
		if err != nil {
			return errors.Wrapf(err, "stage %q", info.Name)
		}

		for _, opt := range p.opts {
			if optErr := opt.AfterStage(info, stats); optErr != nil {
				return errors.Wrap(optErr, "unable to finish stage option")
			}
		}
		p.log.Info("stage finished",
			"run_id", p.runID,
			"stage", info.Name,
			"records_in", stats.RecordsIn,
			"records_out", stats.RecordsOut,
			"elapsed", stats.Elapsed,
		)
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}
	p.log.Info("pipeline finished", "run_id", p.runID, "stages", len(p.stages), "elapsed", time.Since(p.startTime))

	return nil
}
