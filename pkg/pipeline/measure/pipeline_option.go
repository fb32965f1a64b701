package measure

import (
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStage(parents []string, info *model.StageInfo) error {
	pm.AddMetric(info.Name)
	return nil
}

func (pm *pipelineMeasure) AfterStage(info *model.StageInfo, stats model.StageStats) error {
	mt := pm.GetMetric(info.Name)
	if mt == nil {
		mt = pm.AddMetric(info.Name)
	}
	mt.SetRecords(stats.RecordsIn, stats.RecordsOut)
	mt.SetElapsed(stats.Elapsed)
	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure wraps a Measure into a pipeline option.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
