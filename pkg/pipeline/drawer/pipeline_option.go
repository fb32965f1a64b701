package drawer

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/voxpipe/voxpipe/pkg/pipeline/measure"
	"github.com/voxpipe/voxpipe/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	return nil
}

func (pd *pipelineDrawer) PrepareStage(parents []string, info *model.StageInfo) error {
	err := pd.AddStage(info.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add stage to drawer")
	}
	for _, parent := range parents {
		err := pd.AddLink(parent, info.Name)
		if err != nil {
			return errors.Wrap(err, "unable to link stages in drawer")
		}
	}

	return nil
}

func (pd *pipelineDrawer) AfterStage(info *model.StageInfo, stats model.StageStats) error {
	label := fmt.Sprintf("%d in / %d out / %s", stats.RecordsIn, stats.RecordsOut, stats.Elapsed.Round(time.Millisecond))
	err := pd.SetLabel(info.Name, label)
	if err != nil {
		return errors.Wrap(err, "unable to label stage")
	}

	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}
	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer wraps a Drawer into a pipeline option. measure may be nil;
// when set, the drawn graph is coloured by stage run time.
func PipelineDrawer(drawer Drawer, m measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, m}
}
