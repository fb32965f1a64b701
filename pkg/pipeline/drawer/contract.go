package drawer

import (
	"github.com/voxpipe/voxpipe/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(stageName string) error
	// AddLink adds a link between a parent stage and a child stage.
	AddLink(parentStageName, childStageName string) error
	// SetLabel annotates a stage with run information.
	SetLabel(stageName, label string) error
	// AddMeasure colours the graph from collected stage metrics.
	AddMeasure(measure measure.Measure) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
