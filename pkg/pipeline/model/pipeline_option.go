package model

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStage runs when a stage is added to the pipeline. Parents names
	// the stages whose output manifests this stage consumes.
	PrepareStage(parents []string, info *StageInfo) error
	// AfterStage runs once a stage has finished successfully.
	AfterStage(info *StageInfo, stats StageStats) error
	// Finish runs after the pipeline is finished.
	Finish() error
}
