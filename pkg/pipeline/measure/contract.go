package measure

import "time"

// Measure collects per-stage metrics for a pipeline run.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric holds the numbers for one stage.
type Metric interface {
	SetRecords(in, out int)
	Records() (in, out int)
	SetElapsed(elapsed time.Duration)
	Elapsed() time.Duration
}
