// Package measure collects per-stage run statistics: records in and out and
// wall time. It plugs into the pipeline through the PipelineMeasure option.
package measure

type defaultMeasure struct {
	stages map[string]Metric
}

// NewDefaultMeasure creates an in-memory measure.
func NewDefaultMeasure() Measure {
	return &defaultMeasure{stages: make(map[string]Metric)}
}

func (m *defaultMeasure) AddMetric(name string) Metric {
	mt := &metric{}
	m.stages[name] = mt
	return mt
}

func (m *defaultMeasure) GetMetric(name string) Metric {
	return m.stages[name]
}

func (m *defaultMeasure) AllMetrics() map[string]Metric {
	return m.stages
}
