package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("p must be set")
	ErrStageMustBeSet    = errors.New("stage must be set")
)

// ConfigurationError reports an invalid combination of stage parameters. It
// is raised while the pipeline is built, before any processing begins.
type ConfigurationError struct {
	Stage  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("invalid pipeline configuration: %s", e.Reason)
	}
	return fmt.Sprintf("stage %q: invalid configuration: %s", e.Stage, e.Reason)
}

// NewConfigurationError builds a ConfigurationError for a stage.
func NewConfigurationError(stage, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// TransformFailure wraps an error raised inside a per-record transform with
// the offending record's context. The dispatcher aborts on the first one.
type TransformFailure struct {
	RecordIndex int
	Record      string
	Err         error
}

func (e *TransformFailure) Error() string {
	return fmt.Sprintf("transform failed on record %d (%s): %v", e.RecordIndex, e.Record, e.Err)
}

func (e *TransformFailure) Unwrap() error { return e.Err }
