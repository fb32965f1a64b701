package stages

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// Config carries the construction parameters common to every stage plus the
// stage-specific params block from the pipeline file.
type Config struct {
	// Name is the registry name of the stage to build.
	Name string
	// ID is the unique instance name inside the pipeline. Defaults to Name;
	// pipelines using the same stage twice must set distinct IDs.
	ID             string
	InputManifest  string
	OutputManifest string
	Workers        int
	ChunkSize      int
	// Params holds the stage-specific parameters, still in YAML form so each
	// factory can decode them into its own struct.
	Params yaml.Node
	// Progress, when set, receives dispatcher chunk-completion updates for
	// per-record stages.
	Progress func(stage string, completed, total int)
}

func (cfg Config) id() string {
	if cfg.ID != "" {
		return cfg.ID
	}
	return cfg.Name
}

func (cfg Config) stageOptions() []pipeline.StageOption {
	opts := []pipeline.StageOption{
		pipeline.StageWorkers(cfg.Workers),
		pipeline.StageChunkSize(cfg.ChunkSize),
	}
	if cfg.Progress != nil {
		id := cfg.id()
		progress := cfg.Progress
		opts = append(opts, pipeline.StageProgress(func(completed, total int) {
			progress(id, completed, total)
		}))
	}
	return opts
}

// Factory builds a stage from its configuration. Invalid parameter
// combinations fail here, before any processing begins.
type Factory func(cfg Config) (pipeline.Stage, error)

// Registry maps stage names to factories. Stage names are resolved while the
// pipeline is built, so an unknown name fails the whole pipeline up front
// instead of mid-run.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with all built-in stages registered.
func NewRegistry() *Registry {
	reg := &Registry{factories: make(map[string]Factory)}
	builtin := map[string]Factory{
		"combine_sources":         newCombineSourcesStage,
		"add_constant_fields":     newAddConstantFieldsStage,
		"duplicate_fields":        newDuplicateFieldsStage,
		"rename_fields":           newRenameFieldsStage,
		"make_lowercase":          newMakeLowercaseStage,
		"split_on_fixed_duration": newSplitOnFixedDurationStage,
		"change_to_relative_path": newChangeToRelativePathStage,
		"sort_manifest":           newSortManifestStage,
		"apply_inner_join":        newApplyInnerJoinStage,
		"keep_fields":             newKeepFieldsStage,
		"drop_fields":             newDropFieldsStage,
		"subprocess":              newSubprocessStage,
	}
	for name, factory := range builtin {
		reg.factories[name] = factory
	}
	return reg
}

// Register adds a custom stage factory. Registering over an existing name is
// a ConfigurationError.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return pipeline.NewConfigurationError("", "stage name must not be empty")
	}
	if _, ok := r.factories[name]; ok {
		return pipeline.NewConfigurationError(name, "stage already registered")
	}
	r.factories[name] = factory
	return nil
}

// Build constructs the stage named in cfg.
func (r *Registry) Build(cfg Config) (pipeline.Stage, error) {
	factory, ok := r.factories[cfg.Name]
	if !ok {
		return nil, pipeline.NewConfigurationError(cfg.Name, "unknown stage")
	}
	return factory(cfg)
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
