package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Pipeline is a declarative pipeline definition: defaults plus an ordered
// list of stages.
type Pipeline struct {
	// Workers and ChunkSize are pipeline-wide defaults for per-record
	// stages; individual stages may override them.
	Workers   int     `yaml:"workers"`
	ChunkSize int     `yaml:"chunk_size"`
	Stages    []Stage `yaml:"stages"`
}

// Stage is one entry of the stages list.
type Stage struct {
	Name string `yaml:"name"`
	// ID distinguishes multiple uses of the same stage in one pipeline.
	// Defaults to Name.
	ID             string    `yaml:"id"`
	InputManifest  string    `yaml:"input_manifest"`
	OutputManifest string    `yaml:"output_manifest"`
	Workers        int       `yaml:"workers"`
	ChunkSize      int       `yaml:"chunk_size"`
	Params         yaml.Node `yaml:"params"`
}

// Load reads and validates a pipeline file. Unknown keys are rejected so a
// typo in a stage parameter name fails loudly instead of being ignored.
func Load(path string) (*Pipeline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open pipeline file")
	}
	defer file.Close()

	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)

	var pipe Pipeline
	if err := dec.Decode(&pipe); err != nil {
		return nil, errors.Wrapf(err, "unable to parse pipeline file %s", path)
	}
	if err := pipe.Validate(); err != nil {
		return nil, err
	}
	return &pipe, nil
}
