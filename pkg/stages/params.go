package stages

import (
	"gopkg.in/yaml.v3"

	"github.com/voxpipe/voxpipe/pkg/pipeline"
)

// decodeParams decodes the stage params block into a typed struct. An absent
// block leaves the struct at its zero value so defaults apply.
func decodeParams(cfg Config, out any) error {
	if cfg.Params.IsZero() {
		return nil
	}
	if err := cfg.Params.Decode(out); err != nil {
		return pipeline.NewConfigurationError(cfg.id(), "invalid params: %v", err)
	}
	return nil
}

// fieldPair is one src -> dst mapping, in the order the pipeline file
// declares it.
type fieldPair struct {
	Src string
	Dst string
}

// orderedStringPairs reads a YAML mapping of string to string keeping the
// file's declaration order, which a Go map would lose.
func orderedStringPairs(stage string, node yaml.Node) ([]fieldPair, error) {
	if node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, pipeline.NewConfigurationError(stage, "expected a mapping of field names")
	}
	pairs := make([]fieldPair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var pair fieldPair
		if err := node.Content[i].Decode(&pair.Src); err != nil {
			return nil, pipeline.NewConfigurationError(stage, "invalid field name: %v", err)
		}
		if err := node.Content[i+1].Decode(&pair.Dst); err != nil {
			return nil, pipeline.NewConfigurationError(stage, "invalid field name: %v", err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// constantField is one field set on every record by add_constant_fields.
type constantField struct {
	Key   string
	Value any
}

// orderedConstants reads a YAML mapping of field name to arbitrary value
// keeping declaration order.
func orderedConstants(stage string, node yaml.Node) ([]constantField, error) {
	if node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, pipeline.NewConfigurationError(stage, "expected a mapping of fields")
	}
	fields := make([]constantField, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var field constantField
		if err := node.Content[i].Decode(&field.Key); err != nil {
			return nil, pipeline.NewConfigurationError(stage, "invalid field name: %v", err)
		}
		if err := node.Content[i+1].Decode(&field.Value); err != nil {
			return nil, pipeline.NewConfigurationError(stage, "invalid field value: %v", err)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// stringList accepts either a single YAML scalar or a sequence of scalars.
func stringList(stage string, node yaml.Node) ([]string, error) {
	if node.IsZero() {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return nil, pipeline.NewConfigurationError(stage, "invalid field name: %v", err)
		}
		return []string{single}, nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return nil, pipeline.NewConfigurationError(stage, "expected a field name or list of field names: %v", err)
	}
	return list, nil
}
