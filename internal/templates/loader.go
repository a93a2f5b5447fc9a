package templates

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// agentsFile represents the structure of an agents YAML file.
type agentsFile struct {
	Agents []map[string]any `yaml:"agents"`
}

// LoadFromFile loads and validates all template definitions from path. A
// single invalid definition fails the whole load; a registry with silently
// missing templates would only surface later as a confusing run failure.
func LoadFromFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agents file: %w", err)
	}

	var file agentsFile
	if unmarshalErr := yaml.Unmarshal(data, &file); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", unmarshalErr)
	}
	if len(file.Agents) == 0 {
		return nil, ErrNoTemplates
	}

	definitions := make([]Definition, 0, len(file.Agents))
	for i, raw := range file.Agents {
		def, decodeErr := decodeDefinition(raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("agent %d: %w", i, decodeErr)
		}
		if validateErr := def.Validate(); validateErr != nil {
			return nil, fmt.Errorf("agent %d: %w", i, validateErr)
		}
		definitions = append(definitions, def)
	}

	return definitions, nil
}

// decodeDefinition converts a raw agent map to a Definition.
func decodeDefinition(raw map[string]any) (Definition, error) {
	var def Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Definition{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if decodeErr := decoder.Decode(raw); decodeErr != nil {
		return Definition{}, fmt.Errorf("failed to decode template: %w", decodeErr)
	}

	return def, nil
}
