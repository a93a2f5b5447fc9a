package rules

import (
	"github.com/mitchellh/mapstructure"
)

// decodeSpec decodes a raw spec map into a typed struct. Weakly typed input
// keeps YAML-sourced scalars (e.g. a bare string where a list is expected)
// usable without forcing operators into strict typing.
func decodeSpec(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
