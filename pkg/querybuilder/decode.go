package querybuilder

import (
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// DecodeDefinition reads one query definition in YAML or JSON form.
// Unknown keys are rejected.
func DecodeDefinition(r io.Reader) (QueryDefinition, error) {
	var d QueryDefinition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return QueryDefinition{}, errors.New("query definition is empty")
		}
		return QueryDefinition{}, fmt.Errorf("problem decoding query definition: %w", err)
	}
	return d, nil
}
