package projection

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadScenario decodes an Input from YAML (JSON documents are accepted too).
// Unknown keys are rejected so that typos do not silently fall back to zero values.
func LoadScenario(r io.Reader) (Input, error) {
	var in Input

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return Input{}, fmt.Errorf("scenario is empty")
		}
		return Input{}, fmt.Errorf("failed to decode scenario: %w", err)
	}

	return in, nil
}
