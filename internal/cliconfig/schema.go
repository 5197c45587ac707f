package cliconfig

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// configSchemaJSON is the published shape of aurelia.config.yaml (decoded
// via yaml.v3 into a plain map before validation, the same two-step
// decode-then-validate the teacher uses for chart values: yaml.v3 for
// the document, jsonschema for structure). Grounded on the teacher's
// pkg/chart/common/util.ValidateAgainstSingleSchema.
var configSchemaJSON = []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "cacheDir": {"type": "string"},
    "debug": {"type": "boolean"},
    "schemaVersion": {"type": "integer", "minimum": 1},
    "pluginAllowlist": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "additionalProperties": true
}`)

// ValidateConfig checks a decoded aurelia.config.yaml document (as a
// plain map, the shape gopkg.in/yaml.v3 produces) against
// configSchemaJSON.
func ValidateConfig(doc map[string]any) error {
	schema, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchemaJSON))
	if err != nil {
		return fmt.Errorf("internal: invalid embedded config schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("file:///aurelia.config.schema.json", schema); err != nil {
		return err
	}
	validator, err := compiler.Compile("file:///aurelia.config.schema.json")
	if err != nil {
		return err
	}
	return validator.Validate(doc)
}
