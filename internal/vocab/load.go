package vocab

import (
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "vocabulary.schema.json"

// schemaJSON describes a vocabulary file. YAML and JSON files are both
// decoded into generic values and validated against it before use.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "symptoms": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "medical_history": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["symptom", "suggestion"],
        "properties": {
          "symptom": {"type": "string", "minLength": 1},
          "suggestion": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("vocab: invalid schema resource: %v", err))
	}
	return c.MustCompile(schemaURL)
}

// LoadFile reads a YAML or JSON vocabulary file. Sections missing from the
// file keep the built-in defaults, so a file may override only the
// suggestion table.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates vocabulary data (YAML is a superset of JSON).
func Parse(data []byte) (*Set, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if doc == nil {
		return Default(), nil
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	var file Set
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", err)
	}

	set := Default()
	if file.Symptoms != nil {
		set.Symptoms = file.Symptoms
	}
	if file.MedicalHistory != nil {
		set.MedicalHistory = file.MedicalHistory
	}
	if file.Suggestions != nil {
		set.Suggestions = file.Suggestions
	}
	return set, nil
}
