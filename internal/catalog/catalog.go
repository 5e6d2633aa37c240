// Package catalog loads the authored game content: world generation
// parameters, the NPC roster with their schedule rules, and the scene
// definitions. Files are YAML, validated against JSON Schemas before
// decoding so authoring mistakes fail at startup with a precise message.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog file")

func mustCompileSchema(name, src string) *jsonschema.Schema {
	s, err := jsonschema.CompileString(name, src)
	if err != nil {
		panic(fmt.Sprintf("catalog: compile schema %s: %v", name, err))
	}
	return s
}

// loadValidated reads a YAML file, checks it against the schema, and decodes
// it into out. The schema sees the document re-encoded as JSON so numeric
// types match what the validator expects.
func loadValidated(path string, schema *jsonschema.Schema, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w: %v", path, ErrInvalidCatalog, err)
	}
	jsonRaw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize %s: %w: %v", path, ErrInvalidCatalog, err)
	}
	var jsonDoc any
	if err := json.Unmarshal(jsonRaw, &jsonDoc); err != nil {
		return fmt.Errorf("normalize %s: %w: %v", path, ErrInvalidCatalog, err)
	}
	if err := schema.Validate(jsonDoc); err != nil {
		return fmt.Errorf("validate %s: %w: %v", path, ErrInvalidCatalog, err)
	}

	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w: %v", path, ErrInvalidCatalog, err)
	}
	return nil
}
