package lazypix

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
)

// ConfigSchema returns the JSON schema describing the Config file format,
// for editors and validation tooling.
func ConfigSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&Config{})

	schema.ID = "https://github.com/davrux/lazypix/lazypix.schema.json"
	schema.Title = "lazypix Configuration"
	schema.Description = "Configuration schema for lazypix, an asynchronous image loading library"

	return schema
}

// WriteConfigSchema writes the JSON schema to path.
func WriteConfigSchema(path string) error {
	data, err := json.MarshalIndent(ConfigSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}
	return nil
}
