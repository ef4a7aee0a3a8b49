package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/darus-fetch/pkg/types"
)

// SchemaID identifies the generated schema document.
const SchemaID = "https://github.com/pdiddy/darus-fetch/darus_config.schema.json"

// Schema returns the JSON schema of darus_config.json, indented for
// editors that offer completion from "$schema".
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&types.Config{})
	s.ID = SchemaID
	s.Title = FileName

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON schema: %w", err)
	}
	return data, nil
}
