package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc struct {
		ID         string                     `json:"$id"`
		Title      string                     `json:"title"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, SchemaID, doc.ID)
	assert.Equal(t, FileName, doc.Title)
	assert.Subset(t, doc.Required, []string{"dataverse_url", "datasets"})
	assert.Contains(t, doc.Properties, "options")

	var options struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(doc.Properties["options"], &options))
	assert.Contains(t, options.Properties, "downloadExistingData")
	assert.Contains(t, options.Properties, "authScheme")
	assert.Contains(t, options.Properties, "timeout", "embedded HTTP settings are flattened")
}
