package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

const validJSON = `{
  "intents": [
    {"tag": "greeting", "patterns": ["hi", "hello"], "responses": ["Hello!"]},
    {"tag": "goodbye", "patterns": ["bye"], "responses": ["Bye!"]}
  ]
}`

const validYAML = `
intents:
  - tag: greeting
    patterns: [hi, hello]
    responses: ["Hello!"]
  - tag: goodbye
    patterns: [bye]
    responses: ["Bye!"]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestJSONLoader_LoadValid(t *testing.T) {
	path := writeFile(t, "intents.json", validJSON)

	c, err := NewJSONLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	in, ok := c.Lookup("greeting")
	require.True(t, ok)
	assert.Equal(t, []string{"hi", "hello"}, in.Patterns)
}

func TestYAMLLoader_LoadValid(t *testing.T) {
	path := writeFile(t, "intents.yaml", validYAML)

	c, err := NewYAMLLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"goodbye", "greeting"}, c.Tags())
}

func TestMultiLoader_DispatchByExtension(t *testing.T) {
	loader := NewMultiLoader()

	jsonPath := writeFile(t, "intents.json", validJSON)
	yamlPath := writeFile(t, "intents.yml", validYAML)
	otherPath := writeFile(t, "intents.data", validJSON)

	for _, p := range []string{jsonPath, yamlPath, otherPath} {
		c, err := loader.Load(context.Background(), p)
		require.NoError(t, err, p)
		assert.Equal(t, 2, c.Len(), p)
	}
}

func TestMultiLoader_AllExtensions(t *testing.T) {
	exts := NewMultiLoader().SupportedExtensions()
	assert.ElementsMatch(t, []string{".json", ".yaml", ".yml"}, exts)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewMultiLoader().Load(context.Background(), "/nonexistent/intents.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrConfig)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing")
}

func TestLoader_InvalidInputs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{"malformed", `{"intents": [`, "malformed JSON"},
		{"trailing data", validJSON + ` {}`, "trailing data"},
		{"not a list", `{"intents": {"tag": "x"}}`, "malformed JSON"},
		{"missing key", `{"other": []}`, `missing "intents"`},
		{"empty list", `{"intents": []}`, "no intents"},
		{"empty tag", `{"intents": [{"tag": "", "patterns": ["a"], "responses": ["b"]}]}`, "tag is empty"},
		{"empty patterns", `{"intents": [{"tag": "t", "patterns": [], "responses": ["b"]}]}`, "no patterns"},
		{"empty responses", `{"intents": [{"tag": "t", "patterns": ["a"]}]}`, "no responses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "intents.json", tt.content)

			c, err := NewJSONLoader().Load(context.Background(), path)
			require.Error(t, err)
			assert.Nil(t, c)

			var cfgErr *entities.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, cfgErr.Error(), tt.reason)
		})
	}
}

func TestLoader_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "intents.json", "{\"intents\": [\xff]}")
	_, err := NewJSONLoader().Load(context.Background(), path)
	assert.ErrorIs(t, err, entities.ErrConfig)
}

func TestLoader_CancelledContext(t *testing.T) {
	path := writeFile(t, "intents.json", validJSON)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSONLoader().Load(ctx, path)
	assert.ErrorIs(t, err, entities.ErrConfig)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestYAMLLoader_Malformed(t *testing.T) {
	_, err := NewYAMLLoader().Parse("inline", []byte("intents: [unclosed"))
	var cfgErr *entities.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "inline", cfgErr.Source)
	assert.Contains(t, cfgErr.Reason, "malformed YAML")
}
