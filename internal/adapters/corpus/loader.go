// Package corpus provides intent corpus loading adapters.
// Adapter implementing ports.CorpusLoader for JSON and YAML files.
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

// document is the on-disk shape: { "intents": [ ... ] }.
type document struct {
	Intents *[]entities.Intent `json:"intents" yaml:"intents"`
}

// JSONLoader loads corpora written as JSON.
type JSONLoader struct{}

// NewJSONLoader creates a new JSON corpus loader.
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load reads and validates a JSON corpus.
func (l *JSONLoader) Load(ctx context.Context, path string) (*entities.Corpus, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.Parse(path, data)
}

// Parse validates JSON corpus bytes. source only labels errors.
func (l *JSONLoader) Parse(source string, data []byte) (*entities.Corpus, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, entities.NewConfigError(source, "malformed JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, entities.NewConfigError(source, "malformed JSON: trailing data after document", nil)
	}
	return build(source, doc)
}

// SupportedExtensions returns file extensions this loader handles.
func (l *JSONLoader) SupportedExtensions() []string {
	return []string{".json"}
}

// YAMLLoader loads corpora written as YAML.
type YAMLLoader struct{}

// NewYAMLLoader creates a new YAML corpus loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load reads and validates a YAML corpus.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*entities.Corpus, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	return l.Parse(path, data)
}

// Parse validates YAML corpus bytes.
func (l *YAMLLoader) Parse(source string, data []byte) (*entities.Corpus, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, entities.NewConfigError(source, "malformed YAML", err)
	}
	return build(source, doc)
}

// SupportedExtensions returns file extensions.
func (l *YAMLLoader) SupportedExtensions() []string {
	return []string{".yaml", ".yml"}
}

type parser interface {
	Load(ctx context.Context, path string) (*entities.Corpus, error)
	SupportedExtensions() []string
}

// MultiLoader combines loaders and dispatches on file extension.
type MultiLoader struct {
	loaders  map[string]parser
	fallback parser
}

// NewMultiLoader creates a loader that handles JSON and YAML corpora.
// Files with other extensions are read as JSON.
func NewMultiLoader() *MultiLoader {
	m := &MultiLoader{
		loaders:  make(map[string]parser),
		fallback: NewJSONLoader(),
	}
	for _, p := range []parser{NewJSONLoader(), NewYAMLLoader()} {
		for _, ext := range p.SupportedExtensions() {
			m.loaders[ext] = p
		}
	}
	return m
}

// Load dispatches to the appropriate loader based on extension.
func (m *MultiLoader) Load(ctx context.Context, path string) (*entities.Corpus, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := m.loaders[ext]
	if !ok {
		p = m.fallback
	}
	return p.Load(ctx, path)
}

// SupportedExtensions returns all supported extensions.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	return exts
}

func readSource(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, entities.NewConfigError(path, "load cancelled", err)
	}
	if strings.TrimSpace(path) == "" {
		return nil, entities.NewConfigError(path, "no corpus path given", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, entities.NewConfigError(path, "corpus file is missing", err)
		}
		return nil, entities.NewConfigError(path, "reading corpus", err)
	}
	if !utf8.Valid(data) {
		return nil, entities.NewConfigError(path, "corpus is not valid UTF-8", nil)
	}
	return data, nil
}

func build(source string, doc document) (*entities.Corpus, error) {
	if doc.Intents == nil {
		return nil, entities.NewConfigError(source, `missing "intents" list`, nil)
	}
	return entities.NewCorpus(source, *doc.Intents)
}
