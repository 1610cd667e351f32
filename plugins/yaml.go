package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile pairs a parsed recipe definition with its on-disk source.
// Files holding several definitions get a "#n" suffix per definition.
type DefinitionFile struct {
	Definition RecipeDefinition
	Path       string
}

// ParseDefinitionYAML decodes and validates a single recipe definition payload.
func ParseDefinitionYAML(data []byte) (RecipeDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RecipeDefinition{}, fmt.Errorf("plugin: definition payload is empty")
	}
	var def RecipeDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return RecipeDefinition{}, fmt.Errorf("plugin: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return RecipeDefinition{}, err
	}
	return def.Normalized(), nil
}

// LoadDefinitionFile reads a YAML file from disk. A file may carry several
// definitions separated by "---".
func LoadDefinitionFile(path string) ([]DefinitionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	docs, err := splitDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("plugin: %s: definition payload is empty", path)
	}
	clean := filepath.Clean(path)
	files := make([]DefinitionFile, 0, len(docs))
	for idx, doc := range docs {
		def, err := ParseDefinitionYAML(doc)
		if err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", path, err)
		}
		source := clean
		if len(docs) > 1 {
			source = fmt.Sprintf("%s#%d", clean, idx+1)
		}
		files = append(files, DefinitionFile{Definition: def, Path: source})
	}
	return files, nil
}

// splitDocuments re-encodes every non-empty document of a YAML stream.
func splitDocuments(data []byte) ([][]byte, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs [][]byte
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode definition: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}
		payload, err := yaml.Marshal(&node)
		if err != nil {
			return nil, fmt.Errorf("decode definition: %w", err)
		}
		docs = append(docs, payload)
	}
}

// LoadDefinitionDir scans a directory for *.yaml recipe definitions.
// Missing directories are treated as "no plugins" to simplify startup.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		files, err := LoadDefinitionFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, files...)
	}
	if len(defs) == 0 {
		return nil, nil
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
