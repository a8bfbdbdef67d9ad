// Package manifest reads the net.json manifest that accompanies an exported
// network and checks it against the weights container.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Statement is one kernel launch in the exported program.
type Statement struct {
	Kernel     string   `json:"kernel"`
	Args       []string `json:"args"`
	GlobalSize []uint64 `json:"global_size"`
	LocalSize  []uint64 `json:"local_size"`
}

// Buffer is a device buffer. Name is the weight tensor backing it,
// empty for scratch buffers.
type Buffer struct {
	Size uint64 `json:"size"`
	Name string `json:"id"`
}

// Model is the decoded manifest.
type Model struct {
	Backend    string            `json:"backend"`
	InputSize  uint64            `json:"input_size"`
	OutputSize uint64            `json:"output_size"`
	Functions  map[string]string `json:"functions"`
	Statements []Statement       `json:"statements"`
	Buffers    map[string]Buffer `json:"buffers"`
}

// Load decodes a manifest from path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	var m Model
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return &m, nil
}

// Weights returns the buffer keys backed by a weight tensor, sorted.
func (m *Model) Weights() []string {
	var keys []string
	for k, b := range m.Buffers {
		if b.Name != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
