package codec

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Marshal encodes a serialized tree as indented JSON.
func Marshal(tree map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(tree, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON document into a plain tree. Numbers decode as float64.
func Unmarshal(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to decode document: empty document")
	}
	return tree, nil
}
