package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/attacktree/pkg/tree"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a tree to flat JSON bytes in preorder.
func MarshalGraph(root *tree.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes flat JSON bytes into a Graph without rebuilding
// the tree.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	return g, nil
}

// WriteGraphFile writes a tree to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(root *tree.Node, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(root, f)
}

// WriteGraph writes a tree as flat JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(root *tree.Node, w io.Writer) error {
	return writeGraphTo(root, w)
}

// ReadGraphFile reads a flat JSON file and returns the rebuilt tree.
func ReadGraphFile(path string) (*tree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes flat JSON from an io.Reader into a tree.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*tree.Node, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(root *tree.Node, w io.Writer) error {
	out := FromTree(root)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*tree.Node, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(data)
}
