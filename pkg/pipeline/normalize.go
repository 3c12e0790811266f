package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/attacktree/pkg/cache"
	"github.com/matzehuels/attacktree/pkg/normalize"
	"github.com/matzehuels/attacktree/pkg/observability"
	"github.com/matzehuels/attacktree/pkg/tree"
)

// Normalize extracts the canonical forest from an envelope. An envelope
// without an attack tree returns [normalize.ErrNoData].
func Normalize(ctx context.Context, envelope []byte) (*normalize.Forest, error) {
	hooks := observability.Pipeline()
	hooks.OnNormalizeStart(ctx, len(envelope))
	start := time.Now()

	forest, err := normalize.Parse(envelope)
	count := 0
	if err == nil {
		count = tree.Count(forest.Root)
	}
	hooks.OnNormalizeComplete(ctx, count, time.Since(start), err)
	return forest, err
}

// IsNoData reports whether err means the envelope held no attack tree.
func IsNoData(err error) bool {
	return errors.Is(err, normalize.ErrNoData)
}

// TreeHash returns the content hash of the tree rooted at root. Every
// placement is hashed, so subtrees under repeated ids change the hash.
func TreeHash(root *tree.Node) (string, error) {
	h, err := cache.HashJSON(hashForm(root))
	if err != nil {
		return "", fmt.Errorf("hash tree: %w", err)
	}
	return h, nil
}

// ForestHash returns the content hash of every top-level tree in order.
func ForestHash(nodes []*tree.Node) (string, error) {
	forms := make([]*hashNode, len(nodes))
	for i, n := range nodes {
		forms[i] = hashForm(n)
	}
	h, err := cache.HashJSON(forms)
	if err != nil {
		return "", fmt.Errorf("hash forest: %w", err)
	}
	return h, nil
}

// hashNode is the nested form of a tree used for cache keys.
type hashNode struct {
	ID       string      `json:"id"`
	Kind     tree.Kind   `json:"kind"`
	Label    string      `json:"label"`
	Children []*hashNode `json:"children,omitempty"`
	Cycle    bool        `json:"cycle,omitempty"`
}

func hashForm(root *tree.Node) *hashNode {
	if root == nil {
		return nil
	}
	return nest(root, map[*tree.Node]bool{})
}

// nest copies n and its subtree. A node already on the current path is
// emitted as a cycle marker without children.
func nest(n *tree.Node, onPath map[*tree.Node]bool) *hashNode {
	h := &hashNode{ID: n.ID, Kind: n.Kind, Label: n.Label}
	if onPath[n] {
		h.Cycle = true
		return h
	}
	onPath[n] = true
	defer delete(onPath, n)
	for _, c := range n.Children {
		if c != nil {
			h.Children = append(h.Children, nest(c, onPath))
		}
	}
	return h
}
