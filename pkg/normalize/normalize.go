package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/attacktree/pkg/tree"
)

// ErrNoData is returned when no attack tree node list can be found.
var ErrNoData = errors.New("no attack tree data")

// DefaultLabel replaces a missing node label.
const DefaultLabel = "Unnamed Node"

// MaxDepth bounds record nesting. Deeper children are dropped.
const MaxDepth = 512

// envelopePaths lists the key paths searched for the node list, in order.
var envelopePaths = [][]string{
	{"nodes"},
	{"attack_tree", "nodes"},
	{"result", "attack_tree", "nodes"},
	{"result", "nodes"},
	{"result", "result", "attack_tree", "nodes"},
	{"result", "result", "nodes"},
}

// Forest is the canonical result of extraction.
type Forest struct {
	// Nodes are the top-level nodes in input order.
	Nodes []*tree.Node
	// Root is the designated root (see [tree.SelectRoot]).
	Root *tree.Node
	// Path is the dotted key path where the node list was found
	// ("" for a bare array).
	Path string
	// Notes records every lenient coercion applied to the input.
	Notes []string
}

// Parse decodes JSON and calls [Extract].
func Parse(data []byte) (*Forest, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes JSON from r and calls [Extract].
func Read(r io.Reader) (*Forest, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrNoData, err)
	}
	return Extract(v)
}

// Extract finds the node list in a decoded JSON value and converts it to
// tree nodes.
func Extract(v any) (forest *Forest, err error) {
	defer func() {
		if r := recover(); r != nil {
			forest, err = nil, fmt.Errorf("%w: %v", ErrNoData, r)
		}
	}()

	list, path, ok := locate(v)
	if !ok {
		return nil, ErrNoData
	}

	c := &converter{}
	var nodes []*tree.Node
	for _, raw := range list {
		if n := c.node(raw, 0); n != nil {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return nil, ErrNoData
	}
	return &Forest{
		Nodes: nodes,
		Root:  tree.SelectRoot(nodes),
		Path:  path,
		Notes: c.notes,
	}, nil
}

func locate(v any) ([]any, string, bool) {
	if list, ok := v.([]any); ok {
		return list, "", len(list) > 0
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, "", false
	}
	for _, path := range envelopePaths {
		if list, ok := lookup(obj, path); ok && len(list) > 0 {
			return list, joinPath(path), true
		}
	}
	return nil, "", false
}

func lookup(obj map[string]any, path []string) ([]any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	list, ok := cur.([]any)
	return list, ok
}

func joinPath(path []string) string {
	var buf bytes.Buffer
	for i, p := range path {
		if i > 0 {
			buf.WriteByte('.')
		}
		buf.WriteString(p)
	}
	return buf.String()
}

// converter turns raw records into nodes, numbering generated ids in
// preorder.
type converter struct {
	generated int
	notes     []string
}

func (c *converter) note(format string, args ...any) {
	c.notes = append(c.notes, fmt.Sprintf(format, args...))
}

func (c *converter) node(raw any, depth int) *tree.Node {
	obj, ok := raw.(map[string]any)
	if !ok {
		c.note("skipped non-object node record of type %T", raw)
		return nil
	}

	n := &tree.Node{}
	if id, ok := scalarString(obj["id"]); ok && id != "" {
		n.ID = id
	} else {
		n.ID = "node_" + strconv.Itoa(c.generated)
		c.note("node without id assigned %q", n.ID)
	}
	c.generated++

	kind, _ := scalarString(firstPresent(obj, "type", "kind"))
	if !tree.IsKnownKind(kind) {
		c.note("node %q has unrecognized kind %q, using goal", n.ID, kind)
	}
	n.Kind = tree.ParseKind(kind)

	if label, ok := scalarString(obj["label"]); ok && label != "" {
		n.Label = label
	} else {
		n.Label = DefaultLabel
		c.note("node %q has no label", n.ID)
	}

	switch children := obj["children"].(type) {
	case nil:
	case []any:
		if depth >= MaxDepth && len(children) > 0 {
			c.note("node %q exceeds depth %d, children dropped", n.ID, MaxDepth)
			break
		}
		for _, rc := range children {
			if child := c.node(rc, depth+1); child != nil {
				n.Children = append(n.Children, child)
			}
		}
	default:
		c.note("node %q has non-list children, treated as leaf", n.ID)
	}
	return n
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	return nil
}

// scalarString formats strings, numbers and booleans; other values are
// rejected.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
